package csvimport

import "fmt"

// Default substitution policies for missing numeric cells.
const (
	PolicyZero        = "zero"
	PolicyPlaceholder = "placeholder"
)

const (
	placeholderGPA    = 3.0
	placeholderIncome = int64(5000000)
)

// Policy decides what a missing grade-point or income cell becomes.
type Policy struct {
	Name         string
	GPA          float64
	FamilyIncome int64
}

// NewPolicy resolves a named policy and applies optional per-value overrides.
// Unknown names fall back to the zero policy.
func NewPolicy(name string, gpa *float64, income *int64) Policy {
	p := Policy{Name: PolicyZero}
	if name == PolicyPlaceholder {
		p = Policy{Name: PolicyPlaceholder, GPA: placeholderGPA, FamilyIncome: placeholderIncome}
	}
	if gpa != nil {
		p.GPA = *gpa
	}
	if income != nil {
		p.FamilyIncome = *income
	}
	return p
}

func (p Policy) String() string {
	return fmt.Sprintf("%s (gpa=%g, income=%d)", p.Name, p.GPA, p.FamilyIncome)
}
