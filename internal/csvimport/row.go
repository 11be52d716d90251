package csvimport

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
)

// RowError describes why a single data row was rejected. It never aborts the batch.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

func rowErrorf(row int, format string, args ...interface{}) *RowError {
	return &RowError{Row: row, Reason: fmt.Sprintf(format, args...)}
}

// Row is one validated data row. Optional text fields are nil when the cell is absent
// or empty so that a merge leaves the stored value alone.
type Row struct {
	Number int

	StudentID string
	Email     string
	FullName  string

	Phone              *string
	Address            *string
	Essay              *string
	SupportingDocument *string
	Recommendation     *string
	Note               *string

	GPA             float64
	GPADefaulted    bool
	Income          int64
	IncomeDefaulted bool

	Status    models.ApplicationStatus
	StatusSet bool
	Stage     models.ApplicationStage
	StageSet  bool

	Warnings []string
}

// placeholderCell marks a cell the importer fills from its default policy.
const placeholderCell = "-"

var groupedIncome = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)

// extract validates one record against the header. The returned error is always a *RowError.
func extract(h Header, number int, record []string, policy Policy, validate *validator.Validate) (Row, error) {
	row := Row{Number: number}

	row.StudentID, _ = h.cell(record, FieldStudentID)
	row.Email, _ = h.cell(record, FieldEmail)
	row.FullName, _ = h.cell(record, FieldFullName)

	var missing []string
	if row.StudentID == "" {
		missing = append(missing, "student ID")
	}
	if row.Email == "" {
		missing = append(missing, "email")
	}
	if row.FullName == "" {
		missing = append(missing, "full name")
	}
	if len(missing) > 0 {
		return Row{}, rowErrorf(number, "missing required field(s): %s", strings.Join(missing, ", "))
	}
	if err := validate.Var(row.Email, "email"); err != nil {
		return Row{}, rowErrorf(number, "invalid email %q", row.Email)
	}

	row.Phone = optional(h, record, FieldPhone)
	row.Address = optional(h, record, FieldAddress)
	row.Essay = optional(h, record, FieldEssay)
	row.SupportingDocument = optional(h, record, FieldSupportingDocument)
	row.Recommendation = optional(h, record, FieldRecommendation)
	row.Note = optional(h, record, FieldNote)

	if raw, _ := h.cell(record, FieldGPA); raw == "" {
		row.GPA, row.GPADefaulted = policy.GPA, true
		row.warn("gpa missing, using default %g (policy %s)", policy.GPA, policy.Name)
	} else {
		gpa, err := ParseGPA(raw)
		if err != nil {
			return Row{}, rowErrorf(number, "invalid gpa %q", raw)
		}
		row.GPA = gpa
	}

	if raw, _ := h.cell(record, FieldFamilyIncome); raw == "" {
		row.Income, row.IncomeDefaulted = policy.FamilyIncome, true
		row.warn("family income missing, using default %d (policy %s)", policy.FamilyIncome, policy.Name)
	} else {
		income, err := ParseIncome(raw)
		if err != nil {
			return Row{}, rowErrorf(number, "invalid family income %q", raw)
		}
		row.Income = income
	}

	row.Status, row.StatusSet = models.StatusUnderReview, false
	if raw, _ := h.cell(record, FieldStatus); raw != "" {
		if status, ok := models.ParseStatus(raw); ok {
			row.Status, row.StatusSet = status, true
		} else {
			row.warn("unknown status %q ignored: existing records keep their status, new ones start as %s", raw, models.StatusUnderReview)
		}
	}

	row.Stage, row.StageSet = models.StageAdministrative, false
	if raw, _ := h.cell(record, FieldStage); raw != "" {
		if stage, ok := models.ParseStage(raw); ok {
			row.Stage, row.StageSet = stage, true
		} else {
			row.warn("unknown stage %q ignored: existing records keep their stage, new ones start as %s", raw, models.StageAdministrative)
		}
	}

	return row, nil
}

func optional(h Header, record []string, field string) *string {
	value, ok := h.cell(record, field)
	if !ok || value == "" {
		return nil
	}
	return &value
}

func (r *Row) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("Row %d: ", r.Number)+fmt.Sprintf(format, args...))
}

// ParseGPA accepts both "3.5" and the comma decimal "3,5".
func ParseGPA(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}
	gpa, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(gpa) || math.IsInf(gpa, 0) || gpa < 0 {
		return 0, fmt.Errorf("gpa out of range: %s", raw)
	}
	return gpa, nil
}

// ParseIncome accepts plain digits, an optional "Rp" prefix and digit grouping
// such as 5.000.000 or 5,000,000.
func ParseIncome(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 && strings.EqualFold(value[:2], "rp") {
		value = strings.TrimSpace(strings.TrimLeft(value[2:], "."))
	}
	value = strings.ReplaceAll(value, " ", "")
	if groupedIncome.MatchString(value) {
		value = strings.NewReplacer(".", "", ",", "").Replace(value)
	}
	income, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if income < 0 {
		return 0, fmt.Errorf("income out of range: %s", raw)
	}
	return income, nil
}

// NewApplication builds a fresh record from the row with defaults applied.
func (r Row) NewApplication(now time.Time) *models.Application {
	app := &models.Application{
		StudentID:          r.StudentID,
		Email:              r.Email,
		FullName:           r.FullName,
		GPA:                r.GPA,
		FamilyIncome:       r.Income,
		SupportingDocument: r.SupportingDocument,
		Recommendation:     r.Recommendation,
		Status:             r.Status,
		Stage:              r.Stage,
		Note:               r.Note,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if r.Phone != nil {
		app.Phone = *r.Phone
	}
	if r.Address != nil {
		app.Address = *r.Address
	}
	if r.Essay != nil {
		app.Essay = *r.Essay
	}
	return app
}

// Merge applies the non-empty cells of the row onto app and always touches updated_at.
// Values that fell back to a default never overwrite stored data.
func (r Row) Merge(app *models.Application, now time.Time) {
	app.FullName = r.FullName
	if r.Phone != nil {
		app.Phone = *r.Phone
	}
	if r.Address != nil {
		app.Address = *r.Address
	}
	if r.Essay != nil {
		app.Essay = *r.Essay
	}
	if r.SupportingDocument != nil {
		app.SupportingDocument = r.SupportingDocument
	}
	if r.Recommendation != nil {
		app.Recommendation = r.Recommendation
	}
	if r.Note != nil {
		app.Note = r.Note
	}
	if !r.GPADefaulted {
		app.GPA = r.GPA
	}
	if !r.IncomeDefaulted {
		app.FamilyIncome = r.Income
	}
	if r.StatusSet {
		app.Status = r.Status
	}
	if r.StageSet {
		app.Stage = r.Stage
	}
	if now.Before(app.CreatedAt) {
		now = app.CreatedAt
	}
	app.UpdatedAt = now
}

// Record renders the row in Columns order. Defaulted numbers are written as "-" and
// unset status or stage as empty cells; Merge skips both.
func (r Row) Record() []string {
	gpa, income := placeholderCell, placeholderCell
	if !r.GPADefaulted {
		gpa = strconv.FormatFloat(r.GPA, 'f', -1, 64)
	}
	if !r.IncomeDefaulted {
		income = strconv.FormatInt(r.Income, 10)
	}
	var status, stage string
	if r.StatusSet {
		status = string(r.Status)
	}
	if r.StageSet {
		stage = string(r.Stage)
	}
	return []string{
		r.StudentID, r.Email, r.FullName, deref(r.Phone), deref(r.Address),
		gpa, income,
		deref(r.Essay), deref(r.SupportingDocument), deref(r.Recommendation),
		status, stage, deref(r.Note),
	}
}

// ApplicationRecord renders a stored application in Columns order.
func ApplicationRecord(app *models.Application) []string {
	return []string{
		app.StudentID, app.Email, app.FullName, app.Phone, app.Address,
		strconv.FormatFloat(app.GPA, 'f', -1, 64), strconv.FormatInt(app.FamilyIncome, 10),
		app.Essay, deref(app.SupportingDocument), deref(app.Recommendation),
		string(app.Status), string(app.Stage), deref(app.Note),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
