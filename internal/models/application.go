package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"
	"time"
)

// ApplicationStatus is the coarse outcome of an application.
type ApplicationStatus string

const (
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusAccepted    ApplicationStatus = "Accepted"
	StatusRejected    ApplicationStatus = "Rejected"
)

// ApplicationStage is the process phase of an application, independent of its status.
type ApplicationStage string

const (
	StageAdministrative ApplicationStage = "Administrative"
	StageInterview      ApplicationStage = "Interview"
	StageFinal          ApplicationStage = "Final"
)

// Spreadsheets maintained by the scholarship office use the Indonesian labels.
var statusAliases = map[string]ApplicationStatus{
	"under review": StatusUnderReview,
	"review":       StatusUnderReview,
	"dalam review": StatusUnderReview,
	"accepted":     StatusAccepted,
	"diterima":     StatusAccepted,
	"rejected":     StatusRejected,
	"ditolak":      StatusRejected,
}

var stageAliases = map[string]ApplicationStage{
	"administrative": StageAdministrative,
	"administrasi":   StageAdministrative,
	"interview":      StageInterview,
	"wawancara":      StageInterview,
	"final":          StageFinal,
}

func aliasKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return strings.Join(strings.Fields(key), " ")
}

// ParseStatus maps raw text onto the status vocabulary.
func ParseStatus(raw string) (ApplicationStatus, bool) {
	s, ok := statusAliases[aliasKey(raw)]
	return s, ok
}

// ParseStage maps raw text onto the stage vocabulary.
func ParseStage(raw string) (ApplicationStage, bool) {
	s, ok := stageAliases[aliasKey(raw)]
	return s, ok
}

// Valid reports whether s is a member of the vocabulary.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Valid reports whether s is a member of the vocabulary.
func (s ApplicationStage) Valid() bool {
	switch s {
	case StageAdministrative, StageInterview, StageFinal:
		return true
	}
	return false
}

// UnmarshalText accepts any known alias and rejects everything else.
func (s *ApplicationStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown status %q", string(text))
	}
	*s = parsed
	return nil
}

// UnmarshalText accepts any known alias and rejects everything else.
func (s *ApplicationStage) UnmarshalText(text []byte) error {
	parsed, ok := ParseStage(string(text))
	if !ok {
		return fmt.Errorf("unknown stage %q", string(text))
	}
	*s = parsed
	return nil
}

// Scan rejects stored values outside the vocabulary.
func (s *ApplicationStatus) Scan(src interface{}) error {
	raw, err := scanText(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(raw))
}

// Value implements driver.Valuer.
func (s ApplicationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %q", string(s))
	}
	return string(s), nil
}

// Scan rejects stored values outside the vocabulary.
func (s *ApplicationStage) Scan(src interface{}) error {
	raw, err := scanText(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(raw))
}

// Value implements driver.Valuer.
func (s ApplicationStage) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %q", string(s))
	}
	return string(s), nil
}

func scanText(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}

// Application is one applicant's record and workflow state.
type Application struct {
	ID                 string            `db:"id" json:"id"`
	StudentID          string            `db:"student_id" json:"studentId"`
	Email              string            `db:"email" json:"email"`
	FullName           string            `db:"full_name" json:"fullName"`
	Phone              string            `db:"phone" json:"phone"`
	Address            string            `db:"address" json:"address"`
	GPA                float64           `db:"gpa" json:"gpa"`
	FamilyIncome       int64             `db:"family_income" json:"familyIncome"`
	Essay              string            `db:"essay" json:"essay"`
	SupportingDocument *string           `db:"supporting_document" json:"supportingDocument,omitempty"`
	Recommendation     *string           `db:"recommendation" json:"recommendation,omitempty"`
	Status             ApplicationStatus `db:"status" json:"status"`
	Stage              ApplicationStage  `db:"stage" json:"stage"`
	Note               *string           `db:"note" json:"note,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updatedAt"`
}

// ApplicationFilter paginates list queries.
type ApplicationFilter struct {
	Page  int
	Limit int
}

// Offset returns the zero-based index of the first row of the page. Pages past
// the representable range saturate at math.MaxInt and select nothing.
func (f ApplicationFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// StatusCheckResult is the public projection of an application.
type StatusCheckResult struct {
	Found     bool               `json:"found"`
	StudentID string             `json:"studentId,omitempty"`
	Name      string             `json:"name,omitempty"`
	Status    *ApplicationStatus `json:"status,omitempty"`
	Stage     *ApplicationStage  `json:"stage,omitempty"`
	Note      *string            `json:"note,omitempty"`
	CreatedAt *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}

// PublicStatus projects app without essay, income, phone or address.
func PublicStatus(app *Application) StatusCheckResult {
	if app == nil {
		return StatusCheckResult{Found: false}
	}
	status, stage := app.Status, app.Stage
	created, updated := app.CreatedAt, app.UpdatedAt
	return StatusCheckResult{
		Found:     true,
		StudentID: app.StudentID,
		Name:      app.FullName,
		Status:    &status,
		Stage:     &stage,
		Note:      app.Note,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}
