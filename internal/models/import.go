package models

import "fmt"

// ImportAction is the outcome of reconciling one CSV row.
type ImportAction string

const (
	ImportActionCreated ImportAction = "created"
	ImportActionUpdated ImportAction = "updated"
	ImportActionFailed  ImportAction = "failed"
)

// ImportDefaults is the numeric substitution policy applied to blank or "-" cells.
type ImportDefaults struct {
	Policy       string  `json:"policy"`
	GPA          float64 `json:"gpa"`
	FamilyIncome int64   `json:"familyIncome"`
}

// ImportRowResult records what happened to a single data row.
type ImportRowResult struct {
	Row           int          `json:"row"`
	StudentID     string       `json:"studentId,omitempty"`
	Action        ImportAction `json:"action"`
	ApplicationID string       `json:"applicationId,omitempty"`
	Error         string       `json:"error,omitempty"`
	Warnings      []string     `json:"warnings,omitempty"`
}

// ImportReport summarises a CSV reconciliation run for the operator.
type ImportReport struct {
	Success       bool              `json:"success"`
	ImportedCount int               `json:"importedCount"`
	CreatedCount  int               `json:"createdCount"`
	UpdatedCount  int               `json:"updatedCount"`
	FailedCount   int               `json:"failedCount"`
	Errors        []string          `json:"errors"`
	Warnings      []string          `json:"warnings"`
	Defaults      ImportDefaults    `json:"defaults"`
	Message       string            `json:"message"`
	ArchivedAs    string            `json:"archivedAs,omitempty"`
	Rows          []ImportRowResult `json:"rows"`
}

// Add records one row outcome.
func (r *ImportReport) Add(result ImportRowResult) {
	r.Rows = append(r.Rows, result)
	switch result.Action {
	case ImportActionCreated:
		r.CreatedCount++
	case ImportActionUpdated:
		r.UpdatedCount++
	default:
		r.FailedCount++
		r.Errors = append(r.Errors, result.Error)
	}
	r.Warnings = append(r.Warnings, result.Warnings...)
}

// Finish derives the totals and the summary sentence.
func (r *ImportReport) Finish() {
	r.ImportedCount = r.CreatedCount + r.UpdatedCount
	r.Success = r.ImportedCount > 0
	r.Message = fmt.Sprintf("Imported %d of %d rows: %d created, %d updated, %d failed",
		r.ImportedCount, len(r.Rows), r.CreatedCount, r.UpdatedCount, r.FailedCount)
	if len(r.Warnings) > 0 {
		r.Message += fmt.Sprintf("; %d warning(s) under default policy %q", len(r.Warnings), r.Defaults.Policy)
	}
}
