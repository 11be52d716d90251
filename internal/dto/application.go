package dto

import "github.com/noah-isme/beasiswa-status-api/internal/models"

// CreateApplicationRequest defines the payload for registering an application.
type CreateApplicationRequest struct {
	StudentID          string   `json:"studentId" validate:"required"`
	Email              string   `json:"email" validate:"required,email"`
	FullName           string   `json:"fullName" validate:"required"`
	Phone              string   `json:"phone" validate:"required"`
	Address            string   `json:"address" validate:"required"`
	GPA                *float64 `json:"gpa" validate:"required,gte=0"`
	FamilyIncome       *int64   `json:"familyIncome" validate:"required,gte=0"`
	Essay              string   `json:"essay" validate:"required"`
	SupportingDocument *string  `json:"supportingDocument,omitempty"`
	Recommendation     *string  `json:"recommendation,omitempty"`
	Note               *string  `json:"note,omitempty"`
}

// UpdateApplicationRequest carries a sparse update. Nil fields are left untouched;
// an empty string clears an optional reference or the note.
type UpdateApplicationRequest struct {
	Email              *string                   `json:"email,omitempty" validate:"omitnil,email"`
	FullName           *string                   `json:"fullName,omitempty" validate:"omitnil,min=1"`
	Phone              *string                   `json:"phone,omitempty" validate:"omitnil,min=1"`
	Address            *string                   `json:"address,omitempty" validate:"omitnil,min=1"`
	GPA                *float64                  `json:"gpa,omitempty" validate:"omitnil,gte=0"`
	FamilyIncome       *int64                    `json:"familyIncome,omitempty" validate:"omitnil,gte=0"`
	Essay              *string                   `json:"essay,omitempty" validate:"omitnil,min=1"`
	SupportingDocument *string                   `json:"supportingDocument,omitempty"`
	Recommendation     *string                   `json:"recommendation,omitempty"`
	Status             *models.ApplicationStatus `json:"status,omitempty"`
	Stage              *models.ApplicationStage  `json:"stage,omitempty"`
	Note               *string                   `json:"note,omitempty"`
}

// StatusCheckRequest is the public lookup payload.
type StatusCheckRequest struct {
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
}

// ListApplicationsQuery binds pagination query parameters.
type ListApplicationsQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// MessageResponse acknowledges an operation without returning a resource.
type MessageResponse struct {
	Message string `json:"message"`
}
