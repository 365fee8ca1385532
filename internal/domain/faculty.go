package domain

import "time"

// Faculty mirrors Student structurally: fixed core columns plus dynamic
// extra fields. The natural key is the email address.
type Faculty struct {
	FacultyID   string            `json:"id" dynamodbav:"faculty_id"`
	Name        string            `json:"name" dynamodbav:"name"`
	Email       string            `json:"email" dynamodbav:"email"`
	Department  string            `json:"department" dynamodbav:"department"`
	Year        string            `json:"year" dynamodbav:"year"`
	ExtraFields map[string]string `json:"extraFields" dynamodbav:"extra_fields"`
	CreatedAt   time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time         `json:"updated" dynamodbav:"updated_at"`
}

var FacultyCoreFields = []string{"name", "email", "department", "year"}

type CreateFacultyRequest struct {
	Name        string            `json:"name" validate:"required"`
	Email       string            `json:"email" validate:"required,email"`
	Department  string            `json:"department" validate:"required"`
	Year        string            `json:"year" validate:"required"`
	ExtraFields map[string]string `json:"extraFields"`
}

type UpdateFacultyRequest struct {
	Name        *string           `json:"name"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	Department  *string           `json:"department"`
	Year        *string           `json:"year"`
	ExtraFields map[string]string `json:"extraFields"`
}
