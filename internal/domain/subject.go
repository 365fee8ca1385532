package domain

import "time"

// Subject is keyed by subject code; MaterialLink is empty until a material
// is attached.
type Subject struct {
	SubjectID    string    `json:"id" dynamodbav:"subject_id"`
	SubjectName  string    `json:"subjectName" dynamodbav:"subject_name"`
	SubjectCode  string    `json:"subjectCode" dynamodbav:"subject_code"`
	Department   string    `json:"department" dynamodbav:"department"`
	Year         string    `json:"year" dynamodbav:"year"`
	MaterialLink string    `json:"materialLink" dynamodbav:"material_link"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateSubjectRequest struct {
	SubjectName string `json:"subjectName" validate:"required"`
	SubjectCode string `json:"subjectCode" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Year        string `json:"year" validate:"required"`
}
