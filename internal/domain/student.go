package domain

import "time"

// Student is a roster record: a fixed core schema plus an open map of
// user-defined extra columns. ExtraFields is always non-nil so DynamoDB
// stores it as a map attribute and per-key updates never hit a missing
// parent path.
type Student struct {
	StudentID   string            `json:"id" dynamodbav:"student_id"`
	Name        string            `json:"name" dynamodbav:"name"`
	RollNo      string            `json:"rollNo" dynamodbav:"roll_no"`
	Department  string            `json:"department" dynamodbav:"department"`
	Year        string            `json:"year" dynamodbav:"year"`
	PhoneNo     string            `json:"phoneNo" dynamodbav:"phone_no"`
	Email       string            `json:"email" dynamodbav:"email"`
	ExtraFields map[string]string `json:"extraFields" dynamodbav:"extra_fields"`
	CreatedAt   time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// StudentCoreFields lists the fixed columns, in display order. Column
// lifecycle operations use it to decide between clearing a core column and
// removing a dynamic one.
var StudentCoreFields = []string{"name", "rollNo", "department", "year", "phoneNo", "email"}

type CreateStudentRequest struct {
	Name        string            `json:"name" validate:"required"`
	RollNo      string            `json:"rollNo" validate:"required"`
	Department  string            `json:"department" validate:"required"`
	Year        string            `json:"year" validate:"required"`
	PhoneNo     string            `json:"phoneNo"`
	Email       string            `json:"email" validate:"required,email"`
	ExtraFields map[string]string `json:"extraFields"`
}

// UpdateStudentRequest carries a partial update: nil core fields are left
// untouched, ExtraFields entries are merged key-by-key into the stored map.
type UpdateStudentRequest struct {
	Name        *string           `json:"name"`
	RollNo      *string           `json:"rollNo"`
	Department  *string           `json:"department"`
	Year        *string           `json:"year"`
	PhoneNo     *string           `json:"phoneNo"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	ExtraFields map[string]string `json:"extraFields"`
}
