package domain

import "time"

// Certificate statuses. A certificate belongs to the uploading student until
// a reviewer transitions its status.
const (
	CertStatusPending  = "pending"
	CertStatusApproved = "approved"
	CertStatusRejected = "rejected"
)

// ValidCertStatus reports whether s is a known certificate status.
func ValidCertStatus(s string) bool {
	return s == CertStatusPending || s == CertStatusApproved || s == CertStatusRejected
}

type Certificate struct {
	CertificateID string    `json:"id" dynamodbav:"certificate_id"`
	StudentID     string    `json:"studentId" dynamodbav:"student_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	// Object is the S3 key of the stored blob; FileURL is a presigned or
	// public URL derived from it for clients.
	Object     string    `json:"-" dynamodbav:"object"`
	FileURL    string    `json:"fileUrl" dynamodbav:"file_url"`
	Status     string    `json:"status" dynamodbav:"status"`
	UploadedAt time.Time `json:"uploadedAt" dynamodbav:"uploaded_at"`
}
