package domain

import "time"

// Notification is a fan-out record: one per interested role per certificate
// event. Reviewers only ever flip IsRead.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	RecipientRole  string    `json:"recipientRole" dynamodbav:"recipient_role"`
	Message        string    `json:"message" dynamodbav:"message"`
	CertificateID  string    `json:"certificateId" dynamodbav:"certificate_id"`
	IsRead         bool      `json:"isRead" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
