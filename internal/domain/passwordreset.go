package domain

// PasswordReset stores a one-shot reset token. PK: token.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PasswordReset struct {
	Token     string `json:"-" dynamodbav:"token"`
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
