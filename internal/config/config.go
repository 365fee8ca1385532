package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSTopicARN string
	SNSRegion   string

	// SheetsBaseURL is the host serving the public gviz endpoint.
	// Overridden in tests; defaults to docs.google.com.
	SheetsBaseURL string
	FrontendURL   string

	MaxUploadBytes int64
	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Students       string
	Faculty        string
	Users          string
	Subjects       string
	Certificates   string
	Notifications  string
	PasswordResets string
	NaturalKeys    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Students:       getEnv("DYNAMO_TABLE_STUDENTS", "students"),
			Faculty:        getEnv("DYNAMO_TABLE_FACULTY", "faculty"),
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			Subjects:       getEnv("DYNAMO_TABLE_SUBJECTS", "subjects"),
			Certificates:   getEnv("DYNAMO_TABLE_CERTIFICATES", "certificates"),
			Notifications:  getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			PasswordResets: getEnv("DYNAMO_TABLE_PASSWORD_RESETS", "password_resets"),
			NaturalKeys:    getEnv("DYNAMO_TABLE_NATURAL_KEYS", "natural_keys"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "deptboard-certificates"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@deptboard.example"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSTopicARN: getEnv("SNS_TOPIC_ARN", ""),
		SNSRegion:   getEnv("SNS_REGION", "us-east-1"),

		SheetsBaseURL: getEnv("SHEETS_BASE_URL", "https://docs.google.com"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 5)) << 20,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
