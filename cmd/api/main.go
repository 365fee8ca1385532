package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deptboard-api/internal/config"
	"github.com/deptboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/deptboard-api/internal/infrastructure/jwt"
	s3infra "github.com/deptboard-api/internal/infrastructure/s3"
	"github.com/deptboard-api/internal/infrastructure/sheets"
	"github.com/deptboard-api/internal/infrastructure/smtp"
	"github.com/deptboard-api/internal/infrastructure/sns"
	transporthttp "github.com/deptboard-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for certificate blobs.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for password-reset links.
	mailer := smtp.NewMailer(cfg)

	// SNS event publisher (optional — graceful fallback).
	events, err := sns.NewPublisher(cfg)
	if err != nil {
		log.Printf("WARN: SNS publisher not available: %v", err)
		events = sns.NopPublisher{}
	}

	deps := &transporthttp.Deps{
		StudentRepo:       dynamo.NewStudentRepo(dynamoClient, cfg.DynamoTables.Students, cfg.DynamoTables.NaturalKeys),
		FacultyRepo:       dynamo.NewFacultyRepo(dynamoClient, cfg.DynamoTables.Faculty, cfg.DynamoTables.NaturalKeys),
		UserRepo:          dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.NaturalKeys),
		SubjectRepo:       dynamo.NewSubjectRepo(dynamoClient, cfg.DynamoTables.Subjects, cfg.DynamoTables.NaturalKeys),
		CertificateRepo:   dynamo.NewCertificateRepo(dynamoClient, cfg.DynamoTables.Certificates),
		NotificationRepo:  dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		PasswordResetRepo: dynamo.NewPasswordResetRepo(dynamoClient, cfg.DynamoTables.PasswordResets),
		S3Store:           s3Store,
		SheetsClient:      sheets.NewClient(cfg.SheetsBaseURL),
		Mailer:            mailer,
		Events:            events,
		JWTProvider:       jwtProvider,
		Logger:            logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
