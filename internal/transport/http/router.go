package http

import (
	"log/slog"
	"net/http"

	"github.com/deptboard-api/internal/application/auth"
	"github.com/deptboard-api/internal/application/certificate"
	"github.com/deptboard-api/internal/application/chat"
	"github.com/deptboard-api/internal/application/faculty"
	"github.com/deptboard-api/internal/application/importer"
	"github.com/deptboard-api/internal/application/notification"
	"github.com/deptboard-api/internal/application/student"
	"github.com/deptboard-api/internal/application/subject"
	"github.com/deptboard-api/internal/config"
	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/deptboard-api/internal/infrastructure/jwt"
	s3infra "github.com/deptboard-api/internal/infrastructure/s3"
	"github.com/deptboard-api/internal/infrastructure/sheets"
	"github.com/deptboard-api/internal/infrastructure/smtp"
	"github.com/deptboard-api/internal/infrastructure/sns"
	"github.com/deptboard-api/internal/transport/http/handler"
	appmiddleware "github.com/deptboard-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	StudentRepo       *dynamo.StudentRepo
	FacultyRepo       *dynamo.FacultyRepo
	UserRepo          *dynamo.UserRepo
	SubjectRepo       *dynamo.SubjectRepo
	CertificateRepo   *dynamo.CertificateRepo
	NotificationRepo  *dynamo.NotificationRepo
	PasswordResetRepo *dynamo.PasswordResetRepo
	S3Store           *s3infra.Store
	SheetsClient      *sheets.Client
	Mailer            smtp.Mailer
	Events            sns.EventPublisher
	JWTProvider       *jwtinfra.Provider
	Logger            *slog.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	studentSvc := student.NewService(deps.StudentRepo)
	facultySvc := faculty.NewService(deps.FacultyRepo)
	importSvc := importer.NewService(deps.SheetsClient, deps.StudentRepo, deps.Logger)
	authSvc := auth.NewService(deps.UserRepo, deps.PasswordResetRepo, deps.JWTProvider, deps.Mailer, cfg.FrontendURL, deps.Logger)
	notifSvc := notification.NewService(deps.NotificationRepo)
	certSvc := certificate.NewService(deps.CertificateRepo, deps.S3Store, notifSvc, deps.Events, deps.Logger)
	subjectSvc := subject.NewService(deps.SubjectRepo)
	chatSvc := chat.NewService(deps.StudentRepo, deps.FacultyRepo, deps.CertificateRepo, deps.SubjectRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	studentH := handler.NewStudentHandler(studentSvc, importSvc)
	facultyH := handler.NewFacultyHandler(facultySvc)
	certH := handler.NewCertificateHandler(certSvc, cfg.MaxUploadBytes)
	subjectH := handler.NewSubjectHandler(subjectSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	chatH := handler.NewChatHandler(chatSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
	r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
	r.With(sensitiveRL.Limit).Post("/auth/forgot-password", authH.ForgotPassword)
	r.With(sensitiveRL.Limit).Post("/auth/reset-password/{token}", authH.ResetPassword)
	r.Get("/subjects", subjectH.List)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/students", studentH.List)
		r.Get("/students/roll/{rollNo}", studentH.GetByRollNo)
		r.Post("/students", studentH.Create)
		r.Put("/students/{id}", studentH.Update)
		r.Delete("/students/{id}", studentH.Delete)
		r.Delete("/students/column/{columnName}", studentH.DeleteColumn)
		r.Put("/students/column/default/{columnName}", studentH.ClearDefaultColumn)
		r.Post("/students/import", studentH.Import)

		r.Get("/faculty", facultyH.List)
		r.Post("/faculty", facultyH.Create)
		r.Put("/faculty/{id}", facultyH.Update)
		r.Delete("/faculty/{id}", facultyH.Delete)
		r.Delete("/faculty/column/{columnName}", facultyH.DeleteColumn)
		r.Put("/faculty/column/default/{columnName}", facultyH.ClearDefaultColumn)

		r.Post("/subjects", subjectH.Create)
		r.Put("/subjects/{id}/material", subjectH.AttachMaterial)
		r.Delete("/subjects/{id}", subjectH.Delete)

		r.Post("/certificates/upload", certH.Upload)
		r.Get("/certificates/my", certH.ListMine)
		r.Delete("/certificates/{id}", certH.Delete)

		r.Get("/notifications/my", notifH.ListMine)
		r.Put("/notifications/{id}/read", notifH.MarkAsRead)

		r.Post("/chat", chatH.Message)

		// Reviewer-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.ReviewerRoles...))

			r.Get("/certificates/admin/all", certH.ListReviewQueue)
			r.Patch("/certificates/admin/{id}/status", certH.SetStatus)
		})
	})

	return r
}
