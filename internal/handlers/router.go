package handlers

import (
	"context"
	"net/http"
	"time"

	"coursecritic-backend/internal/auth"
	customMiddleware "coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RouterConfig carries everything the HTTP layer needs.
type RouterConfig struct {
	Tokens         *auth.TokenManager
	Accounts       *service.AccountService
	Reviews        *service.ReviewService
	FacultyReviews *service.FacultyReviewService
	Admin          *service.AdminService
	Catalog        *service.CatalogService
	AllowedOrigins []string
	// Ping checks the database for /health. Nil reports healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Accounts)
	userHandler := NewUserHandler(cfg.Accounts, cfg.Reviews)
	reviewHandler := NewReviewHandler(cfg.Reviews)
	facultyReviewHandler := NewFacultyReviewHandler(cfg.FacultyReviews)
	adminHandler := NewAdminHandler(cfg.Admin)
	catalogHandler := NewCatalogHandler(cfg.Catalog)

	requireAuth := customMiddleware.JWTAuth(cfg.Tokens, cfg.Accounts)
	optionalAuth := customMiddleware.OptionalJWTAuth(cfg.Tokens, cfg.Accounts)

	allowCredentials := true
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "service": "coursecritic-backend"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "coursecritic-backend"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Get("/profile", authHandler.GetProfile)
				r.Put("/profile", authHandler.UpdateProfile)
			})
		})

		// Catalog and per-target listings are public; a valid token only marks
		// the viewer's own reviews.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/courses", catalogHandler.ListCourses)
			r.Get("/courses/{id}", catalogHandler.GetCourse)
			r.Get("/faculty", catalogHandler.ListFaculties)
			r.Get("/faculty/{id}", catalogHandler.GetFaculty)
			r.Get("/reviews/{id}", reviewHandler.ListByCourse)
			r.Get("/faculty-reviews/faculty/{facultyId}", facultyReviewHandler.ListByFaculty)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/reviews", reviewHandler.Create)
			r.Get("/reviews/user/{userId}", reviewHandler.ListByUser)
			r.Put("/reviews/{id}", reviewHandler.Update)
			r.Delete("/reviews/{id}", reviewHandler.Delete)
			r.Post("/reviews/upvote/{id}", reviewHandler.Upvote)
			r.Post("/reviews/report/{id}", reviewHandler.Report)

			r.Post("/faculty-reviews", facultyReviewHandler.Create)
			r.Get("/faculty-reviews/user/{userId}/reviews", facultyReviewHandler.ListByUser)
			r.Put("/faculty-reviews/{id}", facultyReviewHandler.Update)
			r.Delete("/faculty-reviews/{id}", facultyReviewHandler.Delete)
			r.Post("/faculty-reviews/upvote/{id}", facultyReviewHandler.Upvote)
			r.Post("/faculty-reviews/report/{id}", facultyReviewHandler.Report)

			r.Get("/users/me/reviews", userHandler.MyReviews)
			r.Delete("/users/me", userHandler.DeleteMe)

			r.Route("/admin", func(r chi.Router) {
				r.Use(customMiddleware.RequireRole(models.RoleAdmin, "Admin access required"))
				r.Get("/students", adminHandler.ListStudents)
				r.Get("/faculties", adminHandler.ListFaculties)
				r.Get("/reported-course-reviews", adminHandler.ReportedCourseReviews)
				r.Get("/reported-faculty-reviews", adminHandler.ReportedFacultyReviews)
				r.Delete("/users/{userId}", adminHandler.DeleteUser)
				r.Delete("/course-reviews/{id}", adminHandler.DeleteCourseReview)
				r.Delete("/faculty-reviews/{id}", adminHandler.DeleteFacultyReview)
			})
		})
	})

	return r
}
