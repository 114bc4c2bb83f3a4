// Command seed loads the course and faculty catalog, optionally creates an
// admin account and migrates legacy review documents.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/config"
	"coursecritic-backend/internal/database"
	"coursecritic-backend/internal/logger"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/repository"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type catalog struct {
	Courses   []models.Course  `json:"courses"`
	Faculties []models.Faculty `json:"faculties"`
}

func main() {
	catalogPath := flag.String("catalog", "data/catalog.json", "catalog JSON file; empty to skip")
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "create an admin account with this email")
	adminName := flag.String("admin-name", "Administrator", "display name of the admin account")
	migrate := flag.Bool("migrate", false, "rewrite legacy review documents to the current schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.Env)

	if err := database.Connect(cfg.Mongo.URI, cfg.Mongo.DBName); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	defer database.Disconnect(context.Background())

	if *catalogPath != "" {
		if err := seedCatalog(ctx, *catalogPath); err != nil {
			log.Fatal().Err(err).Str("file", *catalogPath).Msg("failed to seed catalog")
		}
	}

	if *adminEmail != "" {
		if err := ensureAdmin(ctx, *adminName, *adminEmail, os.Getenv("ADMIN_PASSWORD")); err != nil {
			log.Fatal().Err(err).Msg("failed to create admin account")
		}
	}

	if *migrate {
		if err := migrateReviews(ctx); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
}

func seedCatalog(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}
	var data catalog
	if err := json.Unmarshal(raw, &data); err != nil {
		return errors.Wrap(err, "parse catalog")
	}

	courses := repository.NewCourseRepo()
	if err := courses.EnsureIndexes(ctx); err != nil {
		return err
	}
	for i := range data.Courses {
		course := &data.Courses[i]
		course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
		if course.Code == "" {
			continue
		}
		if err := courses.UpsertByCode(ctx, course); err != nil {
			return err
		}
	}

	faculties := repository.NewFacultyRepo()
	if err := faculties.EnsureIndexes(ctx); err != nil {
		return err
	}
	for i := range data.Faculties {
		faculty := &data.Faculties[i]
		faculty.Initials = strings.ToUpper(strings.TrimSpace(faculty.Initials))
		if faculty.Initials == "" {
			continue
		}
		if err := faculties.UpsertByInitials(ctx, faculty); err != nil {
			return err
		}
	}

	log.Info().
		Int("courses", len(data.Courses)).
		Int("faculties", len(data.Faculties)).
		Msg("catalog seeded")
	return nil
}

func ensureAdmin(ctx context.Context, name, email, password string) error {
	if len(password) < 6 {
		return errors.New("ADMIN_PASSWORD must be at least 6 characters")
	}
	users := repository.NewUserRepo()
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info().Str("email", existing.Email).Str("role", string(existing.Role)).Msg("account already exists, leaving it unchanged")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Str("user_id", admin.ID.Hex()).Msg("admin account created")
	return nil
}

func migrateReviews(ctx context.Context) error {
	reviews, err := repository.NewReviewRepo().MigrateLegacy(ctx)
	if err != nil {
		return err
	}
	facultyReviews, err := repository.NewFacultyReviewRepo().MigrateLegacy(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int64("reviews", reviews).
		Int64("faculty_reviews", facultyReviews).
		Msg("legacy reviews migrated")
	return nil
}
