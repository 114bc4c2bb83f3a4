package service

import (
	"context"

	"coursecritic-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The store interfaces are satisfied by the Mongo repositories in
// internal/repository and by the in-memory stores in internal/memstore.

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Course, error)
	List(ctx context.Context, query string) ([]models.Course, error)
}

type FacultyStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Faculty, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Faculty, error)
	List(ctx context.Context, query string) ([]models.Faculty, error)
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Review, error)
	FindByCourse(ctx context.Context, courseID bson.ObjectID) ([]models.Review, error)
	FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.Review, error)
	FindReported(ctx context.Context) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
	PullMember(ctx context.Context, userID bson.ObjectID) (int64, error)
	ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error)
	ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error)
}

type FacultyReviewStore interface {
	Create(ctx context.Context, review *models.FacultyReview) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.FacultyReview, error)
	FindByFaculty(ctx context.Context, facultyID bson.ObjectID) ([]models.FacultyReview, error)
	FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.FacultyReview, error)
	FindReported(ctx context.Context) ([]models.FacultyReview, error)
	Update(ctx context.Context, review *models.FacultyReview) error
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
	PullMember(ctx context.Context, userID bson.ObjectID) (int64, error)
	ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error)
	ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error)
}

type RevokedTokenStore interface {
	Revoke(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
