package service

import (
	"context"
	"testing"
	"time"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/memstore"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/ratelimit"

	"github.com/stretchr/testify/require"
)

var (
	_ UserStore          = (*memstore.Users)(nil)
	_ CourseStore        = (*memstore.Courses)(nil)
	_ FacultyStore       = (*memstore.Faculties)(nil)
	_ ReviewStore        = (*memstore.Reviews)(nil)
	_ FacultyReviewStore = (*memstore.FacultyReviews)(nil)
	_ RevokedTokenStore  = (*memstore.RevokedTokens)(nil)
)

// recordingNotifier captures published messages.
type recordingNotifier struct {
	messages chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: make(chan string, 16)}
}

func (n *recordingNotifier) Publish(ctx context.Context, message string) error {
	n.messages <- message
	return nil
}

type fixture struct {
	users          *memstore.Users
	courses        *memstore.Courses
	faculties      *memstore.Faculties
	reviews        *memstore.Reviews
	facultyReviews *memstore.FacultyReviews
	revoked        *memstore.RevokedTokens
	notifier       *recordingNotifier
	tokens         *auth.TokenManager

	reviewSvc        *ReviewService
	facultyReviewSvc *FacultyReviewService
	adminSvc         *AdminService
	accountSvc       *AccountService
	catalogSvc       *CatalogService

	course  models.Course
	faculty models.Faculty
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:          memstore.NewUsers(),
		courses:        memstore.NewCourses(),
		faculties:      memstore.NewFaculties(),
		reviews:        memstore.NewReviews(),
		facultyReviews: memstore.NewFacultyReviews(),
		revoked:        memstore.NewRevokedTokens(),
		notifier:       newRecordingNotifier(),
		tokens:         auth.NewTokenManager("test-secret", time.Hour),
	}
	f.reviewSvc = NewReviewService(f.reviews, f.users, f.courses, f.faculties, f.notifier)
	f.facultyReviewSvc = NewFacultyReviewService(f.facultyReviews, f.users, f.faculties, f.notifier)
	f.adminSvc = NewAdminService(f.users, f.reviews, f.facultyReviews, f.reviewSvc, f.facultyReviewSvc)
	f.accountSvc = NewAccountService(f.users, f.revoked, f.reviews, f.facultyReviews, f.tokens, ratelimit.New(nil, 3, time.Minute))
	f.catalogSvc = NewCatalogService(f.courses, f.faculties, f.reviewSvc, f.facultyReviewSvc)

	f.course = f.courses.Add(models.Course{Code: "CSE110", Name: "Programming Language I", Department: "CSE"})
	f.faculty = f.faculties.Add(models.Faculty{Initials: "ABC", Name: "Dr. Alice Brown", Department: "CSE"})
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role models.Role) *Caller {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	return &Caller{ID: user.ID, Role: role}
}

func (f *fixture) addReview(t *testing.T, caller *Caller, comment string, anonymous bool) *models.ReviewView {
	t.Helper()
	view, err := f.reviewSvc.Create(context.Background(), caller, CreateReviewInput{
		CourseID:         f.course.ID.Hex(),
		RatingDifficulty: 3,
		RatingWorkload:   4,
		RatingUsefulness: 5,
		Comment:          comment,
		Anonymous:        anonymous,
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) addFacultyReview(t *testing.T, caller *Caller, comment string, anonymous bool) *models.FacultyReviewView {
	t.Helper()
	view, err := f.facultyReviewSvc.Create(context.Background(), caller, CreateFacultyReviewInput{
		FacultyID: f.faculty.ID.Hex(),
		Rating:    4,
		Comment:   comment,
		Anonymous: anonymous,
	})
	require.NoError(t, err)
	return view
}

func requireType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, apperrors.TypeOf(err), err.Error())
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
