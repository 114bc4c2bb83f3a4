package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/memstore"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/notify"
	"coursecritic-backend/internal/ratelimit"
	"coursecritic-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type testServer struct {
	handler        http.Handler
	users          *memstore.Users
	reviews        *memstore.Reviews
	facultyReviews *memstore.FacultyReviews
	tokens         *auth.TokenManager
	course         models.Course
	faculty        models.Faculty
	pingErr        error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		users:          memstore.NewUsers(),
		reviews:        memstore.NewReviews(),
		facultyReviews: memstore.NewFacultyReviews(),
		tokens:         auth.NewTokenManager("handler-secret", time.Hour),
	}
	courses := memstore.NewCourses()
	faculties := memstore.NewFaculties()
	s.course = courses.Add(models.Course{Code: "CSE220", Name: "Data Structures", Department: "CSE"})
	s.faculty = faculties.Add(models.Faculty{Initials: "XYZ", Name: "Prof. Xavier Young", Department: "CSE"})

	notifier := notify.NewLogNotifier()
	reviewSvc := service.NewReviewService(s.reviews, s.users, courses, faculties, notifier)
	facultyReviewSvc := service.NewFacultyReviewService(s.facultyReviews, s.users, faculties, notifier)

	s.handler = NewRouter(RouterConfig{
		Tokens:         s.tokens,
		Accounts:       service.NewAccountService(s.users, memstore.NewRevokedTokens(), s.reviews, s.facultyReviews, s.tokens, ratelimit.New(nil, 5, 15*time.Minute)),
		Reviews:        reviewSvc,
		FacultyReviews: facultyReviewSvc,
		Admin:          service.NewAdminService(s.users, s.reviews, s.facultyReviews, reviewSvc, facultyReviewSvc),
		Catalog:        service.NewCatalogService(courses, faculties, reviewSvc, facultyReviewSvc),
		AllowedOrigins: []string{"*"},
		Ping:           func(ctx context.Context) error { return s.pingErr },
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// account creates a user with role and returns a bearer token for them.
func (s *testServer) account(t *testing.T, name string, role models.Role) (string, bson.ObjectID) {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, s.users.Create(context.Background(), user))
	token, _, err := s.tokens.Issue(user.ID, role)
	require.NoError(t, err)
	return token, user.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, rec, &body)
	msg, _ := body["message"].(string)
	return msg
}

func (s *testServer) createReview(t *testing.T, token string, anonymous bool) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"course":           s.course.ID.Hex(),
		"ratingDifficulty": 4,
		"ratingWorkload":   5,
		"ratingUsefulness": 5,
		"comment":          "Hard but worth it",
		"anonymous":        anonymous,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view map[string]interface{}
	decode(t, rec, &view)
	return view["_id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	s.pingErr = errors.New("no primary")
	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session struct {
		Token  string                 `json:"token"`
		UserID string                 `json:"userId"`
		User   map[string]interface{} `json:"user"`
	}
	decode(t, rec, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "student", session.User["role"])
	assert.NotContains(t, session.User, "password")

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &session)

	rec = s.do(t, http.MethodGet, "/api/auth/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sam@example.com")

	rec = s.do(t, http.MethodPost, "/api/auth/logout", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/profile", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"email": "nobody@example.com", "password": "wrongpass"}

	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.account(t, "sam", models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", message(t, rec))
}

func TestCreateReview(t *testing.T) {
	s := newTestServer(t)
	student, _ := s.account(t, "sam", models.RoleStudent)
	faculty, _ := s.account(t, "fay", models.RoleFaculty)

	rec := s.do(t, http.MethodPost, "/api/reviews", "", map[string]interface{}{"course": s.course.ID.Hex()})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/reviews", faculty, map[string]interface{}{
		"course": s.course.ID.Hex(), "ratingDifficulty": 3, "ratingWorkload": 3, "ratingUsefulness": 3,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/reviews", student, map[string]interface{}{
		"course": s.course.ID.Hex(), "ratingWorkload": 3, "ratingUsefulness": 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ratingDifficulty is required", message(t, rec))
	assert.Equal(t, 0, s.reviews.Len())

	rec = s.do(t, http.MethodPost, "/api/reviews", student, map[string]interface{}{
		"course": bson.NewObjectID().Hex(), "ratingDifficulty": 3, "ratingWorkload": 3, "ratingUsefulness": 3,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.createReview(t, student, false)
	assert.Equal(t, 1, s.reviews.Len())
}

func TestListReviewsHidesAnonymousAuthor(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.account(t, "sam", models.RoleStudent)
	s.createReview(t, author, true)

	rec := s.do(t, http.MethodGet, "/api/reviews/"+s.course.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sam")
	var views []map[string]interface{}
	decode(t, rec, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Anonymous", views[0]["userName"])
	assert.Equal(t, false, views[0]["isOwner"])

	rec = s.do(t, http.MethodGet, "/api/reviews/"+s.course.ID.Hex(), author, nil)
	decode(t, rec, &views)
	assert.Equal(t, true, views[0]["isOwner"])

	rec = s.do(t, http.MethodGet, "/api/reviews/not-an-id", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpvoteAndReportToggle(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.account(t, "sam", models.RoleStudent)
	voter, voterID := s.account(t, "kim", models.RoleStudent)
	id := s.createReview(t, author, false)

	var up struct {
		Upvotes   int      `json:"upvotes"`
		UpvotedBy []string `json:"upvotedBy"`
		Upvoted   bool     `json:"upvoted"`
	}
	rec := s.do(t, http.MethodPost, "/api/reviews/upvote/"+id, voter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &up)
	assert.Equal(t, 1, up.Upvotes)
	assert.Equal(t, []string{voterID.Hex()}, up.UpvotedBy)

	rec = s.do(t, http.MethodPost, "/api/reviews/upvote/"+id, voter, nil)
	decode(t, rec, &up)
	assert.Equal(t, 0, up.Upvotes)
	assert.Equal(t, []string{}, up.UpvotedBy)

	var rep struct {
		Message  string   `json:"message"`
		Reports  []string `json:"reports"`
		Reported bool     `json:"reported"`
	}
	rec = s.do(t, http.MethodPost, "/api/reviews/report/"+id, voter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rep)
	assert.Equal(t, "Reported", rep.Message)
	assert.True(t, rep.Reported)

	rec = s.do(t, http.MethodPost, "/api/reviews/report/"+id, voter, nil)
	decode(t, rec, &rep)
	assert.Equal(t, "Report removed", rep.Message)
	assert.Empty(t, rep.Reports)

	rec = s.do(t, http.MethodPost, "/api/reviews/upvote/"+bson.NewObjectID().Hex(), voter, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnerOnlyEditAndDelete(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.account(t, "sam", models.RoleStudent)
	other, _ := s.account(t, "kim", models.RoleStudent)
	id := s.createReview(t, author, false)

	rec := s.do(t, http.MethodPut, "/api/reviews/"+id, other, map[string]interface{}{"comment": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/reviews/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/reviews/"+id, author, map[string]interface{}{"ratingWorkload": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/reviews/"+id, author, map[string]interface{}{"comment": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edited")

	rec = s.do(t, http.MethodDelete, "/api/reviews/"+id, author, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.reviews.Len())
}

func TestListByUserIsBoundToCaller(t *testing.T) {
	s := newTestServer(t)
	sam, samID := s.account(t, "sam", models.RoleStudent)
	_, kimID := s.account(t, "kim", models.RoleStudent)
	s.createReview(t, sam, true)

	rec := s.do(t, http.MethodGet, "/api/reviews/user/"+samID.Hex(), sam, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var views []map[string]interface{}
	decode(t, rec, &views)
	assert.Len(t, views, 1)

	rec = s.do(t, http.MethodGet, "/api/reviews/user/"+kimID.Hex(), sam, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/me/reviews", sam, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &views)
	assert.Len(t, views, 1)

	rec = s.do(t, http.MethodGet, "/api/faculty-reviews/user/"+kimID.Hex()+"/reviews", sam, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFacultyReviewRoutes(t *testing.T) {
	s := newTestServer(t)
	student, _ := s.account(t, "sam", models.RoleStudent)
	faculty, _ := s.account(t, "fay", models.RoleFaculty)
	body := map[string]interface{}{"faculty": s.faculty.ID.Hex(), "rating": 5, "comment": "Inspiring"}

	rec := s.do(t, http.MethodPost, "/api/faculty-reviews", faculty, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, s.facultyReviews.Len())

	rec = s.do(t, http.MethodPost, "/api/faculty-reviews", student, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view map[string]interface{}
	decode(t, rec, &view)
	id := view["_id"].(string)

	rec = s.do(t, http.MethodGet, "/api/faculty-reviews/faculty/"+s.faculty.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inspiring")

	rec = s.do(t, http.MethodPost, "/api/faculty-reviews/upvote/"+id, faculty, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/faculty-reviews/"+id, faculty, map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/faculty-reviews/"+id, student, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.account(t, "ada", models.RoleAdmin)
	student, studentID := s.account(t, "sam", models.RoleStudent)
	reporter, _ := s.account(t, "kim", models.RoleStudent)

	rec := s.do(t, http.MethodGet, "/api/admin/students", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", message(t, rec))
	rec = s.do(t, http.MethodGet, "/api/admin/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/students", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	var students []map[string]interface{}
	decode(t, rec, &students)
	assert.Len(t, students, 2)

	reported := s.createReview(t, student, true)
	s.createReview(t, student, false)
	rec = s.do(t, http.MethodPost, "/api/reviews/report/"+reported, reporter, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/reported-course-reviews", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var queue []map[string]interface{}
	decode(t, rec, &queue)
	require.Len(t, queue, 1)
	assert.Equal(t, reported, queue[0]["_id"])
	assert.Contains(t, rec.Body.String(), "sam@example.com")

	rec = s.do(t, http.MethodGet, "/api/admin/reported-faculty-reviews", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/admin/course-reviews/"+reported, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/admin/course-reviews/"+reported, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/admin/users/"+studentID.Hex(), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Message               string `json:"message"`
		DeletedCourseReviews  int64  `json:"deletedCourseReviews"`
		DeletedFacultyReviews int64  `json:"deletedFacultyReviews"`
	}
	decode(t, rec, &result)
	assert.Equal(t, int64(1), result.DeletedCourseReviews)
	assert.Equal(t, 0, s.reviews.Len())

	rec = s.do(t, http.MethodDelete, "/api/admin/users/"+studentID.Hex(), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.account(t, "ada", models.RoleAdmin)
	student, studentID := s.account(t, "sam", models.RoleStudent)

	rec := s.do(t, http.MethodDelete, "/api/admin/users/"+studentID.Hex(), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/reviews", student, map[string]interface{}{
		"course": s.course.ID.Hex(), "ratingDifficulty": 3, "ratingWorkload": 3, "ratingUsefulness": 3,
		"comment": "still here?",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User no longer exists", message(t, rec))
	assert.Equal(t, 0, s.reviews.Len())

	rec = s.do(t, http.MethodGet, "/api/auth/profile", student, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Public listings still answer, just without marking ownership.
	rec = s.do(t, http.MethodGet, "/api/reviews/"+s.course.ID.Hex(), student, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleComesFromStoredUser(t *testing.T) {
	s := newTestServer(t)
	_, id := s.account(t, "sam", models.RoleStudent)
	forged, _, err := s.tokens.Issue(id, models.RoleAdmin)
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/admin/students", forged, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteOwnAccount(t *testing.T) {
	s := newTestServer(t)
	token, id := s.account(t, "sam", models.RoleStudent)
	s.createReview(t, token, false)

	rec := s.do(t, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user, err := s.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, 0, s.reviews.Len())

	rec = s.do(t, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/courses?q=data", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSE220")

	rec = s.do(t, http.MethodGet, "/api/courses/"+s.course.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reviews":[]`)

	rec = s.do(t, http.MethodGet, "/api/faculty", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XYZ")

	rec = s.do(t, http.MethodGet, "/api/faculty/"+bson.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
