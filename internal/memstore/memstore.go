// Package memstore holds in-memory implementations of the service store
// interfaces. They follow the Mongo repositories' contracts (nil, nil for a
// missing document, newest-first listings, set toggles) and back the service
// and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"coursecritic-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// clock hands out strictly increasing timestamps so newest-first ordering is
// deterministic within a test.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now()
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

var sharedClock = &clock{}

type Users struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]models.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUsers() *Users {
	return &Users{users: make(map[bson.ObjectID]models.User)}
}

func (s *Users) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[bson.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			user.Password = ""
			out[id] = &user
		}
	}
	return out, nil
}

func (s *Users) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, user := range s.users {
		if user.Role == role {
			user.Password = ""
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	now := sharedClock.now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Users) UpdateProfile(ctx context.Context, user *models.User) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.users {
		if id != user.ID && existing.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	current, ok := s.users[user.ID]
	if !ok {
		return nil
	}
	current.Name = user.Name
	current.Email = user.Email
	current.Password = user.Password
	current.UpdatedAt = sharedClock.now()
	s.users[user.ID] = current
	return nil
}

func (s *Users) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

type Courses struct {
	mu      sync.RWMutex
	courses map[bson.ObjectID]models.Course
}

func NewCourses() *Courses {
	return &Courses{courses: make(map[bson.ObjectID]models.Course)}
}

// Add stores course and returns it with an id assigned.
func (s *Courses) Add(course models.Course) models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	course.ID = bson.NewObjectID()
	course.CreatedAt = sharedClock.now()
	course.UpdatedAt = course.CreatedAt
	s.courses[course.ID] = course
	return course
}

func (s *Courses) FindByID(ctx context.Context, id bson.ObjectID) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, nil
	}
	return &course, nil
}

func (s *Courses) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[bson.ObjectID]*models.Course, len(ids))
	for _, id := range ids {
		if course, ok := s.courses[id]; ok {
			out[id] = &course
		}
	}
	return out, nil
}

func (s *Courses) List(ctx context.Context, query string) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(query)
	out := []models.Course{}
	for _, course := range s.courses {
		if query == "" ||
			strings.Contains(strings.ToLower(course.Code), query) ||
			strings.Contains(strings.ToLower(course.Name), query) {
			out = append(out, course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type Faculties struct {
	mu        sync.RWMutex
	faculties map[bson.ObjectID]models.Faculty
}

func NewFaculties() *Faculties {
	return &Faculties{faculties: make(map[bson.ObjectID]models.Faculty)}
}

func (s *Faculties) Add(faculty models.Faculty) models.Faculty {
	s.mu.Lock()
	defer s.mu.Unlock()
	faculty.ID = bson.NewObjectID()
	s.faculties[faculty.ID] = faculty
	return faculty
}

func (s *Faculties) FindByID(ctx context.Context, id bson.ObjectID) (*models.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	faculty, ok := s.faculties[id]
	if !ok {
		return nil, nil
	}
	return &faculty, nil
}

func (s *Faculties) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[bson.ObjectID]*models.Faculty, len(ids))
	for _, id := range ids {
		if faculty, ok := s.faculties[id]; ok {
			out[id] = &faculty
		}
	}
	return out, nil
}

func (s *Faculties) List(ctx context.Context, query string) ([]models.Faculty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(query)
	out := []models.Faculty{}
	for _, faculty := range s.faculties {
		if query == "" ||
			strings.Contains(strings.ToLower(faculty.Initials), query) ||
			strings.Contains(strings.ToLower(faculty.Name), query) {
			out = append(out, faculty)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type RevokedTokens struct {
	mu     sync.RWMutex
	tokens map[string]models.RevokedToken
}

func NewRevokedTokens() *RevokedTokens {
	return &RevokedTokens{tokens: make(map[string]models.RevokedToken)}
}

func (s *RevokedTokens) Revoke(ctx context.Context, token *models.RevokedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.JTI]; ok {
		return nil
	}
	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()
	s.tokens[token.JTI] = *token
	return nil
}

func (s *RevokedTokens) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[jti]
	if !ok {
		return false, nil
	}
	return !token.IsExpired(), nil
}
