package memstore

import (
	"context"
	"sort"
	"sync"

	"coursecritic-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func cloneSet(s models.IDSet) models.IDSet {
	out := make(models.IDSet, len(s))
	copy(out, s)
	return out
}

type Reviews struct {
	mu      sync.RWMutex
	reviews map[bson.ObjectID]models.Review
	// Err, when set, is returned by every call.
	Err error
}

func NewReviews() *Reviews {
	return &Reviews{reviews: make(map[bson.ObjectID]models.Review)}
}

func (s *Reviews) copyOf(r models.Review) *models.Review {
	r.UpvotedBy = cloneSet(r.UpvotedBy)
	r.Reports = cloneSet(r.Reports)
	return &r
}

func (s *Reviews) filter(keep func(*models.Review) bool) ([]models.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Review{}
	for _, r := range s.reviews {
		if keep(&r) {
			out = append(out, *s.copyOf(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Reviews) Create(ctx context.Context, review *models.Review) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := sharedClock.now()
	review.ID = bson.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.SchemaVersion = models.SchemaVersion
	if review.UpvotedBy == nil {
		review.UpvotedBy = models.IDSet{}
	}
	if review.Reports == nil {
		review.Reports = models.IDSet{}
	}
	s.reviews[review.ID] = *s.copyOf(*review)
	return nil
}

func (s *Reviews) FindByID(ctx context.Context, id bson.ObjectID) (*models.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	return s.copyOf(r), nil
}

func (s *Reviews) FindByCourse(ctx context.Context, courseID bson.ObjectID) ([]models.Review, error) {
	return s.filter(func(r *models.Review) bool { return r.CourseID == courseID })
}

func (s *Reviews) FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.Review, error) {
	return s.filter(func(r *models.Review) bool { return r.UserID == userID })
}

func (s *Reviews) FindReported(ctx context.Context) ([]models.Review, error) {
	return s.filter(func(r *models.Review) bool { return r.IsReported() })
}

func (s *Reviews) Update(ctx context.Context, review *models.Review) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reviews[review.ID]
	if !ok {
		return nil
	}
	current.RatingDifficulty = review.RatingDifficulty
	current.RatingWorkload = review.RatingWorkload
	current.RatingUsefulness = review.RatingUsefulness
	current.Comment = review.Comment
	current.Anonymous = review.Anonymous
	current.FacultyID = review.FacultyID
	current.FacultyRating = review.FacultyRating
	current.UpdatedAt = sharedClock.now()
	review.UpdatedAt = current.UpdatedAt
	s.reviews[review.ID] = current
	return nil
}

func (s *Reviews) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return false, nil
	}
	delete(s.reviews, id)
	return true, nil
}

func (s *Reviews) DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reviews {
		if r.UserID == userID {
			delete(s.reviews, id)
			n++
		}
	}
	return n, nil
}

func (s *Reviews) PullMember(ctx context.Context, userID bson.ObjectID) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reviews {
		if !r.UpvotedBy.Contains(userID) && !r.Reports.Contains(userID) {
			continue
		}
		r.UpvotedBy = r.UpvotedBy.Remove(userID)
		r.Reports = r.Reports.Remove(userID)
		s.reviews[id] = r
		n++
	}
	return n, nil
}

func (s *Reviews) toggle(id, userID bson.ObjectID, field func(*models.Review) *models.IDSet) (*models.Review, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	set := field(&r)
	*set, _ = cloneSet(*set).Toggle(userID)
	s.reviews[id] = r
	return s.copyOf(r), nil
}

func (s *Reviews) ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error) {
	return s.toggle(id, userID, func(r *models.Review) *models.IDSet { return &r.UpvotedBy })
}

func (s *Reviews) ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error) {
	return s.toggle(id, userID, func(r *models.Review) *models.IDSet { return &r.Reports })
}

func (s *Reviews) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

type FacultyReviews struct {
	mu      sync.RWMutex
	reviews map[bson.ObjectID]models.FacultyReview
	Err     error
}

func NewFacultyReviews() *FacultyReviews {
	return &FacultyReviews{reviews: make(map[bson.ObjectID]models.FacultyReview)}
}

func (s *FacultyReviews) copyOf(r models.FacultyReview) *models.FacultyReview {
	r.UpvotedBy = cloneSet(r.UpvotedBy)
	r.Reports = cloneSet(r.Reports)
	return &r
}

func (s *FacultyReviews) filter(keep func(*models.FacultyReview) bool) ([]models.FacultyReview, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.FacultyReview{}
	for _, r := range s.reviews {
		if keep(&r) {
			out = append(out, *s.copyOf(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FacultyReviews) Create(ctx context.Context, review *models.FacultyReview) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := sharedClock.now()
	review.ID = bson.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.SchemaVersion = models.SchemaVersion
	if review.UpvotedBy == nil {
		review.UpvotedBy = models.IDSet{}
	}
	if review.Reports == nil {
		review.Reports = models.IDSet{}
	}
	s.reviews[review.ID] = *s.copyOf(*review)
	return nil
}

func (s *FacultyReviews) FindByID(ctx context.Context, id bson.ObjectID) (*models.FacultyReview, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	return s.copyOf(r), nil
}

func (s *FacultyReviews) FindByFaculty(ctx context.Context, facultyID bson.ObjectID) ([]models.FacultyReview, error) {
	return s.filter(func(r *models.FacultyReview) bool { return r.FacultyID == facultyID })
}

func (s *FacultyReviews) FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.FacultyReview, error) {
	return s.filter(func(r *models.FacultyReview) bool { return r.UserID == userID })
}

func (s *FacultyReviews) FindReported(ctx context.Context) ([]models.FacultyReview, error) {
	return s.filter(func(r *models.FacultyReview) bool { return r.IsReported() })
}

func (s *FacultyReviews) Update(ctx context.Context, review *models.FacultyReview) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reviews[review.ID]
	if !ok {
		return nil
	}
	current.Rating = review.Rating
	current.Comment = review.Comment
	current.Anonymous = review.Anonymous
	current.UpdatedAt = sharedClock.now()
	review.UpdatedAt = current.UpdatedAt
	s.reviews[review.ID] = current
	return nil
}

func (s *FacultyReviews) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return false, nil
	}
	delete(s.reviews, id)
	return true, nil
}

func (s *FacultyReviews) DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reviews {
		if r.UserID == userID {
			delete(s.reviews, id)
			n++
		}
	}
	return n, nil
}

func (s *FacultyReviews) PullMember(ctx context.Context, userID bson.ObjectID) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reviews {
		if !r.UpvotedBy.Contains(userID) && !r.Reports.Contains(userID) {
			continue
		}
		r.UpvotedBy = r.UpvotedBy.Remove(userID)
		r.Reports = r.Reports.Remove(userID)
		s.reviews[id] = r
		n++
	}
	return n, nil
}

func (s *FacultyReviews) toggle(id, userID bson.ObjectID, field func(*models.FacultyReview) *models.IDSet) (*models.FacultyReview, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	set := field(&r)
	*set, _ = cloneSet(*set).Toggle(userID)
	s.reviews[id] = r
	return s.copyOf(r), nil
}

func (s *FacultyReviews) ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error) {
	return s.toggle(id, userID, func(r *models.FacultyReview) *models.IDSet { return &r.UpvotedBy })
}

func (s *FacultyReviews) ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error) {
	return s.toggle(id, userID, func(r *models.FacultyReview) *models.IDSet { return &r.Reports })
}

func (s *FacultyReviews) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}
