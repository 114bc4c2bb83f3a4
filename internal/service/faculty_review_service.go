package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/notify"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FacultyReviewService mirrors ReviewService for reviews of faculty members,
// which carry a single rating.
type FacultyReviewService struct {
	reviews   FacultyReviewStore
	users     UserStore
	faculties FacultyStore
	notifier  notify.Notifier
}

func NewFacultyReviewService(reviews FacultyReviewStore, users UserStore, faculties FacultyStore, notifier notify.Notifier) *FacultyReviewService {
	return &FacultyReviewService{
		reviews:   reviews,
		users:     users,
		faculties: faculties,
		notifier:  notifier,
	}
}

type CreateFacultyReviewInput struct {
	FacultyID string `json:"faculty" validate:"required,mongodb"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
	Anonymous bool   `json:"anonymous"`
}

type UpdateFacultyReviewInput struct {
	Rating    *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment   *string `json:"comment"`
	Anonymous *bool   `json:"anonymous"`
}

func (s *FacultyReviewService) Create(ctx context.Context, caller *Caller, in CreateFacultyReviewInput) (*models.FacultyReviewView, error) {
	if err := caller.requireRole(models.RoleStudent, "Only students can review faculty"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	facultyID, _ := bson.ObjectIDFromHex(in.FacultyID)
	faculty, err := s.faculties.FindByID(ctx, facultyID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to submit review", err)
	}
	if faculty == nil {
		return nil, apperrors.NewNotFoundError("Faculty not found")
	}

	review := &models.FacultyReview{
		FacultyID: facultyID,
		UserID:    caller.ID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Anonymous: in.Anonymous,
		UpvotedBy: models.IDSet{},
		Reports:   models.IDSet{},
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, apperrors.NewInternalError("Failed to submit review", err)
	}
	return s.resolveOne(ctx, review, caller)
}

func (s *FacultyReviewService) ListByFaculty(ctx context.Context, facultyHex string, viewer *Caller) ([]models.FacultyReviewView, error) {
	facultyID, err := parseID(facultyHex, "Faculty")
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByFaculty(ctx, facultyID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}
	return s.resolve(ctx, reviews, viewer, publicView)
}

func (s *FacultyReviewService) ListByUser(ctx context.Context, caller *Caller, requestedUser string) ([]models.FacultyReviewView, error) {
	if err := requireOwnListing(caller, requestedUser); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByUser(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load faculty reviews", err)
	}
	return s.resolve(ctx, reviews, caller, publicView)
}

func (s *FacultyReviewService) Update(ctx context.Context, caller *Caller, reviewHex string, in UpdateFacultyReviewInput) (*models.FacultyReviewView, error) {
	review, err := s.owned(ctx, caller, reviewHex, "You can only edit your own reviews")
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Comment != nil {
		comment := strings.TrimSpace(*in.Comment)
		if utf8.RuneCountInString(comment) > maxCommentLength {
			return nil, apperrors.NewValidationError(fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
		}
		review.Comment = comment
	}
	if in.Anonymous != nil {
		review.Anonymous = *in.Anonymous
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, apperrors.NewInternalError("Failed to update review", err)
	}
	return s.resolveOne(ctx, review, caller)
}

func (s *FacultyReviewService) Delete(ctx context.Context, caller *Caller, reviewHex string) error {
	review, err := s.owned(ctx, caller, reviewHex, "You can only delete your own reviews")
	if err != nil {
		return err
	}
	deleted, err := s.reviews.Delete(ctx, review.ID)
	if err != nil {
		return apperrors.NewInternalError("Failed to delete review", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Review not found")
	}
	return nil
}

func (s *FacultyReviewService) ToggleUpvote(ctx context.Context, caller *Caller, reviewHex string) (*UpvoteResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	id, err := parseID(reviewHex, "Review")
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.ToggleUpvote(ctx, id, caller.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to update upvote", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	return &UpvoteResult{
		Upvotes:   review.Upvotes(),
		UpvotedBy: review.UpvotedBy,
		Upvoted:   review.UpvotedBy.Contains(caller.ID),
	}, nil
}

func (s *FacultyReviewService) ToggleReport(ctx context.Context, caller *Caller, reviewHex string) (*ReportResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	id, err := parseID(reviewHex, "Review")
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.ToggleReport(ctx, id, caller.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to update report", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}

	result := &ReportResult{
		Message:  reportRemovedMessage,
		Reports:  review.Reports,
		Reported: review.Reports.Contains(caller.ID),
	}
	if result.Reported {
		result.Message = reportedMessage
		if review.Reports.Len() == 1 {
			notify.PublishAsync(s.notifier, fmt.Sprintf(
				"Faculty review %s entered the moderation queue.\nComment: %s",
				review.ID.Hex(), excerpt(review.Comment)))
		}
	}
	return result, nil
}

func (s *FacultyReviewService) ListReported(ctx context.Context) ([]models.FacultyReviewView, error) {
	reviews, err := s.reviews.FindReported(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reported reviews", err)
	}
	return s.resolve(ctx, reviews, nil, moderationView)
}

func (s *FacultyReviewService) owned(ctx context.Context, caller *Caller, reviewHex, denied string) (*models.FacultyReview, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	id, err := parseID(reviewHex, "Review")
	if err != nil {
		return nil, err
	}
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch review", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	if !caller.is(review.UserID) {
		return nil, apperrors.NewAuthorizationError(denied)
	}
	return review, nil
}

func (s *FacultyReviewService) resolveOne(ctx context.Context, review *models.FacultyReview, viewer *Caller) (*models.FacultyReviewView, error) {
	views, err := s.resolve(ctx, []models.FacultyReview{*review}, viewer, publicView)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *FacultyReviewService) resolve(ctx context.Context, reviews []models.FacultyReview, viewer *Caller, mode viewMode) ([]models.FacultyReviewView, error) {
	var userIDs, facultyIDs []bson.ObjectID
	for i := range reviews {
		userIDs = append(userIDs, reviews[i].UserID)
		facultyIDs = append(facultyIDs, reviews[i].FacultyID)
	}

	users, err := s.users.FindByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}
	faculties, err := s.faculties.FindByIDs(ctx, uniqueIDs(facultyIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}

	views := make([]models.FacultyReviewView, 0, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		view := models.FacultyReviewView{
			ID:        r.ID,
			Faculty:   facultyRef(r.FacultyID, faculties[r.FacultyID]),
			Rating:    r.Rating,
			Comment:   r.Comment,
			Anonymous: r.Anonymous,
			Upvotes:   r.Upvotes(),
			UpvotedBy: r.UpvotedBy,
			Reports:   r.Reports,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		view.User, view.UserName, view.IsOwner = author(r.UserID, r.Anonymous, users[r.UserID], viewer, mode)
		views = append(views, view)
	}
	return views, nil
}
