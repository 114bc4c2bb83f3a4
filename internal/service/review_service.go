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

const maxCommentLength = 2000

type ReviewService struct {
	reviews   ReviewStore
	users     UserStore
	courses   CourseStore
	faculties FacultyStore
	notifier  notify.Notifier
}

func NewReviewService(reviews ReviewStore, users UserStore, courses CourseStore, faculties FacultyStore, notifier notify.Notifier) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		users:     users,
		courses:   courses,
		faculties: faculties,
		notifier:  notifier,
	}
}

type CreateReviewInput struct {
	CourseID         string `json:"course" validate:"required,mongodb"`
	RatingDifficulty int    `json:"ratingDifficulty" validate:"required,min=1,max=5"`
	RatingWorkload   int    `json:"ratingWorkload" validate:"required,min=1,max=5"`
	RatingUsefulness int    `json:"ratingUsefulness" validate:"required,min=1,max=5"`
	Comment          string `json:"comment" validate:"max=2000"`
	Anonymous        bool   `json:"anonymous"`
	FacultyID        string `json:"faculty" validate:"omitempty,mongodb"`
	FacultyRating    *int   `json:"facultyRating" validate:"omitempty,min=1,max=5"`
}

// UpdateReviewInput carries the author-editable fields. Nil fields are left
// unchanged; an empty faculty clears the faculty and its rating.
type UpdateReviewInput struct {
	RatingDifficulty *int    `json:"ratingDifficulty" validate:"omitempty,min=1,max=5"`
	RatingWorkload   *int    `json:"ratingWorkload" validate:"omitempty,min=1,max=5"`
	RatingUsefulness *int    `json:"ratingUsefulness" validate:"omitempty,min=1,max=5"`
	Comment          *string `json:"comment"`
	Anonymous        *bool   `json:"anonymous"`
	FacultyID        *string `json:"faculty"`
	FacultyRating    *int    `json:"facultyRating" validate:"omitempty,min=1,max=5"`
}

type UpvoteResult struct {
	Upvotes   int          `json:"upvotes"`
	UpvotedBy models.IDSet `json:"upvotedBy"`
	Upvoted   bool         `json:"upvoted"`
}

type ReportResult struct {
	Message  string       `json:"message"`
	Reports  models.IDSet `json:"reports"`
	Reported bool         `json:"reported"`
}

const (
	reportedMessage      = "Reported"
	reportRemovedMessage = "Report removed"
)

func (s *ReviewService) Create(ctx context.Context, caller *Caller, in CreateReviewInput) (*models.ReviewView, error) {
	if err := caller.requireRole(models.RoleStudent, "Only students can submit reviews"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.FacultyRating != nil && in.FacultyID == "" {
		return nil, apperrors.NewValidationError("facultyRating requires faculty")
	}

	courseID, _ := bson.ObjectIDFromHex(in.CourseID)
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to submit review", err)
	}
	if course == nil {
		return nil, apperrors.NewNotFoundError("Course not found")
	}

	review := &models.Review{
		UserID:           caller.ID,
		CourseID:         courseID,
		RatingDifficulty: in.RatingDifficulty,
		RatingWorkload:   in.RatingWorkload,
		RatingUsefulness: in.RatingUsefulness,
		Comment:          strings.TrimSpace(in.Comment),
		Anonymous:        in.Anonymous,
		FacultyRating:    in.FacultyRating,
		UpvotedBy:        models.IDSet{},
		Reports:          models.IDSet{},
	}
	if in.FacultyID != "" {
		facultyID, err := s.requireFaculty(ctx, in.FacultyID)
		if err != nil {
			return nil, err
		}
		review.FacultyID = &facultyID
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, apperrors.NewInternalError("Failed to submit review", err)
	}
	return s.resolveOne(ctx, review, caller)
}

func (s *ReviewService) ListByCourse(ctx context.Context, courseHex string, viewer *Caller) ([]models.ReviewView, error) {
	courseID, err := parseID(courseHex, "Course")
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}
	return s.resolve(ctx, reviews, viewer, publicView)
}

// ListByUser lists the caller's own reviews. requestedUser is the id a client
// put in the path; it must be empty, "me" or the caller's id.
func (s *ReviewService) ListByUser(ctx context.Context, caller *Caller, requestedUser string) ([]models.ReviewView, error) {
	if err := requireOwnListing(caller, requestedUser); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByUser(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch your reviews", err)
	}
	return s.resolve(ctx, reviews, caller, publicView)
}

func (s *ReviewService) Update(ctx context.Context, caller *Caller, reviewHex string, in UpdateReviewInput) (*models.ReviewView, error) {
	review, err := s.owned(ctx, caller, reviewHex, "You can only edit your own reviews")
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.RatingDifficulty != nil {
		review.RatingDifficulty = *in.RatingDifficulty
	}
	if in.RatingWorkload != nil {
		review.RatingWorkload = *in.RatingWorkload
	}
	if in.RatingUsefulness != nil {
		review.RatingUsefulness = *in.RatingUsefulness
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
	if in.FacultyID != nil {
		if *in.FacultyID == "" {
			review.FacultyID = nil
			review.FacultyRating = nil
		} else {
			facultyID, err := s.requireFaculty(ctx, *in.FacultyID)
			if err != nil {
				return nil, err
			}
			review.FacultyID = &facultyID
		}
	}
	if in.FacultyRating != nil {
		if review.FacultyID == nil {
			return nil, apperrors.NewValidationError("facultyRating requires faculty")
		}
		review.FacultyRating = in.FacultyRating
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, apperrors.NewInternalError("Failed to update review", err)
	}
	return s.resolveOne(ctx, review, caller)
}

func (s *ReviewService) Delete(ctx context.Context, caller *Caller, reviewHex string) error {
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

func (s *ReviewService) ToggleUpvote(ctx context.Context, caller *Caller, reviewHex string) (*UpvoteResult, error) {
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

func (s *ReviewService) ToggleReport(ctx context.Context, caller *Caller, reviewHex string) (*ReportResult, error) {
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
		// First report moves the review from Active to Reported.
		if review.Reports.Len() == 1 {
			notify.PublishAsync(s.notifier, fmt.Sprintf(
				"Course review %s entered the moderation queue.\nComment: %s",
				review.ID.Hex(), excerpt(review.Comment)))
		}
	}
	return result, nil
}

// ListReported returns the course review moderation queue with author details
// shown regardless of anonymity.
func (s *ReviewService) ListReported(ctx context.Context) ([]models.ReviewView, error) {
	reviews, err := s.reviews.FindReported(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reported reviews", err)
	}
	return s.resolve(ctx, reviews, nil, moderationView)
}

// owned loads a review and checks that the caller wrote it.
func (s *ReviewService) owned(ctx context.Context, caller *Caller, reviewHex, denied string) (*models.Review, error) {
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

func (s *ReviewService) requireFaculty(ctx context.Context, facultyHex string) (bson.ObjectID, error) {
	facultyID, err := bson.ObjectIDFromHex(facultyHex)
	if err != nil {
		return bson.NilObjectID, apperrors.NewValidationError("faculty must be a valid id")
	}
	faculty, err := s.faculties.FindByID(ctx, facultyID)
	if err != nil {
		return bson.NilObjectID, apperrors.NewInternalError("Failed to fetch faculty", err)
	}
	if faculty == nil {
		return bson.NilObjectID, apperrors.NewNotFoundError("Faculty not found")
	}
	return facultyID, nil
}

func (s *ReviewService) resolveOne(ctx context.Context, review *models.Review, viewer *Caller) (*models.ReviewView, error) {
	views, err := s.resolve(ctx, []models.Review{*review}, viewer, publicView)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ReviewService) resolve(ctx context.Context, reviews []models.Review, viewer *Caller, mode viewMode) ([]models.ReviewView, error) {
	var userIDs, courseIDs, facultyIDs []bson.ObjectID
	for i := range reviews {
		userIDs = append(userIDs, reviews[i].UserID)
		courseIDs = append(courseIDs, reviews[i].CourseID)
		if reviews[i].FacultyID != nil {
			facultyIDs = append(facultyIDs, *reviews[i].FacultyID)
		}
	}

	users, err := s.users.FindByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}
	courses, err := s.courses.FindByIDs(ctx, uniqueIDs(courseIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}
	faculties, err := s.faculties.FindByIDs(ctx, uniqueIDs(facultyIDs))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch reviews", err)
	}

	views := make([]models.ReviewView, 0, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		view := models.ReviewView{
			ID:               r.ID,
			Course:           courseRef(r.CourseID, courses[r.CourseID]),
			RatingDifficulty: r.RatingDifficulty,
			RatingWorkload:   r.RatingWorkload,
			RatingUsefulness: r.RatingUsefulness,
			Comment:          r.Comment,
			Anonymous:        r.Anonymous,
			FacultyRating:    r.FacultyRating,
			Upvotes:          r.Upvotes(),
			UpvotedBy:        r.UpvotedBy,
			Reports:          r.Reports,
			CreatedAt:        r.CreatedAt,
			UpdatedAt:        r.UpdatedAt,
		}
		if r.FacultyID != nil {
			view.Faculty = facultyRef(*r.FacultyID, faculties[*r.FacultyID])
		}
		view.User, view.UserName, view.IsOwner = author(r.UserID, r.Anonymous, users[r.UserID], viewer, mode)
		views = append(views, view)
	}
	return views, nil
}
