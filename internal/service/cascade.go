package service

import (
	"context"

	"coursecritic-backend/internal/apperrors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type CascadeResult struct {
	DeletedCourseReviews  int64 `json:"deletedCourseReviews"`
	DeletedFacultyReviews int64 `json:"deletedFacultyReviews"`
}

// accountRemover deletes a user and every review they wrote, and takes their id
// out of the upvote and report sets of everyone else's reviews. The steps run
// in sequence without a transaction: a failure part way leaves the earlier
// steps in place. The user is deleted last, so re-running the removal finishes
// the job.
type accountRemover struct {
	users          UserStore
	reviews        ReviewStore
	facultyReviews FacultyReviewStore
}

func (r accountRemover) remove(ctx context.Context, userID bson.ObjectID) (*CascadeResult, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to delete user account", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	result := &CascadeResult{}
	result.DeletedCourseReviews, err = r.reviews.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to delete user account", err)
	}
	result.DeletedFacultyReviews, err = r.facultyReviews.DeleteByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.Hex()).
			Int64("course_reviews_deleted", result.DeletedCourseReviews).
			Msg("account removal stopped after deleting course reviews")
		return nil, apperrors.NewInternalError("Failed to delete user account", err)
	}

	var pulled int64
	for _, pull := range []func(context.Context, bson.ObjectID) (int64, error){
		r.reviews.PullMember,
		r.facultyReviews.PullMember,
	} {
		n, err := pull(ctx, userID)
		if err != nil {
			log.Error().Err(err).
				Str("user_id", userID.Hex()).
				Int64("course_reviews_deleted", result.DeletedCourseReviews).
				Int64("faculty_reviews_deleted", result.DeletedFacultyReviews).
				Int64("reviews_cleared", pulled).
				Msg("account removal stopped while clearing votes and reports")
			return nil, apperrors.NewInternalError("Failed to delete user account", err)
		}
		pulled += n
	}

	deleted, err := r.users.Delete(ctx, userID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.Hex()).
			Int64("course_reviews_deleted", result.DeletedCourseReviews).
			Int64("faculty_reviews_deleted", result.DeletedFacultyReviews).
			Msg("account removal stopped before deleting the user")
		return nil, apperrors.NewInternalError("Failed to delete user account", err)
	}
	if !deleted {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	log.Info().
		Str("user_id", userID.Hex()).
		Int64("course_reviews_deleted", result.DeletedCourseReviews).
		Int64("faculty_reviews_deleted", result.DeletedFacultyReviews).
		Int64("reviews_cleared", pulled).
		Msg("deleted user account")
	return result, nil
}
