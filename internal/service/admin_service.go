package service

import (
	"context"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// AdminService backs the moderation dashboard. Every method requires an admin
// caller even though the router also guards the routes.
type AdminService struct {
	users          UserStore
	reviews        *ReviewService
	facultyReviews *FacultyReviewService
	remover        accountRemover
}

func NewAdminService(users UserStore, reviewStore ReviewStore, facultyReviewStore FacultyReviewStore, reviews *ReviewService, facultyReviews *FacultyReviewService) *AdminService {
	return &AdminService{
		users:          users,
		reviews:        reviews,
		facultyReviews: facultyReviews,
		remover: accountRemover{
			users:          users,
			reviews:        reviewStore,
			facultyReviews: facultyReviewStore,
		},
	}
}

const adminOnly = "Admin access required"

// ListAccounts returns users of role, newest first, without password hashes.
func (s *AdminService) ListAccounts(ctx context.Context, caller *Caller, role models.Role) ([]models.User, error) {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch "+string(role)+" accounts", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *AdminService) ListReportedReviews(ctx context.Context, caller *Caller) ([]models.ReviewView, error) {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return nil, err
	}
	return s.reviews.ListReported(ctx)
}

func (s *AdminService) ListReportedFacultyReviews(ctx context.Context, caller *Caller) ([]models.FacultyReviewView, error) {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return nil, err
	}
	return s.facultyReviews.ListReported(ctx)
}

func (s *AdminService) DeleteUser(ctx context.Context, caller *Caller, userHex string) (*CascadeResult, error) {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return nil, err
	}
	userID, err := parseID(userHex, "User")
	if err != nil {
		return nil, err
	}
	result, err := s.remover.remove(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("admin_id", caller.ID.Hex()).Str("user_id", userHex).Msg("admin deleted user")
	return result, nil
}

// DeleteReview removes any course review without an ownership check.
func (s *AdminService) DeleteReview(ctx context.Context, caller *Caller, reviewHex string) error {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return err
	}
	id, err := parseID(reviewHex, "Review")
	if err != nil {
		return err
	}
	deleted, err := s.remover.reviews.Delete(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("Failed to delete review", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Review not found")
	}
	log.Info().Str("admin_id", caller.ID.Hex()).Str("review_id", reviewHex).Msg("admin deleted course review")
	return nil
}

func (s *AdminService) DeleteFacultyReview(ctx context.Context, caller *Caller, reviewHex string) error {
	if err := caller.requireRole(models.RoleAdmin, adminOnly); err != nil {
		return err
	}
	id, err := parseID(reviewHex, "Review")
	if err != nil {
		return err
	}
	deleted, err := s.remover.facultyReviews.Delete(ctx, id)
	if err != nil {
		return apperrors.NewInternalError("Failed to delete review", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Review not found")
	}
	log.Info().Str("admin_id", caller.ID.Hex()).Str("review_id", reviewHex).Msg("admin deleted faculty review")
	return nil
}
