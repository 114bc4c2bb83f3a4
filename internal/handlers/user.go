package handlers

import (
	"net/http"

	"coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/service"
)

type UserHandler struct {
	accounts *service.AccountService
	reviews  *service.ReviewService
}

func NewUserHandler(accounts *service.AccountService, reviews *service.ReviewService) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		reviews:  reviews,
	}
}

// --- GET /api/users/me/reviews ---

func (h *UserHandler) MyReviews(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListByUser(r.Context(), middleware.CallerFromContext(r.Context()), "me")
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- DELETE /api/users/me ---

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	result, err := h.accounts.DeleteAccount(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cascadeResponse{
		Message:       "Account and associated reviews deleted",
		CascadeResult: result,
	})
}

type cascadeResponse struct {
	Message string `json:"message"`
	*service.CascadeResult
}
