package handlers

import (
	"net/http"

	"coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// --- POST /api/reviews ---

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateReviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.reviews.Create(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// --- GET /api/reviews/{id} ---
// id is the course id; the pattern shares its wildcard with PUT and DELETE.

func (h *ReviewHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListByCourse(r.Context(), chi.URLParam(r, "id"), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- GET /api/reviews/user/{userId} ---

func (h *ReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListByUser(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- PUT /api/reviews/{id} ---

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateReviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.reviews.Update(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// --- DELETE /api/reviews/{id} ---

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Review deleted")
}

// --- POST /api/reviews/upvote/{id} ---

func (h *ReviewHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.ToggleUpvote(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- POST /api/reviews/report/{id} ---

func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.ToggleReport(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
