package handlers

import (
	"net/http"

	"coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type FacultyReviewHandler struct {
	reviews *service.FacultyReviewService
}

func NewFacultyReviewHandler(reviews *service.FacultyReviewService) *FacultyReviewHandler {
	return &FacultyReviewHandler{reviews: reviews}
}

func (h *FacultyReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFacultyReviewInput
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

func (h *FacultyReviewHandler) ListByFaculty(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListByFaculty(r.Context(), chi.URLParam(r, "facultyId"), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *FacultyReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	views, err := h.reviews.ListByUser(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *FacultyReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateFacultyReviewInput
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

func (h *FacultyReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Review deleted")
}

func (h *FacultyReviewHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.ToggleUpvote(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *FacultyReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	result, err := h.reviews.ToggleReport(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
