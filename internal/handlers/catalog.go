package handlers

import (
	"net/http"

	"coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// --- GET /api/courses ---

func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// --- GET /api/courses/{id} ---

func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetCourse(r.Context(), chi.URLParam(r, "id"), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// --- GET /api/faculty ---

func (h *CatalogHandler) ListFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.catalog.ListFaculties(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, faculties)
}

// --- GET /api/faculty/{id} ---

func (h *CatalogHandler) GetFaculty(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetFaculty(r.Context(), chi.URLParam(r, "id"), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
