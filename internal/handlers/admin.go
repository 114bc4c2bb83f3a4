package handlers

import (
	"net/http"

	"coursecritic-backend/internal/middleware"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves the moderation dashboard. Routes are mounted behind
// RequireRole(admin).
type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// --- GET /api/admin/students ---

func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	h.listAccounts(w, r, models.RoleStudent)
}

// --- GET /api/admin/faculties ---

func (h *AdminHandler) ListFaculties(w http.ResponseWriter, r *http.Request) {
	h.listAccounts(w, r, models.RoleFaculty)
}

func (h *AdminHandler) listAccounts(w http.ResponseWriter, r *http.Request, role models.Role) {
	users, err := h.admin.ListAccounts(r.Context(), middleware.CallerFromContext(r.Context()), role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// --- GET /api/admin/reported-course-reviews ---

func (h *AdminHandler) ReportedCourseReviews(w http.ResponseWriter, r *http.Request) {
	views, err := h.admin.ListReportedReviews(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- GET /api/admin/reported-faculty-reviews ---

func (h *AdminHandler) ReportedFacultyReviews(w http.ResponseWriter, r *http.Request) {
	views, err := h.admin.ListReportedFacultyReviews(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- DELETE /api/admin/users/{userId} ---

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.DeleteUser(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cascadeResponse{
		Message:       "User and associated reviews deleted",
		CascadeResult: result,
	})
}

// --- DELETE /api/admin/course-reviews/{id} ---

func (h *AdminHandler) DeleteCourseReview(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteReview(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Course review deleted")
}

// --- DELETE /api/admin/faculty-reviews/{id} ---

func (h *AdminHandler) DeleteFacultyReview(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteFacultyReview(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Faculty review deleted")
}
