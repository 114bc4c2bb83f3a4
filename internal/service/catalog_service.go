package service

import (
	"context"
	"strings"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"
)

// CatalogService serves the read-only course and faculty listings.
type CatalogService struct {
	courses        CourseStore
	faculties      FacultyStore
	reviews        *ReviewService
	facultyReviews *FacultyReviewService
}

func NewCatalogService(courses CourseStore, faculties FacultyStore, reviews *ReviewService, facultyReviews *FacultyReviewService) *CatalogService {
	return &CatalogService{
		courses:        courses,
		faculties:      faculties,
		reviews:        reviews,
		facultyReviews: facultyReviews,
	}
}

type CourseDetail struct {
	Course  *models.Course      `json:"course"`
	Reviews []models.ReviewView `json:"reviews"`
}

type FacultyDetail struct {
	Faculty *models.Faculty            `json:"faculty"`
	Reviews []models.FacultyReviewView `json:"reviews"`
}

func (s *CatalogService) ListCourses(ctx context.Context, query string) ([]models.Course, error) {
	courses, err := s.courses.List(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch courses", err)
	}
	return courses, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, courseHex string, viewer *Caller) (*CourseDetail, error) {
	id, err := parseID(courseHex, "Course")
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch course", err)
	}
	if course == nil {
		return nil, apperrors.NewNotFoundError("Course not found")
	}
	reviews, err := s.reviews.ListByCourse(ctx, courseHex, viewer)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: course, Reviews: reviews}, nil
}

func (s *CatalogService) ListFaculties(ctx context.Context, query string) ([]models.Faculty, error) {
	faculties, err := s.faculties.List(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch faculties", err)
	}
	return faculties, nil
}

func (s *CatalogService) GetFaculty(ctx context.Context, facultyHex string, viewer *Caller) (*FacultyDetail, error) {
	id, err := parseID(facultyHex, "Faculty")
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculties.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to fetch faculty", err)
	}
	if faculty == nil {
		return nil, apperrors.NewNotFoundError("Faculty not found")
	}
	reviews, err := s.facultyReviews.ListByFaculty(ctx, facultyHex, viewer)
	if err != nil {
		return nil, err
	}
	return &FacultyDetail{Faculty: faculty, Reviews: reviews}, nil
}
