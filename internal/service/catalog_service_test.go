package service

import (
	"context"
	"testing"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCatalogService_Courses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.courses.Add(models.Course{Code: "MAT120", Name: "Calculus I", Department: "MNS"})

	all, err := f.catalogSvc.ListCourses(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "CSE110", all[0].Code)

	found, err := f.catalogSvc.ListCourses(ctx, " calc ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "MAT120", found[0].Code)

	f.addReview(t, f.addUser(t, "sam", models.RoleStudent), "solid", false)
	detail, err := f.catalogSvc.GetCourse(ctx, f.course.ID.Hex(), nil)
	require.NoError(t, err)
	assert.Equal(t, "CSE110", detail.Course.Code)
	assert.Len(t, detail.Reviews, 1)

	_, err = f.catalogSvc.GetCourse(ctx, bson.NewObjectID().Hex(), nil)
	requireType(t, err, apperrors.ErrorTypeNotFound)
}

func TestCatalogService_Faculty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	found, err := f.catalogSvc.ListFaculties(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, found, 1)

	f.addFacultyReview(t, f.addUser(t, "sam", models.RoleStudent), "kind", false)
	detail, err := f.catalogSvc.GetFaculty(ctx, f.faculty.ID.Hex(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC", detail.Faculty.Initials)
	assert.Len(t, detail.Reviews, 1)

	_, err = f.catalogSvc.GetFaculty(ctx, "junk", nil)
	requireType(t, err, apperrors.ErrorTypeNotFound)
}
