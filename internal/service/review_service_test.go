package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestReviewService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, "sam", models.RoleStudent)

	view, err := f.reviewSvc.Create(ctx, student, CreateReviewInput{
		CourseID:         f.course.ID.Hex(),
		RatingDifficulty: 2,
		RatingWorkload:   3,
		RatingUsefulness: 5,
		Comment:          "  Great intro course  ",
		FacultyID:        f.faculty.ID.Hex(),
		FacultyRating:    intPtr(4),
	})
	require.NoError(t, err)

	assert.Equal(t, "Great intro course", view.Comment)
	assert.Equal(t, "sam", view.UserName)
	assert.True(t, view.IsOwner)
	assert.Equal(t, "CSE110", view.Course.Code)
	require.NotNil(t, view.Faculty)
	assert.Equal(t, "Dr. Alice Brown", view.Faculty.Name)
	assert.Equal(t, 0, view.Upvotes)
	assert.Empty(t, view.UpvotedBy)
	assert.Empty(t, view.Reports)
	assert.Equal(t, 1, f.reviews.Len())
}

func TestReviewService_CreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, "sam", models.RoleStudent)

	valid := func() CreateReviewInput {
		return CreateReviewInput{
			CourseID:         f.course.ID.Hex(),
			RatingDifficulty: 3,
			RatingWorkload:   3,
			RatingUsefulness: 3,
		}
	}

	cases := map[string]func(in *CreateReviewInput){
		"missing course":        func(in *CreateReviewInput) { in.CourseID = "" },
		"malformed course":      func(in *CreateReviewInput) { in.CourseID = "not-an-id" },
		"missing difficulty":    func(in *CreateReviewInput) { in.RatingDifficulty = 0 },
		"workload too high":     func(in *CreateReviewInput) { in.RatingWorkload = 6 },
		"usefulness negative":   func(in *CreateReviewInput) { in.RatingUsefulness = -1 },
		"comment too long":      func(in *CreateReviewInput) { in.Comment = strings.Repeat("x", 2001) },
		"faculty rating alone":  func(in *CreateReviewInput) { in.FacultyRating = intPtr(3) },
		"faculty rating too low": func(in *CreateReviewInput) {
			in.FacultyID = f.faculty.ID.Hex()
			in.FacultyRating = intPtr(0)
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid()
			mutate(&in)
			_, err := f.reviewSvc.Create(ctx, student, in)
			requireType(t, err, apperrors.ErrorTypeValidation)
		})
	}
	assert.Equal(t, 0, f.reviews.Len())
}

func TestReviewService_CreateRequiresStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := CreateReviewInput{
		CourseID:         f.course.ID.Hex(),
		RatingDifficulty: 3,
		RatingWorkload:   3,
		RatingUsefulness: 3,
	}

	_, err := f.reviewSvc.Create(ctx, f.addUser(t, "fay", models.RoleFaculty), in)
	requireType(t, err, apperrors.ErrorTypeAuthorization)

	_, err = f.reviewSvc.Create(ctx, f.addUser(t, "ada", models.RoleAdmin), in)
	requireType(t, err, apperrors.ErrorTypeAuthorization)

	_, err = f.reviewSvc.Create(ctx, nil, in)
	requireType(t, err, apperrors.ErrorTypeAuthentication)

	assert.Equal(t, 0, f.reviews.Len())
}

func TestReviewService_CreateUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, "sam", models.RoleStudent)

	_, err := f.reviewSvc.Create(ctx, student, CreateReviewInput{
		CourseID:         bson.NewObjectID().Hex(),
		RatingDifficulty: 3,
		RatingWorkload:   3,
		RatingUsefulness: 3,
	})
	requireType(t, err, apperrors.ErrorTypeNotFound)

	_, err = f.reviewSvc.Create(ctx, student, CreateReviewInput{
		CourseID:         f.course.ID.Hex(),
		RatingDifficulty: 3,
		RatingWorkload:   3,
		RatingUsefulness: 3,
		FacultyID:        bson.NewObjectID().Hex(),
	})
	requireType(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, 0, f.reviews.Len())
}

func TestReviewService_ListByCourseNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.addUser(t, "sam", models.RoleStudent)

	first := f.addReview(t, student, "first", false)
	second := f.addReview(t, student, "second", false)

	views, err := f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, first.ID, views[1].ID)

	views, err = f.reviewSvc.ListByCourse(ctx, bson.NewObjectID().Hex(), nil)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.reviewSvc.ListByCourse(ctx, "bogus", nil)
	requireType(t, err, apperrors.ErrorTypeNotFound)
}

func TestReviewService_AnonymousAuthorHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	other := f.addUser(t, "kim", models.RoleStudent)
	f.addReview(t, author, "honest take", true)

	views, err := f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), other)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].User)
	assert.Equal(t, models.AnonymousName, views[0].UserName)
	assert.False(t, views[0].IsOwner)

	views, err = f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), nil)
	require.NoError(t, err)
	assert.Nil(t, views[0].User)

	views, err = f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), author)
	require.NoError(t, err)
	assert.True(t, views[0].IsOwner)
	assert.Equal(t, models.AnonymousName, views[0].UserName)
	require.NotNil(t, views[0].User)
	assert.Equal(t, author.ID, views[0].User.ID)
}

func TestReviewService_ToggleUpvoteTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	voter := f.addUser(t, "kim", models.RoleFaculty)
	review := f.addReview(t, author, "useful", false)

	res, err := f.reviewSvc.ToggleUpvote(ctx, voter, review.ID.Hex())
	require.NoError(t, err)
	assert.True(t, res.Upvoted)
	assert.Equal(t, 1, res.Upvotes)
	assert.Equal(t, len(res.UpvotedBy), res.Upvotes)
	assert.True(t, res.UpvotedBy.Contains(voter.ID))

	res, err = f.reviewSvc.ToggleUpvote(ctx, voter, review.ID.Hex())
	require.NoError(t, err)
	assert.False(t, res.Upvoted)
	assert.Equal(t, 0, res.Upvotes)
	assert.Empty(t, res.UpvotedBy)

	stored, err := f.reviews.FindByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.UpvotedBy)
}

func TestReviewService_UpvotesFromManyUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.addReview(t, f.addUser(t, "sam", models.RoleStudent), "", false)

	var last *UpvoteResult
	for _, name := range []string{"a", "b", "c"} {
		var err error
		last, err = f.reviewSvc.ToggleUpvote(ctx, f.addUser(t, name, models.RoleStudent), review.ID.Hex())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, last.Upvotes)
	assert.Len(t, last.UpvotedBy, 3)
}

func TestReviewService_ToggleUnknownReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.addUser(t, "sam", models.RoleStudent)

	_, err := f.reviewSvc.ToggleUpvote(ctx, caller, bson.NewObjectID().Hex())
	requireType(t, err, apperrors.ErrorTypeNotFound)
	_, err = f.reviewSvc.ToggleReport(ctx, caller, "zzz")
	requireType(t, err, apperrors.ErrorTypeNotFound)
	_, err = f.reviewSvc.ToggleReport(ctx, nil, bson.NewObjectID().Hex())
	requireType(t, err, apperrors.ErrorTypeAuthentication)
}

func TestReviewService_ToggleReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.addReview(t, f.addUser(t, "sam", models.RoleStudent), "rude words", false)
	reporter := f.addUser(t, "kim", models.RoleStudent)

	res, err := f.reviewSvc.ToggleReport(ctx, reporter, review.ID.Hex())
	require.NoError(t, err)
	assert.True(t, res.Reported)
	assert.Equal(t, "Reported", res.Message)
	assert.Len(t, res.Reports, 1)

	select {
	case msg := <-f.notifier.messages:
		assert.Contains(t, msg, review.ID.Hex())
		assert.Contains(t, msg, "rude words")
	case <-time.After(time.Second):
		t.Fatal("expected a moderation notification")
	}

	res, err = f.reviewSvc.ToggleReport(ctx, reporter, review.ID.Hex())
	require.NoError(t, err)
	assert.False(t, res.Reported)
	assert.Equal(t, "Report removed", res.Message)
	assert.Empty(t, res.Reports)
}

func TestReviewService_OwnerOnlyMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	review := f.addReview(t, author, "original", false)

	for _, intruder := range []*Caller{
		f.addUser(t, "kim", models.RoleStudent),
		f.addUser(t, "ada", models.RoleAdmin),
	} {
		_, err := f.reviewSvc.Update(ctx, intruder, review.ID.Hex(), UpdateReviewInput{Comment: strPtr("hijacked")})
		requireType(t, err, apperrors.ErrorTypeAuthorization)

		err = f.reviewSvc.Delete(ctx, intruder, review.ID.Hex())
		requireType(t, err, apperrors.ErrorTypeAuthorization)
	}

	stored, err := f.reviews.FindByID(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "original", stored.Comment)
}

func TestReviewService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	review := f.addReview(t, author, "original", false)

	updated, err := f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{
		RatingWorkload: intPtr(1),
		Comment:        strPtr("revised"),
		Anonymous:      boolPtr(true),
		FacultyID:      strPtr(f.faculty.ID.Hex()),
		FacultyRating:  intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RatingWorkload)
	assert.Equal(t, 3, updated.RatingDifficulty)
	assert.Equal(t, "revised", updated.Comment)
	assert.True(t, updated.Anonymous)
	require.NotNil(t, updated.FacultyRating)
	assert.Equal(t, 5, *updated.FacultyRating)

	cleared, err := f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{FacultyID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Faculty)
	assert.Nil(t, cleared.FacultyRating)

	_, err = f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{RatingUsefulness: intPtr(9)})
	requireType(t, err, apperrors.ErrorTypeValidation)

	_, err = f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{FacultyRating: intPtr(2)})
	requireType(t, err, apperrors.ErrorTypeValidation)
}

func TestReviewService_UpdateCountsCommentInCharacters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	accented := strings.Repeat("é", 1500)
	review := f.addReview(t, author, accented, false)

	updated, err := f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{Comment: strPtr(accented)})
	require.NoError(t, err)
	assert.Equal(t, accented, updated.Comment)

	_, err = f.reviewSvc.Update(ctx, author, review.ID.Hex(), UpdateReviewInput{Comment: strPtr(strings.Repeat("é", 2001))})
	requireType(t, err, apperrors.ErrorTypeValidation)
}

func TestReviewService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	review := f.addReview(t, author, "bye", false)

	require.NoError(t, f.reviewSvc.Delete(ctx, author, review.ID.Hex()))
	assert.Equal(t, 0, f.reviews.Len())

	err := f.reviewSvc.Delete(ctx, author, review.ID.Hex())
	requireType(t, err, apperrors.ErrorTypeNotFound)
}

func TestReviewService_ListByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sam := f.addUser(t, "sam", models.RoleStudent)
	kim := f.addUser(t, "kim", models.RoleStudent)
	f.addReview(t, sam, "mine", true)
	f.addReview(t, kim, "theirs", false)

	for _, requested := range []string{"", "me", sam.ID.Hex()} {
		views, err := f.reviewSvc.ListByUser(ctx, sam, requested)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "mine", views[0].Comment)
		assert.True(t, views[0].IsOwner)
	}

	_, err := f.reviewSvc.ListByUser(ctx, sam, kim.ID.Hex())
	requireType(t, err, apperrors.ErrorTypeAuthorization)

	_, err = f.reviewSvc.ListByUser(ctx, nil, "me")
	requireType(t, err, apperrors.ErrorTypeAuthentication)
}

func TestReviewService_DeletedAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.addUser(t, "sam", models.RoleStudent)
	f.addReview(t, author, "orphan", false)

	_, err := f.users.Delete(ctx, author.ID)
	require.NoError(t, err)

	views, err := f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Deleted user", views[0].UserName)
}

func TestReviewService_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reviews.Err = assert.AnError

	_, err := f.reviewSvc.ListByCourse(ctx, f.course.ID.Hex(), nil)
	requireType(t, err, apperrors.ErrorTypeInternal)
	assert.Equal(t, "Failed to fetch reviews", apperrors.PublicMessage(err))
}
