package repository

import (
	"context"
	"time"

	"coursecritic-backend/internal/database"
	"coursecritic-backend/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FacultyReviewRepo struct {
	collection *mongo.Collection
}

func NewFacultyReviewRepo() *FacultyReviewRepo {
	return &FacultyReviewRepo{
		collection: database.GetCollection(database.CollectionFacultyReviews),
	}
}

func (r *FacultyReviewRepo) Create(ctx context.Context, review *models.FacultyReview) error {
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.SchemaVersion = models.SchemaVersion
	if review.UpvotedBy == nil {
		review.UpvotedBy = models.IDSet{}
	}
	if review.Reports == nil {
		review.Reports = models.IDSet{}
	}
	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return errors.Wrap(err, "insert faculty review")
	}
	review.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *FacultyReviewRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.FacultyReview, error) {
	var review models.FacultyReview
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find faculty review")
	}
	return &review, nil
}

func (r *FacultyReviewRepo) FindByFaculty(ctx context.Context, facultyID bson.ObjectID) ([]models.FacultyReview, error) {
	return r.find(ctx, bson.M{"faculty": facultyID})
}

func (r *FacultyReviewRepo) FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.FacultyReview, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *FacultyReviewRepo) FindReported(ctx context.Context) ([]models.FacultyReview, error) {
	return r.find(ctx, bson.M{"reports.0": bson.M{"$exists": true}})
}

func (r *FacultyReviewRepo) find(ctx context.Context, filter bson.M) ([]models.FacultyReview, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, errors.Wrap(err, "find faculty reviews")
	}
	reviews := []models.FacultyReview{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, errors.Wrap(err, "decode faculty reviews")
	}
	return reviews, nil
}

func (r *FacultyReviewRepo) Update(ctx context.Context, review *models.FacultyReview) error {
	review.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, bson.M{
		"$set": bson.M{
			"rating":    review.Rating,
			"comment":   review.Comment,
			"anonymous": review.Anonymous,
			"updatedAt": review.UpdatedAt,
		},
	})
	return errors.Wrap(err, "update faculty review")
}

func (r *FacultyReviewRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, errors.Wrap(err, "delete faculty review")
	}
	return result.DeletedCount > 0, nil
}

func (r *FacultyReviewRepo) DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, errors.Wrap(err, "delete faculty reviews by user")
	}
	return result.DeletedCount, nil
}

// PullMember removes userID from the upvote and report sets of every review.
func (r *FacultyReviewRepo) PullMember(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return pullMember(ctx, r.collection, userID)
}

func (r *FacultyReviewRepo) ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error) {
	return toggleMember[models.FacultyReview](ctx, r.collection, id, "upvotedBy", userID)
}

func (r *FacultyReviewRepo) ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.FacultyReview, error) {
	return toggleMember[models.FacultyReview](ctx, r.collection, id, "reports", userID)
}

func (r *FacultyReviewRepo) MigrateLegacy(ctx context.Context) (int64, error) {
	pipeline := legacyFieldsPipeline(map[string]string{"text": "comment"}, models.SchemaVersion)
	result, err := r.collection.UpdateMany(ctx, legacyFilter(models.SchemaVersion), pipeline)
	if err != nil {
		return 0, errors.Wrap(err, "migrate faculty reviews")
	}
	return result.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes for the facultyreviews collection
func (r *FacultyReviewRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "faculty", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
