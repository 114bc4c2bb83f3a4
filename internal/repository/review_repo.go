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

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

type ReviewRepo struct {
	collection *mongo.Collection
}

func NewReviewRepo() *ReviewRepo {
	return &ReviewRepo{
		collection: database.GetCollection(database.CollectionReviews),
	}
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
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
		return errors.Wrap(err, "insert review")
	}
	review.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *ReviewRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find review")
	}
	return &review, nil
}

func (r *ReviewRepo) FindByCourse(ctx context.Context, courseID bson.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"course": courseID})
}

func (r *ReviewRepo) FindByUser(ctx context.Context, userID bson.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// FindReported returns the moderation queue: reviews with at least one report.
func (r *ReviewRepo) FindReported(ctx context.Context) ([]models.Review, error) {
	return r.find(ctx, bson.M{"reports.0": bson.M{"$exists": true}})
}

func (r *ReviewRepo) find(ctx context.Context, filter bson.M) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, errors.Wrap(err, "find reviews")
	}
	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, errors.Wrap(err, "decode reviews")
	}
	return reviews, nil
}

// Update writes the author-editable fields of review.
func (r *ReviewRepo) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now()
	set := bson.M{
		"ratingDifficulty": review.RatingDifficulty,
		"ratingWorkload":   review.RatingWorkload,
		"ratingUsefulness": review.RatingUsefulness,
		"comment":          review.Comment,
		"anonymous":        review.Anonymous,
		"updatedAt":        review.UpdatedAt,
	}
	unset := bson.M{}
	if review.FacultyID != nil {
		set["faculty"] = *review.FacultyID
	} else {
		unset["faculty"] = ""
	}
	if review.FacultyRating != nil {
		set["facultyRating"] = *review.FacultyRating
	} else {
		unset["facultyRating"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	return errors.Wrap(err, "update review")
}

// Delete reports whether a review was removed.
func (r *ReviewRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, errors.Wrap(err, "delete review")
	}
	return result.DeletedCount > 0, nil
}

func (r *ReviewRepo) DeleteByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, errors.Wrap(err, "delete reviews by user")
	}
	return result.DeletedCount, nil
}

// PullMember removes userID from the upvote and report sets of every review.
func (r *ReviewRepo) PullMember(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return pullMember(ctx, r.collection, userID)
}

func (r *ReviewRepo) ToggleUpvote(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error) {
	return toggleMember[models.Review](ctx, r.collection, id, "upvotedBy", userID)
}

func (r *ReviewRepo) ToggleReport(ctx context.Context, id, userID bson.ObjectID) (*models.Review, error) {
	return toggleMember[models.Review](ctx, r.collection, id, "reports", userID)
}

// MigrateLegacy rewrites pre-version-2 documents in place and returns how many
// were changed.
func (r *ReviewRepo) MigrateLegacy(ctx context.Context) (int64, error) {
	pipeline := legacyFieldsPipeline(map[string]string{
		"text":       "comment",
		"difficulty": "ratingDifficulty",
		"workload":   "ratingWorkload",
		"usefulness": "ratingUsefulness",
	}, models.SchemaVersion)
	result, err := r.collection.UpdateMany(ctx, legacyFilter(models.SchemaVersion), pipeline)
	if err != nil {
		return 0, errors.Wrap(err, "migrate reviews")
	}
	return result.ModifiedCount, nil
}

// EnsureIndexes creates necessary indexes for the reviews collection
func (r *ReviewRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
