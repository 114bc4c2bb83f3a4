package repository

import (
	"context"
	"regexp"
	"time"

	"coursecritic-backend/internal/database"
	"coursecritic-backend/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CourseRepo struct {
	collection *mongo.Collection
}

func NewCourseRepo() *CourseRepo {
	return &CourseRepo{
		collection: database.GetCollection(database.CollectionCourses),
	}
}

func (r *CourseRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find course")
	}
	return &course, nil
}

func (r *CourseRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Course, error) {
	out := make(map[bson.ObjectID]*models.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find courses by ids")
	}
	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decode courses")
	}
	for i := range courses {
		out[courses[i].ID] = &courses[i]
	}
	return out, nil
}

// List returns courses sorted by code. A non-empty query matches code or name,
// case-insensitively.
func (r *CourseRepo) List(ctx context.Context, query string) ([]models.Course, error) {
	filter := bson.M{}
	if query != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"code": pattern},
			bson.M{"name": pattern},
		}}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decode courses")
	}
	return courses, nil
}

// UpsertByCode inserts the course or refreshes name and department of an
// existing course with the same code.
func (r *CourseRepo) UpsertByCode(ctx context.Context, course *models.Course) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"code": course.Code},
		bson.M{
			"$set": bson.M{
				"name":       course.Name,
				"department": course.Department,
				"updatedAt":  now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return errors.Wrap(err, "upsert course")
}

// EnsureIndexes creates necessary indexes for the courses collection
func (r *CourseRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
