package repository

import (
	"context"
	"regexp"

	"coursecritic-backend/internal/database"
	"coursecritic-backend/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FacultyRepo struct {
	collection *mongo.Collection
}

func NewFacultyRepo() *FacultyRepo {
	return &FacultyRepo{
		collection: database.GetCollection(database.CollectionFaculties),
	}
}

func (r *FacultyRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Faculty, error) {
	var faculty models.Faculty
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&faculty)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find faculty")
	}
	return &faculty, nil
}

func (r *FacultyRepo) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*models.Faculty, error) {
	out := make(map[bson.ObjectID]*models.Faculty, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find faculties by ids")
	}
	var faculties []models.Faculty
	if err := cursor.All(ctx, &faculties); err != nil {
		return nil, errors.Wrap(err, "decode faculties")
	}
	for i := range faculties {
		out[faculties[i].ID] = &faculties[i]
	}
	return out, nil
}

func (r *FacultyRepo) List(ctx context.Context, query string) ([]models.Faculty, error) {
	filter := bson.M{}
	if query != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"initials": pattern},
			bson.M{"name": pattern},
		}}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list faculties")
	}
	faculties := []models.Faculty{}
	if err := cursor.All(ctx, &faculties); err != nil {
		return nil, errors.Wrap(err, "decode faculties")
	}
	return faculties, nil
}

func (r *FacultyRepo) UpsertByInitials(ctx context.Context, faculty *models.Faculty) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"initials": faculty.Initials},
		bson.M{"$set": bson.M{
			"name":       faculty.Name,
			"department": faculty.Department,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	return errors.Wrap(err, "upsert faculty")
}

// EnsureIndexes creates necessary indexes for the faculties collection
func (r *FacultyRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "initials", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
