package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollectionUsers          = "users"
	CollectionCourses        = "courses"
	CollectionFaculties      = "faculties"
	CollectionReviews        = "reviews"
	CollectionFacultyReviews = "facultyreviews"
	CollectionRevokedTokens  = "revoked_tokens"
)

var (
	client *mongo.Client
	DB     *mongo.Database
)

func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{NilSliceAsEmpty: true})
	c, err := mongo.Connect(clientOpts)
	if err != nil {
		return errors.Wrap(err, "connect")
	}

	// Ping the database to verify connection
	if err := c.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "ping")
	}

	client = c
	DB = c.Database(dbName)
	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return nil
}

// Ping is used by the health check.
func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("database not connected")
	}
	return client.Ping(ctx, nil)
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func GetCollection(name string) *mongo.Collection {
	return DB.Collection(name)
}
