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

type RevokedTokenRepo struct {
	collection *mongo.Collection
}

func NewRevokedTokenRepo() *RevokedTokenRepo {
	return &RevokedTokenRepo{
		collection: database.GetCollection(database.CollectionRevokedTokens),
	}
}

// Revoke is idempotent: revoking the same jti twice keeps one record.
func (r *RevokedTokenRepo) Revoke(ctx context.Context, token *models.RevokedToken) error {
	token.CreatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"jti": token.JTI},
		bson.M{"$setOnInsert": bson.M{
			"jti":       token.JTI,
			"userId":    token.UserID,
			"expiresAt": token.ExpiresAt,
			"createdAt": token.CreatedAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	return errors.Wrap(err, "revoke token")
}

func (r *RevokedTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var token models.RevokedToken
	err := r.collection.FindOne(ctx, bson.M{"jti": jti}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, errors.Wrap(err, "find revoked token")
	}
	// The TTL monitor runs about once a minute, so an expired record may linger.
	return !token.IsExpired(), nil
}

// EnsureIndexes creates necessary indexes for the revoked_tokens collection
func (r *RevokedTokenRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL: removed once the token would have expired anyway
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
