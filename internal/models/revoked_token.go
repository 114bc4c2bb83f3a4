package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RevokedToken records a logged-out JWT by its jti until the token would have
// expired on its own.
type RevokedToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	JTI       string        `bson:"jti" json:"jti"`
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	ExpiresAt time.Time     `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

func (t *RevokedToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
