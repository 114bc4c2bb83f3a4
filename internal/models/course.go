package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Course struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Code       string        `bson:"code" json:"code"`
	Name       string        `bson:"name" json:"name"`
	Department string        `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type Faculty struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Initials   string        `bson:"initials" json:"initials"`
	Name       string        `bson:"name" json:"name"`
	Department string        `bson:"department,omitempty" json:"department,omitempty"`
}
