package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MinRating = 1
	MaxRating = 5

	// SchemaVersion 2 uses comment and rating* field names. Version 1
	// documents (text, difficulty, workload, usefulness) are migrated by
	// cmd/seed -migrate.
	SchemaVersion = 2
)

// Review is a course review. The upvote count is len(UpvotedBy) and is never
// stored on its own.
type Review struct {
	ID               bson.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID           bson.ObjectID  `bson:"user" json:"user"`
	CourseID         bson.ObjectID  `bson:"course" json:"course"`
	RatingDifficulty int            `bson:"ratingDifficulty" json:"ratingDifficulty"`
	RatingWorkload   int            `bson:"ratingWorkload" json:"ratingWorkload"`
	RatingUsefulness int            `bson:"ratingUsefulness" json:"ratingUsefulness"`
	Comment          string         `bson:"comment,omitempty" json:"comment,omitempty"`
	Anonymous        bool           `bson:"anonymous" json:"anonymous"`
	FacultyID        *bson.ObjectID `bson:"faculty,omitempty" json:"faculty,omitempty"`
	FacultyRating    *int           `bson:"facultyRating,omitempty" json:"facultyRating,omitempty"`
	UpvotedBy        IDSet          `bson:"upvotedBy" json:"upvotedBy"`
	Reports          IDSet          `bson:"reports" json:"reports"`
	SchemaVersion    int            `bson:"schemaVersion" json:"-"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}

func (r *Review) Upvotes() int {
	return r.UpvotedBy.Len()
}

// IsReported reports whether the review sits in the moderation queue.
func (r *Review) IsReported() bool {
	return r.Reports.Len() > 0
}

type FacultyReview struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	FacultyID     bson.ObjectID `bson:"faculty" json:"faculty"`
	UserID        bson.ObjectID `bson:"user" json:"user"`
	Rating        int           `bson:"rating" json:"rating"`
	Comment       string        `bson:"comment,omitempty" json:"comment,omitempty"`
	Anonymous     bool          `bson:"anonymous" json:"anonymous"`
	UpvotedBy     IDSet         `bson:"upvotedBy" json:"upvotedBy"`
	Reports       IDSet         `bson:"reports" json:"reports"`
	SchemaVersion int           `bson:"schemaVersion" json:"-"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (r *FacultyReview) Upvotes() int {
	return r.UpvotedBy.Len()
}

func (r *FacultyReview) IsReported() bool {
	return r.Reports.Len() > 0
}
