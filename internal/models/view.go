package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AnonymousName replaces the author name on anonymous reviews.
const AnonymousName = "Anonymous"

type UserRef struct {
	ID    bson.ObjectID `json:"_id"`
	Name  string        `json:"name"`
	Email string        `json:"email,omitempty"`
}

type CourseRef struct {
	ID   bson.ObjectID `json:"_id"`
	Code string        `json:"code"`
	Name string        `json:"name"`
}

type FacultyRef struct {
	ID   bson.ObjectID `json:"_id"`
	Name string        `json:"name"`
}

// ReviewView is a course review with its references resolved for display.
// User is nil on anonymous reviews unless the viewer is a moderator or the
// author.
type ReviewView struct {
	ID               bson.ObjectID `json:"_id"`
	User             *UserRef      `json:"user,omitempty"`
	UserName         string        `json:"userName"`
	IsOwner          bool          `json:"isOwner"`
	Course           *CourseRef    `json:"course"`
	RatingDifficulty int           `json:"ratingDifficulty"`
	RatingWorkload   int           `json:"ratingWorkload"`
	RatingUsefulness int           `json:"ratingUsefulness"`
	Comment          string        `json:"comment"`
	Anonymous        bool          `json:"anonymous"`
	Faculty          *FacultyRef   `json:"faculty,omitempty"`
	FacultyRating    *int          `json:"facultyRating,omitempty"`
	Upvotes          int           `json:"upvotes"`
	UpvotedBy        IDSet         `json:"upvotedBy"`
	Reports          IDSet         `json:"reports"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type FacultyReviewView struct {
	ID        bson.ObjectID `json:"_id"`
	User      *UserRef      `json:"user,omitempty"`
	UserName  string        `json:"userName"`
	IsOwner   bool          `json:"isOwner"`
	Faculty   *FacultyRef   `json:"faculty"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
	Anonymous bool          `json:"anonymous"`
	Upvotes   int           `json:"upvotes"`
	UpvotedBy IDSet         `json:"upvotedBy"`
	Reports   IDSet         `json:"reports"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
