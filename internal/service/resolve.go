package service

import (
	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type viewMode int

const (
	// publicView hides the author of anonymous reviews from everyone but the author.
	publicView viewMode = iota
	// moderationView always shows author name and email.
	moderationView
)

const deletedUserName = "Deleted user"

func author(userID bson.ObjectID, anonymous bool, user *models.User, viewer *Caller, mode viewMode) (*models.UserRef, string, bool) {
	isOwner := viewer.is(userID)

	name := deletedUserName
	if user != nil {
		name = user.Name
	}

	switch {
	case mode == moderationView:
		ref := &models.UserRef{ID: userID, Name: name}
		if user != nil {
			ref.Email = user.Email
		}
		return ref, name, isOwner
	case anonymous && isOwner:
		return &models.UserRef{ID: userID, Name: name}, models.AnonymousName, true
	case anonymous:
		return nil, models.AnonymousName, false
	default:
		return &models.UserRef{ID: userID, Name: name}, name, isOwner
	}
}

func courseRef(id bson.ObjectID, course *models.Course) *models.CourseRef {
	ref := &models.CourseRef{ID: id}
	if course != nil {
		ref.Code = course.Code
		ref.Name = course.Name
	}
	return ref
}

func facultyRef(id bson.ObjectID, faculty *models.Faculty) *models.FacultyRef {
	ref := &models.FacultyRef{ID: id}
	if faculty != nil {
		ref.Name = faculty.Name
	}
	return ref
}

func uniqueIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]struct{}, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// requireOwnListing binds "list reviews by user" to the authenticated caller.
// The path id is only accepted when it names the caller.
func requireOwnListing(caller *Caller, requestedUser string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if requestedUser == "" || requestedUser == "me" || requestedUser == caller.ID.Hex() {
		return nil
	}
	return apperrors.NewAuthorizationError("You can only view your own reviews")
}

func excerpt(comment string) string {
	const limit = 200
	if comment == "" {
		return "(no comment)"
	}
	runes := []rune(comment)
	if len(runes) <= limit {
		return comment
	}
	return string(runes[:limit]) + "…"
}
