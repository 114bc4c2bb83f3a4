package service

import (
	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Caller is the identity taken from a verified credential. Services never
// take identity from request bodies or paths.
type Caller struct {
	ID   bson.ObjectID
	Role models.Role
}

func (c *Caller) is(id bson.ObjectID) bool {
	return c != nil && c.ID == id
}

func (c *Caller) requireRole(role models.Role, message string) error {
	if c == nil {
		return apperrors.NewAuthenticationError("Unauthorized")
	}
	if c.Role != role {
		return apperrors.NewAuthorizationError(message)
	}
	return nil
}

func requireCaller(c *Caller) error {
	if c == nil {
		return apperrors.NewAuthenticationError("Unauthorized")
	}
	return nil
}

// parseID turns a path or body id into an ObjectID. A malformed id cannot name
// an existing document, so it is reported as not found.
func parseID(hex, what string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, apperrors.NewNotFoundError(what + " not found")
	}
	return id, nil
}
