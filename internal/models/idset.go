package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IDSet is a set of user ids stored as a BSON array. Order is insertion order;
// an id appears at most once.
type IDSet []bson.ObjectID

func (s IDSet) Len() int {
	return len(s)
}

func (s IDSet) Contains(id bson.ObjectID) bool {
	for _, member := range s {
		if member == id {
			return true
		}
	}
	return false
}

// Add returns the set with id added. Adding an existing member is a no-op.
func (s IDSet) Add(id bson.ObjectID) IDSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

// Remove returns the set without id.
func (s IDSet) Remove(id bson.ObjectID) IDSet {
	out := make(IDSet, 0, len(s))
	for _, member := range s {
		if member != id {
			out = append(out, member)
		}
	}
	return out
}

// Toggle removes id if present and adds it otherwise. The second return value
// reports whether id is a member afterwards.
func (s IDSet) Toggle(id bson.ObjectID) (IDSet, bool) {
	if s.Contains(id) {
		return s.Remove(id), false
	}
	return s.Add(id), true
}

// MarshalJSON always emits an array, never null.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]bson.ObjectID(s))
}
