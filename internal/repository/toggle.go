package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// togglePipeline adds userID to the array field when absent and removes it
// when present. Running it as a single update keeps concurrent toggles on the
// same document from overwriting each other.
func togglePipeline(field string, userID bson.ObjectID) mongo.Pipeline {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{userID, current}}}},
			{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: current},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}}},
			{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{userID}}}}},
		}}}}}}},
	}
}

// toggleMember applies togglePipeline and returns the document after the
// update, or nil when no document has the id.
func toggleMember[T any](ctx context.Context, coll *mongo.Collection, id bson.ObjectID, field string, userID bson.ObjectID) (*T, error) {
	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, togglePipeline(field, userID), opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "toggle %s", field)
	}
	return &doc, nil
}

// pullMemberUpdate removes userID from both the upvote and report sets of
// every review holding it.
func pullMemberUpdate(userID bson.ObjectID) (filter, update bson.M) {
	filter = bson.M{"$or": bson.A{
		bson.M{"upvotedBy": userID},
		bson.M{"reports": userID},
	}}
	update = bson.M{"$pull": bson.M{"upvotedBy": userID, "reports": userID}}
	return filter, update
}

func pullMember(ctx context.Context, coll *mongo.Collection, userID bson.ObjectID) (int64, error) {
	filter, update := pullMemberUpdate(userID)
	result, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, errors.Wrapf(err, "pull %s from %s", userID.Hex(), coll.Name())
	}
	return result.ModifiedCount, nil
}

// legacyFieldsPipeline renames fields written before schema version 2 and
// stamps the new version. Fields already in the new shape win.
func legacyFieldsPipeline(renames map[string]string, version int) mongo.Pipeline {
	set := bson.D{
		{Key: "upvotedBy", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$upvotedBy", bson.A{}}}}},
		{Key: "reports", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$reports", bson.A{}}}}},
		{Key: "schemaVersion", Value: version},
	}
	unset := bson.A{"upvotes"}
	for legacy, current := range renames {
		set = append(set, bson.E{Key: current, Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + current, "$" + legacy}}}})
		unset = append(unset, legacy)
	}
	return mongo.Pipeline{
		{{Key: "$set", Value: set}},
		{{Key: "$unset", Value: unset}},
	}
}

func legacyFilter(version int) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"schemaVersion": bson.M{"$exists": false}},
		bson.M{"schemaVersion": bson.M{"$lt": version}},
	}}
}
