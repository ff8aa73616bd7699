package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type School struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Topics []string           `bson:"topics,omitempty"`
}

// ListAll returns every document in coll.
func ListAll(ctx context.Context, coll Collection) ([]bson.M, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("docstore: list all: %w", err)
	}
	return All[bson.M](ctx, cur)
}

// InsertSchool inserts fields as a new document and returns its _id.
func InsertSchool(ctx context.Context, coll Collection, fields bson.M) (interface{}, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	if fields == nil {
		fields = bson.M{}
	}
	res, err := coll.InsertOne(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("docstore: insert school: %w", err)
	}
	return res.InsertedID, nil
}

// UpdateTopics sets topics on every school called name. A nil topics is
// written as null.
func UpdateTopics(ctx context.Context, coll Collection, name string, topics []string) (*mongo.UpdateResult, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	res, err := coll.UpdateMany(ctx,
		bson.D{{Key: "name", Value: name}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "topics", Value: topics}}}},
	)
	if err != nil {
		return nil, fmt.Errorf("docstore: update topics of %q: %w", name, err)
	}
	return res, nil
}

// SchoolsByTopic finds schools whose topics contain topic.
// The cursor is lazy and single-pass; the caller closes it.
func SchoolsByTopic(ctx context.Context, coll Collection, topic string) (*mongo.Cursor, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	cur, err := coll.Find(ctx, bson.D{{Key: "topics", Value: topic}})
	if err != nil {
		return nil, fmt.Errorf("docstore: schools by topic %q: %w", topic, err)
	}
	return cur, nil
}
