package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection evaluates equality filters and $set updates in memory.
// Aggregate does not evaluate the pipeline; it records it and returns aggDocs.
type fakeCollection struct {
	docs    []bson.M
	aggDocs []interface{}
	err     error

	filters  []interface{}
	updates  []interface{}
	pipeline interface{}
}

var _ Collection = (*fakeCollection)(nil)

func (f *fakeCollection) UpdateMany(_ context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.filters = append(f.filters, filter)
	f.updates = append(f.updates, update)
	if f.err != nil {
		return nil, f.err
	}
	set, err := setFields(update)
	if err != nil {
		return nil, err
	}
	res := &mongo.UpdateResult{}
	for _, d := range f.docs {
		if !matches(d, filter.(bson.D)) {
			continue
		}
		res.MatchedCount++
		res.ModifiedCount++
		for _, e := range set {
			d[e.Key] = e.Value
		}
	}
	return res, nil
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []interface{}
	for _, d := range f.docs {
		if matches(d, filter.(bson.D)) {
			out = append(out, d)
		}
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}

func (f *fakeCollection) Aggregate(_ context.Context, pipeline interface{}, _ ...*options.AggregateOptions) (*mongo.Cursor, error) {
	f.pipeline = pipeline
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.aggDocs, nil, nil)
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := bson.M{}
	for k, v := range document.(bson.M) {
		d[k] = v
	}
	id := primitive.NewObjectID()
	d["_id"] = id
	f.docs = append(f.docs, d)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (f *fakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, d := range f.docs {
		if matches(d, filter.(bson.D)) {
			n++
		}
	}
	return n, nil
}

func setFields(update interface{}) (bson.D, error) {
	u, ok := update.(bson.D)
	if !ok || len(u) != 1 || u[0].Key != "$set" {
		return nil, errors.New("fake: only {$set: ...} updates are supported")
	}
	set, ok := u[0].Value.(bson.D)
	if !ok {
		return nil, errors.New("fake: $set takes a document")
	}
	return set, nil
}

// matches applies Mongo's equality rule: a scalar filter value matches a
// field equal to it or an array field containing it.
func matches(doc bson.M, filter bson.D) bool {
	for _, e := range filter {
		v, ok := doc[e.Key]
		if !ok {
			return false
		}
		switch arr := v.(type) {
		case bson.A:
			if !containsAny(arr, e.Value) {
				return false
			}
		case []string:
			found := false
			for _, s := range arr {
				if s == e.Value {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if v != e.Value {
				return false
			}
		}
	}
	return true
}

func containsAny(arr bson.A, want interface{}) bool {
	for _, x := range arr {
		if x == want {
			return true
		}
	}
	return false
}
