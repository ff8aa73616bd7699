package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/unkn0wn-root/callcache/config"
)

var ErrNilCollection = errors.New("docstore: nil collection")

// Collection is the part of *mongo.Collection the helpers use.
type Collection interface {
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

var _ Collection = (*mongo.Collection)(nil)

// ConnectionError reports a MongoDB server that could not be reached.
type ConnectionError struct {
	URI string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("docstore: mongo %s unreachable: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Connect opens a client for cfg.URI and pings the primary.
// The caller owns the client and must Disconnect it.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &ConnectionError{URI: cfg.URI, Err: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &ConnectionError{URI: cfg.URI, Err: err}
	}
	return client, nil
}

// Schools returns the configured school collection on client.
func Schools(client *mongo.Client, cfg config.MongoConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}

// Logs returns the configured request-log collection on client.
func Logs(client *mongo.Client, cfg config.MongoConfig) *mongo.Collection {
	return client.Database(cfg.LogsDatabase).Collection(cfg.LogsCollection)
}

// All drains cur into a slice of T and closes it. A cursor with no
// documents yields an empty, non-nil slice.
func All[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("docstore: decode cursor: %w", err)
	}
	return out, nil
}
