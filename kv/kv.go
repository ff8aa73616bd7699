// Package kv defines the key-value store abstraction used by callcache.
//
// A Store holds plain string values, integer counters and append-only lists.
// Writes go through Tx so that every write belonging to one cache call is
// applied as a unit (MULTI/EXEC on Redis, a single critical section in memory).
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the bytes previously passed to Tx.Set for a key.
package kv

import (
	"context"
	"errors"
)

// ErrWrongType is returned when a key holds a value of a different shape than
// the operation expects (e.g. LRange on a plain string).
var ErrWrongType = errors.New("kv: operation against a key holding the wrong kind of value")

// Store is the external key-value collaborator.
// Must be safe for concurrent use.
type Store interface {
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// FlushDB removes every key in the active database.
	FlushDB(ctx context.Context) error

	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// LRange returns list elements between start and stop inclusive.
	// Negative indexes count from the tail (-1 is the last element).
	// A missing key is an empty list.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// Tx queues writes through fn and applies them atomically once fn returns nil.
	// If fn returns an error nothing is applied and that error is returned.
	Tx(ctx context.Context, fn func(Tx) error) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Tx collects writes for one atomic batch.
// Queued commands are not visible to readers until the batch commits.
type Tx interface {
	Incr(key string)
	Set(key string, value []byte)
	RPush(key string, value string)
}
