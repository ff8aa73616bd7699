package callcache

import (
	"context"

	"github.com/unkn0wn-root/callcache/kv"
)

// Invocation is one instrumented operation. It queues its writes on tx and
// returns the value recorded as the call's output.
type Invocation func(ctx context.Context, tx kv.Tx, args []Value) (string, error)

// Middleware wraps the Invocation of operation op on cache c.
// Use c.Key to place extra keys under the cache's prefix.
type Middleware func(c *Cache, op string, next Invocation) Invocation

// CountCalls increments the op counter before running next.
func CountCalls(c *Cache, op string, next Invocation) Invocation {
	return func(ctx context.Context, tx kv.Tx, args []Value) (string, error) {
		tx.Incr(c.keys.Counter(op))
		return next(ctx, tx, args)
	}
}

// CallHistory records the rendered arguments before next and its return value
// after. On error no output is queued; the batch is discarded anyway.
func CallHistory(c *Cache, op string, next Invocation) Invocation {
	return func(ctx context.Context, tx kv.Tx, args []Value) (string, error) {
		tx.RPush(c.keys.Inputs(op), renderArgs(args))
		out, err := next(ctx, tx, args)
		if err != nil {
			return "", err
		}
		tx.RPush(c.keys.Outputs(op), out)
		return out, nil
	}
}

// Chain wraps core so that mws[0] is the outermost layer.
func Chain(c *Cache, op string, core Invocation, mws ...Middleware) Invocation {
	inv := core
	for i := len(mws) - 1; i >= 0; i-- {
		inv = mws[i](c, op, inv)
	}
	return inv
}
