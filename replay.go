package callcache

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Call is one recorded invocation: the rendered argument tuple and the
// output exactly as stored.
type Call struct {
	Input  string
	Output string
}

// History pairs op's inputs and outputs positionally. If the two lists
// differ in length (foreign writes) the extra entries are dropped.
func (c *Cache) History(ctx context.Context, op string) ([]Call, error) {
	ins, outs, err := c.readHistory(ctx, op)
	if err != nil {
		return nil, err
	}
	return pair(ins, outs), nil
}

func (c *Cache) readHistory(ctx context.Context, op string) (ins, outs []string, err error) {
	if op == "" {
		return nil, nil, ErrEmptyOp
	}
	ins, err = c.store.LRange(ctx, c.keys.Inputs(op), 0, -1)
	if err != nil {
		return nil, nil, fmt.Errorf("callcache: read %s inputs: %w", op, err)
	}
	outs, err = c.store.LRange(ctx, c.keys.Outputs(op), 0, -1)
	if err != nil {
		return nil, nil, fmt.Errorf("callcache: read %s outputs: %w", op, err)
	}
	return ins, outs, nil
}

func pair(ins, outs []string) []Call {
	n := min(len(ins), len(outs))
	calls := make([]Call, n)
	for i := 0; i < n; i++ {
		calls[i] = Call{Input: ins[i], Output: outs[i]}
	}
	return calls
}

// Report is the replay of one operation.
// Count is the number of recorded inputs.
type Report struct {
	Op    string
	Count int
	Calls []Call
}

// Replay reads op's history. It writes nothing.
func (c *Cache) Replay(ctx context.Context, op string) (Report, error) {
	ins, outs, err := c.readHistory(ctx, op)
	if err != nil {
		return Report{}, err
	}
	return Report{Op: op, Count: len(ins), Calls: pair(ins, outs)}, nil
}

// String renders:
//
//	Cache.Store was called 2 times:
//	Cache.Store(*("foo",)) -> 1a4c...
//	Cache.Store(*(42,)) -> 9e0b...
func (r Report) String() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}

func (r Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "%s was called %d times:\n", r.Op, r.Count)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, call := range r.Calls {
		n, err = fmt.Fprintf(w, "%s(*%s) -> %s\n", r.Op, call.Input, call.Output)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
