package callcache

import (
	"errors"
	"fmt"
)

var (
	ErrNilStore = errors.New("callcache: store is required")
	ErrEmptyOp  = errors.New("callcache: operation name is required")
)

// ConnectionError reports that the key-value store could not be reached
// while constructing a Cache. It is never retried.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("callcache: store unreachable: %v", e.Err)
	}
	return fmt.Sprintf("callcache: store %s unreachable: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SerializationError reports a value that has no stored form.
// Err is set when an encoder failed.
type SerializationError struct {
	Type   string
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("callcache: cannot store %s: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("callcache: cannot store %s: %s", e.Type, e.Reason)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DecodeError wraps whatever a decoder returned for a present key.
// errors.As still reaches the decoder's own error (e.g. *strconv.NumError).
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("callcache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
