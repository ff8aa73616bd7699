package codec

import "fmt"

// Limit wraps a Decoder and rejects payloads longer than MaxDecode bytes
// without invoking Inner. MaxDecode <= 0 disables the check.
type Limit[V any] struct {
	Inner     Decoder[V]
	MaxDecode int
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
