package codec

import "fmt"

// Limit wraps another codec to enforce a maximum payload size on both sides: Encode
// refuses to produce a value that Decode would later reject.
// If MaxDecode <= 0, size limiting is disabled.
//
// The store is shared, so a foreign or oversized value under a cache key should be
// rejected before it reaches the inner decoder.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

var _ Codec[struct{}] = Limit[struct{}]{}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return nil, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return b, nil
}
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}

// WithLimit wraps c in a Limit when max > 0, otherwise returns c unchanged.
func WithLimit[V any](c Codec[V], max int) Codec[V] {
	if max <= 0 {
		return c
	}
	return Limit[V]{Inner: c, MaxDecode: max}
}
