// Package codec holds the serialization strategies used for primary records and
// denormalized index copies.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
// Encode must be deterministic for equal inputs: repeated loads of an unchanged
// source are expected to produce byte-identical records.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Names accepted by ByName.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameCBOR    = "cbor"
)

// ByName returns the codec registered under name. Empty selects JSON.
func ByName[V any](name string) (Codec[V], error) {
	switch name {
	case "", NameJSON:
		return JSON[V]{}, nil
	case NameMsgpack:
		return Msgpack[V]{}, nil
	case NameCBOR:
		c, err := NewCBOR[V](true)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
