package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is selected by the name "msgpack" (see ByName). The zero value is ready to use.
//
// Struct fields are encoded in declaration order, so repeated loads of an unchanged
// source write byte-identical records. Entity types carry `msgpack:"..."` tags matching
// their json names so a cache can switch codecs without renaming fields; switching
// still requires a Reload, since old records fail to decode.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
