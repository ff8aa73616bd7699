// Package codec converts between raw stored bytes and caller types.
//
// Decoders are what Cache.Get-style readers apply to a hit; the integer,
// float and string decoders parse the literal form that Value writes.
// Structured codecs (JSON, Msgpack, CBOR) pair with callcache.StoreEncoded,
// which keeps the encoded payload as a binary Value.
package codec

// Encoder turns V into bytes for storage.
type Encoder[V any] interface {
	Encode(V) ([]byte, error)
}

// Decoder turns stored bytes back into V. It must be pure.
type Decoder[V any] interface {
	Decode([]byte) (V, error)
}

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encoder[V]
	Decoder[V]
}

// DecodeFunc adapts a plain function to Decoder.
type DecodeFunc[V any] func([]byte) (V, error)

func (f DecodeFunc[V]) Decode(b []byte) (V, error) { return f(b) }
