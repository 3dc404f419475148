package redcache

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer encodes and decodes user return values to and from the byte
// payloads stored under the value key.
//
// Contract:
// - Determinism: Marshal must produce equal bytes for equal inputs.
// - Round trip: Unmarshal(Marshal(v), &out) must yield a value equal to v
//   within the serializer's supported domain.
// - Concurrency: implementations must be safe for concurrent use.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONSerializer is the default serializer: a textual, self-describing
// encoding that preserves Unicode. Map keys are emitted in sorted order, so
// equal inputs encode to equal bytes.
type JSONSerializer struct{}

// Marshal encodes v as JSON.
func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v, which must be a non-nil pointer.
func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgpackSerializer is a binary structured alternative to JSONSerializer.
// Useful when return values carry large byte slices that would bloat a
// textual encoding.
type MsgpackSerializer struct{}

// Marshal encodes v as msgpack. Map keys are emitted in sorted order, so
// equal inputs encode to equal bytes.
func (MsgpackSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack data into v, which must be a non-nil pointer.
func (MsgpackSerializer) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

var (
	_ Serializer = JSONSerializer{}
	_ Serializer = MsgpackSerializer{}
)
