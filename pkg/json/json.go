// Package json is the JSON codec of metactx: goccy/go-json with pooled
// encode buffers.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/metactx/pkg/pool"
)

// RawMessage is a raw encoded JSON value.
type RawMessage = gojson.RawMessage

// Marshal is a drop-in replacement for encoding/json.Marshal.
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal.
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// MarshalToBuffer encodes v into a pooled buffer, newline terminated. The
// caller returns the buffer with PutBuffer.
func MarshalToBuffer(v interface{}) (*bytes.Buffer, error) {
	buf := pool.Buffers.Get()
	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		pool.Buffers.Put(buf)
		return nil, err
	}
	return buf, nil
}

// PutBuffer returns a buffer from MarshalToBuffer.
func PutBuffer(buf *bytes.Buffer) {
	pool.Buffers.Put(buf)
}

// MarshalToWriter encodes v fully before writing it to w, so a failed
// encoding writes nothing.
func MarshalToWriter(w io.Writer, v interface{}) error {
	buf, err := MarshalToBuffer(v)
	if err != nil {
		return err
	}
	defer PutBuffer(buf)
	_, err = w.Write(buf.Bytes())
	return err
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *gojson.Decoder {
	return gojson.NewDecoder(r)
}
