package json

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string         `json:"name"`
	Tags  []string       `json:"tags,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}

func TestMarshalToWriter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, MarshalToWriter(&out, sample{Name: "<Customer>", Tags: []string{"a"}}))
	assert.Equal(t, "{\"name\":\"<Customer>\",\"tags\":[\"a\"]}\n", out.String())

	var back sample
	require.NoError(t, Unmarshal(out.Bytes(), &back))
	assert.Equal(t, "<Customer>", back.Name)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestMarshalToWriterErrors(t *testing.T) {
	assert.Error(t, MarshalToWriter(&bytes.Buffer{}, func() {}))
	assert.EqualError(t, MarshalToWriter(failingWriter{}, sample{}), "closed")
}

func TestRawMessageIsPreserved(t *testing.T) {
	var wrapper struct {
		Body RawMessage `json:"body"`
	}
	require.NoError(t, Unmarshal([]byte(`{"body":{"guid":"g1","n":[1,2]}}`), &wrapper))
	assert.JSONEq(t, `{"guid":"g1","n":[1,2]}`, string(wrapper.Body))

	data, err := Marshal(wrapper)
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":{"guid":"g1","n":[1,2]}}`, string(data))
}

func TestNewDecoder(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"name":"a"} {"name":"b"}`))
	var names []string
	for dec.More() {
		var s sample
		require.NoError(t, dec.Decode(&s))
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}
