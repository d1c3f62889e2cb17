package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONEnvelopes(t *testing.T) {
	element := &metadata.Element{
		Header:     metadata.ElementHeader{GUID: "guid-1", Type: metadata.ElementType{TypeName: "Glossary"}},
		Properties: metadata.Properties{"qualifiedName": "Glossary::Sales"},
	}
	rel := &metadata.Relationship{GUID: "rel-1", TypeName: "TermAnchor", End1GUID: "guid-1", End2GUID: "guid-2"}

	tests := []struct {
		name string
		v    interface{}
		want string
	}{
		{"element", &ElementResponse{Element: element}, `"qualifiedName":"Glossary::Sales"`},
		{"relationship", &RelationshipResponse{Relationship: rel}, `"end2GUID":"guid-2"`},
		{"void", &VoidResponse{RelatedHTTPCode: http.StatusOK}, `"relatedHTTPCode":200`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteJSON(rec, http.StatusOK, tt.v)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestErrorRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, omerrors.InvalidParameter("guid", "unknown element"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, omerrors.ErrorTypeInvalidParameter, resp.Type)

	err := DecodeError(rec.Code, rec.Body.Bytes())
	assert.True(t, omerrors.IsInvalidParameter(err))
	assert.Contains(t, err.Error(), "unknown element")
}
