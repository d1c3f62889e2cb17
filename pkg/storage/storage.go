// Package storage defines the persistence contract behind the metadata
// repository. Backends store elements and relationships as opaque JSON
// bodies indexed by GUID, type name and relationship ends; every semantic
// rule lives in the repository.
package storage

import (
	"context"

	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

// Backend persists elements and relationships. Implementations must be
// safe for concurrent use and must return copies, never shared values.
type Backend interface {
	// PutElement inserts or replaces an element.
	PutElement(ctx context.Context, element *metadata.Element) error
	// GetElement returns a not_found error for an unknown GUID.
	GetElement(ctx context.Context, guid string) (*metadata.Element, error)
	// DeleteElement removes an element; unknown GUIDs are ignored.
	DeleteElement(ctx context.Context, guid string) error
	// ListElements returns elements of the given types, or all elements
	// when typeNames is empty.
	ListElements(ctx context.Context, typeNames []string) ([]*metadata.Element, error)

	// PutRelationship inserts or replaces a relationship.
	PutRelationship(ctx context.Context, relationship *metadata.Relationship) error
	// GetRelationship returns a not_found error for an unknown GUID.
	GetRelationship(ctx context.Context, guid string) (*metadata.Relationship, error)
	// DeleteRelationship removes a relationship; unknown GUIDs are ignored.
	DeleteRelationship(ctx context.Context, guid string) error
	// ListRelationships returns relationships with elementGUID at either
	// end, or all relationships when elementGUID is empty.
	ListRelationships(ctx context.Context, elementGUID string) ([]*metadata.Relationship, error)

	// Close releases connections.
	Close(ctx context.Context) error
}

// ErrElementNotFound builds the not_found error for an element GUID.
func ErrElementNotFound(guid string) error {
	return omerrors.New(omerrors.ErrorTypeNotFound, "element not found").WithDetail("guid", guid)
}

// ErrRelationshipNotFound builds the not_found error for a relationship GUID.
func ErrRelationshipNotFound(guid string) error {
	return omerrors.New(omerrors.ErrorTypeNotFound, "relationship not found").WithDetail("guid", guid)
}

// EncodeElement serializes an element body.
func EncodeElement(e *metadata.Element) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to encode element")
	}
	return data, nil
}

// DecodeElement parses an element body.
func DecodeElement(data []byte) (*metadata.Element, error) {
	var e metadata.Element
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decode element")
	}
	return &e, nil
}

// EncodeRelationship serializes a relationship body.
func EncodeRelationship(r *metadata.Relationship) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to encode relationship")
	}
	return data, nil
}

// DecodeRelationship parses a relationship body.
func DecodeRelationship(data []byte) (*metadata.Relationship, error) {
	var r metadata.Relationship
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to decode relationship")
	}
	return &r, nil
}
