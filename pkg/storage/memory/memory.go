// Package memory provides an in-process storage backend. Elements and
// relationships are held as encoded bodies so that values returned to
// callers never alias stored state, and so that property values behave
// exactly as they do in the database backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/storage"
)

type storedRelationship struct {
	end1, end2 string
	body       []byte
}

// Backend is an in-memory storage.Backend.
type Backend struct {
	mu            sync.RWMutex
	elements      map[string][]byte
	elementTypes  map[string]string
	relationships map[string]storedRelationship
	// byElement indexes relationship GUIDs by the GUIDs at their ends
	byElement map[string]map[string]struct{}
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{
		elements:      make(map[string][]byte),
		elementTypes:  make(map[string]string),
		relationships: make(map[string]storedRelationship),
		byElement:     make(map[string]map[string]struct{}),
	}
}

var _ storage.Backend = (*Backend)(nil)

// PutElement inserts or replaces an element.
func (b *Backend) PutElement(ctx context.Context, element *metadata.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := storage.EncodeElement(element)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements[element.Header.GUID] = body
	b.elementTypes[element.Header.GUID] = element.Header.Type.TypeName
	return nil
}

// GetElement returns a copy of the element.
func (b *Backend) GetElement(ctx context.Context, guid string) (*metadata.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	body, ok := b.elements[guid]
	b.mu.RUnlock()
	if !ok {
		return nil, storage.ErrElementNotFound(guid)
	}
	return storage.DecodeElement(body)
}

// DeleteElement removes an element. Relationships are left to the caller.
func (b *Backend) DeleteElement(ctx context.Context, guid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.elements, guid)
	delete(b.elementTypes, guid)
	return nil
}

// ListElements returns elements of the given types ordered by GUID.
func (b *Backend) ListElements(ctx context.Context, typeNames []string) ([]*metadata.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(typeNames))
	for _, t := range typeNames {
		wanted[t] = true
	}

	b.mu.RLock()
	guids := make([]string, 0, len(b.elements))
	for guid, typeName := range b.elementTypes {
		if len(wanted) == 0 || wanted[typeName] {
			guids = append(guids, guid)
		}
	}
	bodies := make([][]byte, 0, len(guids))
	sort.Strings(guids)
	for _, guid := range guids {
		bodies = append(bodies, b.elements[guid])
	}
	b.mu.RUnlock()

	out := make([]*metadata.Element, 0, len(bodies))
	for _, body := range bodies {
		e, err := storage.DecodeElement(body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// PutRelationship inserts or replaces a relationship.
func (b *Backend) PutRelationship(ctx context.Context, relationship *metadata.Relationship) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := storage.EncodeRelationship(relationship)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.relationships[relationship.GUID]; ok {
		b.unindex(relationship.GUID, old)
	}
	stored := storedRelationship{end1: relationship.End1GUID, end2: relationship.End2GUID, body: body}
	b.relationships[relationship.GUID] = stored
	b.index(relationship.GUID, stored)
	return nil
}

// GetRelationship returns a copy of the relationship.
func (b *Backend) GetRelationship(ctx context.Context, guid string) (*metadata.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	stored, ok := b.relationships[guid]
	b.mu.RUnlock()
	if !ok {
		return nil, storage.ErrRelationshipNotFound(guid)
	}
	return storage.DecodeRelationship(stored.body)
}

// DeleteRelationship removes a relationship.
func (b *Backend) DeleteRelationship(ctx context.Context, guid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.relationships[guid]; ok {
		b.unindex(guid, old)
		delete(b.relationships, guid)
	}
	return nil
}

// ListRelationships returns the relationships touching elementGUID ordered
// by GUID.
func (b *Backend) ListRelationships(ctx context.Context, elementGUID string) ([]*metadata.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	var guids []string
	if elementGUID == "" {
		guids = make([]string, 0, len(b.relationships))
		for guid := range b.relationships {
			guids = append(guids, guid)
		}
	} else {
		for guid := range b.byElement[elementGUID] {
			guids = append(guids, guid)
		}
	}
	sort.Strings(guids)
	bodies := make([][]byte, 0, len(guids))
	for _, guid := range guids {
		bodies = append(bodies, b.relationships[guid].body)
	}
	b.mu.RUnlock()

	out := make([]*metadata.Relationship, 0, len(bodies))
	for _, body := range bodies {
		r, err := storage.DecodeRelationship(body)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Close is a no-op.
func (b *Backend) Close(context.Context) error {
	return nil
}

// Len returns the number of stored elements and relationships.
func (b *Backend) Len() (elements, relationships int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.elements), len(b.relationships)
}

func (b *Backend) index(guid string, r storedRelationship) {
	for _, end := range []string{r.end1, r.end2} {
		set, ok := b.byElement[end]
		if !ok {
			set = make(map[string]struct{})
			b.byElement[end] = set
		}
		set[guid] = struct{}{}
	}
}

func (b *Backend) unindex(guid string, r storedRelationship) {
	for _, end := range []string{r.end1, r.end2} {
		if set, ok := b.byElement[end]; ok {
			delete(set, guid)
			if len(set) == 0 {
				delete(b.byElement, end)
			}
		}
	}
}
