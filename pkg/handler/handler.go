// Package handler gives typed access to one kind of metadata element.
//
// A Handler converts between a Go properties struct and the property bag
// stored by a metadata.Client, checks that the elements it returns are of
// its kind, and knows which properties identify an element by name. It
// holds no state besides its configuration and is safe for concurrent use.
package handler

import (
	"context"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"go.uber.org/zap"
)

// DefaultNameProperties are matched by GetByName when a Kind sets none.
var DefaultNameProperties = []string{"qualifiedName", "name", "displayName"}

// Kind describes one entity type.
type Kind struct {
	TypeName string
	// NameProperties are matched exactly by GetByName
	NameProperties []string
	// SearchProperties are searched by Find; nil searches every string
	// property
	SearchProperties []string
}

// Element is a retrieved element with typed properties.
type Element[P any] struct {
	Header     metadata.ElementHeader `json:"elementHeader"`
	Properties P                      `json:"properties"`
}

// GUID returns the element's GUID.
func (e *Element[P]) GUID() string {
	return e.Header.GUID
}

// Related is an element reached through a relationship.
type Related[P any] struct {
	Relationship *metadata.Relationship `json:"relationship"`
	Element      *Element[P]            `json:"relatedElement"`
	AtEnd1       bool                   `json:"atEnd1"`
}

// Handler manages elements of one kind.
type Handler[P any] struct {
	client metadata.Client
	kind   Kind
	types  *typedefs.Registry
	logger *zap.Logger
}

// New creates a handler for kind.
func New[P any](client metadata.Client, kind Kind, logger *zap.Logger) (*Handler[P], error) {
	types := typedefs.Default()
	if _, ok := types.LookupEntity(kind.TypeName); !ok {
		return nil, omerrors.InvalidParameter("typeName", "unknown entity type "+kind.TypeName)
	}
	if client == nil {
		return nil, omerrors.New(omerrors.ErrorTypeConfig, "a handler needs a metadata client")
	}
	if len(kind.NameProperties) == 0 {
		kind.NameProperties = DefaultNameProperties
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler[P]{
		client: client,
		kind:   kind,
		types:  types,
		logger: logger.With(zap.String("component", "handler"), zap.String("kind", kind.TypeName)),
	}, nil
}

// Kind returns the handler's kind.
func (h *Handler[P]) Kind() Kind {
	return h.kind
}

// Client returns the underlying metadata client.
func (h *Handler[P]) Client() metadata.Client {
	return h.client
}

// typeFor picks the element type: the kind's type, or a subtype named by
// the typeName property. The property is removed from the bag.
func (h *Handler[P]) typeFor(bag metadata.Properties) (string, error) {
	typeName := h.kind.TypeName
	if bag == nil {
		return typeName, nil
	}
	if requested := bag.GetString(typeNameProperty); requested != "" {
		if !h.types.IsA(requested, h.kind.TypeName) {
			return "", omerrors.InvalidParameter(typeNameProperty, requested+" is not a kind of "+h.kind.TypeName)
		}
		typeName = requested
	}
	delete(bag, typeNameProperty)
	return typeName, nil
}

// Create stores a new element.
func (h *Handler[P]) Create(ctx context.Context, userID string, opts metadata.NewElementOptions, props P) (string, error) {
	bag, err := Encode(props)
	if err != nil {
		return "", err
	}
	typeName, err := h.typeFor(bag)
	if err != nil {
		return "", err
	}
	return h.client.CreateElement(ctx, userID, typeName, opts, bag)
}

// CreateFromTemplate copies a template of this kind. Only the properties
// set in replacement override the template's.
func (h *Handler[P]) CreateFromTemplate(ctx context.Context, userID string, opts metadata.TemplateOptions,
	templateGUID string, replacement P, placeholders map[string]string) (string, error) {
	bag, err := Encode(replacement)
	if err != nil {
		return "", err
	}
	typeName, err := h.typeFor(bag)
	if err != nil {
		return "", err
	}
	return h.client.CreateElementFromTemplate(ctx, userID, typeName, opts, templateGUID, bag, placeholders)
}

// Update changes the element's properties.
func (h *Handler[P]) Update(ctx context.Context, userID, guid string, opts metadata.UpdateOptions, props P) error {
	bag, err := Encode(props)
	if err != nil {
		return err
	}
	delete(bag, typeNameProperty)
	return h.client.UpdateElement(ctx, userID, guid, opts, bag)
}

// UpdateStatus changes the element's status.
func (h *Handler[P]) UpdateStatus(ctx context.Context, userID, guid string, opts metadata.UpdateOptions, status metadata.ElementStatus) error {
	return h.client.UpdateElementStatus(ctx, userID, guid, opts, status)
}

// Delete removes the element.
func (h *Handler[P]) Delete(ctx context.Context, userID, guid string, opts metadata.DeleteOptions) error {
	return h.client.DeleteElement(ctx, userID, guid, opts)
}

// Link creates a relationship. props may be nil, a bag or a struct.
func (h *Handler[P]) Link(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string,
	opts metadata.MetadataSourceOptions, props any) (string, error) {
	bag, err := Encode(props)
	if err != nil {
		return "", err
	}
	return h.client.CreateRelationship(ctx, userID, relationshipType, end1GUID, end2GUID, opts, bag)
}

// UpdateLink changes a relationship's properties.
func (h *Handler[P]) UpdateLink(ctx context.Context, userID, relationshipGUID string, opts metadata.UpdateOptions, props any) error {
	bag, err := Encode(props)
	if err != nil {
		return err
	}
	return h.client.UpdateRelationship(ctx, userID, relationshipGUID, opts, bag)
}

// Detach removes the relationships of a type between two elements and
// reports whether the elements were linked. Symmetric types match either
// end order.
func (h *Handler[P]) Detach(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string, opts metadata.MetadataSourceOptions) (bool, error) {
	linked, err := h.linked(ctx, userID, relationshipType, end1GUID, end2GUID)
	if err != nil {
		return false, err
	}
	if err := h.client.DetachElements(ctx, userID, relationshipType, end1GUID, end2GUID, opts); err != nil {
		return false, err
	}
	return linked, nil
}

func (h *Handler[P]) linked(ctx context.Context, userID, relationshipType, end1GUID, end2GUID string) (bool, error) {
	symmetric := typedefs.IsSymmetricRelationship(relationshipType)
	for start := 0; ; {
		related, err := h.client.GetRelatedElements(ctx, userID, end1GUID, relationshipType, metadata.EitherEnd,
			metadata.QueryOptions{StartFrom: start})
		if err != nil {
			return false, err
		}
		if len(related) == 0 {
			return false, nil
		}
		for _, r := range related {
			rel := r.Relationship
			if rel.End1GUID == end1GUID && rel.End2GUID == end2GUID {
				return true, nil
			}
			if symmetric && rel.End1GUID == end2GUID && rel.End2GUID == end1GUID {
				return true, nil
			}
		}
		start += len(related)
	}
}

// GetByGUID returns the element, which must be of this kind.
func (h *Handler[P]) GetByGUID(ctx context.Context, userID, guid string, opts metadata.QueryOptions) (*Element[P], error) {
	e, err := h.client.GetElementByGUID(ctx, userID, guid, opts)
	if err != nil {
		return nil, err
	}
	if !h.types.IsA(e.TypeName(), h.kind.TypeName) {
		return nil, omerrors.InvalidParameter("guid", "element "+guid+" is a "+e.TypeName()+", not a "+h.kind.TypeName)
	}
	return h.convert(e)
}

// GetByName returns elements of this kind whose name properties equal name.
func (h *Handler[P]) GetByName(ctx context.Context, userID, name string, opts metadata.QueryOptions) ([]*Element[P], error) {
	q, err := h.scope(opts)
	if err != nil {
		return nil, err
	}
	elements, err := h.client.GetElementsByPropertyValue(ctx, userID, name, h.kind.NameProperties, q)
	if err != nil {
		return nil, err
	}
	return h.convertAll(elements)
}

// Find searches elements of this kind.
func (h *Handler[P]) Find(ctx context.Context, userID, search string, opts metadata.SearchOptions) ([]*Element[P], error) {
	q, err := h.scope(opts.QueryOptions)
	if err != nil {
		return nil, err
	}
	opts.QueryOptions = q

	var elements []*metadata.Element
	if h.kind.SearchProperties == nil {
		elements, err = h.client.FindElements(ctx, userID, search, opts)
	} else {
		elements, err = h.client.FindElementsByPropertyValue(ctx, userID, search, h.kind.SearchProperties, opts)
	}
	if err != nil {
		return nil, err
	}
	return h.convertAll(elements)
}

// GetRelated returns elements of this kind linked to guid, which may be
// of any kind.
func (h *Handler[P]) GetRelated(ctx context.Context, userID, guid, relationshipType string,
	startingAtEnd metadata.End, opts metadata.QueryOptions) ([]*Related[P], error) {
	q, err := h.scope(opts)
	if err != nil {
		return nil, err
	}
	related, err := h.client.GetRelatedElements(ctx, userID, guid, relationshipType, startingAtEnd, q)
	if err != nil {
		return nil, err
	}
	out := make([]*Related[P], 0, len(related))
	for _, r := range related {
		e, err := h.convert(r.Element)
		if err != nil {
			return nil, err
		}
		out = append(out, &Related[P]{Relationship: r.Relationship, Element: e, AtEnd1: r.AtEnd1})
	}
	return out, nil
}

// Classify adds a classification to the element.
func (h *Handler[P]) Classify(ctx context.Context, userID, guid, classification string,
	opts metadata.MetadataSourceOptions, props any) error {
	bag, err := Encode(props)
	if err != nil {
		return err
	}
	return h.client.Classify(ctx, userID, guid, classification, opts, bag)
}

// Declassify removes a classification from the element.
func (h *Handler[P]) Declassify(ctx context.Context, userID, guid, classification string, opts metadata.MetadataSourceOptions) error {
	return h.client.Declassify(ctx, userID, guid, classification, opts)
}

// scope limits a query to this kind, or to a subtype the caller named.
func (h *Handler[P]) scope(opts metadata.QueryOptions) (metadata.QueryOptions, error) {
	if opts.MetadataElementTypeName == "" {
		opts.MetadataElementTypeName = h.kind.TypeName
		return opts, nil
	}
	if !h.types.IsA(opts.MetadataElementTypeName, h.kind.TypeName) {
		return opts, omerrors.InvalidParameter("metadataElementTypeName",
			opts.MetadataElementTypeName+" is not a kind of "+h.kind.TypeName)
	}
	return opts, nil
}

func (h *Handler[P]) convert(e *metadata.Element) (*Element[P], error) {
	bag := e.Properties.Clone()
	if bag == nil {
		bag = metadata.Properties{}
	}
	bag[typeNameProperty] = e.TypeName()
	props, err := Decode[P](bag)
	if err != nil {
		h.logger.Warn("Stored properties do not fit the kind",
			zap.String("guid", e.Header.GUID),
			zap.Error(err))
		return nil, err
	}
	return &Element[P]{Header: e.Header, Properties: props}, nil
}

func (h *Handler[P]) convertAll(elements []*metadata.Element) ([]*Element[P], error) {
	out := make([]*Element[P], 0, len(elements))
	for _, e := range elements {
		c, err := h.convert(e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
