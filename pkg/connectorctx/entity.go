package connectorctx

import (
	"context"
	"time"

	"github.com/ajitpratap0/metactx/pkg/audit"
	"github.com/ajitpratap0/metactx/pkg/handler"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"go.uber.org/zap"
)

// CreateOption qualifies a create or create-from-template request.
type CreateOption func(*metadata.TemplateOptions)

// WithAnchor anchors the new element to anchorGUID.
func WithAnchor(anchorGUID string) CreateOption {
	return func(o *metadata.TemplateOptions) { o.AnchorGUID = anchorGUID }
}

// AsOwnAnchor makes the new element its own anchor.
func AsOwnAnchor() CreateOption {
	return func(o *metadata.TemplateOptions) { o.IsOwnAnchor = true }
}

// WithAnchorScope sets the scope of the new element's anchor.
func WithAnchorScope(scopeGUID string) CreateOption {
	return func(o *metadata.TemplateOptions) { o.AnchorScopeGUID = scopeGUID }
}

// WithParent links the new element to parentGUID. atEnd1 places the parent
// at end 1 of the relationship.
func WithParent(parentGUID, relationshipType string, props metadata.Properties, atEnd1 bool) CreateOption {
	return func(o *metadata.TemplateOptions) {
		o.ParentGUID = parentGUID
		o.ParentRelationshipTypeName = relationshipType
		o.ParentRelationshipProperties = props
		o.ParentAtEnd1 = atEnd1
	}
}

// WithInitialStatus sets the status of the new element.
func WithInitialStatus(s metadata.ElementStatus) CreateOption {
	return func(o *metadata.TemplateOptions) { o.InitialStatus = s }
}

// WithClassification adds a classification to the new element.
func WithClassification(name string, props metadata.Properties) CreateOption {
	return func(o *metadata.TemplateOptions) {
		o.InitialClassifications = append(o.InitialClassifications, metadata.Classification{Name: name, Properties: props})
	}
}

// WithEffectivity limits when the new element is visible.
func WithEffectivity(from, to *time.Time) CreateOption {
	return func(o *metadata.TemplateOptions) {
		o.EffectiveFrom = copyTime(from)
		o.EffectiveTo = copyTime(to)
	}
}

// AllowRetrieve returns an existing element with the same qualified name
// instead of failing. Templates only.
func AllowRetrieve() CreateOption {
	return func(o *metadata.TemplateOptions) { o.AllowRetrieve = true }
}

// EntityClient is the generic client for one kind.
type EntityClient[P any] struct {
	*ClientBase
	handler *handler.Handler[P]
	kind    string
}

func newEntityClient[P any](base *ClientBase, kind handler.Kind) (*EntityClient[P], error) {
	h, err := handler.New[P](base.client, kind, base.logger)
	if err != nil {
		return nil, err
	}
	return &EntityClient[P]{ClientBase: base, handler: h, kind: kind.TypeName}, nil
}

// TypeName returns the kind the client manages.
func (c *EntityClient[P]) TypeName() string {
	return c.kind
}

// Create stores a new element and returns its GUID.
func (c *EntityClient[P]) Create(ctx context.Context, props P, opts ...CreateOption) (string, error) {
	o := c.TemplateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	var guid string
	err := c.call(ctx, c.kind, "create", func(ctx context.Context) error {
		var err error
		guid, err = c.handler.Create(ctx, c.userID, o.NewElementOptions, props)
		return err
	})
	if err != nil {
		return "", err
	}
	c.created(guid)
	return guid, nil
}

// CreateFromTemplate copies a template. Only the properties set in
// replacement override the template's.
func (c *EntityClient[P]) CreateFromTemplate(ctx context.Context, templateGUID string, replacement P,
	placeholders map[string]string, opts ...CreateOption) (string, error) {
	o := c.TemplateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	var guid string
	err := c.call(ctx, c.kind, "create_from_template", func(ctx context.Context) error {
		var err error
		guid, err = c.handler.CreateFromTemplate(ctx, c.userID, o, templateGUID, replacement, placeholders)
		return err
	})
	if err != nil {
		return "", err
	}
	c.created(guid)
	return guid, nil
}

// Update changes an element's properties. merge overlays the set properties
// onto the stored ones; otherwise they replace them.
func (c *EntityClient[P]) Update(ctx context.Context, guid string, props P, merge bool) error {
	err := c.call(ctx, c.kind, "update", func(ctx context.Context) error {
		return c.handler.Update(ctx, c.userID, guid, c.UpdateOptions(merge), props)
	})
	if err != nil {
		return err
	}
	c.reportUpdate(guid)
	return nil
}

// UpdateStatus changes an element's status.
func (c *EntityClient[P]) UpdateStatus(ctx context.Context, guid string, status metadata.ElementStatus) error {
	err := c.call(ctx, c.kind, "update_status", func(ctx context.Context) error {
		return c.handler.UpdateStatus(ctx, c.userID, guid, c.UpdateOptions(true), status)
	})
	if err != nil {
		return err
	}
	c.reportUpdate(guid)
	return nil
}

// Delete removes an element with the context's delete method. cascade also
// removes the elements anchored to it.
func (c *EntityClient[P]) Delete(ctx context.Context, guid string, cascade bool) error {
	err := c.call(ctx, c.kind, "delete", func(ctx context.Context) error {
		return c.handler.Delete(ctx, c.userID, guid, c.DeleteOptions(cascade))
	})
	if err != nil {
		return err
	}
	c.audit.Log(audit.ElementDeleted, c.connectorName, c.kind, guid)
	c.reportDelete(guid)
	return nil
}

// GetByGUID returns one element of this kind.
func (c *EntityClient[P]) GetByGUID(ctx context.Context, guid string) (*handler.Element[P], error) {
	var e *handler.Element[P]
	err := c.call(ctx, c.kind, "get_by_guid", func(ctx context.Context) error {
		var err error
		e, err = c.handler.GetByGUID(ctx, c.userID, guid, c.QueryOptions(0, 0))
		return err
	})
	return e, err
}

// GetByName returns the elements whose name properties equal name.
func (c *EntityClient[P]) GetByName(ctx context.Context, name string, startFrom, pageSize int) ([]*handler.Element[P], error) {
	var out []*handler.Element[P]
	err := c.call(ctx, c.kind, "get_by_name", func(ctx context.Context) error {
		var err error
		out, err = c.handler.GetByName(ctx, c.userID, name, c.QueryOptions(startFrom, pageSize))
		return err
	})
	return out, err
}

// Find returns the elements whose searchable properties contain search.
// An empty search string or "*" matches every element.
func (c *EntityClient[P]) Find(ctx context.Context, search string, startFrom, pageSize int) ([]*handler.Element[P], error) {
	return c.FindWith(ctx, search, c.SearchOptions(startFrom, pageSize))
}

// FindWith searches with explicit match options. Visibility and sequencing
// still come from the context.
func (c *EntityClient[P]) FindWith(ctx context.Context, search string, opts metadata.SearchOptions) ([]*handler.Element[P], error) {
	q := c.QueryOptions(opts.StartFrom, opts.PageSize)
	q.LimitResultsByStatus = opts.LimitResultsByStatus
	q.MetadataElementTypeName = opts.MetadataElementTypeName
	opts.QueryOptions = q

	var out []*handler.Element[P]
	err := c.call(ctx, c.kind, "find", func(ctx context.Context) error {
		var err error
		out, err = c.handler.Find(ctx, c.userID, search, opts)
		return err
	})
	return out, err
}

// GetRelated returns elements of this kind linked to guid through
// relationshipType. An empty type matches every relationship.
func (c *EntityClient[P]) GetRelated(ctx context.Context, guid, relationshipType string, startingAtEnd metadata.End,
	startFrom, pageSize int) ([]*handler.Related[P], error) {
	var out []*handler.Related[P]
	err := c.call(ctx, c.kind, "get_related", func(ctx context.Context) error {
		var err error
		out, err = c.handler.GetRelated(ctx, c.userID, guid, relationshipType, startingAtEnd, c.QueryOptions(startFrom, pageSize))
		return err
	})
	return out, err
}

// Classify adds a classification to an element of this kind.
func (c *EntityClient[P]) Classify(ctx context.Context, guid, classification string, props any) error {
	err := c.call(ctx, c.kind, "classify", func(ctx context.Context) error {
		return c.handler.Classify(ctx, c.userID, guid, classification, c.MetadataSourceOptions(), props)
	})
	if err != nil {
		return err
	}
	c.reportUpdate(guid)
	return nil
}

// Declassify removes a classification from an element of this kind.
func (c *EntityClient[P]) Declassify(ctx context.Context, guid, classification string) error {
	err := c.call(ctx, c.kind, "declassify", func(ctx context.Context) error {
		return c.handler.Declassify(ctx, c.userID, guid, classification, c.MetadataSourceOptions())
	})
	if err != nil {
		return err
	}
	c.reportUpdate(guid)
	return nil
}

// link creates a relationship and reports an update of end 1.
func (c *EntityClient[P]) link(ctx context.Context, relationshipType, end1GUID, end2GUID string, props any) error {
	err := c.call(ctx, c.kind, "link_"+relationshipType, func(ctx context.Context) error {
		_, err := c.handler.Link(ctx, c.userID, relationshipType, end1GUID, end2GUID, c.MetadataSourceOptions(), props)
		return err
	})
	if err != nil {
		return err
	}
	c.reportUpdate(end1GUID)
	return nil
}

// detach removes the relationships of a type between two elements and,
// when they were linked, reports an update of end 1.
func (c *EntityClient[P]) detach(ctx context.Context, relationshipType, end1GUID, end2GUID string) error {
	var linked bool
	err := c.call(ctx, c.kind, "detach_"+relationshipType, func(ctx context.Context) error {
		var err error
		linked, err = c.handler.Detach(ctx, c.userID, relationshipType, end1GUID, end2GUID, c.MetadataSourceOptions())
		return err
	})
	if err != nil || !linked {
		return err
	}
	c.reportUpdate(end1GUID)
	return nil
}

func (c *EntityClient[P]) created(guid string) {
	if guid == "" {
		return
	}
	c.logger.Debug("Element created", zap.String("type", c.kind), zap.String("guid", guid))
	c.audit.Log(audit.ElementCreated, c.connectorName, c.kind, guid)
	c.reportCreation(guid)
}
