package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"go.uber.org/zap"
)

const (
	qualifiedNameProperty = "qualifiedName"

	anchorGUIDProperty      = "anchorGUID"
	anchorTypeNameProperty  = "anchorTypeName"
	anchorScopeGUIDProperty = "anchorScopeGUID"
)

var placeholderPattern = regexp.MustCompile(`~\{([^}~]+)\}~`)

// CreateElement stores a new element and returns its GUID.
func (r *Repository) CreateElement(ctx context.Context, userID, typeName string, opts metadata.NewElementOptions, props metadata.Properties) (string, error) {
	if err := r.authorize(userID); err != nil {
		return "", err
	}
	var guid string
	err := r.write("create_element", func() error {
		var err error
		guid, err = r.createElement(ctx, userID, typeName, opts, props, nil)
		return err
	})
	return guid, err
}

// extraRelationship is a relationship created together with a new element.
// The new element takes the end that is not set.
type extraRelationship struct {
	typeName   string
	end1, end2 string
	props      metadata.Properties
}

func (r *Repository) createElement(ctx context.Context, userID, typeName string, opts metadata.NewElementOptions,
	props metadata.Properties, extra []extraRelationship) (string, error) {
	if typeName == "" {
		return "", omerrors.InvalidParameter("typeName", "no type name supplied")
	}
	if _, ok := r.types.LookupEntity(typeName); !ok {
		return "", omerrors.InvalidParameter("typeName", "unknown entity type "+typeName)
	}

	status := opts.InitialStatus
	if status == "" {
		status = metadata.StatusActive
	}
	if !status.Valid() || status == metadata.StatusDeleted {
		return "", omerrors.InvalidParameter("initialStatus", "status "+string(status)+" is not a valid initial status")
	}

	now := r.now().UTC()
	e := &metadata.Element{
		Header: metadata.ElementHeader{
			GUID:   r.newGUID(),
			Type:   metadata.ElementType{TypeName: typeName, SuperTypeNames: r.types.SuperTypes(typeName)},
			Status: status,
			Origin: origin(opts.MetadataSourceOptions),
			Versions: metadata.ElementVersions{
				CreatedBy:  userID,
				CreateTime: now,
				Version:    1,
			},
			EffectiveFrom: opts.EffectiveFrom,
			EffectiveTo:   opts.EffectiveTo,
		},
		Properties: props.Clone(),
	}
	if e.Properties == nil {
		e.Properties = metadata.Properties{}
	}

	if err := r.checkQualifiedName(ctx, e, ""); err != nil {
		return "", err
	}

	for _, c := range opts.InitialClassifications {
		if err := r.checkClassification(c.Name, typeName); err != nil {
			return "", err
		}
		c.Properties = c.Properties.Clone()
		e.SetClassification(c)
	}

	if opts.AnchorGUID != "" || opts.IsOwnAnchor {
		anchor := metadata.Classification{Name: typedefs.AnchorsClassification, Properties: metadata.Properties{}}
		if opts.IsOwnAnchor {
			anchor.Properties[anchorGUIDProperty] = e.Header.GUID
			anchor.Properties[anchorTypeNameProperty] = typeName
		} else {
			a, err := r.loadLiveElement(ctx, opts.AnchorGUID, "anchorGUID")
			if err != nil {
				return "", err
			}
			anchor.Properties[anchorGUIDProperty] = a.Header.GUID
			anchor.Properties[anchorTypeNameProperty] = a.TypeName()
		}
		if opts.AnchorScopeGUID != "" {
			anchor.Properties[anchorScopeGUIDProperty] = opts.AnchorScopeGUID
		}
		e.SetClassification(anchor)
	}

	if opts.ParentGUID != "" {
		if opts.ParentRelationshipTypeName == "" {
			return "", omerrors.InvalidParameter("parentRelationshipTypeName", "a parent GUID needs a relationship type")
		}
		parent := extraRelationship{typeName: opts.ParentRelationshipTypeName, props: opts.ParentRelationshipProperties}
		if opts.ParentAtEnd1 {
			parent.end1 = opts.ParentGUID
		} else {
			parent.end2 = opts.ParentGUID
		}
		extra = append([]extraRelationship{parent}, extra...)
	}

	// Validate every relationship before anything is stored.
	rels := make([]*metadata.Relationship, 0, len(extra))
	for _, x := range extra {
		end1, end2 := x.end1, x.end2
		var other *metadata.Element
		var err error
		if end1 == "" {
			end1 = e.Header.GUID
			other, err = r.loadLiveElement(ctx, end2, "end2GUID")
		} else {
			end2 = e.Header.GUID
			other, err = r.loadLiveElement(ctx, end1, "end1GUID")
		}
		if err != nil {
			return "", err
		}
		end1Elem, end2Elem := e, other
		if end2 == e.Header.GUID {
			end1Elem, end2Elem = other, e
		}
		rel, err := r.newRelationship(ctx, userID, x.typeName, end1Elem, end2Elem, opts.MetadataSourceOptions, x.props)
		if err != nil {
			return "", err
		}
		rels = append(rels, rel)
	}

	if err := r.putElement(ctx, e); err != nil {
		return "", err
	}
	for _, rel := range rels {
		if err := r.putRelationship(ctx, rel); err != nil {
			return "", r.discard(ctx, userID, e.Header.GUID, err)
		}
	}

	r.logger.Debug("Created element",
		zap.String("guid", e.Header.GUID),
		zap.String("type", typeName),
		zap.String("user", userID))
	return e.Header.GUID, nil
}

// checkQualifiedName enforces a unique qualifiedName for referenceables.
func (r *Repository) checkQualifiedName(ctx context.Context, e *metadata.Element, excludeGUID string) error {
	if !r.types.IsA(e.TypeName(), typedefs.Referenceable) {
		return nil
	}
	qn := e.Properties.GetString(qualifiedNameProperty)
	if qn == "" {
		return omerrors.InvalidParameter(qualifiedNameProperty, "a "+e.TypeName()+" needs a qualifiedName")
	}
	existing, err := r.backend.ListElements(ctx, r.types.SubTypes(typedefs.Referenceable))
	if err != nil {
		return storeError(err, "elements could not be listed")
	}
	for _, other := range existing {
		if other.Header.GUID == excludeGUID || other.Header.Status == metadata.StatusDeleted {
			continue
		}
		if other.Properties.GetString(qualifiedNameProperty) == qn {
			return omerrors.InvalidParameter(qualifiedNameProperty, "qualifiedName "+qn+" is already used by "+other.Header.GUID).
				WithDetail("existing_guid", other.Header.GUID)
		}
	}
	return nil
}

func (r *Repository) checkClassification(name, typeName string) error {
	if _, ok := r.types.LookupClassification(name); !ok {
		return omerrors.InvalidParameter("classificationName", "unknown classification "+name)
	}
	if !r.types.ValidClassification(name, typeName) {
		return omerrors.InvalidParameter("classificationName", "classification "+name+" is not valid for "+typeName)
	}
	return nil
}

// CreateElementFromTemplate copies a template element into a new element.
func (r *Repository) CreateElementFromTemplate(ctx context.Context, userID, typeName string, opts metadata.TemplateOptions,
	templateGUID string, replacement metadata.Properties, placeholders map[string]string) (string, error) {
	if err := r.authorize(userID); err != nil {
		return "", err
	}
	var guid string
	err := r.write("create_from_template", func() error {
		var err error
		guid, err = r.createFromTemplate(ctx, userID, typeName, opts, templateGUID, replacement, placeholders)
		return err
	})
	return guid, err
}

func (r *Repository) createFromTemplate(ctx context.Context, userID, typeName string, opts metadata.TemplateOptions,
	templateGUID string, replacement metadata.Properties, placeholders map[string]string) (string, error) {
	template, err := r.loadLiveElement(ctx, templateGUID, "templateGUID")
	if err != nil {
		return "", err
	}
	if typeName == "" {
		typeName = template.TypeName()
	}
	if !r.types.IsA(template.TypeName(), typeName) {
		return "", omerrors.InvalidParameter("templateGUID",
			"template "+templateGUID+" is a "+template.TypeName()+", not a "+typeName)
	}

	props := applyPlaceholders(template.Properties, placeholders).Merge(replacement)
	if opts.AllowRetrieve {
		existing, err := r.findLive(ctx, typeName, props.GetString(qualifiedNameProperty))
		if err != nil {
			return "", err
		}
		if existing != nil {
			r.logger.Debug("Retrieved element in place of template copy",
				zap.String("guid", existing.Header.GUID),
				zap.String("template", templateGUID))
			return existing.Header.GUID, nil
		}
	}

	newOpts := opts.NewElementOptions
	newOpts.InitialClassifications = templateClassifications(template, placeholders, opts.InitialClassifications)

	var extra []extraRelationship
	var anchored []*metadata.Relationship
	rels, err := r.backend.ListRelationships(ctx, template.Header.GUID)
	if err != nil {
		return "", storeError(err, "template relationships could not be listed")
	}
	for _, rel := range rels {
		if newOpts.ParentGUID != "" && rel.TypeName == newOpts.ParentRelationshipTypeName {
			continue
		}
		otherGUID := rel.OtherEnd(template.Header.GUID)
		other, err := r.backend.GetElement(ctx, otherGUID)
		if err != nil {
			if omerrors.IsNotFound(err) {
				continue
			}
			return "", storeError(err, "template relationship end could not be retrieved")
		}
		if other.Header.Status == metadata.StatusDeleted {
			continue
		}
		if other.AnchorGUID() == template.Header.GUID && otherGUID != template.Header.GUID {
			anchored = append(anchored, rel)
			continue
		}
		x := extraRelationship{typeName: rel.TypeName, props: rel.Properties}
		if rel.End1GUID == template.Header.GUID {
			x.end2 = otherGUID
		} else {
			x.end1 = otherGUID
		}
		extra = append(extra, x)
	}

	guid, err := r.createElement(ctx, userID, typeName, newOpts, props, extra)
	if err != nil {
		return "", err
	}

	for _, rel := range anchored {
		if err := r.cloneAnchored(ctx, userID, rel, template.Header.GUID, guid, typeName, opts.MetadataSourceOptions, placeholders); err != nil {
			return "", r.discard(ctx, userID, guid, err)
		}
	}
	return guid, nil
}

// findLive returns the non-deleted element of typeName with the qualified
// name, or nil.
func (r *Repository) findLive(ctx context.Context, typeName, qualifiedName string) (*metadata.Element, error) {
	if qualifiedName == "" {
		return nil, nil
	}
	candidates, err := r.backend.ListElements(ctx, r.types.SubTypes(typeName))
	if err != nil {
		return nil, storeError(err, "elements could not be listed")
	}
	for _, e := range candidates {
		if e.Header.Status != metadata.StatusDeleted && e.Properties.GetString(qualifiedNameProperty) == qualifiedName {
			return e, nil
		}
	}
	return nil, nil
}

// discard purges a partly created element and anything anchored to it,
// then returns cause.
func (r *Repository) discard(ctx context.Context, userID, guid string, cause error) error {
	e, err := r.backend.GetElement(ctx, guid)
	if err == nil {
		err = r.deleteElement(ctx, userID, e, metadata.DeletePurge, true)
	}
	if err != nil && !omerrors.IsNotFound(err) {
		r.logger.Warn("Partly created element could not be removed",
			zap.String("guid", guid),
			zap.Error(err))
	}
	return cause
}

// cloneAnchored copies an element anchored to the template, anchors the
// copy to the new element and links it the way the original was linked.
func (r *Repository) cloneAnchored(ctx context.Context, userID string, rel *metadata.Relationship,
	templateGUID, newGUID, newTypeName string, src metadata.MetadataSourceOptions, placeholders map[string]string) error {
	source, err := r.loadElement(ctx, rel.OtherEnd(templateGUID), "templateGUID")
	if err != nil {
		return err
	}

	props := applyPlaceholders(source.Properties, placeholders)
	if qn := props.GetString(qualifiedNameProperty); qn != "" && qn == source.Properties.GetString(qualifiedNameProperty) {
		props[qualifiedNameProperty] = qn + "@" + newGUID
	}

	opts := metadata.NewElementOptions{
		MetadataSourceOptions:  src,
		InitialStatus:          source.Header.Status,
		InitialClassifications: templateClassifications(source, placeholders, nil),
		AnchorGUID:             newGUID,
		EffectiveFrom:          source.Header.EffectiveFrom,
		EffectiveTo:            source.Header.EffectiveTo,
	}
	x := extraRelationship{typeName: rel.TypeName, props: rel.Properties}
	if rel.End1GUID == templateGUID {
		x.end1 = newGUID
	} else {
		x.end2 = newGUID
	}
	_, err = r.createElement(ctx, userID, source.TypeName(), opts, props, []extraRelationship{x})
	return err
}

// templateClassifications copies the classifications a new element takes
// from a template, with overrides replacing copies of the same name.
func templateClassifications(template *metadata.Element, placeholders map[string]string, overrides []metadata.Classification) []metadata.Classification {
	var out []metadata.Classification
	for _, c := range template.Header.Classifications {
		switch c.Name {
		case typedefs.TemplateClassification, typedefs.AnchorsClassification, typedefs.MementoClassification:
			continue
		}
		c.Properties = applyPlaceholders(c.Properties, placeholders)
		out = append(out, c)
	}
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = o
				replaced = true
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// applyPlaceholders returns a copy of props with ~{name}~ markers in string
// values replaced. Unknown placeholders are left as they are.
func applyPlaceholders(props metadata.Properties, placeholders map[string]string) metadata.Properties {
	out := props.Clone()
	if len(placeholders) == 0 || out == nil {
		return out
	}
	for k, v := range out {
		out[k] = replaceValue(v, placeholders)
	}
	return out
}

func replaceValue(v any, placeholders map[string]string) any {
	switch t := v.(type) {
	case string:
		return placeholderPattern.ReplaceAllStringFunc(t, func(m string) string {
			name := placeholderPattern.FindStringSubmatch(m)[1]
			if value, ok := placeholders[name]; ok {
				return value
			}
			return m
		})
	case []string:
		for i := range t {
			t[i] = replaceValue(t[i], placeholders).(string)
		}
		return t
	case []any:
		for i := range t {
			t[i] = replaceValue(t[i], placeholders)
		}
		return t
	case map[string]string:
		for k, s := range t {
			t[k] = replaceValue(s, placeholders).(string)
		}
		return t
	case map[string]any:
		for k, item := range t {
			t[k] = replaceValue(item, placeholders)
		}
		return t
	case metadata.Properties:
		for k, item := range t {
			t[k] = replaceValue(item, placeholders)
		}
		return t
	default:
		return v
	}
}

// UpdateElement replaces or merges the element's properties.
func (r *Repository) UpdateElement(ctx context.Context, userID, guid string, opts metadata.UpdateOptions, props metadata.Properties) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	return r.write("update_element", func() error {
		e, err := r.loadLiveElement(ctx, guid, "elementGUID")
		if err != nil {
			return err
		}
		if opts.MergeUpdate {
			e.Properties = e.Properties.Merge(props)
		} else {
			e.Properties = props.Clone()
			if e.Properties == nil {
				e.Properties = metadata.Properties{}
			}
		}
		if err := r.checkQualifiedName(ctx, e, e.Header.GUID); err != nil {
			return err
		}
		r.touch(&e.Header.Versions, userID)
		return r.putElement(ctx, e)
	})
}

// UpdateElementStatus changes the element's status. DELETED is reached
// through DeleteElement only.
func (r *Repository) UpdateElementStatus(ctx context.Context, userID, guid string, _ metadata.UpdateOptions, status metadata.ElementStatus) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	if !status.Valid() || status == metadata.StatusDeleted {
		return omerrors.InvalidParameter("newElementStatus", "status "+string(status)+" cannot be set directly")
	}
	return r.write("update_element_status", func() error {
		e, err := r.loadLiveElement(ctx, guid, "elementGUID")
		if err != nil {
			return err
		}
		if e.Header.Status == status {
			return nil
		}
		e.Header.Status = status
		r.touch(&e.Header.Versions, userID)
		return r.putElement(ctx, e)
	})
}

// DeleteElement removes the element using the requested delete method.
func (r *Repository) DeleteElement(ctx context.Context, userID, guid string, opts metadata.DeleteOptions) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	method, err := metadata.ParseDeleteMethod(string(opts.DeleteMethod))
	if err != nil {
		return omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, "bad delete method")
	}
	return r.write("delete_element", func() error {
		e, err := r.loadElement(ctx, guid, "elementGUID")
		if err != nil {
			return err
		}
		return r.deleteElement(ctx, userID, e, method, opts.Cascade)
	})
}

func (r *Repository) deleteElement(ctx context.Context, userID string, e *metadata.Element, method metadata.DeleteMethod, cascade bool) error {
	if cascade {
		anchored, err := r.anchoredTo(ctx, e.Header.GUID)
		if err != nil {
			return err
		}
		for _, child := range anchored {
			if err := r.deleteElement(ctx, userID, child, method, false); err != nil {
				return err
			}
		}
	}

	rels, err := r.backend.ListRelationships(ctx, e.Header.GUID)
	if err != nil {
		return storeError(err, "relationships could not be listed")
	}

	if method == metadata.DeleteLookForLineage {
		method = metadata.DeletePurge
		for _, rel := range rels {
			if typedefs.IsLineageRelationship(rel.TypeName) {
				method = metadata.DeleteArchive
				break
			}
		}
	}

	switch method {
	case metadata.DeletePurge:
		for _, rel := range rels {
			if err := r.backend.DeleteRelationship(ctx, rel.GUID); err != nil {
				return storeError(err, "relationship "+rel.GUID+" could not be removed")
			}
		}
		if err := r.backend.DeleteElement(ctx, e.Header.GUID); err != nil {
			return storeError(err, "element "+e.Header.GUID+" could not be removed")
		}
	case metadata.DeleteSoft:
		if e.Header.Status == metadata.StatusDeleted {
			return omerrors.InvalidParameter("elementGUID", "element "+e.Header.GUID+" is already deleted")
		}
		e.Header.Status = metadata.StatusDeleted
		r.touch(&e.Header.Versions, userID)
		if err := r.putElement(ctx, e); err != nil {
			return err
		}
	case metadata.DeleteArchive:
		if e.HasClassification(typedefs.MementoClassification) {
			return nil
		}
		e.SetClassification(metadata.Classification{
			Name: typedefs.MementoClassification,
			Properties: metadata.Properties{
				"archiveDate": r.now().UTC().Format(time.RFC3339Nano),
				"archiveUser": userID,
			},
		})
		r.touch(&e.Header.Versions, userID)
		if err := r.putElement(ctx, e); err != nil {
			return err
		}
	}

	r.logger.Debug("Deleted element",
		zap.String("guid", e.Header.GUID),
		zap.String("method", string(method)),
		zap.String("user", userID))
	return nil
}

func (r *Repository) anchoredTo(ctx context.Context, anchorGUID string) ([]*metadata.Element, error) {
	all, err := r.backend.ListElements(ctx, nil)
	if err != nil {
		return nil, storeError(err, "elements could not be listed")
	}
	var out []*metadata.Element
	for _, e := range all {
		if e.Header.GUID != anchorGUID && e.AnchorGUID() == anchorGUID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Classify adds the classification, or replaces its properties when the
// element already carries it.
func (r *Repository) Classify(ctx context.Context, userID, guid, name string, src metadata.MetadataSourceOptions, props metadata.Properties) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	return r.write("classify", func() error {
		e, err := r.loadLiveElement(ctx, guid, "elementGUID")
		if err != nil {
			return err
		}
		if err := r.checkClassification(name, e.TypeName()); err != nil {
			return err
		}
		c := metadata.Classification{Name: name, Properties: props.Clone()}
		if src.EffectiveTime != nil {
			from := *src.EffectiveTime
			c.EffectiveFrom = &from
		}
		e.SetClassification(c)
		r.touch(&e.Header.Versions, userID)
		return r.putElement(ctx, e)
	})
}

// Declassify removes the classification. An element without it is left
// unchanged.
func (r *Repository) Declassify(ctx context.Context, userID, guid, name string, _ metadata.MetadataSourceOptions) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	return r.write("declassify", func() error {
		e, err := r.loadLiveElement(ctx, guid, "elementGUID")
		if err != nil {
			return err
		}
		if _, ok := r.types.LookupClassification(name); !ok {
			return omerrors.InvalidParameter("classificationName", "unknown classification "+name)
		}
		if !e.RemoveClassification(name) {
			return nil
		}
		r.touch(&e.Header.Versions, userID)
		return r.putElement(ctx, e)
	})
}
