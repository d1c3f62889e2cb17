package repository

import (
	"context"
	"sort"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
)

// newRelationship validates a relationship between two elements and builds
// it without storing it.
func (r *Repository) newRelationship(ctx context.Context, userID, typeName string, end1, end2 *metadata.Element,
	src metadata.MetadataSourceOptions, props metadata.Properties) (*metadata.Relationship, error) {
	def, ok := r.types.LookupRelationship(typeName)
	if !ok {
		return nil, omerrors.InvalidParameter("relationshipTypeName", "unknown relationship type "+typeName)
	}
	if !r.types.IsA(end1.TypeName(), def.End1.EntityType) {
		return nil, omerrors.InvalidParameter("end1GUID",
			"a "+end1.TypeName()+" cannot be at end 1 of "+typeName+"; expected "+def.End1.EntityType)
	}
	if !r.types.IsA(end2.TypeName(), def.End2.EntityType) {
		return nil, omerrors.InvalidParameter("end2GUID",
			"a "+end2.TypeName()+" cannot be at end 2 of "+typeName+"; expected "+def.End2.EntityType)
	}

	// End1.AtMostOne: the end 2 element may have only one end 1 partner.
	if def.End1.AtMostOne {
		n, err := r.countRelationships(ctx, typeName, end2.Header.GUID, metadata.End2)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, omerrors.InvalidParameter("end2GUID",
				"element "+end2.Header.GUID+" already has a "+def.End1.AttributeName+" through "+typeName)
		}
	}
	if def.End2.AtMostOne {
		n, err := r.countRelationships(ctx, typeName, end1.Header.GUID, metadata.End1)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, omerrors.InvalidParameter("end1GUID",
				"element "+end1.Header.GUID+" already has a "+def.End2.AttributeName+" through "+typeName)
		}
	}

	now := r.now().UTC()
	rel := &metadata.Relationship{
		GUID:       r.newGUID(),
		TypeName:   typeName,
		End1GUID:   end1.Header.GUID,
		End2GUID:   end2.Header.GUID,
		Properties: props.Clone(),
		Status:     metadata.StatusActive,
		Origin:     origin(src),
		Versions: metadata.ElementVersions{
			CreatedBy:  userID,
			CreateTime: now,
			Version:    1,
		},
	}
	if src.EffectiveTime != nil {
		from := *src.EffectiveTime
		rel.EffectiveFrom = &from
	}
	return rel, nil
}

// countRelationships counts relationships of typeName where guid sits at
// the given end.
func (r *Repository) countRelationships(ctx context.Context, typeName, guid string, at metadata.End) (int, error) {
	rels, err := r.backend.ListRelationships(ctx, guid)
	if err != nil {
		return 0, storeError(err, "relationships could not be listed")
	}
	n := 0
	for _, rel := range rels {
		if rel.TypeName != typeName || rel.Status == metadata.StatusDeleted {
			continue
		}
		if (at == metadata.End1 && rel.End1GUID == guid) || (at == metadata.End2 && rel.End2GUID == guid) {
			n++
		}
	}
	return n, nil
}

// CreateRelationship links two elements and returns the relationship GUID.
func (r *Repository) CreateRelationship(ctx context.Context, userID, typeName, end1GUID, end2GUID string,
	src metadata.MetadataSourceOptions, props metadata.Properties) (string, error) {
	if err := r.authorize(userID); err != nil {
		return "", err
	}
	var guid string
	err := r.write("create_relationship", func() error {
		end1, err := r.loadLiveElement(ctx, end1GUID, "end1GUID")
		if err != nil {
			return err
		}
		end2, err := r.loadLiveElement(ctx, end2GUID, "end2GUID")
		if err != nil {
			return err
		}
		rel, err := r.newRelationship(ctx, userID, typeName, end1, end2, src, props)
		if err != nil {
			return err
		}
		if err := r.putRelationship(ctx, rel); err != nil {
			return err
		}
		guid = rel.GUID
		return nil
	})
	return guid, err
}

// UpdateRelationship replaces or merges the relationship's properties.
func (r *Repository) UpdateRelationship(ctx context.Context, userID, relationshipGUID string, opts metadata.UpdateOptions, props metadata.Properties) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	return r.write("update_relationship", func() error {
		rel, err := r.loadRelationship(ctx, relationshipGUID)
		if err != nil {
			return err
		}
		if opts.MergeUpdate {
			rel.Properties = rel.Properties.Merge(props)
		} else {
			rel.Properties = props.Clone()
		}
		r.touch(&rel.Versions, userID)
		return r.putRelationship(ctx, rel)
	})
}

// DeleteRelationship removes a relationship.
func (r *Repository) DeleteRelationship(ctx context.Context, userID, relationshipGUID string, _ metadata.MetadataSourceOptions) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	return r.write("delete_relationship", func() error {
		if _, err := r.loadRelationship(ctx, relationshipGUID); err != nil {
			return err
		}
		return storeError(r.backend.DeleteRelationship(ctx, relationshipGUID), "relationship could not be removed")
	})
}

// DetachElements removes every relationship of typeName between the two
// elements. Symmetric types match either end order. Elements that are not
// linked are left alone.
func (r *Repository) DetachElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string, _ metadata.MetadataSourceOptions) error {
	if err := r.authorize(userID); err != nil {
		return err
	}
	if _, ok := r.types.LookupRelationship(typeName); !ok {
		return omerrors.InvalidParameter("relationshipTypeName", "unknown relationship type "+typeName)
	}
	return r.write("detach_elements", func() error {
		if _, err := r.loadElement(ctx, end1GUID, "end1GUID"); err != nil {
			return err
		}
		if _, err := r.loadElement(ctx, end2GUID, "end2GUID"); err != nil {
			return err
		}
		rels, err := r.backend.ListRelationships(ctx, end1GUID)
		if err != nil {
			return storeError(err, "relationships could not be listed")
		}
		for _, rel := range rels {
			if rel.TypeName != typeName || !linksEnds(rel, end1GUID, end2GUID) {
				continue
			}
			if err := r.backend.DeleteRelationship(ctx, rel.GUID); err != nil {
				return storeError(err, "relationship "+rel.GUID+" could not be removed")
			}
		}
		return nil
	})
}

// GetRelationshipByGUID returns a relationship effective at the query time.
func (r *Repository) GetRelationshipByGUID(ctx context.Context, userID, relationshipGUID string, opts metadata.QueryOptions) (*metadata.Relationship, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	rel, err := r.loadRelationship(ctx, relationshipGUID)
	if err != nil {
		return nil, err
	}
	if !rel.IsEffective(opts.EffectiveTime) {
		return nil, omerrors.InvalidParameter("relationshipGUID", "relationship "+relationshipGUID+" is not effective at the requested time")
	}
	return rel, nil
}

// GetRelatedElements returns the elements linked to guid. An empty
// relationship type matches every type; startingAtEnd restricts which end
// guid must occupy.
func (r *Repository) GetRelatedElements(ctx context.Context, userID, guid, relationshipTypeName string,
	startingAtEnd metadata.End, opts metadata.QueryOptions) ([]*metadata.RelatedElement, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	if relationshipTypeName != "" {
		if _, ok := r.types.LookupRelationship(relationshipTypeName); !ok {
			return nil, omerrors.InvalidParameter("relationshipTypeName", "unknown relationship type "+relationshipTypeName)
		}
	}
	if startingAtEnd < metadata.EitherEnd || startingAtEnd > metadata.End2 {
		return nil, omerrors.InvalidParameter("startingAtEnd", "starting end must be 0, 1 or 2")
	}
	pageSize, err := r.checkPaging(opts)
	if err != nil {
		return nil, err
	}
	v, err := r.newVisibility(opts)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadElement(ctx, guid, "elementGUID"); err != nil {
		return nil, err
	}

	rels, err := r.backend.ListRelationships(ctx, guid)
	if err != nil {
		return nil, storeError(err, "relationships could not be listed")
	}

	var out []*metadata.RelatedElement
	for _, rel := range rels {
		if relationshipTypeName != "" && rel.TypeName != relationshipTypeName {
			continue
		}
		if !rel.IsEffective(opts.EffectiveTime) {
			continue
		}
		var otherGUID string
		var atEnd1 bool
		switch {
		case rel.End1GUID == guid && startingAtEnd != metadata.End2:
			otherGUID, atEnd1 = rel.End2GUID, false
		case rel.End2GUID == guid && startingAtEnd != metadata.End1:
			otherGUID, atEnd1 = rel.End1GUID, true
		default:
			continue
		}
		other, err := r.backend.GetElement(ctx, otherGUID)
		if err != nil {
			if omerrors.IsNotFound(err) {
				continue
			}
			return nil, storeError(err, "related element could not be retrieved")
		}
		if !v.visible(other) {
			continue
		}
		out = append(out, &metadata.RelatedElement{Relationship: rel, Element: other, AtEnd1: atEnd1})
	}

	less, err := elementOrder(opts)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Element.Header.GUID == out[j].Element.Header.GUID {
			return out[i].Relationship.GUID < out[j].Relationship.GUID
		}
		return less(out[i].Element, out[j].Element)
	})
	return page(out, opts.StartFrom, pageSize), nil
}

// linksEnds reports whether rel joins end1GUID to end2GUID, in either order
// for symmetric types.
func linksEnds(rel *metadata.Relationship, end1GUID, end2GUID string) bool {
	if rel.End1GUID == end1GUID && rel.End2GUID == end2GUID {
		return true
	}
	return typedefs.IsSymmetricRelationship(rel.TypeName) && rel.End1GUID == end2GUID && rel.End2GUID == end1GUID
}
