package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
)

// visibility decides which stored elements a query may see.
type visibility struct {
	at                     *time.Time
	forLineage             bool
	forDuplicateProcessing bool
	statuses               map[metadata.ElementStatus]bool
	types                  map[string]bool
}

func (r *Repository) newVisibility(opts metadata.QueryOptions) (*visibility, error) {
	v := &visibility{
		at:                     opts.EffectiveTime,
		forLineage:             opts.ForLineage,
		forDuplicateProcessing: opts.ForDuplicateProcessing,
	}
	if len(opts.LimitResultsByStatus) > 0 {
		v.statuses = make(map[metadata.ElementStatus]bool, len(opts.LimitResultsByStatus))
		for _, s := range opts.LimitResultsByStatus {
			if !s.Valid() {
				return nil, omerrors.InvalidParameter("limitResultsByStatus", "unknown status "+string(s))
			}
			v.statuses[s] = true
		}
	}
	if opts.MetadataElementTypeName != "" {
		if _, ok := r.types.LookupEntity(opts.MetadataElementTypeName); !ok {
			return nil, omerrors.InvalidParameter("metadataElementTypeName", "unknown entity type "+opts.MetadataElementTypeName)
		}
		v.types = make(map[string]bool)
		for _, t := range r.types.SubTypes(opts.MetadataElementTypeName) {
			v.types[t] = true
		}
	}
	return v, nil
}

// typeNames lists the types to fetch from the backend; nil means all.
func (v *visibility) typeNames() []string {
	if v.types == nil {
		return nil
	}
	out := make([]string, 0, len(v.types))
	for t := range v.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (v *visibility) visible(e *metadata.Element) bool {
	if v.types != nil && !v.types[e.TypeName()] {
		return false
	}
	if v.statuses != nil {
		if !v.statuses[e.Header.Status] {
			return false
		}
	} else if e.Header.Status == metadata.StatusDeleted {
		return false
	}
	if !v.forLineage && e.HasClassification(typedefs.MementoClassification) {
		return false
	}
	if !v.forDuplicateProcessing && e.HasClassification(typedefs.KnownDuplicateClassification) {
		return false
	}
	return e.IsEffective(v.at)
}

// checkPaging validates paging and returns the effective page size.
func (r *Repository) checkPaging(opts metadata.QueryOptions) (int, error) {
	if opts.StartFrom < 0 {
		return 0, omerrors.InvalidParameter("startFrom", "startFrom must not be negative")
	}
	switch {
	case opts.PageSize < 0:
		return 0, omerrors.InvalidParameter("pageSize", "pageSize must not be negative")
	case opts.PageSize == 0:
		return r.maxPageSize, nil
	case opts.PageSize > r.maxPageSize:
		return 0, omerrors.InvalidParameter("pageSize",
			fmt.Sprintf("pageSize %d exceeds the maximum of %d", opts.PageSize, r.maxPageSize))
	default:
		return opts.PageSize, nil
	}
}

func page[T any](items []T, startFrom, pageSize int) []T {
	if startFrom >= len(items) {
		return []T{}
	}
	end := startFrom + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[startFrom:end]
}

// elementOrder returns the ordering for a sequencing order. Ties fall back
// to GUID so every order is deterministic.
func elementOrder(opts metadata.QueryOptions) (func(a, b *metadata.Element) bool, error) {
	byGUID := func(a, b *metadata.Element) bool { return a.Header.GUID < b.Header.GUID }
	byTime := func(get func(*metadata.Element) time.Time, recentFirst bool) func(a, b *metadata.Element) bool {
		return func(a, b *metadata.Element) bool {
			ta, tb := get(a), get(b)
			if ta.Equal(tb) {
				return byGUID(a, b)
			}
			if recentFirst {
				return ta.After(tb)
			}
			return ta.Before(tb)
		}
	}
	created := func(e *metadata.Element) time.Time { return e.Header.Versions.CreateTime }
	updated := func(e *metadata.Element) time.Time {
		if e.Header.Versions.UpdateTime.IsZero() {
			return e.Header.Versions.CreateTime
		}
		return e.Header.Versions.UpdateTime
	}
	byProperty := func(descending bool) (func(a, b *metadata.Element) bool, error) {
		if opts.SequencingProperty == "" {
			return nil, omerrors.InvalidParameter("sequencingProperty", "property sequencing needs a property name")
		}
		name := opts.SequencingProperty
		return func(a, b *metadata.Element) bool {
			pa, pb := fmt.Sprint(a.Properties[name]), fmt.Sprint(b.Properties[name])
			if pa == pb {
				return byGUID(a, b)
			}
			if descending {
				return pa > pb
			}
			return pa < pb
		}, nil
	}

	switch opts.SequencingOrder {
	case "", metadata.SequencingAny, metadata.SequencingGUID:
		return byGUID, nil
	case metadata.SequencingCreationDateRecent:
		return byTime(created, true), nil
	case metadata.SequencingCreationDateOldest:
		return byTime(created, false), nil
	case metadata.SequencingLastUpdateRecent:
		return byTime(updated, true), nil
	case metadata.SequencingLastUpdateOldest:
		return byTime(updated, false), nil
	case metadata.SequencingPropertyAscending:
		return byProperty(false)
	case metadata.SequencingPropertyDescending:
		return byProperty(true)
	default:
		return nil, omerrors.InvalidParameter("sequencingOrder", "unknown sequencing order "+string(opts.SequencingOrder))
	}
}

// query lists the visible elements accepted by match, ordered and paged.
func (r *Repository) query(ctx context.Context, opts metadata.QueryOptions, match func(*metadata.Element) bool) ([]*metadata.Element, error) {
	pageSize, err := r.checkPaging(opts)
	if err != nil {
		return nil, err
	}
	less, err := elementOrder(opts)
	if err != nil {
		return nil, err
	}
	v, err := r.newVisibility(opts)
	if err != nil {
		return nil, err
	}

	all, err := r.backend.ListElements(ctx, v.typeNames())
	if err != nil {
		return nil, storeError(err, "elements could not be listed")
	}
	out := make([]*metadata.Element, 0, len(all))
	for _, e := range all {
		if v.visible(e) && match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return page(out, opts.StartFrom, pageSize), nil
}

// GetElementByGUID returns a visible element.
func (r *Repository) GetElementByGUID(ctx context.Context, userID, guid string, opts metadata.QueryOptions) (*metadata.Element, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	v, err := r.newVisibility(opts)
	if err != nil {
		return nil, err
	}
	e, err := r.loadElement(ctx, guid, "elementGUID")
	if err != nil {
		return nil, err
	}
	if !v.visible(e) {
		return nil, omerrors.InvalidParameter("elementGUID", "element "+guid+" is not visible to this request")
	}
	return e, nil
}

// GetElementsByPropertyValue returns elements where one of the named
// properties equals value exactly. No names means any string property.
func (r *Repository) GetElementsByPropertyValue(ctx context.Context, userID, value string, propertyNames []string, opts metadata.QueryOptions) ([]*metadata.Element, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	if value == "" {
		return nil, omerrors.InvalidParameter("propertyValue", "no property value supplied")
	}
	return r.query(ctx, opts, func(e *metadata.Element) bool {
		return anyString(e.Properties, propertyNames, func(s string) bool { return s == value })
	})
}

// FindElementsByPropertyValue searches the named properties.
func (r *Repository) FindElementsByPropertyValue(ctx context.Context, userID, search string, propertyNames []string, opts metadata.SearchOptions) ([]*metadata.Element, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	m := newMatcher(search, opts)
	return r.query(ctx, opts.QueryOptions, func(e *metadata.Element) bool {
		return m.all || anyString(e.Properties, propertyNames, m.match)
	})
}

// FindElements searches every string property.
func (r *Repository) FindElements(ctx context.Context, userID, search string, opts metadata.SearchOptions) ([]*metadata.Element, error) {
	return r.FindElementsByPropertyValue(ctx, userID, search, nil, opts)
}

// GetElementsByClassification returns elements carrying a classification
// effective at the query time.
func (r *Repository) GetElementsByClassification(ctx context.Context, userID, classificationName string, opts metadata.QueryOptions) ([]*metadata.Element, error) {
	if err := r.authorize(userID); err != nil {
		return nil, err
	}
	if _, ok := r.types.LookupClassification(classificationName); !ok {
		return nil, omerrors.InvalidParameter("classificationName", "unknown classification "+classificationName)
	}
	return r.query(ctx, opts, func(e *metadata.Element) bool {
		c, ok := e.Classification(classificationName)
		if !ok {
			return false
		}
		return classificationEffective(c, opts.EffectiveTime)
	})
}

func classificationEffective(c *metadata.Classification, at *time.Time) bool {
	if at == nil {
		return true
	}
	if c.EffectiveFrom != nil && at.Before(*c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || at.Before(*c.EffectiveTo)
}

type matcher struct {
	search     string
	all        bool
	startsWith bool
	endsWith   bool
	ignoreCase bool
}

func newMatcher(search string, opts metadata.SearchOptions) *matcher {
	m := &matcher{
		search:     search,
		all:        search == "" || search == "*",
		startsWith: opts.StartsWith,
		endsWith:   opts.EndsWith,
		ignoreCase: opts.IgnoreCase,
	}
	if m.ignoreCase {
		m.search = strings.ToLower(search)
	}
	return m
}

func (m *matcher) match(s string) bool {
	if m.all {
		return true
	}
	if m.ignoreCase {
		s = strings.ToLower(s)
	}
	switch {
	case m.startsWith && m.endsWith:
		return strings.HasPrefix(s, m.search) && strings.HasSuffix(s, m.search)
	case m.startsWith:
		return strings.HasPrefix(s, m.search)
	case m.endsWith:
		return strings.HasSuffix(s, m.search)
	default:
		return strings.Contains(s, m.search)
	}
}

// anyString applies fn to the string values of the named properties, or of
// every property when names is empty. String lists are searched item by
// item.
func anyString(props metadata.Properties, names []string, fn func(string) bool) bool {
	check := func(v any) bool {
		switch t := v.(type) {
		case string:
			return fn(t)
		case []string:
			for _, s := range t {
				if fn(s) {
					return true
				}
			}
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok && fn(s) {
					return true
				}
			}
		}
		return false
	}
	if len(names) == 0 {
		for _, v := range props {
			if check(v) {
				return true
			}
		}
		return false
	}
	for _, name := range names {
		if check(props[name]) {
			return true
		}
	}
	return false
}
