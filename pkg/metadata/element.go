// Package metadata defines the open metadata element model, the option
// types that qualify every request, and the Client contract implemented by
// the local repository and the remote HTTP client.
package metadata

import (
	"time"
)

// ElementStatus is the lifecycle status of an element or relationship.
type ElementStatus string

// Element statuses.
const (
	StatusDraft      ElementStatus = "DRAFT"
	StatusPrepared   ElementStatus = "PREPARED"
	StatusProposed   ElementStatus = "PROPOSED"
	StatusApproved   ElementStatus = "APPROVED"
	StatusRejected   ElementStatus = "REJECTED"
	StatusActive     ElementStatus = "ACTIVE"
	StatusDeprecated ElementStatus = "DEPRECATED"
	StatusOther      ElementStatus = "OTHER"
	StatusDeleted    ElementStatus = "DELETED"
)

var validStatuses = map[ElementStatus]bool{
	StatusDraft: true, StatusPrepared: true, StatusProposed: true, StatusApproved: true,
	StatusRejected: true, StatusActive: true, StatusDeprecated: true, StatusOther: true,
	StatusDeleted: true,
}

// Valid reports whether s is a known status.
func (s ElementStatus) Valid() bool {
	return validStatuses[s]
}

// ElementType names the type of an element and its ancestors.
type ElementType struct {
	TypeName       string   `json:"typeName"`
	SuperTypeNames []string `json:"superTypeNames,omitempty"`
}

// ElementOrigin records the external source that owns an element.
type ElementOrigin struct {
	ExternalSourceGUID string `json:"externalSourceGUID,omitempty"`
	ExternalSourceName string `json:"externalSourceName,omitempty"`
}

// ElementVersions records who changed an element and when.
type ElementVersions struct {
	CreatedBy  string    `json:"createdBy"`
	UpdatedBy  string    `json:"updatedBy,omitempty"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime,omitempty"`
	Version    int64     `json:"version"`
}

// Classification is a named property bag attached to an element.
type Classification struct {
	Name          string     `json:"name"`
	Properties    Properties `json:"properties,omitempty"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
}

// ElementHeader is the common header of every element.
type ElementHeader struct {
	GUID            string           `json:"guid"`
	Type            ElementType      `json:"type"`
	Status          ElementStatus    `json:"status"`
	Origin          ElementOrigin    `json:"origin"`
	Versions        ElementVersions  `json:"versions"`
	Classifications []Classification `json:"classifications,omitempty"`
	EffectiveFrom   *time.Time       `json:"effectiveFrom,omitempty"`
	EffectiveTo     *time.Time       `json:"effectiveTo,omitempty"`
}

// Element is a stored metadata element.
type Element struct {
	Header     ElementHeader `json:"header"`
	Properties Properties    `json:"properties,omitempty"`
}

// GUID returns the element's unique identifier.
func (e *Element) GUID() string {
	return e.Header.GUID
}

// TypeName returns the element's type name.
func (e *Element) TypeName() string {
	return e.Header.Type.TypeName
}

// Classification returns the named classification.
func (e *Element) Classification(name string) (*Classification, bool) {
	for i := range e.Header.Classifications {
		if e.Header.Classifications[i].Name == name {
			return &e.Header.Classifications[i], true
		}
	}
	return nil, false
}

// HasClassification reports whether the element carries the classification.
func (e *Element) HasClassification(name string) bool {
	_, ok := e.Classification(name)
	return ok
}

// SetClassification adds or replaces a classification.
func (e *Element) SetClassification(c Classification) {
	for i := range e.Header.Classifications {
		if e.Header.Classifications[i].Name == c.Name {
			e.Header.Classifications[i] = c
			return
		}
	}
	e.Header.Classifications = append(e.Header.Classifications, c)
}

// RemoveClassification removes a classification and reports whether it
// was present.
func (e *Element) RemoveClassification(name string) bool {
	for i := range e.Header.Classifications {
		if e.Header.Classifications[i].Name == name {
			e.Header.Classifications = append(e.Header.Classifications[:i], e.Header.Classifications[i+1:]...)
			return true
		}
	}
	return false
}

// AnchorGUID returns the GUID recorded in the Anchors classification.
func (e *Element) AnchorGUID() string {
	c, ok := e.Classification("Anchors")
	if !ok {
		return ""
	}
	return c.Properties.GetString("anchorGUID")
}

// IsEffective reports whether the element is effective at the given time;
// a nil time matches any effectivity.
func (e *Element) IsEffective(at *time.Time) bool {
	return effectiveAt(e.Header.EffectiveFrom, e.Header.EffectiveTo, at)
}

// Clone returns a deep copy.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	c.Header.Type.SuperTypeNames = append([]string(nil), e.Header.Type.SuperTypeNames...)
	c.Header.EffectiveFrom = cloneTime(e.Header.EffectiveFrom)
	c.Header.EffectiveTo = cloneTime(e.Header.EffectiveTo)
	if e.Header.Classifications != nil {
		c.Header.Classifications = make([]Classification, len(e.Header.Classifications))
		for i, cl := range e.Header.Classifications {
			cl.Properties = cl.Properties.Clone()
			cl.EffectiveFrom = cloneTime(cl.EffectiveFrom)
			cl.EffectiveTo = cloneTime(cl.EffectiveTo)
			c.Header.Classifications[i] = cl
		}
	}
	c.Properties = e.Properties.Clone()
	return &c
}

// Relationship links two elements.
type Relationship struct {
	GUID          string          `json:"guid"`
	TypeName      string          `json:"typeName"`
	End1GUID      string          `json:"end1GUID"`
	End2GUID      string          `json:"end2GUID"`
	Properties    Properties      `json:"properties,omitempty"`
	Status        ElementStatus   `json:"status"`
	Origin        ElementOrigin   `json:"origin"`
	Versions      ElementVersions `json:"versions"`
	EffectiveFrom *time.Time      `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time      `json:"effectiveTo,omitempty"`
}

// IsEffective reports whether the relationship is effective at the given
// time; a nil time matches any effectivity.
func (r *Relationship) IsEffective(at *time.Time) bool {
	return effectiveAt(r.EffectiveFrom, r.EffectiveTo, at)
}

// OtherEnd returns the GUID at the opposite end from guid.
func (r *Relationship) OtherEnd(guid string) string {
	if r.End1GUID == guid {
		return r.End2GUID
	}
	return r.End1GUID
}

// Clone returns a deep copy.
func (r *Relationship) Clone() *Relationship {
	if r == nil {
		return nil
	}
	c := *r
	c.Properties = r.Properties.Clone()
	c.EffectiveFrom = cloneTime(r.EffectiveFrom)
	c.EffectiveTo = cloneTime(r.EffectiveTo)
	return &c
}

// RelatedElement is the element at the other end of a relationship, seen
// from a starting element.
type RelatedElement struct {
	Relationship *Relationship `json:"relationship"`
	Element      *Element      `json:"element"`
	// AtEnd1 is true when Element sits at end 1 of the relationship
	AtEnd1 bool `json:"atEnd1"`
}

func effectiveAt(from, to, at *time.Time) bool {
	if at == nil {
		return true
	}
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && !at.Before(*to) {
		return false
	}
	return true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
