package metadata

import (
	"fmt"
	"strings"
	"time"
)

// SequencingOrder selects the order of query results.
type SequencingOrder string

// Sequencing orders.
const (
	SequencingAny                SequencingOrder = "ANY"
	SequencingGUID               SequencingOrder = "GUID"
	SequencingCreationDateRecent SequencingOrder = "CREATION_DATE_RECENT"
	SequencingCreationDateOldest SequencingOrder = "CREATION_DATE_OLDEST"
	SequencingLastUpdateRecent   SequencingOrder = "LAST_UPDATE_RECENT"
	SequencingLastUpdateOldest   SequencingOrder = "LAST_UPDATE_OLDEST"
	SequencingPropertyAscending  SequencingOrder = "PROPERTY_ASCENDING"
	SequencingPropertyDescending SequencingOrder = "PROPERTY_DESCENDING"
)

// ParseSequencingOrder converts a configuration value; "" means ANY.
func ParseSequencingOrder(s string) (SequencingOrder, error) {
	o := SequencingOrder(strings.ToUpper(strings.TrimSpace(s)))
	switch o {
	case "":
		return SequencingAny, nil
	case SequencingAny, SequencingGUID, SequencingCreationDateRecent, SequencingCreationDateOldest,
		SequencingLastUpdateRecent, SequencingLastUpdateOldest, SequencingPropertyAscending,
		SequencingPropertyDescending:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sequencing order %q", s)
	}
}

// DeleteMethod selects how an element is removed.
type DeleteMethod string

// Delete methods.
const (
	// DeleteLookForLineage archives elements with lineage and purges the rest
	DeleteLookForLineage DeleteMethod = "LOOK_FOR_LINEAGE"
	// DeleteArchive keeps the element for lineage queries only
	DeleteArchive DeleteMethod = "ARCHIVE"
	// DeleteSoft sets the status to DELETED
	DeleteSoft DeleteMethod = "SOFT_DELETE"
	// DeletePurge removes the element and its relationships
	DeletePurge DeleteMethod = "PURGE"
)

// ParseDeleteMethod converts a configuration value; "" means
// LOOK_FOR_LINEAGE.
func ParseDeleteMethod(s string) (DeleteMethod, error) {
	m := DeleteMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "":
		return DeleteLookForLineage, nil
	case DeleteLookForLineage, DeleteArchive, DeleteSoft, DeletePurge:
		return m, nil
	default:
		return "", fmt.Errorf("unknown delete method %q", s)
	}
}

// End identifies the end of a relationship a starting element sits at.
type End int

// Relationship ends.
const (
	EitherEnd End = 0
	End1      End = 1
	End2      End = 2
)

// QueryOptions qualify every retrieval.
type QueryOptions struct {
	// EffectiveTime restricts results to elements effective at that time;
	// nil means any time
	EffectiveTime          *time.Time      `json:"effectiveTime,omitempty"`
	ForLineage             bool            `json:"forLineage,omitempty"`
	ForDuplicateProcessing bool            `json:"forDuplicateProcessing,omitempty"`
	StartFrom              int             `json:"startFrom,omitempty"`
	PageSize               int             `json:"pageSize,omitempty"`
	SequencingOrder        SequencingOrder `json:"sequencingOrder,omitempty"`
	SequencingProperty     string          `json:"sequencingProperty,omitempty"`
	// LimitResultsByStatus restricts statuses; empty means every status
	// except DELETED
	LimitResultsByStatus []ElementStatus `json:"limitResultsByStatus,omitempty"`
	// MetadataElementTypeName restricts results to this type and its
	// subtypes
	MetadataElementTypeName string `json:"metadataElementTypeName,omitempty"`
}

// SearchOptions qualify regular-expression-free searches.
type SearchOptions struct {
	QueryOptions
	StartsWith bool `json:"startsWith,omitempty"`
	EndsWith   bool `json:"endsWith,omitempty"`
	IgnoreCase bool `json:"ignoreCase,omitempty"`
}

// MetadataSourceOptions identify the caller's external source and the
// visibility of the elements the request touches.
type MetadataSourceOptions struct {
	ExternalSourceGUID     string     `json:"externalSourceGUID,omitempty"`
	ExternalSourceName     string     `json:"externalSourceName,omitempty"`
	EffectiveTime          *time.Time `json:"effectiveTime,omitempty"`
	ForLineage             bool       `json:"forLineage,omitempty"`
	ForDuplicateProcessing bool       `json:"forDuplicateProcessing,omitempty"`
}

// NewElementOptions control element creation.
type NewElementOptions struct {
	MetadataSourceOptions
	InitialStatus          ElementStatus    `json:"initialStatus,omitempty"`
	InitialClassifications []Classification `json:"initialClassifications,omitempty"`
	AnchorGUID             string           `json:"anchorGUID,omitempty"`
	IsOwnAnchor            bool             `json:"isOwnAnchor,omitempty"`
	AnchorScopeGUID        string           `json:"anchorScopeGUID,omitempty"`
	// ParentGUID links the new element to an existing one
	ParentGUID                   string     `json:"parentGUID,omitempty"`
	ParentRelationshipTypeName   string     `json:"parentRelationshipTypeName,omitempty"`
	ParentRelationshipProperties Properties `json:"parentRelationshipProperties,omitempty"`
	// ParentAtEnd1 places the parent at end 1 of the parent relationship
	ParentAtEnd1  bool       `json:"parentAtEnd1,omitempty"`
	EffectiveFrom *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
}

// TemplateOptions control creation from a template.
type TemplateOptions struct {
	NewElementOptions
	// AllowRetrieve returns an existing element with the resulting
	// qualified name instead of failing
	AllowRetrieve bool `json:"allowRetrieve,omitempty"`
}

// UpdateOptions control updates.
type UpdateOptions struct {
	MetadataSourceOptions
	// MergeUpdate overlays the supplied properties; otherwise they replace
	// the stored bag
	MergeUpdate bool `json:"mergeUpdate,omitempty"`
}

// DeleteOptions control deletion.
type DeleteOptions struct {
	MetadataSourceOptions
	// Cascade also deletes elements anchored to the deleted element
	Cascade      bool         `json:"cascade,omitempty"`
	DeleteMethod DeleteMethod `json:"deleteMethod,omitempty"`
}
