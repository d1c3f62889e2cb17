// Package api defines the HTTP JSON protocol shared by the metadata server
// and the remote client: request and response bodies, the error envelope,
// and the mapping between error types and status codes.
//
// Every operation is a POST below
//
//	/servers/{server}/users/{userId}/
//
// with a JSON body. Successful calls answer 200 with one of the response
// types below; failures answer an ErrorResponse.
package api

import (
	"github.com/ajitpratap0/metactx/pkg/metadata"
)

// BasePath is the prefix of every operation path.
const BasePath = "/servers/{server}/users/{userId}/"

// CreateElementRequest is the body of elements.
type CreateElementRequest struct {
	TypeName   string                     `json:"typeName"`
	Options    metadata.NewElementOptions `json:"options"`
	Properties metadata.Properties        `json:"properties,omitempty"`
}

// TemplateRequest is the body of elements/from-template.
type TemplateRequest struct {
	TypeName              string                   `json:"typeName"`
	Options               metadata.TemplateOptions `json:"options"`
	TemplateGUID          string                   `json:"templateGUID"`
	ReplacementProperties metadata.Properties      `json:"replacementProperties,omitempty"`
	PlaceholderProperties map[string]string        `json:"placeholderProperties,omitempty"`
}

// UpdateRequest is the body of elements/{guid}/update and
// relationships/{guid}/update.
type UpdateRequest struct {
	Options    metadata.UpdateOptions `json:"options"`
	Properties metadata.Properties    `json:"properties,omitempty"`
}

// StatusRequest is the body of elements/{guid}/status.
type StatusRequest struct {
	Options metadata.UpdateOptions `json:"options"`
	Status  metadata.ElementStatus `json:"status"`
}

// DeleteRequest is the body of elements/{guid}/delete.
type DeleteRequest struct {
	Options metadata.DeleteOptions `json:"options"`
}

// QueryRequest carries plain query options.
type QueryRequest struct {
	Options metadata.QueryOptions `json:"options"`
}

// PropertyValueRequest is the body of elements/by-property-value.
type PropertyValueRequest struct {
	Value         string                `json:"value"`
	PropertyNames []string              `json:"propertyNames,omitempty"`
	Options       metadata.QueryOptions `json:"options"`
}

// SearchRequest is the body of elements/by-search-string and
// elements/find.
type SearchRequest struct {
	SearchString  string                 `json:"searchString"`
	PropertyNames []string               `json:"propertyNames,omitempty"`
	Options       metadata.SearchOptions `json:"options"`
}

// RelationshipRequest is the body of relationships and
// relationships/detach.
type RelationshipRequest struct {
	TypeName   string                         `json:"typeName"`
	End1GUID   string                         `json:"end1GUID"`
	End2GUID   string                         `json:"end2GUID"`
	Options    metadata.MetadataSourceOptions `json:"options"`
	Properties metadata.Properties            `json:"properties,omitempty"`
}

// RelatedRequest is the body of elements/{guid}/related.
type RelatedRequest struct {
	RelationshipTypeName string                `json:"relationshipTypeName,omitempty"`
	StartingAtEnd        metadata.End          `json:"startingAtEnd"`
	Options              metadata.QueryOptions `json:"options"`
}

// ClassifyRequest is the body of elements/{guid}/classifications/{name}.
type ClassifyRequest struct {
	Options    metadata.MetadataSourceOptions `json:"options"`
	Properties metadata.Properties            `json:"properties,omitempty"`
}

// SourceRequest carries only metadata source options.
type SourceRequest struct {
	Options metadata.MetadataSourceOptions `json:"options"`
}

// GUIDResponse answers operations that create something.
type GUIDResponse struct {
	GUID string `json:"guid"`
}

// VoidResponse answers operations with no result.
type VoidResponse struct {
	RelatedHTTPCode int `json:"relatedHTTPCode"`
}

// ElementResponse answers elements/{guid}/retrieve.
type ElementResponse struct {
	Element *metadata.Element `json:"element"`
}

// ElementsResponse answers element queries.
type ElementsResponse struct {
	Elements []*metadata.Element `json:"elements"`
}

// RelationshipResponse answers relationships/{guid}/retrieve.
type RelationshipResponse struct {
	Relationship *metadata.Relationship `json:"relationship"`
}

// RelatedResponse answers elements/{guid}/related.
type RelatedResponse struct {
	RelatedElements []*metadata.RelatedElement `json:"relatedElements"`
}
