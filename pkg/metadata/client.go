package metadata

import "context"

// Client is the contract of an open metadata store. Every operation
// identifies the calling user. Failures are omerrors values of type
// invalid_parameter, property_server or user_not_authorized.
type Client interface {
	// CreateElement stores a new element and returns its GUID.
	CreateElement(ctx context.Context, userID, typeName string, opts NewElementOptions, properties Properties) (string, error)

	// CreateElementFromTemplate copies a template element. Placeholder
	// values replace ~{name}~ markers in string properties and
	// replacement properties overlay the copy.
	CreateElementFromTemplate(ctx context.Context, userID, typeName string, opts TemplateOptions, templateGUID string,
		replacementProperties Properties, placeholderProperties map[string]string) (string, error)

	// UpdateElement changes an element's properties.
	UpdateElement(ctx context.Context, userID, guid string, opts UpdateOptions, properties Properties) error

	// UpdateElementStatus changes an element's status.
	UpdateElementStatus(ctx context.Context, userID, guid string, opts UpdateOptions, status ElementStatus) error

	// DeleteElement removes an element using the delete method in opts.
	DeleteElement(ctx context.Context, userID, guid string, opts DeleteOptions) error

	// GetElementByGUID retrieves one element.
	GetElementByGUID(ctx context.Context, userID, guid string, opts QueryOptions) (*Element, error)

	// GetElementsByPropertyValue returns elements whose named property
	// equals value exactly.
	GetElementsByPropertyValue(ctx context.Context, userID, value string, propertyNames []string, opts QueryOptions) ([]*Element, error)

	// FindElementsByPropertyValue returns elements whose named property
	// matches the search string.
	FindElementsByPropertyValue(ctx context.Context, userID, searchString string, propertyNames []string, opts SearchOptions) ([]*Element, error)

	// FindElements returns elements where any string property matches the
	// search string.
	FindElements(ctx context.Context, userID, searchString string, opts SearchOptions) ([]*Element, error)

	// GetElementsByClassification returns elements carrying the
	// classification.
	GetElementsByClassification(ctx context.Context, userID, classificationName string, opts QueryOptions) ([]*Element, error)

	// CreateRelationship links two elements and returns the relationship
	// GUID.
	CreateRelationship(ctx context.Context, userID, typeName, end1GUID, end2GUID string, opts MetadataSourceOptions, properties Properties) (string, error)

	// UpdateRelationship changes a relationship's properties.
	UpdateRelationship(ctx context.Context, userID, relationshipGUID string, opts UpdateOptions, properties Properties) error

	// DeleteRelationship removes one relationship.
	DeleteRelationship(ctx context.Context, userID, relationshipGUID string, opts MetadataSourceOptions) error

	// DetachElements removes every relationship of the type between the
	// two elements.
	DetachElements(ctx context.Context, userID, typeName, end1GUID, end2GUID string, opts MetadataSourceOptions) error

	// GetRelationshipByGUID retrieves one relationship.
	GetRelationshipByGUID(ctx context.Context, userID, relationshipGUID string, opts QueryOptions) (*Relationship, error)

	// GetRelatedElements returns the elements linked to guid. An empty
	// relationship type name matches every type.
	GetRelatedElements(ctx context.Context, userID, guid, relationshipTypeName string, startingAtEnd End, opts QueryOptions) ([]*RelatedElement, error)

	// Classify adds or replaces a classification.
	Classify(ctx context.Context, userID, guid, classificationName string, opts MetadataSourceOptions, properties Properties) error

	// Declassify removes a classification.
	Declassify(ctx context.Context, userID, guid, classificationName string, opts MetadataSourceOptions) error
}
