package connectorctx

import "context"

// AnnotationClient maintains annotations produced by analysis.
type AnnotationClient struct {
	*EntityClient[AnnotationProperties]
}

func newAnnotationClient(base *ClientBase) (*AnnotationClient, error) {
	c, err := newEntityClient[AnnotationProperties](base, AnnotationKind)
	if err != nil {
		return nil, err
	}
	return &AnnotationClient{EntityClient: c}, nil
}

// LinkAnnotationExtension records that extendingGUID extends extendedGUID.
func (c *AnnotationClient) LinkAnnotationExtension(ctx context.Context, extendedGUID, extendingGUID string) error {
	return c.link(ctx, AnnotationExtensionRelationship, extendedGUID, extendingGUID, nil)
}

// DetachAnnotationExtension removes an annotation extension.
func (c *AnnotationClient) DetachAnnotationExtension(ctx context.Context, extendedGUID, extendingGUID string) error {
	return c.detach(ctx, AnnotationExtensionRelationship, extendedGUID, extendingGUID)
}

// LinkAssociatedAnnotation attaches an annotation to the element it
// describes.
func (c *AnnotationClient) LinkAssociatedAnnotation(ctx context.Context, elementGUID, annotationGUID string) error {
	return c.link(ctx, AssociatedAnnotationRelationship, elementGUID, annotationGUID, nil)
}

// DetachAssociatedAnnotation detaches an annotation from an element.
func (c *AnnotationClient) DetachAssociatedAnnotation(ctx context.Context, elementGUID, annotationGUID string) error {
	return c.detach(ctx, AssociatedAnnotationRelationship, elementGUID, annotationGUID)
}

// ConnectionClient maintains connections and what they connect to.
type ConnectionClient struct {
	*EntityClient[ConnectionProperties]
}

func newConnectionClient(base *ClientBase) (*ConnectionClient, error) {
	c, err := newEntityClient[ConnectionProperties](base, ConnectionKind)
	if err != nil {
		return nil, err
	}
	return &ConnectionClient{EntityClient: c}, nil
}

// LinkConnectorType sets the connector type of a connection.
func (c *ConnectionClient) LinkConnectorType(ctx context.Context, connectionGUID, connectorTypeGUID string) error {
	return c.link(ctx, ConnectionConnectorTypeRelationship, connectionGUID, connectorTypeGUID, nil)
}

// DetachConnectorType removes the connector type of a connection.
func (c *ConnectionClient) DetachConnectorType(ctx context.Context, connectionGUID, connectorTypeGUID string) error {
	return c.detach(ctx, ConnectionConnectorTypeRelationship, connectionGUID, connectorTypeGUID)
}

// LinkEndpoint sets the endpoint of a connection. The endpoint is at end 1.
func (c *ConnectionClient) LinkEndpoint(ctx context.Context, endpointGUID, connectionGUID string) error {
	return c.link(ctx, ConnectionEndpointRelationship, endpointGUID, connectionGUID, nil)
}

// DetachEndpoint removes the endpoint of a connection.
func (c *ConnectionClient) DetachEndpoint(ctx context.Context, endpointGUID, connectionGUID string) error {
	return c.detach(ctx, ConnectionEndpointRelationship, endpointGUID, connectionGUID)
}

// LinkEmbeddedConnection embeds a connection in a virtual connection.
func (c *ConnectionClient) LinkEmbeddedConnection(ctx context.Context, virtualConnectionGUID, embeddedGUID string, props *EmbeddedConnectionProperties) error {
	return c.link(ctx, EmbeddedConnectionRelationship, virtualConnectionGUID, embeddedGUID, props)
}

// DetachEmbeddedConnection removes an embedded connection.
func (c *ConnectionClient) DetachEmbeddedConnection(ctx context.Context, virtualConnectionGUID, embeddedGUID string) error {
	return c.detach(ctx, EmbeddedConnectionRelationship, virtualConnectionGUID, embeddedGUID)
}

// LinkAsset records that a connection reaches an asset.
func (c *ConnectionClient) LinkAsset(ctx context.Context, connectionGUID, assetGUID string, props *AssetConnectionProperties) error {
	return c.link(ctx, AssetConnectionRelationship, connectionGUID, assetGUID, props)
}

// DetachAsset removes the link between a connection and an asset.
func (c *ConnectionClient) DetachAsset(ctx context.Context, connectionGUID, assetGUID string) error {
	return c.detach(ctx, AssetConnectionRelationship, connectionGUID, assetGUID)
}

// ExternalReferenceClient maintains references to external resources.
type ExternalReferenceClient struct {
	*EntityClient[ExternalReferenceProperties]
}

func newExternalReferenceClient(base *ClientBase) (*ExternalReferenceClient, error) {
	c, err := newEntityClient[ExternalReferenceProperties](base, ExternalReferenceKind)
	if err != nil {
		return nil, err
	}
	return &ExternalReferenceClient{EntityClient: c}, nil
}

// LinkExternalReference attaches a reference to an element.
func (c *ExternalReferenceClient) LinkExternalReference(ctx context.Context, elementGUID, externalReferenceGUID string, props *ExternalReferenceLinkProperties) error {
	return c.link(ctx, ExternalReferenceLinkRelationship, elementGUID, externalReferenceGUID, props)
}

// DetachExternalReference removes a reference from an element.
func (c *ExternalReferenceClient) DetachExternalReference(ctx context.Context, elementGUID, externalReferenceGUID string) error {
	return c.detach(ctx, ExternalReferenceLinkRelationship, elementGUID, externalReferenceGUID)
}

// SchemaAttributeClient maintains the attributes of schemas.
type SchemaAttributeClient struct {
	*EntityClient[SchemaAttributeProperties]
}

func newSchemaAttributeClient(base *ClientBase) (*SchemaAttributeClient, error) {
	c, err := newEntityClient[SchemaAttributeProperties](base, SchemaAttributeKind)
	if err != nil {
		return nil, err
	}
	return &SchemaAttributeClient{EntityClient: c}, nil
}

// LinkNestedAttribute nests an attribute inside another.
func (c *SchemaAttributeClient) LinkNestedAttribute(ctx context.Context, parentGUID, nestedGUID string) error {
	return c.link(ctx, NestedSchemaAttributeRelationship, parentGUID, nestedGUID, nil)
}

// DetachNestedAttribute removes a nested attribute from its parent.
func (c *SchemaAttributeClient) DetachNestedAttribute(ctx context.Context, parentGUID, nestedGUID string) error {
	return c.detach(ctx, NestedSchemaAttributeRelationship, parentGUID, nestedGUID)
}

// LinkSchemaType sets the type of an attribute.
func (c *SchemaAttributeClient) LinkSchemaType(ctx context.Context, attributeGUID, schemaTypeGUID string) error {
	return c.link(ctx, SchemaAttributeTypeRelationship, attributeGUID, schemaTypeGUID, nil)
}

// DetachSchemaType removes the type of an attribute.
func (c *SchemaAttributeClient) DetachSchemaType(ctx context.Context, attributeGUID, schemaTypeGUID string) error {
	return c.detach(ctx, SchemaAttributeTypeRelationship, attributeGUID, schemaTypeGUID)
}

// LinkDataClass assigns a data class to an attribute. The data class is at
// end 1.
func (c *SchemaAttributeClient) LinkDataClass(ctx context.Context, dataClassGUID, attributeGUID string, props *DataClassDefinitionProperties) error {
	return c.link(ctx, DataClassDefinitionRelationship, dataClassGUID, attributeGUID, props)
}

// DetachDataClass removes a data class assignment.
func (c *SchemaAttributeClient) DetachDataClass(ctx context.Context, dataClassGUID, attributeGUID string) error {
	return c.detach(ctx, DataClassDefinitionRelationship, dataClassGUID, attributeGUID)
}
