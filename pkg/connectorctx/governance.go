package connectorctx

import "context"

// ContextEventClient maintains context events.
type ContextEventClient struct {
	*EntityClient[ContextEventProperties]
}

func newContextEventClient(base *ClientBase) (*ContextEventClient, error) {
	c, err := newEntityClient[ContextEventProperties](base, ContextEventKind)
	if err != nil {
		return nil, err
	}
	return &ContextEventClient{EntityClient: c}, nil
}

// LinkDependentContextEvent records that childGUID was caused by parentGUID.
func (c *ContextEventClient) LinkDependentContextEvent(ctx context.Context, parentGUID, childGUID string, props *ContextEventLinkProperties) error {
	return c.link(ctx, DependentContextEventRelationship, parentGUID, childGUID, props)
}

// DetachDependentContextEvent removes a dependency between events.
func (c *ContextEventClient) DetachDependentContextEvent(ctx context.Context, parentGUID, childGUID string) error {
	return c.detach(ctx, DependentContextEventRelationship, parentGUID, childGUID)
}

// LinkRelatedContextEvent records that two events are related.
func (c *ContextEventClient) LinkRelatedContextEvent(ctx context.Context, eventGUID, relatedGUID string, props *ContextEventLinkProperties) error {
	return c.link(ctx, RelatedContextEventRelationship, eventGUID, relatedGUID, props)
}

// DetachRelatedContextEvent removes a relation between events.
func (c *ContextEventClient) DetachRelatedContextEvent(ctx context.Context, eventGUID, relatedGUID string) error {
	return c.detach(ctx, RelatedContextEventRelationship, eventGUID, relatedGUID)
}

// LinkImpact records that an event affects an element.
func (c *ContextEventClient) LinkImpact(ctx context.Context, eventGUID, impactedGUID string, props *ContextEventLinkProperties) error {
	return c.link(ctx, ContextEventImpactRelationship, eventGUID, impactedGUID, props)
}

// DetachImpact removes an impact.
func (c *ContextEventClient) DetachImpact(ctx context.Context, eventGUID, impactedGUID string) error {
	return c.detach(ctx, ContextEventImpactRelationship, eventGUID, impactedGUID)
}

// LinkEvidence records an element as evidence of an event.
func (c *ContextEventClient) LinkEvidence(ctx context.Context, eventGUID, evidenceGUID string, props *ContextEventLinkProperties) error {
	return c.link(ctx, ContextEventEvidenceRelationship, eventGUID, evidenceGUID, props)
}

// DetachEvidence removes evidence from an event.
func (c *ContextEventClient) DetachEvidence(ctx context.Context, eventGUID, evidenceGUID string) error {
	return c.detach(ctx, ContextEventEvidenceRelationship, eventGUID, evidenceGUID)
}

// DataClassClient maintains data classes.
type DataClassClient struct {
	*EntityClient[DataClassProperties]
}

func newDataClassClient(base *ClientBase) (*DataClassClient, error) {
	c, err := newEntityClient[DataClassProperties](base, DataClassKind)
	if err != nil {
		return nil, err
	}
	return &DataClassClient{EntityClient: c}, nil
}

// LinkSubDataClass places a data class under a more general one. A data
// class has at most one super data class.
func (c *DataClassClient) LinkSubDataClass(ctx context.Context, superGUID, subGUID string) error {
	return c.link(ctx, DataClassHierarchyRelationship, superGUID, subGUID, nil)
}

// DetachSubDataClass removes a data class from its super data class.
func (c *DataClassClient) DetachSubDataClass(ctx context.Context, superGUID, subGUID string) error {
	return c.detach(ctx, DataClassHierarchyRelationship, superGUID, subGUID)
}

// LinkComposition records that wholeGUID is made of partGUID.
func (c *DataClassClient) LinkComposition(ctx context.Context, wholeGUID, partGUID string) error {
	return c.link(ctx, DataClassCompositionRelationship, wholeGUID, partGUID, nil)
}

// DetachComposition removes a part from a data class.
func (c *DataClassClient) DetachComposition(ctx context.Context, wholeGUID, partGUID string) error {
	return c.detach(ctx, DataClassCompositionRelationship, wholeGUID, partGUID)
}

// LinkDefinition assigns a data class to an element.
func (c *DataClassClient) LinkDefinition(ctx context.Context, dataClassGUID, elementGUID string, props *DataClassDefinitionProperties) error {
	return c.link(ctx, DataClassDefinitionRelationship, dataClassGUID, elementGUID, props)
}

// DetachDefinition removes a data class assignment.
func (c *DataClassClient) DetachDefinition(ctx context.Context, dataClassGUID, elementGUID string) error {
	return c.detach(ctx, DataClassDefinitionRelationship, dataClassGUID, elementGUID)
}

// ValidValueDefinitionClient maintains valid values and valid value sets.
type ValidValueDefinitionClient struct {
	*EntityClient[ValidValueDefinitionProperties]
}

func newValidValueDefinitionClient(base *ClientBase) (*ValidValueDefinitionClient, error) {
	c, err := newEntityClient[ValidValueDefinitionProperties](base, ValidValueDefinitionKind)
	if err != nil {
		return nil, err
	}
	return &ValidValueDefinitionClient{EntityClient: c}, nil
}

// LinkMember adds a valid value to a set.
func (c *ValidValueDefinitionClient) LinkMember(ctx context.Context, setGUID, memberGUID string, props *ValidValueMemberProperties) error {
	return c.link(ctx, ValidValueMemberRelationship, setGUID, memberGUID, props)
}

// DetachMember removes a valid value from a set.
func (c *ValidValueDefinitionClient) DetachMember(ctx context.Context, setGUID, memberGUID string) error {
	return c.detach(ctx, ValidValueMemberRelationship, setGUID, memberGUID)
}

// LinkAssociation associates two valid values.
func (c *ValidValueDefinitionClient) LinkAssociation(ctx context.Context, value1GUID, value2GUID string, props *ValidValueAssociationProperties) error {
	return c.link(ctx, ValidValueAssociationRelationship, value1GUID, value2GUID, props)
}

// DetachAssociation removes an association between valid values.
func (c *ValidValueDefinitionClient) DetachAssociation(ctx context.Context, value1GUID, value2GUID string) error {
	return c.detach(ctx, ValidValueAssociationRelationship, value1GUID, value2GUID)
}

// LinkReferenceValue assigns a reference value to an element.
func (c *ValidValueDefinitionClient) LinkReferenceValue(ctx context.Context, elementGUID, validValueGUID string, props *ReferenceValueAssignmentProperties) error {
	return c.link(ctx, ReferenceValueAssignmentRelationship, elementGUID, validValueGUID, props)
}

// DetachReferenceValue removes a reference value from an element.
func (c *ValidValueDefinitionClient) DetachReferenceValue(ctx context.Context, elementGUID, validValueGUID string) error {
	return c.detach(ctx, ReferenceValueAssignmentRelationship, elementGUID, validValueGUID)
}
