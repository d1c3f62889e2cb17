package connectorctx

import "context"

// LocationClient maintains locations.
type LocationClient struct {
	*EntityClient[LocationProperties]
}

func newLocationClient(base *ClientBase) (*LocationClient, error) {
	c, err := newEntityClient[LocationProperties](base, LocationKind)
	if err != nil {
		return nil, err
	}
	return &LocationClient{EntityClient: c}, nil
}

// LinkNestedLocation places a location inside another.
func (c *LocationClient) LinkNestedLocation(ctx context.Context, parentGUID, nestedGUID string) error {
	return c.link(ctx, NestedLocationRelationship, parentGUID, nestedGUID, nil)
}

// DetachNestedLocation removes a nested location.
func (c *LocationClient) DetachNestedLocation(ctx context.Context, parentGUID, nestedGUID string) error {
	return c.detach(ctx, NestedLocationRelationship, parentGUID, nestedGUID)
}

// LinkAdjacentLocation records that two locations are next to each other.
func (c *LocationClient) LinkAdjacentLocation(ctx context.Context, locationGUID, peerGUID string) error {
	return c.link(ctx, AdjacentLocationRelationship, locationGUID, peerGUID, nil)
}

// DetachAdjacentLocation removes an adjacency.
func (c *LocationClient) DetachAdjacentLocation(ctx context.Context, locationGUID, peerGUID string) error {
	return c.detach(ctx, AdjacentLocationRelationship, locationGUID, peerGUID)
}

// LinkKnownLocation records where an element is found.
func (c *LocationClient) LinkKnownLocation(ctx context.Context, elementGUID, locationGUID string, props *KnownLocationProperties) error {
	return c.link(ctx, KnownLocationRelationship, elementGUID, locationGUID, props)
}

// DetachKnownLocation removes a known location.
func (c *LocationClient) DetachKnownLocation(ctx context.Context, elementGUID, locationGUID string) error {
	return c.detach(ctx, KnownLocationRelationship, elementGUID, locationGUID)
}

// ProjectClient maintains projects.
type ProjectClient struct {
	*EntityClient[ProjectProperties]
}

func newProjectClient(base *ClientBase) (*ProjectClient, error) {
	c, err := newEntityClient[ProjectProperties](base, ProjectKind)
	if err != nil {
		return nil, err
	}
	return &ProjectClient{EntityClient: c}, nil
}

// LinkSubProject places a project under a managing project. A project has
// at most one managing project.
func (c *ProjectClient) LinkSubProject(ctx context.Context, parentGUID, childGUID string, props *ProjectDependencyProperties) error {
	return c.link(ctx, ProjectHierarchyRelationship, parentGUID, childGUID, props)
}

// DetachSubProject removes a project from its managing project.
func (c *ProjectClient) DetachSubProject(ctx context.Context, parentGUID, childGUID string) error {
	return c.detach(ctx, ProjectHierarchyRelationship, parentGUID, childGUID)
}

// LinkDependency records that dependentGUID depends on dependsOnGUID.
func (c *ProjectClient) LinkDependency(ctx context.Context, dependentGUID, dependsOnGUID string, props *ProjectDependencyProperties) error {
	return c.link(ctx, ProjectDependencyRelationship, dependentGUID, dependsOnGUID, props)
}

// DetachDependency removes a dependency between projects.
func (c *ProjectClient) DetachDependency(ctx context.Context, dependentGUID, dependsOnGUID string) error {
	return c.detach(ctx, ProjectDependencyRelationship, dependentGUID, dependsOnGUID)
}

// LinkManagementRole makes a person role responsible for a project.
func (c *ProjectClient) LinkManagementRole(ctx context.Context, projectGUID, personRoleGUID string) error {
	return c.link(ctx, ProjectManagementRelationship, projectGUID, personRoleGUID, nil)
}

// DetachManagementRole removes a project manager role.
func (c *ProjectClient) DetachManagementRole(ctx context.Context, projectGUID, personRoleGUID string) error {
	return c.detach(ctx, ProjectManagementRelationship, projectGUID, personRoleGUID)
}

// LinkTeam adds an actor to the project team.
func (c *ProjectClient) LinkTeam(ctx context.Context, projectGUID, actorGUID string, props *ProjectTeamProperties) error {
	return c.link(ctx, ProjectTeamRelationship, projectGUID, actorGUID, props)
}

// DetachTeam removes an actor from the project team.
func (c *ProjectClient) DetachTeam(ctx context.Context, projectGUID, actorGUID string) error {
	return c.detach(ctx, ProjectTeamRelationship, projectGUID, actorGUID)
}

// SolutionComponentClient maintains the components of solution designs.
type SolutionComponentClient struct {
	*EntityClient[SolutionComponentProperties]
}

func newSolutionComponentClient(base *ClientBase) (*SolutionComponentClient, error) {
	c, err := newEntityClient[SolutionComponentProperties](base, SolutionComponentKind)
	if err != nil {
		return nil, err
	}
	return &SolutionComponentClient{EntityClient: c}, nil
}

// LinkSubComponent places a component inside another.
func (c *SolutionComponentClient) LinkSubComponent(ctx context.Context, parentGUID, subGUID string, props *SolutionLinkProperties) error {
	return c.link(ctx, SolutionCompositionRelationship, parentGUID, subGUID, props)
}

// DetachSubComponent removes a sub-component.
func (c *SolutionComponentClient) DetachSubComponent(ctx context.Context, parentGUID, subGUID string) error {
	return c.detach(ctx, SolutionCompositionRelationship, parentGUID, subGUID)
}

// LinkWire connects two components.
func (c *SolutionComponentClient) LinkWire(ctx context.Context, fromGUID, toGUID string, props *SolutionLinkingWireProperties) error {
	return c.link(ctx, SolutionLinkingWireRelationship, fromGUID, toGUID, props)
}

// DetachWire disconnects two components.
func (c *SolutionComponentClient) DetachWire(ctx context.Context, fromGUID, toGUID string) error {
	return c.detach(ctx, SolutionLinkingWireRelationship, fromGUID, toGUID)
}

// LinkBlueprint adds a component to a solution blueprint.
func (c *SolutionComponentClient) LinkBlueprint(ctx context.Context, blueprintGUID, componentGUID string) error {
	return c.link(ctx, SolutionBlueprintCompositionRelationship, blueprintGUID, componentGUID, nil)
}

// DetachBlueprint removes a component from a blueprint.
func (c *SolutionComponentClient) DetachBlueprint(ctx context.Context, blueprintGUID, componentGUID string) error {
	return c.detach(ctx, SolutionBlueprintCompositionRelationship, blueprintGUID, componentGUID)
}

// LinkActor records that an actor role takes part in a component.
func (c *SolutionComponentClient) LinkActor(ctx context.Context, actorRoleGUID, componentGUID string, props *SolutionLinkProperties) error {
	return c.link(ctx, SolutionComponentActorRelationship, actorRoleGUID, componentGUID, props)
}

// DetachActor removes an actor role from a component.
func (c *SolutionComponentClient) DetachActor(ctx context.Context, actorRoleGUID, componentGUID string) error {
	return c.detach(ctx, SolutionComponentActorRelationship, actorRoleGUID, componentGUID)
}

// LinkImplementation records that implementationGUID implements the design
// element designGUID.
func (c *SolutionComponentClient) LinkImplementation(ctx context.Context, designGUID, implementationGUID string, props *ImplementedByProperties) error {
	return c.link(ctx, ImplementedByRelationship, designGUID, implementationGUID, props)
}

// DetachImplementation removes an implementation.
func (c *SolutionComponentClient) DetachImplementation(ctx context.Context, designGUID, implementationGUID string) error {
	return c.detach(ctx, ImplementedByRelationship, designGUID, implementationGUID)
}
