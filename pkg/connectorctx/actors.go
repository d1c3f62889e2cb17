package connectorctx

import (
	"context"

	"github.com/ajitpratap0/metactx/pkg/handler"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
)

// ActorProfileClient maintains the profiles of people, teams and engines.
// Link and detach arguments follow the relationship's ends.
type ActorProfileClient struct {
	*EntityClient[ActorProfileProperties]
	identities *EntityClient[UserIdentityProperties]
}

func newActorProfileClient(base *ClientBase) (*ActorProfileClient, error) {
	profiles, err := newEntityClient[ActorProfileProperties](base, ActorProfileKind)
	if err != nil {
		return nil, err
	}
	identities, err := newEntityClient[UserIdentityProperties](base, UserIdentityKind)
	if err != nil {
		return nil, err
	}
	return &ActorProfileClient{EntityClient: profiles, identities: identities}, nil
}

// LinkIdentity attaches a user identity to a profile.
func (c *ActorProfileClient) LinkIdentity(ctx context.Context, profileGUID, userIdentityGUID string, props *ProfileIdentityProperties) error {
	return c.link(ctx, ProfileIdentityRelationship, profileGUID, userIdentityGUID, props)
}

// DetachIdentity removes a user identity from a profile.
func (c *ActorProfileClient) DetachIdentity(ctx context.Context, profileGUID, userIdentityGUID string) error {
	return c.detach(ctx, ProfileIdentityRelationship, profileGUID, userIdentityGUID)
}

// LinkTeamMember adds a member to a team.
func (c *ActorProfileClient) LinkTeamMember(ctx context.Context, teamGUID, memberGUID string, props *TeamMembershipProperties) error {
	return c.link(ctx, TeamMembershipRelationship, teamGUID, memberGUID, props)
}

// DetachTeamMember removes a member from a team.
func (c *ActorProfileClient) DetachTeamMember(ctx context.Context, teamGUID, memberGUID string) error {
	return c.detach(ctx, TeamMembershipRelationship, teamGUID, memberGUID)
}

// GetIdentities returns the user identities attached to a profile.
func (c *ActorProfileClient) GetIdentities(ctx context.Context, profileGUID string, startFrom, pageSize int) ([]*handler.Element[UserIdentityProperties], error) {
	related, err := c.identities.GetRelated(ctx, profileGUID, ProfileIdentityRelationship, metadata.End1, startFrom, pageSize)
	if err != nil {
		return nil, err
	}
	return relatedElements(related), nil
}

// ActorRoleClient maintains the roles people and teams are appointed to.
type ActorRoleClient struct {
	*EntityClient[ActorRoleProperties]
	profiles *EntityClient[ActorProfileProperties]
}

func newActorRoleClient(base *ClientBase) (*ActorRoleClient, error) {
	roles, err := newEntityClient[ActorRoleProperties](base, ActorRoleKind)
	if err != nil {
		return nil, err
	}
	profiles, err := newEntityClient[ActorProfileProperties](base, ActorProfileKind)
	if err != nil {
		return nil, err
	}
	return &ActorRoleClient{EntityClient: roles, profiles: profiles}, nil
}

// LinkPersonRoleAppointment appoints a person to a person role.
func (c *ActorRoleClient) LinkPersonRoleAppointment(ctx context.Context, personGUID, personRoleGUID string, props *AppointmentProperties) error {
	return c.link(ctx, PersonRoleAppointmentRelationship, personGUID, personRoleGUID, props)
}

// DetachPersonRoleAppointment ends a person's appointment.
func (c *ActorRoleClient) DetachPersonRoleAppointment(ctx context.Context, personGUID, personRoleGUID string) error {
	return c.detach(ctx, PersonRoleAppointmentRelationship, personGUID, personRoleGUID)
}

// LinkTeamRoleAppointment appoints a team to a team role.
func (c *ActorRoleClient) LinkTeamRoleAppointment(ctx context.Context, teamGUID, teamRoleGUID string, props *AppointmentProperties) error {
	return c.link(ctx, TeamRoleAppointmentRelationship, teamGUID, teamRoleGUID, props)
}

// DetachTeamRoleAppointment ends a team's appointment.
func (c *ActorRoleClient) DetachTeamRoleAppointment(ctx context.Context, teamGUID, teamRoleGUID string) error {
	return c.detach(ctx, TeamRoleAppointmentRelationship, teamGUID, teamRoleGUID)
}

// GetAppointees returns the people and teams appointed to a role, people
// first.
func (c *ActorRoleClient) GetAppointees(ctx context.Context, roleGUID string, startFrom, pageSize int) ([]*handler.Element[ActorProfileProperties], error) {
	var out []*handler.Element[ActorProfileProperties]
	for _, rel := range []string{PersonRoleAppointmentRelationship, TeamRoleAppointmentRelationship} {
		related, err := c.profiles.GetRelated(ctx, roleGUID, rel, metadata.End2, 0, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, relatedElements(related)...)
	}
	return pageOf(out, startFrom, pageSize)
}

// UserIdentityClient maintains user identities.
type UserIdentityClient struct {
	*EntityClient[UserIdentityProperties]
}

func newUserIdentityClient(base *ClientBase) (*UserIdentityClient, error) {
	c, err := newEntityClient[UserIdentityProperties](base, UserIdentityKind)
	if err != nil {
		return nil, err
	}
	return &UserIdentityClient{EntityClient: c}, nil
}

// LinkProfile attaches an identity to the profile at end 1.
func (c *UserIdentityClient) LinkProfile(ctx context.Context, profileGUID, userIdentityGUID string, props *ProfileIdentityProperties) error {
	return c.link(ctx, ProfileIdentityRelationship, profileGUID, userIdentityGUID, props)
}

// DetachProfile removes an identity from a profile.
func (c *UserIdentityClient) DetachProfile(ctx context.Context, profileGUID, userIdentityGUID string) error {
	return c.detach(ctx, ProfileIdentityRelationship, profileGUID, userIdentityGUID)
}

func relatedElements[P any](related []*handler.Related[P]) []*handler.Element[P] {
	out := make([]*handler.Element[P], 0, len(related))
	for _, r := range related {
		out = append(out, r.Element)
	}
	return out
}

// pageOf pages a merged result; a page size of 0 returns the rest.
func pageOf[T any](items []T, startFrom, pageSize int) ([]T, error) {
	if startFrom < 0 {
		return nil, omerrors.InvalidParameter("startFrom", "startFrom must not be negative")
	}
	if pageSize < 0 {
		return nil, omerrors.InvalidParameter("pageSize", "pageSize must not be negative")
	}
	if startFrom >= len(items) {
		return []T{}, nil
	}
	items = items[startFrom:]
	if pageSize > 0 && pageSize < len(items) {
		items = items[:pageSize]
	}
	return items, nil
}
