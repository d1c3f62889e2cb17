package connectorctx

import (
	"context"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/report"
	"github.com/ajitpratap0/metactx/pkg/testutil"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepositoryContext(t *testing.T) (*ConnectorContext, *report.Writer) {
	t.Helper()
	repo := testutil.NewRepository(t)
	cfg := testConfig()
	cfg.UserID = testutil.TestUser
	cfg.SequencingOrder = ""
	cfg.DeleteMethod = "SOFT_DELETE"
	writer := report.NewWriter(repo, report.Config{ConnectorName: cfg.ConnectorName, UserID: cfg.UserID}, testutil.TestLogger(t))
	c, err := New(repo, cfg, testutil.TestLogger(t), WithReportWriter(writer))
	require.NoError(t, err)
	return c, writer
}

func ref(qualifiedName string) ReferenceableProperties {
	return ReferenceableProperties{QualifiedName: qualifiedName}
}

func TestGlossaryLifecycle(t *testing.T) {
	ctx := context.Background()
	c, writer := newRepositoryContext(t)
	writer.StartRecording("refresh")

	glossary, err := c.Glossaries().Create(ctx, GlossaryProperties{ReferenceableProperties: ref("Glossary::Sales"), DisplayName: "Sales"})
	require.NoError(t, err)
	other, err := c.Glossaries().Create(ctx, GlossaryProperties{ReferenceableProperties: ref("Glossary::Finance"), DisplayName: "Finance"})
	require.NoError(t, err)

	customer, err := c.GlossaryTerms().Create(ctx, GlossaryTermProperties{
		ReferenceableProperties: ref("Term::Customer"),
		DisplayName:             "Customer",
		Summary:                 "Someone who buys",
	}, WithParent(glossary, TermAnchorRelationship, nil, true))
	require.NoError(t, err)
	client, err := c.GlossaryTerms().Create(ctx, GlossaryTermProperties{ReferenceableProperties: ref("Term::Client"), DisplayName: "Client"})
	require.NoError(t, err)
	require.NoError(t, c.Glossaries().LinkTerm(ctx, glossary, client))

	t.Run("a term belongs to one glossary", func(t *testing.T) {
		err := c.Glossaries().LinkTerm(ctx, other, customer)
		assert.True(t, omerrors.IsInvalidParameter(err), "got %v", err)
	})

	t.Run("terms of a glossary", func(t *testing.T) {
		terms, err := c.Glossaries().GetTerms(ctx, glossary, 0, 0)
		require.NoError(t, err)
		require.Len(t, terms, 2)
		assert.Equal(t, customer, terms[0].GUID())
		assert.Equal(t, "Customer", terms[0].Properties.DisplayName)
		assert.Equal(t, typedefs.GlossaryTerm, terms[0].Properties.TypeName)
	})

	t.Run("synonyms", func(t *testing.T) {
		require.NoError(t, c.GlossaryTerms().LinkSynonym(ctx, customer, client, &TermRelationshipProperties{Confidence: 90}))
		related, err := c.GlossaryTerms().GetRelated(ctx, customer, SynonymRelationship, metadata.End1, 0, 0)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, client, related[0].Element.GUID())
		assert.EqualValues(t, 90, related[0].Relationship.Properties.GetInt("confidence"))

		require.NoError(t, c.GlossaryTerms().DetachSynonym(ctx, customer, client))
		related, err = c.GlossaryTerms().GetRelated(ctx, customer, SynonymRelationship, metadata.End1, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, related)
	})

	t.Run("get by name and find", func(t *testing.T) {
		byName, err := c.GlossaryTerms().GetByName(ctx, "Client", 0, 0)
		require.NoError(t, err)
		require.Len(t, byName, 1)
		assert.Equal(t, client, byName[0].GUID())

		found, err := c.GlossaryTerms().Find(ctx, "buys", 0, 0)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, customer, found[0].GUID())

		found, err = c.GlossaryTerms().FindWith(ctx, "term::c", metadata.SearchOptions{StartsWith: true, IgnoreCase: true})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("update merges", func(t *testing.T) {
		require.NoError(t, c.GlossaryTerms().Update(ctx, customer, GlossaryTermProperties{Abbreviation: "CUST"}, true))
		e, err := c.GlossaryTerms().GetByGUID(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, "CUST", e.Properties.Abbreviation)
		assert.Equal(t, "Someone who buys", e.Properties.Summary)
		assert.EqualValues(t, 2, e.Header.Versions.Version)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := c.Glossaries().GetByGUID(ctx, customer)
		assert.True(t, omerrors.IsInvalidParameter(err))
	})

	t.Run("soft delete hides the element", func(t *testing.T) {
		require.NoError(t, c.Glossaries().Delete(ctx, other, false))
		_, err := c.Glossaries().GetByGUID(ctx, other)
		assert.True(t, omerrors.IsInvalidParameter(err))
	})

	r := writer.Report()
	assert.Equal(t, []string{glossary, customer, client}, r.CreatedElements)
	assert.Empty(t, r.UpdatedElements, "updates of elements created in the recording are not listed")
	assert.Equal(t, []string{other}, r.DeletedElements)
}

func TestActorsAndIdentities(t *testing.T) {
	ctx := context.Background()
	c, _ := newRepositoryContext(t)

	person, err := c.ActorProfiles().Create(ctx, ActorProfileProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.Person, QualifiedName: "Person::erin"},
		Name:                    "Erin Overview",
	})
	require.NoError(t, err)
	team, err := c.ActorProfiles().Create(ctx, ActorProfileProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.Team, QualifiedName: "Team::data"},
		Name:                    "Data Team",
	})
	require.NoError(t, err)

	_, err = c.ActorProfiles().Create(ctx, ActorProfileProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.Glossary, QualifiedName: "Glossary::x"},
	})
	assert.True(t, omerrors.IsInvalidParameter(err), "a glossary is not an actor profile")

	identity, err := c.UserIdentities().Create(ctx, UserIdentityProperties{ReferenceableProperties: ref("UserIdentity::erin"), UserID: "erinoverview"})
	require.NoError(t, err)
	require.NoError(t, c.UserIdentities().LinkProfile(ctx, person, identity, &ProfileIdentityProperties{RoleTypeName: "Employee"}))

	identities, err := c.ActorProfiles().GetIdentities(ctx, person, 0, 0)
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "erinoverview", identities[0].Properties.UserID)

	err = c.ActorProfiles().LinkIdentity(ctx, team, identity, nil)
	assert.True(t, omerrors.IsInvalidParameter(err), "an identity belongs to one profile")

	require.NoError(t, c.ActorProfiles().LinkTeamMember(ctx, team, person, &TeamMembershipProperties{Position: "lead"}))

	personRole, err := c.ActorRoles().Create(ctx, ActorRoleProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.PersonRole, QualifiedName: "PersonRole::steward"},
		Name:                    "Data Steward",
	})
	require.NoError(t, err)
	teamRole, err := c.ActorRoles().Create(ctx, ActorRoleProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.TeamRole, QualifiedName: "TeamRole::owners"},
	})
	require.NoError(t, err)
	require.NoError(t, c.ActorRoles().LinkPersonRoleAppointment(ctx, person, personRole, &AppointmentProperties{IsPublic: true}))
	require.NoError(t, c.ActorRoles().LinkTeamRoleAppointment(ctx, team, teamRole, nil))

	err = c.ActorRoles().LinkPersonRoleAppointment(ctx, team, personRole, nil)
	assert.True(t, omerrors.IsInvalidParameter(err), "a team cannot take a person role")

	appointees, err := c.ActorRoles().GetAppointees(ctx, personRole, 0, 0)
	require.NoError(t, err)
	require.Len(t, appointees, 1)
	assert.Equal(t, person, appointees[0].GUID())
	assert.Equal(t, typedefs.Person, appointees[0].Properties.TypeName)

	_, err = c.ActorRoles().GetAppointees(ctx, personRole, -1, 0)
	assert.True(t, omerrors.IsInvalidParameter(err), "got %v", err)

	require.NoError(t, c.ActorRoles().DetachPersonRoleAppointment(ctx, person, personRole))
	appointees, err = c.ActorRoles().GetAppointees(ctx, personRole, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, appointees)
}

func TestProjectsFromTemplate(t *testing.T) {
	ctx := context.Background()
	c, _ := newRepositoryContext(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	template, err := c.Projects().Create(ctx, ProjectProperties{
		ReferenceableProperties: ref("Project::~{name}~"),
		Name:                    "~{name}~",
		Description:             "Migration of ~{system}~",
		ProjectStatus:           "planned",
		StartDate:               &start,
	}, WithClassification(typedefs.TemplateClassification, nil))
	require.NoError(t, err)

	guid, err := c.Projects().CreateFromTemplate(ctx, template, ProjectProperties{Priority: 2},
		map[string]string{"name": "Atlas", "system": "billing"})
	require.NoError(t, err)

	p, err := c.Projects().GetByGUID(ctx, guid)
	require.NoError(t, err)
	assert.Equal(t, "Project::Atlas", p.Properties.QualifiedName)
	assert.Equal(t, "Migration of billing", p.Properties.Description)
	assert.Equal(t, 2, p.Properties.Priority)
	require.NotNil(t, p.Properties.StartDate)
	assert.True(t, start.Equal(*p.Properties.StartDate))
	for _, cl := range p.Header.Classifications {
		assert.NotEqual(t, typedefs.TemplateClassification, cl.Name, "template classifications are not copied")
	}

	sub, err := c.Projects().Create(ctx, ProjectProperties{ReferenceableProperties: ref("Project::Atlas-1")})
	require.NoError(t, err)
	require.NoError(t, c.Projects().LinkSubProject(ctx, guid, sub, nil))
	err = c.Projects().LinkSubProject(ctx, template, sub, nil)
	assert.True(t, omerrors.IsInvalidParameter(err), "a project has one managing project")
}

func TestConnectionsAndSolutions(t *testing.T) {
	ctx := context.Background()
	c, _ := newRepositoryContext(t)

	virtual, err := c.Connections().Create(ctx, ConnectionProperties{
		ReferenceableProperties: ReferenceableProperties{TypeName: typedefs.VirtualConnection, QualifiedName: "Connection::virtual"},
	})
	require.NoError(t, err)
	embedded, err := c.Connections().Create(ctx, ConnectionProperties{
		ReferenceableProperties: ref("Connection::postgres"),
		ConfigurationProperties: map[string]any{"port": 5432},
	})
	require.NoError(t, err)
	require.NoError(t, c.Connections().LinkEmbeddedConnection(ctx, virtual, embedded, &EmbeddedConnectionProperties{Position: 1}))

	err = c.Connections().LinkEmbeddedConnection(ctx, embedded, virtual, nil)
	assert.True(t, omerrors.IsInvalidParameter(err), "end 1 must be a virtual connection")

	e, err := c.Connections().GetByGUID(ctx, embedded)
	require.NoError(t, err)
	assert.EqualValues(t, 5432, e.Properties.ConfigurationProperties["port"])

	ingest, err := c.SolutionComponents().Create(ctx, SolutionComponentProperties{ReferenceableProperties: ref("Component::ingest")})
	require.NoError(t, err)
	store, err := c.SolutionComponents().Create(ctx, SolutionComponentProperties{ReferenceableProperties: ref("Component::store")})
	require.NoError(t, err)
	require.NoError(t, c.SolutionComponents().LinkWire(ctx, ingest, store, &SolutionLinkingWireProperties{Label: "rows"}))
	require.NoError(t, c.SolutionComponents().LinkImplementation(ctx, ingest, embedded, nil))

	wired, err := c.SolutionComponents().GetRelated(ctx, ingest, SolutionLinkingWireRelationship, metadata.EitherEnd, 0, 0)
	require.NoError(t, err)
	require.Len(t, wired, 1)
	assert.Equal(t, "rows", wired[0].Relationship.Properties.GetString("label"))
}
