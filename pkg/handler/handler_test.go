package handler

import (
	"context"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/testutil"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Ref struct {
	TypeName      string `json:"typeName,omitempty"`
	QualifiedName string `json:"qualifiedName,omitempty"`
}

type profile struct {
	Ref
	Name      string            `json:"name,omitempty"`
	HeadCount int               `json:"headCount,omitempty"`
	Joined    *time.Time        `json:"joined,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Extra     map[string]string `json:"additionalProperties,omitempty"`
}

func newProfiles(t *testing.T) *Handler[profile] {
	t.Helper()
	h, err := New[profile](testutil.NewRepository(t), Kind{TypeName: typedefs.ActorProfile}, testutil.TestLogger(t))
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	_, err := New[profile](testutil.NewRepository(t), Kind{TypeName: "Spaceship"}, nil)
	assert.True(t, omerrors.IsInvalidParameter(err))

	_, err = New[profile](nil, Kind{TypeName: typedefs.ActorProfile}, nil)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig))

	h, err := New[profile](testutil.NewRepository(t), Kind{TypeName: typedefs.ActorProfile}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultNameProperties, h.Kind().NameProperties)
}

func TestEncodeDecode(t *testing.T) {
	joined := time.Date(2023, 5, 4, 12, 0, 0, 0, time.UTC)
	in := profile{
		Ref:       Ref{QualifiedName: "Person::tanya"},
		Name:      "Tanya",
		HeadCount: 3,
		Joined:    &joined,
		Tags:      []string{"a", "b"},
		Extra:     map[string]string{"desk": "4F"},
	}
	bag, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, "Person::tanya", bag.GetString("qualifiedName"))
	assert.Equal(t, float64(3), bag["headCount"])
	assert.IsType(t, "", bag["joined"])
	assert.NotContains(t, bag, "typeName")

	out, err := Decode[profile](bag)
	require.NoError(t, err)
	assert.Equal(t, in.QualifiedName, out.QualifiedName)
	assert.Equal(t, in.HeadCount, out.HeadCount)
	assert.Equal(t, in.Tags, out.Tags)
	assert.Equal(t, in.Extra, out.Extra)
	require.NotNil(t, out.Joined)
	assert.True(t, joined.Equal(*out.Joined))

	bag, err = Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, bag)

	bag, err = Encode(metadata.Properties{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, metadata.Properties{"k": "v"}, bag)

	_, err = Encode("not an object")
	assert.True(t, omerrors.IsInvalidParameter(err))
}

func TestCreateAndRetrieve(t *testing.T) {
	ctx := context.Background()
	h := newProfiles(t)

	guid, err := h.Create(ctx, testutil.TestUser, metadata.NewElementOptions{},
		profile{Ref: Ref{TypeName: typedefs.Person, QualifiedName: "Person::tanya"}, Name: "Tanya"})
	require.NoError(t, err)

	e, err := h.GetByGUID(ctx, testutil.TestUser, guid, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, typedefs.Person, e.Header.Type.TypeName)
	assert.Equal(t, typedefs.Person, e.Properties.TypeName)
	assert.Equal(t, "Tanya", e.Properties.Name)

	stored, err := h.Client().GetElementByGUID(ctx, testutil.TestUser, guid, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.NotContains(t, stored.Properties, "typeName", "the type is kept in the header only")

	byName, err := h.GetByName(ctx, testutil.TestUser, "Tanya", metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	teams, err := h.GetByName(ctx, testutil.TestUser, "Tanya", metadata.QueryOptions{MetadataElementTypeName: typedefs.Team})
	require.NoError(t, err)
	assert.Empty(t, teams)

	_, err = h.GetByName(ctx, testutil.TestUser, "Tanya", metadata.QueryOptions{MetadataElementTypeName: typedefs.Glossary})
	assert.True(t, omerrors.IsInvalidParameter(err), "scope must stay within the kind")

	_, err = h.Create(ctx, testutil.TestUser, metadata.NewElementOptions{},
		profile{Ref: Ref{TypeName: typedefs.Glossary, QualifiedName: "Glossary::x"}})
	assert.True(t, omerrors.IsInvalidParameter(err))
}

func TestGetByGUIDChecksKind(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	profiles, err := New[profile](repo, Kind{TypeName: typedefs.ActorProfile}, nil)
	require.NoError(t, err)

	glossary, err := repo.CreateElement(ctx, testutil.TestUser, typedefs.Glossary, metadata.NewElementOptions{},
		metadata.Properties{"qualifiedName": "Glossary::x"})
	require.NoError(t, err)

	_, err = profiles.GetByGUID(ctx, testutil.TestUser, glossary, metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))
}

func TestFindUsesSearchProperties(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	h, err := New[profile](repo, Kind{TypeName: typedefs.ActorProfile, SearchProperties: []string{"name"}}, nil)
	require.NoError(t, err)

	for _, p := range []profile{
		{Ref: Ref{QualifiedName: "Profile::alpha"}, Name: "Beta"},
		{Ref: Ref{QualifiedName: "Profile::beta"}, Name: "Gamma"},
	} {
		_, err := h.Create(ctx, testutil.TestUser, metadata.NewElementOptions{}, p)
		require.NoError(t, err)
	}

	found, err := h.Find(ctx, testutil.TestUser, "beta", metadata.SearchOptions{IgnoreCase: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Beta", found[0].Properties.Name)

	all, err := h.Find(ctx, testutil.TestUser, "*", metadata.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLinksAndClassifications(t *testing.T) {
	ctx := context.Background()
	h := newProfiles(t)

	team, err := h.Create(ctx, testutil.TestUser, metadata.NewElementOptions{}, profile{Ref: Ref{TypeName: typedefs.Team, QualifiedName: "Team::a"}})
	require.NoError(t, err)
	member, err := h.Create(ctx, testutil.TestUser, metadata.NewElementOptions{}, profile{Ref: Ref{TypeName: typedefs.Person, QualifiedName: "Person::b"}})
	require.NoError(t, err)

	rel, err := h.Link(ctx, testutil.TestUser, "TeamMembership", team, member, metadata.MetadataSourceOptions{},
		struct {
			Position string `json:"position"`
		}{"lead"})
	require.NoError(t, err)
	require.NoError(t, h.UpdateLink(ctx, testutil.TestUser, rel, metadata.UpdateOptions{MergeUpdate: true}, map[string]any{"since": "2021"}))

	related, err := h.GetRelated(ctx, testutil.TestUser, team, "TeamMembership", metadata.End1, metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.False(t, related[0].AtEnd1)
	assert.Equal(t, "lead", related[0].Relationship.Properties.GetString("position"))
	assert.Equal(t, "2021", related[0].Relationship.Properties.GetString("since"))

	linked, err := h.Detach(ctx, testutil.TestUser, "TeamMembership", team, member, metadata.MetadataSourceOptions{})
	require.NoError(t, err)
	assert.True(t, linked)
	linked, err = h.Detach(ctx, testutil.TestUser, "TeamMembership", team, member, metadata.MetadataSourceOptions{})
	require.NoError(t, err)
	assert.False(t, linked)
	related, err = h.GetRelated(ctx, testutil.TestUser, team, "TeamMembership", metadata.End1, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, related)

	require.NoError(t, h.Classify(ctx, testutil.TestUser, member, "Confidentiality", metadata.MetadataSourceOptions{}, map[string]any{"level": 3}))
	e, err := h.GetByGUID(ctx, testutil.TestUser, member, metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, e.Header.Classifications, 1)
	require.NoError(t, h.Declassify(ctx, testutil.TestUser, member, "Confidentiality", metadata.MetadataSourceOptions{}))

	require.NoError(t, h.UpdateStatus(ctx, testutil.TestUser, member, metadata.UpdateOptions{}, metadata.StatusDeprecated))
	require.NoError(t, h.Delete(ctx, testutil.TestUser, member, metadata.DeleteOptions{DeleteMethod: metadata.DeletePurge}))
	_, err = h.GetByGUID(ctx, testutil.TestUser, member, metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))
}
