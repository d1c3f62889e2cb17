package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func element(guid, typeName string) *metadata.Element {
	return &metadata.Element{
		Header:     metadata.ElementHeader{GUID: guid, Type: metadata.ElementType{TypeName: typeName}, Status: metadata.StatusActive},
		Properties: metadata.Properties{"qualifiedName": typeName + "::" + guid, "count": 2},
	}
}

func TestElementLifecycle(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.NoError(t, b.PutElement(ctx, element("b", "Glossary")))
	require.NoError(t, b.PutElement(ctx, element("a", "GlossaryTerm")))
	require.NoError(t, b.PutElement(ctx, element("c", "GlossaryTerm")))

	got, err := b.GetElement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "GlossaryTerm::a", got.Properties.GetString("qualifiedName"))
	// values come back as they would from a JSON store
	assert.Equal(t, float64(2), got.Properties["count"])

	got.Properties["qualifiedName"] = "mutated"
	again, err := b.GetElement(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "GlossaryTerm::a", again.Properties.GetString("qualifiedName"))

	terms, err := b.ListElements(ctx, []string{"GlossaryTerm"})
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "a", terms[0].Header.GUID)
	assert.Equal(t, "c", terms[1].Header.GUID)

	all, err := b.ListElements(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, b.DeleteElement(ctx, "a"))
	_, err = b.GetElement(ctx, "a")
	assert.True(t, omerrors.IsNotFound(err))
}

func TestRelationshipIndex(t *testing.T) {
	ctx := context.Background()
	b := New()

	r := &metadata.Relationship{GUID: "r1", TypeName: "TermAnchor", End1GUID: "g", End2GUID: "t"}
	require.NoError(t, b.PutRelationship(ctx, r))

	rels, err := b.ListRelationships(ctx, "t")
	require.NoError(t, err)
	require.Len(t, rels, 1)

	// moving an end updates the index
	r.End2GUID = "t2"
	require.NoError(t, b.PutRelationship(ctx, r))
	rels, err = b.ListRelationships(ctx, "t")
	require.NoError(t, err)
	assert.Empty(t, rels)

	require.NoError(t, b.DeleteRelationship(ctx, "r1"))
	_, err = b.GetRelationship(ctx, "r1")
	assert.True(t, omerrors.IsNotFound(err))
	rels, err = b.ListRelationships(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ListElements(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"snap.zst", "snap.lz4", "snap.s2", "snap.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			b := New()
			require.NoError(t, b.PutElement(ctx, element("g", "Glossary")))
			require.NoError(t, b.PutElement(ctx, element("t", "GlossaryTerm")))
			require.NoError(t, b.PutRelationship(ctx, &metadata.Relationship{GUID: "r", TypeName: "TermAnchor", End1GUID: "g", End2GUID: "t"}))
			require.NoError(t, b.SaveSnapshot(path, ""))

			restored := New()
			require.NoError(t, restored.LoadSnapshot(path, ""))
			elements, relationships := restored.Len()
			assert.Equal(t, 2, elements)
			assert.Equal(t, 1, relationships)

			rels, err := restored.ListRelationships(ctx, "g")
			require.NoError(t, err)
			require.Len(t, rels, 1)
			assert.Equal(t, "t", rels[0].End2GUID)
		})
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	b := New()
	require.NoError(t, b.LoadSnapshot(filepath.Join(t.TempDir(), "absent.zst"), "zstd"))
	elements, _ := b.Len()
	assert.Zero(t, elements)

	assert.Error(t, b.LoadSnapshot("x", "brotli"))
}
