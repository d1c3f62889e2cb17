package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireEnv skips the test unless the environment variable is set and
// returns its value. Tests against PostgreSQL, MongoDB or Kafka use it to
// find their server.
func RequireEnv(t *testing.T, name string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("%s is not set", name)
	}
	return v
}

// RunBackendSuite checks the storage.Backend contract against a backend
// that starts empty. The suite leaves its rows behind; callers own cleanup.
func RunBackendSuite(t *testing.T, b storage.Backend) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	glossary := suiteElement("suite-glossary", "Glossary")
	term := suiteElement("suite-term", "GlossaryTerm")
	link := &metadata.Relationship{
		GUID:     "suite-anchor",
		TypeName: "TermAnchor",
		End1GUID: glossary.GUID(),
		End2GUID: term.GUID(),
		Status:   metadata.StatusActive,
	}

	t.Run("elements", func(t *testing.T) {
		require.NoError(t, b.PutElement(ctx, glossary))
		require.NoError(t, b.PutElement(ctx, term))

		got, err := b.GetElement(ctx, glossary.GUID())
		require.NoError(t, err)
		assert.Equal(t, "Glossary::suite-glossary", got.Properties["qualifiedName"])

		got.Properties["displayName"] = "changed"
		again, err := b.GetElement(ctx, glossary.GUID())
		require.NoError(t, err)
		assert.NotContains(t, again.Properties, "displayName", "backend returned a shared value")

		terms, err := b.ListElements(ctx, []string{"GlossaryTerm"})
		require.NoError(t, err)
		require.Len(t, terms, 1)
		assert.Equal(t, term.GUID(), terms[0].GUID())

		all, err := b.ListElements(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = b.GetElement(ctx, "suite-missing")
		assert.True(t, omerrors.IsNotFound(err))
	})

	t.Run("replace", func(t *testing.T) {
		updated := suiteElement(glossary.GUID(), "Glossary")
		updated.Properties["displayName"] = "Suite"
		updated.Header.Versions.Version = 2
		require.NoError(t, b.PutElement(ctx, updated))

		got, err := b.GetElement(ctx, glossary.GUID())
		require.NoError(t, err)
		assert.Equal(t, "Suite", got.Properties["displayName"])
		assert.Equal(t, int64(2), got.Header.Versions.Version)
	})

	t.Run("relationships", func(t *testing.T) {
		require.NoError(t, b.PutRelationship(ctx, link))

		got, err := b.GetRelationship(ctx, link.GUID)
		require.NoError(t, err)
		assert.Equal(t, term.GUID(), got.End2GUID)

		for _, end := range []string{glossary.GUID(), term.GUID()} {
			rels, err := b.ListRelationships(ctx, end)
			require.NoError(t, err)
			require.Len(t, rels, 1, end)
			assert.Equal(t, link.GUID, rels[0].GUID)
		}
		rels, err := b.ListRelationships(ctx, "suite-missing")
		require.NoError(t, err)
		assert.Empty(t, rels)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, b.DeleteRelationship(ctx, link.GUID))
		require.NoError(t, b.DeleteRelationship(ctx, link.GUID))
		_, err := b.GetRelationship(ctx, link.GUID)
		assert.True(t, omerrors.IsNotFound(err))

		require.NoError(t, b.DeleteElement(ctx, term.GUID()))
		require.NoError(t, b.DeleteElement(ctx, "suite-missing"))
		_, err = b.GetElement(ctx, term.GUID())
		assert.True(t, omerrors.IsNotFound(err))
	})
}

func suiteElement(guid, typeName string) *metadata.Element {
	return &metadata.Element{
		Header: metadata.ElementHeader{
			GUID:     guid,
			Type:     metadata.ElementType{TypeName: typeName},
			Status:   metadata.StatusActive,
			Versions: metadata.ElementVersions{CreatedBy: TestUser, Version: 1},
		},
		Properties: metadata.Properties{"qualifiedName": typeName + "::" + guid},
	}
}
