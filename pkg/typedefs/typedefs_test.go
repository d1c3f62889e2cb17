package typedefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsA(t *testing.T) {
	r := Default()

	tests := []struct {
		typeName, superType string
		want                bool
	}{
		{Person, ActorProfile, true},
		{Person, Referenceable, true},
		{Person, OpenMetadataRoot, true},
		{Person, Person, true},
		{ActorProfile, Person, false},
		{GlossaryTerm, Glossary, false},
		{"NotAType", "NotAType", false},
		{"ControlledGlossaryTerm", GlossaryTerm, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.IsA(tt.typeName, tt.superType), "%s isA %s", tt.typeName, tt.superType)
	}
}

func TestSubTypes(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{ActorProfile, "ITProfile", Person, Team}, r.SubTypes(ActorProfile))
	assert.Equal(t, []string{UserIdentity}, r.SubTypes(UserIdentity))
	assert.Empty(t, r.SubTypes("Unknown"))
}

func TestEveryRelationshipEndIsAnEntityType(t *testing.T) {
	r := Default()
	for _, d := range relationshipDefs {
		_, ok := r.LookupEntity(d.End1.EntityType)
		assert.True(t, ok, "%s end1 %s", d.Name, d.End1.EntityType)
		_, ok = r.LookupEntity(d.End2.EntityType)
		assert.True(t, ok, "%s end2 %s", d.Name, d.End2.EntityType)
	}
}

func TestRelationshipsFor(t *testing.T) {
	r := Default()
	names := map[string]bool{}
	for _, d := range r.RelationshipsFor(UserIdentity) {
		names[d.Name] = true
	}
	assert.True(t, names["ProfileIdentity"])
	assert.True(t, names["SemanticAssignment"], "Referenceable ends apply to every subtype")
	assert.False(t, names["TermAnchor"])
}

func TestClassifications(t *testing.T) {
	r := Default()
	assert.True(t, r.ValidClassification("Taxonomy", Glossary))
	assert.False(t, r.ValidClassification("Taxonomy", GlossaryTerm))
	assert.True(t, r.ValidClassification(MementoClassification, GlossaryTerm))
	assert.False(t, r.ValidClassification("Unknown", GlossaryTerm))

	d, ok := r.LookupRelationship("TermAnchor")
	require.True(t, ok)
	assert.True(t, d.End1.AtMostOne)
	assert.True(t, IsLineageRelationship("DataFlow"))
	assert.False(t, IsLineageRelationship("TermAnchor"))
	assert.True(t, IsSymmetricRelationship("Synonym"))
	assert.True(t, IsSymmetricRelationship("AdjacentLocation"))
	assert.False(t, IsSymmetricRelationship("NestedLocation"))
}
