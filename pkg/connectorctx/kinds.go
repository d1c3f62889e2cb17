package connectorctx

import (
	"github.com/ajitpratap0/metactx/pkg/handler"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
)

// Kinds served by a connector context. Name properties are matched exactly
// by GetByName; search properties are searched by Find.
var (
	ActorProfileKind = handler.Kind{
		TypeName:         typedefs.ActorProfile,
		NameProperties:   []string{"qualifiedName", "name", "fullName"},
		SearchProperties: []string{"qualifiedName", "name", "fullName", "description", "jobTitle"},
	}
	ActorRoleKind = handler.Kind{
		TypeName:         typedefs.ActorRole,
		NameProperties:   []string{"qualifiedName", "name", "identifier"},
		SearchProperties: []string{"qualifiedName", "name", "identifier", "description", "scope"},
	}
	AnnotationKind = handler.Kind{
		TypeName:         typedefs.Annotation,
		NameProperties:   []string{"qualifiedName"},
		SearchProperties: []string{"qualifiedName", "annotationType", "summary", "explanation"},
	}
	ConnectionKind = handler.Kind{
		TypeName: typedefs.Connection,
	}
	ContextEventKind = handler.Kind{
		TypeName:         typedefs.ContextEvent,
		NameProperties:   []string{"qualifiedName", "name"},
		SearchProperties: []string{"qualifiedName", "name", "description", "eventEffect"},
	}
	DataClassKind = handler.Kind{
		TypeName:         typedefs.DataClass,
		SearchProperties: []string{"qualifiedName", "displayName", "description", "namespace", "dataType"},
	}
	ExternalReferenceKind = handler.Kind{
		TypeName:         typedefs.ExternalReference,
		SearchProperties: []string{"qualifiedName", "displayName", "description", "url", "owner"},
	}
	GlossaryKind = handler.Kind{
		TypeName: typedefs.Glossary,
	}
	GlossaryTermKind = handler.Kind{
		TypeName:         typedefs.GlossaryTerm,
		NameProperties:   []string{"qualifiedName", "displayName", "abbreviation"},
		SearchProperties: []string{"qualifiedName", "displayName", "summary", "description", "abbreviation", "examples"},
	}
	LocationKind = handler.Kind{
		TypeName:       typedefs.Location,
		NameProperties: []string{"qualifiedName", "displayName", "identifier"},
	}
	ProjectKind = handler.Kind{
		TypeName:         typedefs.Project,
		NameProperties:   []string{"qualifiedName", "name", "identifier"},
		SearchProperties: []string{"qualifiedName", "name", "identifier", "description"},
	}
	SchemaAttributeKind = handler.Kind{
		TypeName:         typedefs.SchemaAttribute,
		SearchProperties: []string{"qualifiedName", "displayName", "description", "dataType"},
	}
	SolutionComponentKind = handler.Kind{
		TypeName:         typedefs.SolutionComponent,
		SearchProperties: []string{"qualifiedName", "displayName", "description", "solutionComponentType"},
	}
	UserIdentityKind = handler.Kind{
		TypeName:         typedefs.UserIdentity,
		NameProperties:   []string{"qualifiedName", "userId", "distinguishedName"},
		SearchProperties: []string{"qualifiedName", "userId", "distinguishedName"},
	}
	ValidValueDefinitionKind = handler.Kind{
		TypeName:         typedefs.ValidValueDefinition,
		NameProperties:   []string{"qualifiedName", "displayName", "preferredValue"},
		SearchProperties: []string{"qualifiedName", "displayName", "description", "preferredValue", "category"},
	}
)

// Kinds lists every kind a connector context serves.
func Kinds() []handler.Kind {
	return []handler.Kind{
		ActorProfileKind, ActorRoleKind, AnnotationKind, ConnectionKind, ContextEventKind,
		DataClassKind, ExternalReferenceKind, GlossaryKind, GlossaryTermKind, LocationKind,
		ProjectKind, SchemaAttributeKind, SolutionComponentKind, UserIdentityKind,
		ValidValueDefinitionKind,
	}
}

// Relationship types maintained by the clients.
const (
	ProfileIdentityRelationship              = "ProfileIdentity"
	PersonRoleAppointmentRelationship        = "PersonRoleAppointment"
	TeamRoleAppointmentRelationship          = "TeamRoleAppointment"
	TeamMembershipRelationship               = "TeamMembership"
	AssociatedAnnotationRelationship         = "AssociatedAnnotation"
	AnnotationExtensionRelationship          = "AnnotationExtension"
	AssetConnectionRelationship              = "AssetConnection"
	ConnectionEndpointRelationship           = "ConnectionEndpoint"
	ConnectionConnectorTypeRelationship      = "ConnectionConnectorType"
	EmbeddedConnectionRelationship           = "EmbeddedConnection"
	DependentContextEventRelationship        = "DependentContextEvent"
	RelatedContextEventRelationship          = "RelatedContextEvent"
	ContextEventImpactRelationship           = "ContextEventImpact"
	ContextEventEvidenceRelationship         = "ContextEventEvidence"
	DataClassHierarchyRelationship           = "DataClassHierarchy"
	DataClassCompositionRelationship         = "DataClassComposition"
	DataClassDefinitionRelationship          = "DataClassDefinition"
	ExternalReferenceLinkRelationship        = "ExternalReferenceLink"
	TermAnchorRelationship                   = "TermAnchor"
	RelatedTermRelationship                  = "RelatedTerm"
	SynonymRelationship                      = "Synonym"
	AntonymRelationship                      = "Antonym"
	SemanticAssignmentRelationship           = "SemanticAssignment"
	NestedLocationRelationship               = "NestedLocation"
	AdjacentLocationRelationship             = "AdjacentLocation"
	KnownLocationRelationship                = "KnownLocation"
	ProjectHierarchyRelationship             = "ProjectHierarchy"
	ProjectDependencyRelationship            = "ProjectDependency"
	ProjectManagementRelationship            = "ProjectManagement"
	ProjectTeamRelationship                  = "ProjectTeam"
	NestedSchemaAttributeRelationship        = "NestedSchemaAttribute"
	SchemaAttributeTypeRelationship          = "SchemaAttributeType"
	SolutionCompositionRelationship          = "SolutionComposition"
	SolutionLinkingWireRelationship          = "SolutionLinkingWire"
	SolutionBlueprintCompositionRelationship = "SolutionBlueprintComposition"
	SolutionComponentActorRelationship       = "SolutionComponentActor"
	ImplementedByRelationship                = "ImplementedBy"
	ValidValueMemberRelationship             = "ValidValueMember"
	ValidValueAssociationRelationship        = "ValidValueAssociation"
	ReferenceValueAssignmentRelationship     = "ReferenceValueAssignment"
)
