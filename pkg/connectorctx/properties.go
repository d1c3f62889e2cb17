package connectorctx

import "time"

// ReferenceableProperties are shared by every kind. TypeName selects a
// subtype on create and is filled in on retrieval.
type ReferenceableProperties struct {
	TypeName             string            `json:"typeName,omitempty"`
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty"`
}

// Referenceable returns the shared properties of any kind's properties.
func (r ReferenceableProperties) Referenceable() ReferenceableProperties {
	return r
}

// ActorProfileProperties describe a person, team or IT profile.
type ActorProfileProperties struct {
	ReferenceableProperties
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	JobTitle     string `json:"jobTitle,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
}

// ActorRoleProperties describe a role performed by people or teams.
type ActorRoleProperties struct {
	ReferenceableProperties
	Name              string `json:"name,omitempty"`
	Description       string `json:"description,omitempty"`
	Identifier        string `json:"identifier,omitempty"`
	Scope             string `json:"scope,omitempty"`
	HeadCount         int    `json:"headCount,omitempty"`
	HeadCountLimitSet bool   `json:"headCountLimitSet,omitempty"`
}

// AnnotationProperties describe the result of an analysis.
type AnnotationProperties struct {
	ReferenceableProperties
	AnnotationType string `json:"annotationType,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Confidence     int    `json:"confidenceLevel,omitempty"`
	Expression     string `json:"expression,omitempty"`
	Explanation    string `json:"explanation,omitempty"`
	AnalysisStep   string `json:"analysisStep,omitempty"`
	JSONProperties string `json:"jsonProperties,omitempty"`
}

// ConnectionProperties describe how to build a connector.
type ConnectionProperties struct {
	ReferenceableProperties
	DisplayName             string            `json:"displayName,omitempty"`
	Description             string            `json:"description,omitempty"`
	UserID                  string            `json:"userId,omitempty"`
	SecuredProperties       map[string]string `json:"securedProperties,omitempty"`
	ConfigurationProperties map[string]any    `json:"configurationProperties,omitempty"`
}

// ContextEventProperties describe an event that changes how data should be
// interpreted.
type ContextEventProperties struct {
	ReferenceableProperties
	Name                   string     `json:"name,omitempty"`
	Description            string     `json:"description,omitempty"`
	EventEffect            string     `json:"eventEffect,omitempty"`
	PlannedStartDate       *time.Time `json:"plannedStartDate,omitempty"`
	ActualStartDate        *time.Time `json:"actualStartDate,omitempty"`
	PlannedCompletionDate  *time.Time `json:"plannedCompletionDate,omitempty"`
	ActualCompletionDate   *time.Time `json:"actualCompletionDate,omitempty"`
	ReferenceEffectiveFrom *time.Time `json:"referenceEffectiveFrom,omitempty"`
	ReferenceEffectiveTo   *time.Time `json:"referenceEffectiveTo,omitempty"`
}

// DataClassProperties describe a logical data type.
type DataClassProperties struct {
	ReferenceableProperties
	DisplayName           string            `json:"displayName,omitempty"`
	Description           string            `json:"description,omitempty"`
	Namespace             string            `json:"namespace,omitempty"`
	MatchPropertyNames    []string          `json:"matchPropertyNames,omitempty"`
	MatchThreshold        int               `json:"matchThreshold,omitempty"`
	SpecificationDetails  map[string]string `json:"specificationDetails,omitempty"`
	DataType              string            `json:"dataType,omitempty"`
	AllowsDuplicateValues bool              `json:"allowsDuplicateValues,omitempty"`
	IsNullable            bool              `json:"isNullable,omitempty"`
	IsCaseSensitive       bool              `json:"isCaseSensitive,omitempty"`
}

// ExternalReferenceProperties describe a resource outside the platform.
type ExternalReferenceProperties struct {
	ReferenceableProperties
	DisplayName      string `json:"displayName,omitempty"`
	Description      string `json:"description,omitempty"`
	URL              string `json:"url,omitempty"`
	ReferenceVersion string `json:"referenceVersion,omitempty"`
	Owner            string `json:"owner,omitempty"`
}

// GlossaryProperties describe a glossary.
type GlossaryProperties struct {
	ReferenceableProperties
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Usage       string `json:"usage,omitempty"`
}

// GlossaryTermProperties describe a glossary term.
type GlossaryTermProperties struct {
	ReferenceableProperties
	DisplayName  string `json:"displayName,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Description  string `json:"description,omitempty"`
	Examples     string `json:"examples,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Usage        string `json:"usage,omitempty"`
}

// LocationProperties describe a physical or logical location.
type LocationProperties struct {
	ReferenceableProperties
	Identifier  string `json:"identifier,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectProperties describe a project.
type ProjectProperties struct {
	ReferenceableProperties
	Identifier     string     `json:"identifier,omitempty"`
	Name           string     `json:"name,omitempty"`
	Description    string     `json:"description,omitempty"`
	ProjectStatus  string     `json:"projectStatus,omitempty"`
	ProjectPhase   string     `json:"projectPhase,omitempty"`
	ProjectHealth  string     `json:"projectHealth,omitempty"`
	Priority       int        `json:"priority,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	PlannedEndDate *time.Time `json:"plannedEndDate,omitempty"`
}

// SchemaAttributeProperties describe one attribute of a schema.
type SchemaAttributeProperties struct {
	ReferenceableProperties
	DisplayName     string `json:"displayName,omitempty"`
	Description     string `json:"description,omitempty"`
	ElementPosition int    `json:"elementPosition,omitempty"`
	MinCardinality  int    `json:"minCardinality,omitempty"`
	MaxCardinality  int    `json:"maxCardinality,omitempty"`
	IsNullable      bool   `json:"isNullable,omitempty"`
	DefaultValue    string `json:"defaultValue,omitempty"`
	DataType        string `json:"dataType,omitempty"`
	Length          int    `json:"length,omitempty"`
	Precision       int    `json:"precision,omitempty"`
	IsDeprecated    bool   `json:"isDeprecated,omitempty"`
}

// SolutionComponentProperties describe a component of a solution design.
type SolutionComponentProperties struct {
	ReferenceableProperties
	DisplayName                       string `json:"displayName,omitempty"`
	Description                       string `json:"description,omitempty"`
	SolutionComponentType             string `json:"solutionComponentType,omitempty"`
	PlannedDeployedImplementationType string `json:"plannedDeployedImplementationType,omitempty"`
	Version                           string `json:"version,omitempty"`
}

// UserIdentityProperties describe a security identity.
type UserIdentityProperties struct {
	ReferenceableProperties
	UserID            string `json:"userId,omitempty"`
	DistinguishedName string `json:"distinguishedName,omitempty"`
}

// ValidValueDefinitionProperties describe a valid value or a set of them.
type ValidValueDefinitionProperties struct {
	ReferenceableProperties
	DisplayName     string `json:"displayName,omitempty"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	Scope           string `json:"scope,omitempty"`
	PreferredValue  string `json:"preferredValue,omitempty"`
	DataType        string `json:"dataType,omitempty"`
	IsDeprecated    bool   `json:"isDeprecated,omitempty"`
	IsCaseSensitive bool   `json:"isCaseSensitive,omitempty"`
}

// Relationship properties.

// ProfileIdentityProperties qualify a ProfileIdentity relationship.
type ProfileIdentityProperties struct {
	RoleTypeName string `json:"roleTypeName,omitempty"`
	RoleGUID     string `json:"roleGUID,omitempty"`
	Description  string `json:"description,omitempty"`
}

// AppointmentProperties qualify role appointments.
type AppointmentProperties struct {
	IsPublic bool `json:"isPublic,omitempty"`
}

// TeamMembershipProperties qualify a TeamMembership relationship.
type TeamMembershipProperties struct {
	Position string `json:"position,omitempty"`
}

// EmbeddedConnectionProperties qualify an EmbeddedConnection relationship.
type EmbeddedConnectionProperties struct {
	Position    int            `json:"position,omitempty"`
	DisplayName string         `json:"displayName,omitempty"`
	Arguments   map[string]any `json:"arguments,omitempty"`
}

// AssetConnectionProperties qualify an AssetConnection relationship.
type AssetConnectionProperties struct {
	AssetSummary string `json:"assetSummary,omitempty"`
}

// ContextEventLinkProperties qualify the relationships of context events.
type ContextEventLinkProperties struct {
	Description string `json:"description,omitempty"`
	// SeverityLevel is used by ContextEventImpact only
	SeverityLevel int `json:"severityLevelIdentifier,omitempty"`
}

// DataClassDefinitionProperties qualify the assignment of a data class.
type DataClassDefinitionProperties struct {
	Method     string `json:"method,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
	Steward    string `json:"steward,omitempty"`
	Source     string `json:"source,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ExternalReferenceLinkProperties qualify an ExternalReferenceLink.
type ExternalReferenceLinkProperties struct {
	LinkID          string `json:"linkId,omitempty"`
	LinkDescription string `json:"linkDescription,omitempty"`
	Pages           string `json:"pages,omitempty"`
}

// TermRelationshipProperties qualify RelatedTerm, Synonym and Antonym.
type TermRelationshipProperties struct {
	Expression  string `json:"expression,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Steward     string `json:"steward,omitempty"`
	Source      string `json:"source,omitempty"`
	Confidence  int    `json:"confidence,omitempty"`
}

// SemanticAssignmentProperties qualify the assignment of a meaning.
type SemanticAssignmentProperties struct {
	Expression  string `json:"expression,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Confidence  int    `json:"confidence,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
	Steward     string `json:"steward,omitempty"`
	Source      string `json:"source,omitempty"`
}

// KnownLocationProperties qualify a KnownLocation relationship.
type KnownLocationProperties struct {
	NetworkAddress string `json:"networkAddress,omitempty"`
}

// ProjectDependencyProperties qualify ProjectHierarchy and
// ProjectDependency.
type ProjectDependencyProperties struct {
	DependencySummary string `json:"dependencySummary,omitempty"`
}

// ProjectTeamProperties qualify a ProjectTeam relationship.
type ProjectTeamProperties struct {
	TeamRole string `json:"teamRole,omitempty"`
}

// SolutionLinkProperties qualify SolutionComposition and
// SolutionComponentActor.
type SolutionLinkProperties struct {
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
}

// SolutionLinkingWireProperties qualify a wire between components.
type SolutionLinkingWireProperties struct {
	Label                              string   `json:"label,omitempty"`
	Description                        string   `json:"description,omitempty"`
	InformationSupplyChainSegmentGUIDs []string `json:"informationSupplyChainSegmentGUIDs,omitempty"`
}

// ImplementedByProperties qualify an ImplementedBy relationship.
type ImplementedByProperties struct {
	DesignStep                string `json:"designStep,omitempty"`
	Role                      string `json:"role,omitempty"`
	TransformationDescription string `json:"transformation,omitempty"`
	Description               string `json:"description,omitempty"`
}

// ValidValueMemberProperties qualify a ValidValueMember relationship.
type ValidValueMemberProperties struct {
	IsDefaultValue bool `json:"isDefaultValue,omitempty"`
}

// ValidValueAssociationProperties qualify a ValidValueAssociation.
type ValidValueAssociationProperties struct {
	AssociationName      string            `json:"associationName,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

// ReferenceValueAssignmentProperties qualify a ReferenceValueAssignment.
type ReferenceValueAssignmentProperties struct {
	AttributeName string `json:"attributeName,omitempty"`
	Confidence    int    `json:"confidence,omitempty"`
	Steward       string `json:"steward,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
