// Package typedefs holds the compiled table of open metadata types: the
// entity types and their single-inheritance hierarchy, the relationship
// types with their end definitions, and the classification types.
//
// The table is fixed at compile time. Lookups are read-only and safe for
// concurrent use.
package typedefs

import "sort"

// EntityDef describes one entity type.
type EntityDef struct {
	Name        string
	SuperType   string
	Description string
}

// EndDef describes one end of a relationship type.
type EndDef struct {
	// EntityType is the most general type allowed at this end
	EntityType string
	// AttributeName is how the element at the other end refers to this end
	AttributeName string
	// AtMostOne limits each element at the other end to a single partner
	// at this end
	AtMostOne bool
}

// RelationshipDef describes one relationship type.
type RelationshipDef struct {
	Name        string
	End1        EndDef
	End2        EndDef
	Description string
}

// ClassificationDef describes one classification type.
type ClassificationDef struct {
	Name string
	// ValidEntityTypes lists the types that may carry the classification;
	// a subtype of any listed type is accepted
	ValidEntityTypes []string
}

// Well-known type names.
const (
	OpenMetadataRoot     = "OpenMetadataRoot"
	Referenceable        = "Referenceable"
	Asset                = "Asset"
	ActorProfile         = "ActorProfile"
	Person               = "Person"
	Team                 = "Team"
	ActorRole            = "ActorRole"
	PersonRole           = "PersonRole"
	TeamRole             = "TeamRole"
	UserIdentity         = "UserIdentity"
	Annotation           = "Annotation"
	Connection           = "Connection"
	VirtualConnection    = "VirtualConnection"
	ConnectorType        = "ConnectorType"
	Endpoint             = "Endpoint"
	ContextEvent         = "ContextEvent"
	DataClass            = "DataClass"
	ExternalReference    = "ExternalReference"
	Glossary             = "Glossary"
	GlossaryTerm         = "GlossaryTerm"
	Location             = "Location"
	Project              = "Project"
	SchemaType           = "SchemaType"
	SchemaAttribute      = "SchemaAttribute"
	SolutionBlueprint    = "SolutionBlueprint"
	SolutionComponent    = "SolutionComponent"
	ValidValueDefinition = "ValidValueDefinition"
	IntegrationReport    = "IntegrationReport"
	IntegrationConnector = "IntegrationConnector"

	AnchorsClassification        = "Anchors"
	MementoClassification        = "Memento"
	TemplateClassification       = "Template"
	KnownDuplicateClassification = "KnownDuplicate"

	RelatedIntegrationReport = "RelatedIntegrationReport"
)

var entityDefs = []EntityDef{
	{Name: OpenMetadataRoot, Description: "Root of every entity type"},
	{Name: Referenceable, SuperType: OpenMetadataRoot, Description: "Element with a unique qualified name"},
	{Name: Asset, SuperType: Referenceable, Description: "Resource of value"},
	{Name: "DataSet", SuperType: Asset},
	{Name: "Process", SuperType: Asset},
	{Name: ActorProfile, SuperType: Referenceable, Description: "Description of a person, team or engine"},
	{Name: Person, SuperType: ActorProfile},
	{Name: Team, SuperType: ActorProfile},
	{Name: "ITProfile", SuperType: ActorProfile},
	{Name: ActorRole, SuperType: Referenceable, Description: "Role performed by an actor"},
	{Name: PersonRole, SuperType: ActorRole},
	{Name: TeamRole, SuperType: ActorRole},
	{Name: UserIdentity, SuperType: Referenceable, Description: "Security identity of an actor"},
	{Name: Annotation, SuperType: Referenceable, Description: "Result of analysing an element"},
	{Name: Connection, SuperType: Referenceable, Description: "Information needed to build a connector"},
	{Name: VirtualConnection, SuperType: Connection},
	{Name: ConnectorType, SuperType: Referenceable},
	{Name: Endpoint, SuperType: Referenceable},
	{Name: ContextEvent, SuperType: Referenceable, Description: "Event that affected the interpretation of data"},
	{Name: DataClass, SuperType: Referenceable, Description: "Logical data type specification"},
	{Name: ExternalReference, SuperType: Referenceable, Description: "Link to a resource outside of the open metadata ecosystem"},
	{Name: "RelatedMedia", SuperType: ExternalReference},
	{Name: Glossary, SuperType: Referenceable},
	{Name: GlossaryTerm, SuperType: Referenceable},
	{Name: "ControlledGlossaryTerm", SuperType: GlossaryTerm},
	{Name: Location, SuperType: Referenceable},
	{Name: Project, SuperType: Referenceable},
	{Name: "SchemaElement", SuperType: Referenceable},
	{Name: SchemaType, SuperType: "SchemaElement"},
	{Name: SchemaAttribute, SuperType: "SchemaElement"},
	{Name: SolutionBlueprint, SuperType: Referenceable},
	{Name: SolutionComponent, SuperType: Referenceable},
	{Name: ValidValueDefinition, SuperType: Referenceable},
	{Name: "ValidValueSet", SuperType: ValidValueDefinition},
	{Name: IntegrationReport, SuperType: Referenceable, Description: "Summary of an integration connector refresh"},
	{Name: IntegrationConnector, SuperType: Referenceable},
}

func rel(name, t1, a1 string, one1 bool, t2, a2 string, one2 bool) RelationshipDef {
	return RelationshipDef{
		Name: name,
		End1: EndDef{EntityType: t1, AttributeName: a1, AtMostOne: one1},
		End2: EndDef{EntityType: t2, AttributeName: a2, AtMostOne: one2},
	}
}

var relationshipDefs = []RelationshipDef{
	rel("ProfileIdentity", ActorProfile, "profile", true, UserIdentity, "userIdentities", false),
	rel("PersonRoleAppointment", Person, "rolePerformers", false, PersonRole, "performsRoles", false),
	rel("TeamRoleAppointment", Team, "teamsPerformingRole", false, TeamRole, "teamRoles", false),
	rel("TeamMembership", Team, "memberOfTeams", false, ActorProfile, "teamMembers", false),
	rel("AssociatedAnnotation", Referenceable, "annotatedElement", false, Annotation, "annotations", false),
	rel("AnnotationExtension", Annotation, "extendedAnnotations", false, Annotation, "extendingAnnotations", false),
	rel("AssetConnection", Connection, "connections", false, Asset, "asset", true),
	rel("ConnectionEndpoint", Endpoint, "connectionEndpoint", true, Connection, "connections", false),
	rel("ConnectionConnectorType", Connection, "connections", false, ConnectorType, "connectorType", true),
	rel("EmbeddedConnection", VirtualConnection, "supportingVirtualConnections", false, Connection, "embeddedConnections", false),
	rel("DependentContextEvent", ContextEvent, "parentContextEvents", false, ContextEvent, "childContextEvents", false),
	rel("RelatedContextEvent", ContextEvent, "relatedContextEventsFrom", false, ContextEvent, "relatedContextEventsTo", false),
	rel("ContextEventImpact", ContextEvent, "contextEvents", false, Referenceable, "impactedResources", false),
	rel("ContextEventEvidence", ContextEvent, "supportedContextEvents", false, Referenceable, "evidence", false),
	rel("DataClassHierarchy", DataClass, "superDataClass", true, DataClass, "subDataClasses", false),
	rel("DataClassComposition", DataClass, "partOfDataClasses", false, DataClass, "madeOfDataClasses", false),
	rel("DataClassDefinition", DataClass, "dataClassDefinition", true, Referenceable, "assignedToElements", false),
	rel("ExternalReferenceLink", Referenceable, "attachedTo", false, ExternalReference, "externalReferences", false),
	rel("TermAnchor", Glossary, "anchor", true, GlossaryTerm, "terms", false),
	rel("RelatedTerm", GlossaryTerm, "seeAlso", false, GlossaryTerm, "seeAlsoFrom", false),
	rel("Synonym", GlossaryTerm, "synonyms", false, GlossaryTerm, "synonymsFrom", false),
	rel("Antonym", GlossaryTerm, "antonyms", false, GlossaryTerm, "antonymsFrom", false),
	rel("SemanticAssignment", Referenceable, "assignedElements", false, GlossaryTerm, "meaning", false),
	rel("NestedLocation", Location, "groupingLocations", false, Location, "nestedLocations", false),
	rel("AdjacentLocation", Location, "peerLocationsFrom", false, Location, "peerLocations", false),
	rel("KnownLocation", Referenceable, "localResources", false, Location, "knownLocations", false),
	rel("ProjectHierarchy", Project, "managingProject", true, Project, "managedProjects", false),
	rel("ProjectDependency", Project, "dependentProjects", false, Project, "dependsOnProjects", false),
	rel("ProjectManagement", Project, "projectsManaged", false, PersonRole, "projectManagers", false),
	rel("ProjectTeam", Project, "projectFocus", false, ActorProfile, "supportingActors", false),
	rel("NestedSchemaAttribute", SchemaAttribute, "parentAttribute", true, SchemaAttribute, "nestedAttributes", false),
	rel("AttributeForSchema", SchemaType, "parentSchemas", false, SchemaAttribute, "attributes", false),
	rel("SchemaAttributeType", SchemaAttribute, "usedInSchemas", false, SchemaType, "type", true),
	rel("SolutionComposition", SolutionComponent, "parentComponents", false, SolutionComponent, "subComponents", false),
	rel("SolutionLinkingWire", SolutionComponent, "wiredTo", false, SolutionComponent, "wiredFrom", false),
	rel("SolutionBlueprintComposition", SolutionBlueprint, "solutionBlueprints", false, SolutionComponent, "solutionComponents", false),
	rel("SolutionComponentActor", ActorRole, "solutionComponentActors", false, SolutionComponent, "involvedInSolutionComponents", false),
	rel("ImplementedBy", Referenceable, "designs", false, Referenceable, "implementations", false),
	rel("ValidValueMember", ValidValueDefinition, "validValueSets", false, ValidValueDefinition, "memberOfValidValueSets", false),
	rel("ValidValueAssociation", ValidValueDefinition, "associatedValidValues1", false, ValidValueDefinition, "associatedValidValues2", false),
	rel("ReferenceValueAssignment", Referenceable, "assignedItems", false, ValidValueDefinition, "referenceValues", false),
	rel(RelatedIntegrationReport, Referenceable, "reportSubject", false, IntegrationReport, "reports", false),
	rel("DataFlow", Referenceable, "dataSuppliers", false, Referenceable, "dataConsumers", false),
	rel("ControlFlow", Referenceable, "currentSteps", false, Referenceable, "nextSteps", false),
	rel("ProcessCall", Referenceable, "calledBy", false, Referenceable, "calls", false),
	rel("LineageMapping", Referenceable, "sourceElement", false, Referenceable, "targetElement", false),
}

var classificationDefs = []ClassificationDef{
	{Name: AnchorsClassification, ValidEntityTypes: []string{OpenMetadataRoot}},
	{Name: MementoClassification, ValidEntityTypes: []string{OpenMetadataRoot}},
	{Name: TemplateClassification, ValidEntityTypes: []string{OpenMetadataRoot}},
	{Name: KnownDuplicateClassification, ValidEntityTypes: []string{OpenMetadataRoot}},
	{Name: "Confidentiality", ValidEntityTypes: []string{Referenceable}},
	{Name: "Criticality", ValidEntityTypes: []string{Referenceable}},
	{Name: "Taxonomy", ValidEntityTypes: []string{Glossary}},
	{Name: "CanonicalVocabulary", ValidEntityTypes: []string{Glossary}},
	{Name: "SpineObject", ValidEntityTypes: []string{GlossaryTerm}},
	{Name: "PrimaryKey", ValidEntityTypes: []string{SchemaAttribute}},
}

// symmetricRelationships link peers; either element may sit at end 1.
var symmetricRelationships = map[string]bool{
	"Synonym":               true,
	"Antonym":               true,
	"AdjacentLocation":      true,
	"ValidValueAssociation": true,
	"RelatedContextEvent":   true,
}

var lineageRelationships = map[string]bool{
	"DataFlow":       true,
	"ControlFlow":    true,
	"ProcessCall":    true,
	"LineageMapping": true,
}

// Registry answers questions about the type table.
type Registry struct {
	entities        map[string]EntityDef
	relationships   map[string]RelationshipDef
	classifications map[string]ClassificationDef
	subTypes        map[string][]string
}

var defaultRegistry = newRegistry()

// Default returns the compiled registry.
func Default() *Registry {
	return defaultRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		entities:        make(map[string]EntityDef, len(entityDefs)),
		relationships:   make(map[string]RelationshipDef, len(relationshipDefs)),
		classifications: make(map[string]ClassificationDef, len(classificationDefs)),
		subTypes:        make(map[string][]string),
	}
	for _, e := range entityDefs {
		r.entities[e.Name] = e
	}
	for _, d := range relationshipDefs {
		r.relationships[d.Name] = d
	}
	for _, c := range classificationDefs {
		r.classifications[c.Name] = c
	}
	for name := range r.entities {
		for _, super := range append([]string{name}, r.SuperTypes(name)...) {
			r.subTypes[super] = append(r.subTypes[super], name)
		}
	}
	for k := range r.subTypes {
		sort.Strings(r.subTypes[k])
	}
	return r
}

// LookupEntity returns the definition of an entity type.
func (r *Registry) LookupEntity(name string) (EntityDef, bool) {
	d, ok := r.entities[name]
	return d, ok
}

// LookupRelationship returns the definition of a relationship type.
func (r *Registry) LookupRelationship(name string) (RelationshipDef, bool) {
	d, ok := r.relationships[name]
	return d, ok
}

// LookupClassification returns the definition of a classification type.
func (r *Registry) LookupClassification(name string) (ClassificationDef, bool) {
	d, ok := r.classifications[name]
	return d, ok
}

// SuperTypes returns the ancestors of typeName, nearest first.
func (r *Registry) SuperTypes(typeName string) []string {
	var supers []string
	d, ok := r.entities[typeName]
	for ok && d.SuperType != "" {
		supers = append(supers, d.SuperType)
		d, ok = r.entities[d.SuperType]
	}
	return supers
}

// IsA reports whether typeName is superType or one of its subtypes.
func (r *Registry) IsA(typeName, superType string) bool {
	if typeName == superType {
		_, ok := r.entities[typeName]
		return ok
	}
	for _, s := range r.SuperTypes(typeName) {
		if s == superType {
			return true
		}
	}
	return false
}

// SubTypes returns typeName and all of its subtypes, sorted.
func (r *Registry) SubTypes(typeName string) []string {
	subs := r.subTypes[typeName]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// EntityTypes returns every entity definition sorted by name.
func (r *Registry) EntityTypes() []EntityDef {
	out := make([]EntityDef, 0, len(r.entities))
	for _, d := range r.entities {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RelationshipsFor returns the relationship types an element of typeName
// can take part in, sorted by name.
func (r *Registry) RelationshipsFor(typeName string) []RelationshipDef {
	var out []RelationshipDef
	for _, d := range r.relationships {
		if r.IsA(typeName, d.End1.EntityType) || r.IsA(typeName, d.End2.EntityType) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidClassification reports whether an element of typeName may carry
// the classification.
func (r *Registry) ValidClassification(classificationName, typeName string) bool {
	d, ok := r.classifications[classificationName]
	if !ok {
		return false
	}
	for _, valid := range d.ValidEntityTypes {
		if r.IsA(typeName, valid) {
			return true
		}
	}
	return false
}

// IsLineageRelationship reports whether relationships of this type record
// lineage.
func IsLineageRelationship(name string) bool {
	return lineageRelationships[name]
}

// IsSymmetricRelationship reports whether the end order of this type
// carries no meaning.
func IsSymmetricRelationship(name string) bool {
	return symmetricRelationships[name]
}
