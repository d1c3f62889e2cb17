package connectorctx

import (
	"sync"

	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"go.uber.org/zap"
)

// ConnectorContext gives a connector its clients. Clients are built on
// first use and share the context's ClientBase.
type ConnectorContext struct {
	*ClientBase

	actorProfiles      lazy[*ActorProfileClient]
	actorRoles         lazy[*ActorRoleClient]
	annotations        lazy[*AnnotationClient]
	connections        lazy[*ConnectionClient]
	contextEvents      lazy[*ContextEventClient]
	dataClasses        lazy[*DataClassClient]
	externalReferences lazy[*ExternalReferenceClient]
	glossaries         lazy[*GlossaryClient]
	glossaryTerms      lazy[*GlossaryTermClient]
	locations          lazy[*LocationClient]
	projects           lazy[*ProjectClient]
	schemaAttributes   lazy[*SchemaAttributeClient]
	solutionComponents lazy[*SolutionComponentClient]
	userIdentities     lazy[*UserIdentityClient]
	validValues        lazy[*ValidValueDefinitionClient]
}

// New creates a connector context.
func New(client metadata.Client, cfg config.ContextConfig, logger *zap.Logger, opts ...Option) (*ConnectorContext, error) {
	types := typedefs.Default()
	for _, k := range Kinds() {
		if _, ok := types.LookupEntity(k.TypeName); !ok {
			return nil, omerrors.New(omerrors.ErrorTypeConfig, "kind "+k.TypeName+" is not a known entity type")
		}
	}
	base, err := NewClientBase(client, cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &ConnectorContext{ClientBase: base}, nil
}

// ActorProfiles returns the actor profile client.
func (c *ConnectorContext) ActorProfiles() *ActorProfileClient {
	return c.actorProfiles.get(func() (*ActorProfileClient, error) { return newActorProfileClient(c.ClientBase) })
}

// ActorRoles returns the actor role client.
func (c *ConnectorContext) ActorRoles() *ActorRoleClient {
	return c.actorRoles.get(func() (*ActorRoleClient, error) { return newActorRoleClient(c.ClientBase) })
}

// Annotations returns the annotation client.
func (c *ConnectorContext) Annotations() *AnnotationClient {
	return c.annotations.get(func() (*AnnotationClient, error) { return newAnnotationClient(c.ClientBase) })
}

// Connections returns the connection client.
func (c *ConnectorContext) Connections() *ConnectionClient {
	return c.connections.get(func() (*ConnectionClient, error) { return newConnectionClient(c.ClientBase) })
}

// ContextEvents returns the context event client.
func (c *ConnectorContext) ContextEvents() *ContextEventClient {
	return c.contextEvents.get(func() (*ContextEventClient, error) { return newContextEventClient(c.ClientBase) })
}

// DataClasses returns the data class client.
func (c *ConnectorContext) DataClasses() *DataClassClient {
	return c.dataClasses.get(func() (*DataClassClient, error) { return newDataClassClient(c.ClientBase) })
}

// ExternalReferences returns the external reference client.
func (c *ConnectorContext) ExternalReferences() *ExternalReferenceClient {
	return c.externalReferences.get(func() (*ExternalReferenceClient, error) { return newExternalReferenceClient(c.ClientBase) })
}

// Glossaries returns the glossary client.
func (c *ConnectorContext) Glossaries() *GlossaryClient {
	return c.glossaries.get(func() (*GlossaryClient, error) { return newGlossaryClient(c.ClientBase) })
}

// GlossaryTerms returns the glossary term client.
func (c *ConnectorContext) GlossaryTerms() *GlossaryTermClient {
	return c.glossaryTerms.get(func() (*GlossaryTermClient, error) { return newGlossaryTermClient(c.ClientBase) })
}

// Locations returns the location client.
func (c *ConnectorContext) Locations() *LocationClient {
	return c.locations.get(func() (*LocationClient, error) { return newLocationClient(c.ClientBase) })
}

// Projects returns the project client.
func (c *ConnectorContext) Projects() *ProjectClient {
	return c.projects.get(func() (*ProjectClient, error) { return newProjectClient(c.ClientBase) })
}

// SchemaAttributes returns the schema attribute client.
func (c *ConnectorContext) SchemaAttributes() *SchemaAttributeClient {
	return c.schemaAttributes.get(func() (*SchemaAttributeClient, error) { return newSchemaAttributeClient(c.ClientBase) })
}

// SolutionComponents returns the solution component client.
func (c *ConnectorContext) SolutionComponents() *SolutionComponentClient {
	return c.solutionComponents.get(func() (*SolutionComponentClient, error) { return newSolutionComponentClient(c.ClientBase) })
}

// UserIdentities returns the user identity client.
func (c *ConnectorContext) UserIdentities() *UserIdentityClient {
	return c.userIdentities.get(func() (*UserIdentityClient, error) { return newUserIdentityClient(c.ClientBase) })
}

// ValidValues returns the valid value definition client.
func (c *ConnectorContext) ValidValues() *ValidValueDefinitionClient {
	return c.validValues.get(func() (*ValidValueDefinitionClient, error) { return newValidValueDefinitionClient(c.ClientBase) })
}

type lazy[T any] struct {
	once sync.Once
	v    T
}

// get builds the value once. New has checked every kind and the client, so
// build only fails on a programming error.
func (l *lazy[T]) get(build func() (T, error)) T {
	l.once.Do(func() {
		v, err := build()
		if err != nil {
			panic("connectorctx: " + err.Error())
		}
		l.v = v
	})
	return l.v
}
