// Package metactx provides connector-context metadata clients: typed, per
// element-kind clients that let an integration connector create, update,
// link and query open metadata elements without dealing with the raw
// repository API.
//
// # Architecture
//
// The module is built in layers, each usable on its own:
//
//  1. metadata.Client is the repository-facing API: elements, relationships
//     and classifications addressed by GUID, with paging and effective-time
//     query options. repository.Repository implements it over a pluggable
//     storage backend (memory, PostgreSQL or MongoDB) and remote.Client
//     implements it over HTTP.
//
//  2. handler.Handler converts between typed property beans and the generic
//     element model, and enforces the create, update, link and delete rules
//     shared by every element kind (anchors, effectivity, relationship end
//     checks).
//
//  3. connectorctx.ConnectorContext carries the calling user, the external
//     source the connector is bound to and its default query options, and
//     hands out one client per element kind: locations, actor profiles,
//     roles, projects, glossaries, data classes, valid values, solution
//     components and so on.
//
//  4. report.Writer records what a connector run touched and publishes it
//     as an integration report element; audit and events carry the same
//     activity to logs, Kafka and Prometheus.
//
// # Quick Start
//
//	repo := repository.New(memory.New(), repository.Config{}, log)
//	cc, _ := connectorctx.New(repo, config.ContextConfig{
//	    UserID:        "erinoverview",
//	    ConnectorName: "catalog-loader",
//	}, log)
//
//	guid, _ := cc.Glossaries().Create(ctx, connectorctx.GlossaryProperties{
//	    ReferenceableProperties: connectorctx.ReferenceableProperties{
//	        QualifiedName: "Glossary::Sales",
//	    },
//	    DisplayName: "Sales",
//	})
//
// # Key Packages
//
//	pkg/metadata      - Element model and the metadata.Client interface
//	pkg/typedefs      - Type and relationship definitions
//	pkg/repository    - Repository over a storage backend
//	pkg/handler       - Generic create/update/link handler
//	pkg/connectorctx  - Connector context and per-kind clients
//	pkg/report        - Integration report recording
//	pkg/loader        - YAML catalog loader
//	pkg/server        - HTTP API over a repository
//	pkg/remote        - HTTP metadata.Client
//
// # Command line
//
//	metactx serve --config metactx.yaml
//	metactx load --file catalog.yaml
//	metactx find Sales --type Glossary
//
// Configuration is read from YAML with METACTX_ environment overrides; see
// pkg/config.
package metactx
