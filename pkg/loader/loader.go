// Package loader creates the elements of a YAML catalog through the
// connector context clients.
//
// Elements are created first and linked in a second pass, so entries may
// refer to qualified names declared later in the file. An element whose
// qualified name already exists is updated instead of created; links
// between two elements that both existed before the load are assumed to be
// in place and are not created again. The whole load is one recording of
// the integration report writer, published when the load succeeds.
package loader

import (
	"context"

	"github.com/ajitpratap0/metactx/pkg/connectorctx"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/report"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"go.uber.org/zap"
)

// Phase is the refresh phase recorded for a load.
const Phase = "catalog-load"

// Result summarises a load.
type Result struct {
	// GUIDs maps every qualified name in the catalog to its element
	GUIDs   map[string]string
	Created int
	Updated int
	Linked  int
	// ReportGUID is the published integration report, if any
	ReportGUID string
}

// Loader loads catalogs.
type Loader struct {
	cc      *connectorctx.ConnectorContext
	reports *report.Writer
	logger  *zap.Logger
}

// New creates a loader. The report writer should be the one the context
// reports to; nil skips recording.
func New(cc *connectorctx.ConnectorContext, reports *report.Writer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		cc:      cc,
		reports: reports,
		logger:  logger.With(zap.String("component", "loader")),
	}
}

type run struct {
	ctx      context.Context
	cc       *connectorctx.ConnectorContext
	result   *Result
	existing map[string]bool
}

// Load creates or updates every element of the catalog and links them.
func (l *Loader) Load(ctx context.Context, c *Catalog) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if l.reports != nil {
		l.reports.StartRecording(Phase)
	}

	r := &run{
		ctx:      ctx,
		cc:       l.cc,
		result:   &Result{GUIDs: make(map[string]string, c.Len())},
		existing: make(map[string]bool),
	}
	l.logger.Info("Loading catalog", zap.Int("elements", c.Len()))

	if err := r.createAll(c); err != nil {
		return nil, err
	}
	if err := r.linkAll(c); err != nil {
		return nil, err
	}

	if l.reports != nil {
		guid, err := l.reports.Publish(ctx)
		if err != nil {
			return nil, err
		}
		r.result.ReportGUID = guid
	}
	l.logger.Info("Catalog loaded",
		zap.Int("created", r.result.Created),
		zap.Int("updated", r.result.Updated),
		zap.Int("linked", r.result.Linked),
		zap.String("report_guid", r.result.ReportGUID))
	return r.result, nil
}

type referenceable interface {
	Referenceable() connectorctx.ReferenceableProperties
}

// upsert creates the element or, when its qualified name exists, merges
// props into it.
func upsert[P referenceable](r *run, c *connectorctx.EntityClient[P], props P, opts ...connectorctx.CreateOption) (string, error) {
	qn := props.Referenceable().QualifiedName
	found, err := c.GetByName(r.ctx, qn, 0, 0)
	if err != nil {
		return "", err
	}
	for _, e := range found {
		if e.Properties.Referenceable().QualifiedName != qn {
			continue
		}
		guid := e.GUID()
		if err := c.Update(r.ctx, guid, props, true); err != nil {
			return "", err
		}
		r.result.GUIDs[qn] = guid
		r.result.Updated++
		r.existing[qn] = true
		return guid, nil
	}

	guid, err := c.Create(r.ctx, props, opts...)
	if err != nil {
		return "", err
	}
	r.result.GUIDs[qn] = guid
	r.result.Created++
	return guid, nil
}

func (r *run) createAll(c *Catalog) error {
	for _, l := range c.Locations {
		if _, err := upsert(r, r.cc.Locations().EntityClient, connectorctx.LocationProperties{
			ReferenceableProperties: ref("", l.QualifiedName),
			Identifier:              l.Identifier,
			DisplayName:             l.DisplayName,
			Description:             l.Description,
		}); err != nil {
			return err
		}
	}

	for _, p := range c.Profiles {
		typeName := p.Type
		if typeName == "" {
			typeName = typedefs.Person
		}
		if _, err := upsert(r, r.cc.ActorProfiles().EntityClient, connectorctx.ActorProfileProperties{
			ReferenceableProperties: ref(typeName, p.QualifiedName),
			Name:                    p.Name,
			FullName:                p.FullName,
			JobTitle:                p.JobTitle,
			ContactEmail:            p.ContactEmail,
			Description:             p.Description,
		}); err != nil {
			return err
		}
		for _, id := range p.Identities {
			if _, err := upsert(r, r.cc.UserIdentities().EntityClient, connectorctx.UserIdentityProperties{
				ReferenceableProperties: ref("", id.QualifiedName),
				UserID:                  id.UserID,
				DistinguishedName:       id.DistinguishedName,
			}); err != nil {
				return err
			}
		}
	}

	for _, role := range c.Roles {
		typeName := role.Type
		if typeName == "" {
			typeName = typedefs.PersonRole
		}
		if _, err := upsert(r, r.cc.ActorRoles().EntityClient, connectorctx.ActorRoleProperties{
			ReferenceableProperties: ref(typeName, role.QualifiedName),
			Name:                    role.Name,
			Identifier:              role.Identifier,
			Description:             role.Description,
			Scope:                   role.Scope,
			HeadCount:               role.HeadCount,
			HeadCountLimitSet:       role.HeadCount > 0,
		}); err != nil {
			return err
		}
	}

	for _, p := range c.Projects {
		if _, err := upsert(r, r.cc.Projects().EntityClient, connectorctx.ProjectProperties{
			ReferenceableProperties: ref("", p.QualifiedName),
			Identifier:              p.Identifier,
			Name:                    p.Name,
			Description:             p.Description,
			ProjectStatus:           p.ProjectStatus,
			Priority:                p.Priority,
			StartDate:               p.StartDate,
			PlannedEndDate:          p.PlannedEndDate,
		}); err != nil {
			return err
		}
	}

	for _, g := range c.Glossaries {
		glossary, err := upsert(r, r.cc.Glossaries().EntityClient, connectorctx.GlossaryProperties{
			ReferenceableProperties: ref("", g.QualifiedName),
			DisplayName:             g.DisplayName,
			Description:             g.Description,
			Language:                g.Language,
			Usage:                   g.Usage,
		})
		if err != nil {
			return err
		}
		for _, t := range g.Terms {
			if _, err := upsert(r, r.cc.GlossaryTerms().EntityClient, connectorctx.GlossaryTermProperties{
				ReferenceableProperties: ref("", t.QualifiedName),
				DisplayName:             t.DisplayName,
				Summary:                 t.Summary,
				Description:             t.Description,
				Abbreviation:            t.Abbreviation,
				Examples:                t.Examples,
				Usage:                   t.Usage,
			}, connectorctx.WithAnchor(glossary)); err != nil {
				return err
			}
		}
	}

	for _, d := range c.DataClasses {
		if _, err := upsert(r, r.cc.DataClasses().EntityClient, connectorctx.DataClassProperties{
			ReferenceableProperties: ref("", d.QualifiedName),
			DisplayName:             d.DisplayName,
			Description:             d.Description,
			DataType:                d.DataType,
			MatchPropertyNames:      d.MatchPropertyNames,
			MatchThreshold:          d.MatchThreshold,
		}); err != nil {
			return err
		}
	}

	for _, s := range c.ValidValues {
		set, err := upsert(r, r.cc.ValidValues().EntityClient, connectorctx.ValidValueDefinitionProperties{
			ReferenceableProperties: ref("ValidValueSet", s.QualifiedName),
			DisplayName:             s.DisplayName,
			Description:             s.Description,
			Category:                s.Category,
			DataType:                s.DataType,
		})
		if err != nil {
			return err
		}
		for _, v := range s.Values {
			if _, err := upsert(r, r.cc.ValidValues().EntityClient, connectorctx.ValidValueDefinitionProperties{
				ReferenceableProperties: ref("", v.QualifiedName),
				DisplayName:             v.DisplayName,
				Description:             v.Description,
				Category:                s.Category,
				DataType:                s.DataType,
				PreferredValue:          v.PreferredValue,
			}, connectorctx.WithAnchor(set)); err != nil {
				return err
			}
		}
	}

	for _, s := range c.SolutionComponents {
		if _, err := upsert(r, r.cc.SolutionComponents().EntityClient, connectorctx.SolutionComponentProperties{
			ReferenceableProperties: ref("", s.QualifiedName),
			DisplayName:             s.DisplayName,
			Description:             s.Description,
			SolutionComponentType:   s.ComponentType,
			Version:                 s.Version,
		}); err != nil {
			return err
		}
	}
	return nil
}

func ref(typeName, qualifiedName string) connectorctx.ReferenceableProperties {
	return connectorctx.ReferenceableProperties{TypeName: typeName, QualifiedName: qualifiedName}
}

// link resolves both qualified names and runs fn unless both elements
// existed before the load.
func (r *run) link(end1, end2 string, fn func(end1GUID, end2GUID string) error) error {
	g1, err := r.resolve(end1)
	if err != nil {
		return err
	}
	g2, err := r.resolve(end2)
	if err != nil {
		return err
	}
	if r.existing[end1] && r.existing[end2] {
		return nil
	}
	if err := fn(g1, g2); err != nil {
		return err
	}
	r.result.Linked++
	return nil
}

// resolve finds the GUID of a qualified name from this load or, failing
// that, from the repository.
func (r *run) resolve(qn string) (string, error) {
	if guid, ok := r.result.GUIDs[qn]; ok {
		return guid, nil
	}
	found, err := r.cc.Client().GetElementsByPropertyValue(r.ctx, r.cc.UserID(), qn,
		[]string{"qualifiedName"}, r.cc.QueryOptions(0, 0))
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", omerrors.InvalidParameter("qualifiedName", "catalog refers to unknown element "+qn)
	}
	r.result.GUIDs[qn] = found[0].GUID()
	r.existing[qn] = true
	return found[0].GUID(), nil
}

func (r *run) linkAll(c *Catalog) error {
	ctx := r.ctx
	locations := r.cc.Locations()
	for _, l := range c.Locations {
		if l.NestedIn != "" {
			if err := r.link(l.NestedIn, l.QualifiedName, func(parent, nested string) error {
				return locations.LinkNestedLocation(ctx, parent, nested)
			}); err != nil {
				return err
			}
		}
		for _, peer := range l.AdjacentTo {
			if err := r.link(l.QualifiedName, peer, func(a, b string) error {
				return locations.LinkAdjacentLocation(ctx, a, b)
			}); err != nil {
				return err
			}
		}
	}

	profiles := r.cc.ActorProfiles()
	for _, p := range c.Profiles {
		for _, id := range p.Identities {
			if err := r.link(p.QualifiedName, id.QualifiedName, func(profile, identity string) error {
				return profiles.LinkIdentity(ctx, profile, identity, nil)
			}); err != nil {
				return err
			}
		}
		for _, m := range p.Members {
			if err := r.link(p.QualifiedName, m, func(team, member string) error {
				return profiles.LinkTeamMember(ctx, team, member, nil)
			}); err != nil {
				return err
			}
		}
		if p.Location != "" {
			if err := r.link(p.QualifiedName, p.Location, func(profile, location string) error {
				return locations.LinkKnownLocation(ctx, profile, location, nil)
			}); err != nil {
				return err
			}
		}
	}

	roles := r.cc.ActorRoles()
	for _, role := range c.Roles {
		team := role.Type == typedefs.TeamRole
		for _, a := range role.Appointees {
			if err := r.link(a, role.QualifiedName, func(actor, roleGUID string) error {
				if team {
					return roles.LinkTeamRoleAppointment(ctx, actor, roleGUID, nil)
				}
				return roles.LinkPersonRoleAppointment(ctx, actor, roleGUID, nil)
			}); err != nil {
				return err
			}
		}
	}

	projects := r.cc.Projects()
	for _, p := range c.Projects {
		if p.Parent != "" {
			if err := r.link(p.Parent, p.QualifiedName, func(parent, child string) error {
				return projects.LinkSubProject(ctx, parent, child, nil)
			}); err != nil {
				return err
			}
		}
		for _, d := range p.DependsOn {
			if err := r.link(p.QualifiedName, d, func(dependent, dependsOn string) error {
				return projects.LinkDependency(ctx, dependent, dependsOn, nil)
			}); err != nil {
				return err
			}
		}
		for _, m := range p.Managers {
			if err := r.link(p.QualifiedName, m, func(project, role string) error {
				return projects.LinkManagementRole(ctx, project, role)
			}); err != nil {
				return err
			}
		}
		for _, a := range p.Team {
			if err := r.link(p.QualifiedName, a, func(project, actor string) error {
				return projects.LinkTeam(ctx, project, actor, nil)
			}); err != nil {
				return err
			}
		}
	}

	glossaries := r.cc.Glossaries()
	terms := r.cc.GlossaryTerms()
	for _, g := range c.Glossaries {
		for _, t := range g.Terms {
			if err := r.link(g.QualifiedName, t.QualifiedName, func(glossary, term string) error {
				return glossaries.LinkTerm(ctx, glossary, term)
			}); err != nil {
				return err
			}
			for _, s := range t.Synonyms {
				if err := r.link(t.QualifiedName, s, func(a, b string) error {
					return terms.LinkSynonym(ctx, a, b, nil)
				}); err != nil {
					return err
				}
			}
			for _, s := range t.Antonyms {
				if err := r.link(t.QualifiedName, s, func(a, b string) error {
					return terms.LinkAntonym(ctx, a, b, nil)
				}); err != nil {
					return err
				}
			}
			for _, s := range t.RelatedTerms {
				if err := r.link(t.QualifiedName, s, func(a, b string) error {
					return terms.LinkRelatedTerm(ctx, a, b, nil)
				}); err != nil {
					return err
				}
			}
		}
	}

	dataClasses := r.cc.DataClasses()
	for _, d := range c.DataClasses {
		if d.Parent != "" {
			if err := r.link(d.Parent, d.QualifiedName, func(super, sub string) error {
				return dataClasses.LinkSubDataClass(ctx, super, sub)
			}); err != nil {
				return err
			}
		}
		if d.Meaning != "" {
			if err := r.link(d.QualifiedName, d.Meaning, func(dataClass, term string) error {
				return terms.LinkSemanticAssignment(ctx, dataClass, term, nil)
			}); err != nil {
				return err
			}
		}
	}

	validValues := r.cc.ValidValues()
	for _, s := range c.ValidValues {
		for _, v := range s.Values {
			isDefault := v.IsDefault
			if err := r.link(s.QualifiedName, v.QualifiedName, func(set, member string) error {
				return validValues.LinkMember(ctx, set, member, &connectorctx.ValidValueMemberProperties{IsDefaultValue: isDefault})
			}); err != nil {
				return err
			}
		}
	}

	components := r.cc.SolutionComponents()
	for _, s := range c.SolutionComponents {
		for _, sub := range s.SubComponents {
			if err := r.link(s.QualifiedName, sub, func(parent, child string) error {
				return components.LinkSubComponent(ctx, parent, child, nil)
			}); err != nil {
				return err
			}
		}
		for _, to := range s.WiredTo {
			if err := r.link(s.QualifiedName, to, func(from, to string) error {
				return components.LinkWire(ctx, from, to, nil)
			}); err != nil {
				return err
			}
		}
		for _, a := range s.Actors {
			if err := r.link(a, s.QualifiedName, func(role, component string) error {
				return components.LinkActor(ctx, role, component, nil)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
