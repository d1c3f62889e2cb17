package connectorctx

import (
	"context"

	"github.com/ajitpratap0/metactx/pkg/handler"
	"github.com/ajitpratap0/metactx/pkg/metadata"
)

// GlossaryClient maintains glossaries.
type GlossaryClient struct {
	*EntityClient[GlossaryProperties]
	terms *EntityClient[GlossaryTermProperties]
}

func newGlossaryClient(base *ClientBase) (*GlossaryClient, error) {
	glossaries, err := newEntityClient[GlossaryProperties](base, GlossaryKind)
	if err != nil {
		return nil, err
	}
	terms, err := newEntityClient[GlossaryTermProperties](base, GlossaryTermKind)
	if err != nil {
		return nil, err
	}
	return &GlossaryClient{EntityClient: glossaries, terms: terms}, nil
}

// LinkTerm anchors a term in a glossary. A term belongs to one glossary.
func (c *GlossaryClient) LinkTerm(ctx context.Context, glossaryGUID, termGUID string) error {
	return c.link(ctx, TermAnchorRelationship, glossaryGUID, termGUID, nil)
}

// DetachTerm removes a term from a glossary.
func (c *GlossaryClient) DetachTerm(ctx context.Context, glossaryGUID, termGUID string) error {
	return c.detach(ctx, TermAnchorRelationship, glossaryGUID, termGUID)
}

// GetTerms returns the terms of a glossary.
func (c *GlossaryClient) GetTerms(ctx context.Context, glossaryGUID string, startFrom, pageSize int) ([]*handler.Element[GlossaryTermProperties], error) {
	related, err := c.terms.GetRelated(ctx, glossaryGUID, TermAnchorRelationship, metadata.End1, startFrom, pageSize)
	if err != nil {
		return nil, err
	}
	return relatedElements(related), nil
}

// GlossaryTermClient maintains glossary terms and their relationships.
type GlossaryTermClient struct {
	*EntityClient[GlossaryTermProperties]
}

func newGlossaryTermClient(base *ClientBase) (*GlossaryTermClient, error) {
	c, err := newEntityClient[GlossaryTermProperties](base, GlossaryTermKind)
	if err != nil {
		return nil, err
	}
	return &GlossaryTermClient{EntityClient: c}, nil
}

// LinkRelatedTerm records that two terms are worth reading together.
func (c *GlossaryTermClient) LinkRelatedTerm(ctx context.Context, termGUID, relatedTermGUID string, props *TermRelationshipProperties) error {
	return c.link(ctx, RelatedTermRelationship, termGUID, relatedTermGUID, props)
}

// DetachRelatedTerm removes a related term.
func (c *GlossaryTermClient) DetachRelatedTerm(ctx context.Context, termGUID, relatedTermGUID string) error {
	return c.detach(ctx, RelatedTermRelationship, termGUID, relatedTermGUID)
}

// LinkSynonym records that two terms mean the same.
func (c *GlossaryTermClient) LinkSynonym(ctx context.Context, termGUID, synonymGUID string, props *TermRelationshipProperties) error {
	return c.link(ctx, SynonymRelationship, termGUID, synonymGUID, props)
}

// DetachSynonym removes a synonym.
func (c *GlossaryTermClient) DetachSynonym(ctx context.Context, termGUID, synonymGUID string) error {
	return c.detach(ctx, SynonymRelationship, termGUID, synonymGUID)
}

// LinkAntonym records that two terms mean the opposite.
func (c *GlossaryTermClient) LinkAntonym(ctx context.Context, termGUID, antonymGUID string, props *TermRelationshipProperties) error {
	return c.link(ctx, AntonymRelationship, termGUID, antonymGUID, props)
}

// DetachAntonym removes an antonym.
func (c *GlossaryTermClient) DetachAntonym(ctx context.Context, termGUID, antonymGUID string) error {
	return c.detach(ctx, AntonymRelationship, termGUID, antonymGUID)
}

// LinkSemanticAssignment gives an element the meaning of a term.
func (c *GlossaryTermClient) LinkSemanticAssignment(ctx context.Context, elementGUID, termGUID string, props *SemanticAssignmentProperties) error {
	return c.link(ctx, SemanticAssignmentRelationship, elementGUID, termGUID, props)
}

// DetachSemanticAssignment removes a meaning from an element.
func (c *GlossaryTermClient) DetachSemanticAssignment(ctx context.Context, elementGUID, termGUID string) error {
	return c.detach(ctx, SemanticAssignmentRelationship, elementGUID, termGUID)
}
