package connectorctx

import (
	"context"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/testutil"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClient captures the options each call receives. Methods it does
// not override panic through the nil embedded interface.
type recordingClient struct {
	metadata.Client

	guid     string
	err      error
	typeName string
	props    metadata.Properties
	newOpts  metadata.NewElementOptions
	update   metadata.UpdateOptions
	deletion metadata.DeleteOptions
	query    metadata.QueryOptions
	names    []string
	source   metadata.MetadataSourceOptions
}

func (c *recordingClient) CreateElement(_ context.Context, _, typeName string, opts metadata.NewElementOptions, props metadata.Properties) (string, error) {
	c.typeName, c.newOpts, c.props = typeName, opts, props
	return c.guid, c.err
}

func (c *recordingClient) UpdateElement(_ context.Context, _, _ string, opts metadata.UpdateOptions, props metadata.Properties) error {
	c.update, c.props = opts, props
	return c.err
}

func (c *recordingClient) DeleteElement(_ context.Context, _, _ string, opts metadata.DeleteOptions) error {
	c.deletion = opts
	return c.err
}

func (c *recordingClient) GetElementsByPropertyValue(_ context.Context, _, _ string, names []string, opts metadata.QueryOptions) ([]*metadata.Element, error) {
	c.names, c.query = names, opts
	return nil, c.err
}

func (c *recordingClient) CreateRelationship(_ context.Context, _, _, _, _ string, opts metadata.MetadataSourceOptions, props metadata.Properties) (string, error) {
	c.source, c.props = opts, props
	return "rel-1", c.err
}

func testConfig() config.ContextConfig {
	return config.ContextConfig{
		UserID:             "erinoverview",
		ConnectorName:      "sales-catalog",
		ExternalSourceGUID: "source-guid",
		ExternalSourceName: "SalesCatalog",
		SequencingOrder:    "creation_date_recent",
		DeleteMethod:       "PURGE",
		PageSize:           25,
	}
}

func newTestContext(t *testing.T, client metadata.Client, opts ...Option) (*ConnectorContext, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]Option{WithMetrics(metrics.NewCollector(reg))}, opts...)
	c, err := New(client, testConfig(), testutil.TestLogger(t), opts...)
	require.NoError(t, err)
	return c, reg
}

func TestNewValidation(t *testing.T) {
	client := &recordingClient{}
	tests := []struct {
		name   string
		client metadata.Client
		modify func(*config.ContextConfig)
	}{
		{name: "no client", modify: func(*config.ContextConfig) {}},
		{name: "no user", client: client, modify: func(c *config.ContextConfig) { c.UserID = "" }},
		{name: "bad order", client: client, modify: func(c *config.ContextConfig) { c.SequencingOrder = "sideways" }},
		{name: "bad delete method", client: client, modify: func(c *config.ContextConfig) { c.DeleteMethod = "shred" }},
		{name: "negative page size", client: client, modify: func(c *config.ContextConfig) { c.PageSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			_, err := New(tt.client, cfg, nil)
			assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig), "got %v", err)
		})
	}
}

func TestDefaultsAreForwarded(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{guid: "guid-1"}
	c, _ := newTestContext(t, client)

	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c.SetEffectiveTime(&at)
	c.SetForLineage(true)

	_, err := c.Glossaries().GetByName(ctx, "Sales", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, client.query.StartFrom)
	assert.Equal(t, 25, client.query.PageSize)
	assert.Equal(t, metadata.SequencingCreationDateRecent, client.query.SequencingOrder)
	assert.Equal(t, typedefs.Glossary, client.query.MetadataElementTypeName)
	assert.True(t, client.query.ForLineage)
	require.NotNil(t, client.query.EffectiveTime)
	assert.True(t, at.Equal(*client.query.EffectiveTime))
	assert.Equal(t, []string{"qualifiedName", "name", "displayName"}, client.names)

	_, err = c.Projects().GetByName(ctx, "P1", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 25, client.query.PageSize, "page size is capped")

	_, err = c.Glossaries().Create(ctx, GlossaryProperties{
		ReferenceableProperties: ReferenceableProperties{QualifiedName: "Glossary::Sales"},
		DisplayName:             "Sales",
	}, WithAnchor("anchor-guid"))
	require.NoError(t, err)
	assert.Equal(t, typedefs.Glossary, client.typeName)
	assert.Equal(t, "source-guid", client.newOpts.ExternalSourceGUID)
	assert.Equal(t, "SalesCatalog", client.newOpts.ExternalSourceName)
	assert.Equal(t, "anchor-guid", client.newOpts.AnchorGUID)
	assert.Equal(t, metadata.Properties{"qualifiedName": "Glossary::Sales", "displayName": "Sales"}, client.props)

	require.NoError(t, c.Glossaries().Update(ctx, "guid-1", GlossaryProperties{Usage: "reference"}, true))
	assert.True(t, client.update.MergeUpdate)
	assert.Equal(t, metadata.Properties{"usage": "reference"}, client.props)

	require.NoError(t, c.Glossaries().Delete(ctx, "guid-1", true))
	assert.Equal(t, metadata.DeletePurge, client.deletion.DeleteMethod)
	assert.True(t, client.deletion.Cascade)

	c.SetDeleteMethod(metadata.DeleteSoft)
	require.NoError(t, c.Glossaries().Delete(ctx, "guid-1", false))
	assert.Equal(t, metadata.DeleteSoft, client.deletion.DeleteMethod)

	require.NoError(t, c.GlossaryTerms().LinkSynonym(ctx, "t1", "t2", &TermRelationshipProperties{Confidence: 80}))
	assert.Equal(t, "source-guid", client.source.ExternalSourceGUID)
	assert.Equal(t, metadata.Properties{"confidence": float64(80)}, client.props)
}

func TestReportsOnlyNonEmptyGUIDs(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{}
	recorder := &testutil.ReportRecorder{}
	c, _ := newTestContext(t, client, WithReportWriter(recorder))

	guid, err := c.Locations().Create(ctx, LocationProperties{ReferenceableProperties: ReferenceableProperties{QualifiedName: "Location::1"}})
	require.NoError(t, err)
	assert.Empty(t, guid)
	assert.Empty(t, recorder.Created)

	client.guid = "guid-7"
	_, err = c.Locations().Create(ctx, LocationProperties{ReferenceableProperties: ReferenceableProperties{QualifiedName: "Location::2"}})
	require.NoError(t, err)
	require.NoError(t, c.Locations().LinkNestedLocation(ctx, "guid-7", "guid-8"))
	require.NoError(t, c.Locations().Delete(ctx, "guid-8", false))

	assert.Equal(t, []string{"guid-7"}, recorder.Created)
	assert.Equal(t, []string{"guid-7"}, recorder.Updated)
	assert.Equal(t, []string{"guid-8"}, recorder.Deleted)
}

func TestErrorsAreReturnedUnchanged(t *testing.T) {
	ctx := context.Background()
	failure := omerrors.PropertyServer(nil, "repository unavailable")
	client := &recordingClient{err: failure}
	recorder := &testutil.ReportRecorder{}
	c, reg := newTestContext(t, client, WithReportWriter(recorder))

	_, err := c.DataClasses().Create(ctx, DataClassProperties{ReferenceableProperties: ReferenceableProperties{QualifiedName: "DataClass::ssn"}})
	assert.Same(t, failure, err)

	err = c.DataClasses().Delete(ctx, "guid-1", false)
	assert.Same(t, failure, err)

	assert.Empty(t, recorder.Created)
	assert.Empty(t, recorder.Deleted)
	assert.Equal(t, 2, promtest.CollectAndCount(reg, "metactx_client_calls_total"))
}

func TestLazyClients(t *testing.T) {
	c, _ := newTestContext(t, &recordingClient{})

	assert.Same(t, c.Glossaries(), c.Glossaries())
	assert.Equal(t, typedefs.ValidValueDefinition, c.ValidValues().TypeName())
	assert.Equal(t, typedefs.SolutionComponent, c.SolutionComponents().TypeName())
	assert.Equal(t, typedefs.UserIdentity, c.UserIdentities().TypeName())
	assert.Len(t, Kinds(), 15)
}

func TestPropertyAccessors(t *testing.T) {
	e := &metadata.Element{Properties: metadata.Properties{
		"qualifiedName":        "Term::Customer",
		"name":                 "Customer",
		"description":          "A buyer",
		"additionalProperties": map[string]any{"owner": "sales"},
	}}
	assert.Equal(t, "Term::Customer", QualifiedName(e))
	assert.Equal(t, "Customer", DisplayName(e))
	assert.Equal(t, "A buyer", Description(e))
	assert.Equal(t, map[string]string{"owner": "sales"}, AdditionalProperties(e))
	assert.Empty(t, QualifiedName(nil))
}

func TestPageOf(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name      string
		startFrom int
		pageSize  int
		want      []int
		wantParam string
	}{
		{name: "middle page", startFrom: 2, pageSize: 2, want: []int{3, 4}},
		{name: "rest", startFrom: 3, want: []int{4, 5}},
		{name: "past the end", startFrom: 9, pageSize: 2, want: []int{}},
		{name: "negative start", startFrom: -1, pageSize: 2, wantParam: "startFrom"},
		{name: "negative page size", pageSize: -1, wantParam: "pageSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pageOf(items, tt.startFrom, tt.pageSize)
			if tt.wantParam != "" {
				require.Error(t, err)
				assert.True(t, omerrors.IsInvalidParameter(err))
				assert.Contains(t, err.Error(), tt.wantParam)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
