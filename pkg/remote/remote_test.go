package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/ajitpratap0/metactx/pkg/auth"
	"github.com/ajitpratap0/metactx/pkg/clients"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/connectorctx"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/remote"
	"github.com/ajitpratap0/metactx/pkg/server"
	"github.com/ajitpratap0/metactx/pkg/testutil"
	"github.com/ajitpratap0/metactx/pkg/typedefs"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverName = "cocoMDS1"

func remoteConfig(baseURL string) config.RemoteConfig {
	return config.RemoteConfig{
		BaseURL:       baseURL,
		ServerName:    serverName,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 5 * time.Millisecond,
	}
}

// startServer serves a fresh memory repository and returns a client for it.
func startServer(t *testing.T, cfg config.RemoteConfig, opts ...server.Option) *remote.Client {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]server.Option{server.WithMetrics(metrics.NewCollector(reg), reg)}, opts...)
	srv, err := server.New(testutil.NewRepository(t), config.ServerConfig{Name: serverName}, testutil.TestLogger(t), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	if cfg.BaseURL == "" {
		cfg.BaseURL = ts.URL
	}
	c, err := remote.New(context.Background(), cfg, testutil.TestLogger(t),
		remote.WithMetrics(metrics.NewCollector(prometheus.NewRegistry())))
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	_, err := remote.New(context.Background(), config.RemoteConfig{ServerName: serverName}, nil)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig))

	_, err = remote.New(context.Background(), config.RemoteConfig{BaseURL: "http://localhost"}, nil)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, config.RemoteConfig{ServerName: serverName, RetryAttempts: 1})
	user := testutil.TestUser
	source := metadata.MetadataSourceOptions{ExternalSourceName: "SalesCatalog"}

	glossary, err := c.CreateElement(ctx, user, typedefs.Glossary, metadata.NewElementOptions{MetadataSourceOptions: source},
		metadata.Properties{"qualifiedName": "Glossary::Sales", "displayName": "Sales", "version": 2})
	require.NoError(t, err)

	e, err := c.GetElementByGUID(ctx, user, glossary, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, typedefs.Glossary, e.TypeName())
	assert.Equal(t, "Sales", e.Properties.GetString("displayName"))
	assert.Equal(t, int64(2), e.Properties.GetInt("version"))
	assert.Equal(t, "SalesCatalog", e.Header.Origin.ExternalSourceName)

	require.NoError(t, c.UpdateElement(ctx, user, glossary, metadata.UpdateOptions{MergeUpdate: true},
		metadata.Properties{"usage": "reference"}))
	require.NoError(t, c.UpdateElementStatus(ctx, user, glossary, metadata.UpdateOptions{}, metadata.StatusApproved))

	term, err := c.CreateElement(ctx, user, typedefs.GlossaryTerm, metadata.NewElementOptions{AnchorGUID: glossary},
		metadata.Properties{"qualifiedName": "Term::Customer", "displayName": "Customer"})
	require.NoError(t, err)

	rel, err := c.CreateRelationship(ctx, user, connectorctx.TermAnchorRelationship, glossary, term, source, nil)
	require.NoError(t, err)
	require.NoError(t, c.UpdateRelationship(ctx, user, rel, metadata.UpdateOptions{}, metadata.Properties{"note": "x"}))

	r, err := c.GetRelationshipByGUID(ctx, user, rel, metadata.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, glossary, r.End1GUID)
	assert.Equal(t, "x", r.Properties.GetString("note"))

	related, err := c.GetRelatedElements(ctx, user, glossary, connectorctx.TermAnchorRelationship, metadata.End1, metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, term, related[0].Element.GUID())

	byName, err := c.GetElementsByPropertyValue(ctx, user, "Customer", []string{"displayName"}, metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	found, err := c.FindElementsByPropertyValue(ctx, user, "cust", []string{"displayName"}, metadata.SearchOptions{IgnoreCase: true})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	all, err := c.FindElements(ctx, user, "Sales", metadata.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, c.Classify(ctx, user, term, "Confidentiality", source, metadata.Properties{"level": 2}))
	classified, err := c.GetElementsByClassification(ctx, user, "Confidentiality", metadata.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, classified, 1)
	require.NoError(t, c.Declassify(ctx, user, term, "Confidentiality", source))

	require.NoError(t, c.DetachElements(ctx, user, connectorctx.TermAnchorRelationship, glossary, term, source))
	_, err = c.GetRelationshipByGUID(ctx, user, rel, metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))

	rel, err = c.CreateRelationship(ctx, user, connectorctx.TermAnchorRelationship, glossary, term, source, nil)
	require.NoError(t, err)
	require.NoError(t, c.DeleteRelationship(ctx, user, rel, source))

	require.NoError(t, c.DeleteElement(ctx, user, term, metadata.DeleteOptions{DeleteMethod: metadata.DeletePurge}))
	_, err = c.GetElementByGUID(ctx, user, term, metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))
}

func TestErrorsKeepTheirKind(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, config.RemoteConfig{ServerName: serverName, RetryAttempts: 1})

	_, err := c.GetElementByGUID(ctx, testutil.TestUser, "no-such-guid", metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err), "got %v", err)

	_, err = c.CreateElement(ctx, testutil.TestUser, "Spaceship", metadata.NewElementOptions{}, nil)
	assert.True(t, omerrors.IsInvalidParameter(err), "got %v", err)

	_, err = c.GetElementByGUID(ctx, "", "guid", metadata.QueryOptions{})
	assert.True(t, omerrors.IsUserNotAuthorized(err))

	other, err := remote.New(ctx, config.RemoteConfig{BaseURL: "http://127.0.0.1:1", ServerName: serverName}, nil)
	require.NoError(t, err)
	_, err = other.GetElementByGUID(ctx, testutil.TestUser, "guid", metadata.QueryOptions{})
	assert.True(t, omerrors.IsPropertyServer(err), "transport failures surface as property server errors: %v", err)
}

func TestUnknownServerName(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv, err := server.New(testutil.NewRepository(t), config.ServerConfig{Name: "other"}, nil,
		server.WithMetrics(metrics.NewCollector(reg), reg))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := remote.New(context.Background(), remoteConfig(ts.URL), nil)
	require.NoError(t, err)
	_, err = c.FindElements(context.Background(), testutil.TestUser, "*", metadata.SearchOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))
}

func TestBearerTokens(t *testing.T) {
	ctx := context.Background()
	manager := auth.NewManager("s3cret", "")
	token, err := manager.Issue(testutil.TestUser, time.Hour)
	require.NoError(t, err)

	cfg := config.RemoteConfig{ServerName: serverName, RetryAttempts: 1, Token: token}
	c := startServer(t, cfg, server.WithAuth(manager))

	_, err = c.CreateElement(ctx, testutil.TestUser, typedefs.Glossary, metadata.NewElementOptions{},
		metadata.Properties{"qualifiedName": "Glossary::Auth"})
	require.NoError(t, err)

	_, err = c.CreateElement(ctx, "erinoverview", typedefs.Glossary, metadata.NewElementOptions{},
		metadata.Properties{"qualifiedName": "Glossary::Other"})
	assert.True(t, omerrors.IsUserNotAuthorized(err), "the token subject must match the user")

	anonymous := startServer(t, config.RemoteConfig{ServerName: serverName, RetryAttempts: 1}, server.WithAuth(manager))
	_, err = anonymous.FindElements(ctx, testutil.TestUser, "*", metadata.SearchOptions{})
	assert.True(t, omerrors.IsUserNotAuthorized(err))
}

func TestRetriesRateLimitedRequests(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			// capped at MaxRetryDelay
			w.Header().Set("Retry-After", "1")
			api.WriteError(w, omerrors.New(omerrors.ErrorTypeRateLimit, "slow down"))
			return
		}
		api.WriteJSON(w, http.StatusOK, api.GUIDResponse{GUID: "guid-9"})
	}))
	defer ts.Close()

	cfg := remoteConfig(ts.URL)
	cfg.RetryAttempts = 3
	c, err := remote.New(context.Background(), cfg, testutil.TestLogger(t))
	require.NoError(t, err)

	guid, err := c.CreateElement(context.Background(), testutil.TestUser, typedefs.Glossary, metadata.NewElementOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "guid-9", guid)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestForwardsRequestID(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(logger.RequestIDHeader)
		api.WriteJSON(w, http.StatusOK, api.GUIDResponse{GUID: "guid-7"})
	}))
	defer ts.Close()

	c, err := remote.New(context.Background(), remoteConfig(ts.URL), testutil.TestLogger(t))
	require.NoError(t, err)

	ctx := logger.ContextWithRequestID(context.Background(), "load-2024-03-01")
	_, err = c.CreateElement(ctx, testutil.TestUser, typedefs.Glossary, metadata.NewElementOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "load-2024-03-01", got)
}

func TestCallerErrorsAreNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		api.WriteError(w, omerrors.InvalidParameter("guid", "unknown element"))
	}))
	defer ts.Close()

	cfg := remoteConfig(ts.URL)
	cfg.RetryAttempts = 3
	c, err := remote.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = c.GetElementByGUID(context.Background(), testutil.TestUser, "guid", metadata.QueryOptions{})
	assert.True(t, omerrors.IsInvalidParameter(err))
	assert.Contains(t, err.Error(), "unknown element")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerOpensOnServerFailures(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		api.WriteError(w, omerrors.PropertyServer(nil, "database unavailable"))
	}))
	defer ts.Close()

	cfg := remoteConfig(ts.URL)
	cfg.CircuitBreaker = true
	cfg.FailureThreshold = 2
	cfg.SuccessThreshold = 1
	cfg.BreakerTimeout = time.Minute
	reg := prometheus.NewRegistry()
	c, err := remote.New(context.Background(), cfg, testutil.TestLogger(t), remote.WithMetrics(metrics.NewCollector(reg)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = c.DeleteElement(context.Background(), testutil.TestUser, "guid", metadata.DeleteOptions{})
		assert.True(t, omerrors.IsPropertyServer(err))
	}
	assert.Equal(t, clients.StateOpen, c.BreakerState())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "an open circuit does not reach the server")
	assert.Equal(t, 1, promtest.CollectAndCount(reg, "metactx_remote_requests_total"))
	assert.Equal(t, 1, promtest.CollectAndCount(reg, "metactx_remote_circuit_state"))
}

func TestConnectorContextOverHTTP(t *testing.T) {
	ctx := context.Background()
	c := startServer(t, config.RemoteConfig{ServerName: serverName, RetryAttempts: 1})

	cc, err := connectorctx.New(c, config.ContextConfig{
		UserID:        testutil.TestUser,
		ConnectorName: "sales-catalog",
		DeleteMethod:  "PURGE",
	}, testutil.TestLogger(t), connectorctx.WithMetrics(metrics.NewCollector(prometheus.NewRegistry())))
	require.NoError(t, err)

	glossary, err := cc.Glossaries().Create(ctx, connectorctx.GlossaryProperties{
		ReferenceableProperties: connectorctx.ReferenceableProperties{QualifiedName: "Glossary::Sales"},
		DisplayName:             "Sales",
	})
	require.NoError(t, err)
	term, err := cc.GlossaryTerms().Create(ctx, connectorctx.GlossaryTermProperties{
		ReferenceableProperties: connectorctx.ReferenceableProperties{QualifiedName: "Term::Customer"},
		DisplayName:             "Customer",
	}, connectorctx.WithAnchor(glossary))
	require.NoError(t, err)
	require.NoError(t, cc.Glossaries().LinkTerm(ctx, glossary, term))

	terms, err := cc.Glossaries().GetTerms(ctx, glossary, 0, 0)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "Customer", terms[0].Properties.DisplayName)

	got, err := cc.Glossaries().GetByName(ctx, "Sales", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Glossary::Sales", got[0].Properties.QualifiedName)
}
