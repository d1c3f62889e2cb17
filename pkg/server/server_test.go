package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/ajitpratap0/metactx/pkg/config"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metrics"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/ajitpratap0/metactx/pkg/testutil"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := New(testutil.NewRepository(t), config.ServerConfig{Name: "cocoMDS1"}, testutil.TestLogger(t),
		WithMetrics(metrics.NewCollector(reg), reg), WithVersion("1.2.3"))
	require.NoError(t, err)
	return s, reg
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, &buf))
	return rec
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, config.ServerConfig{Name: "x"}, nil)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig))

	_, err = New(testutil.NewRepository(t), config.ServerConfig{}, nil)
	assert.True(t, omerrors.IsType(err, omerrors.ErrorTypeConfig))
}

func TestCreateAndRetrieve(t *testing.T) {
	s, reg := newTestServer(t)
	h := s.Handler()
	base := "/servers/cocoMDS1/users/garygeeke/"

	rec := post(t, h, base+"elements", api.CreateElementRequest{
		TypeName:   "Glossary",
		Properties: map[string]interface{}{"qualifiedName": "Glossary::Sales"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created api.GUIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "guid-001", created.GUID)

	rec = post(t, h, base+"elements/guid-001/retrieve", api.QueryRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.ElementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Glossary::Sales", got.Element.Properties.GetString("qualifiedName"))
	assert.Equal(t, "garygeeke", got.Element.Header.Versions.CreatedBy)

	rec = post(t, h, base+"elements/guid-001/delete", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"relatedHTTPCode":200}`, rec.Body.String())

	assert.Equal(t, 3, promtest.CollectAndCount(reg, "metactx_client_calls_total"))
}

func TestRetrieveRelationship(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	base := "/servers/cocoMDS1/users/garygeeke/"

	for _, name := range []string{"Location::Amsterdam", "Location::Utrecht"} {
		rec := post(t, h, base+"elements", api.CreateElementRequest{
			TypeName:   "Location",
			Properties: map[string]interface{}{"qualifiedName": name},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := post(t, h, base+"relationships", api.RelationshipRequest{
		TypeName: "AdjacentLocation",
		End1GUID: "guid-001",
		End2GUID: "guid-002",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created api.GUIDResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = post(t, h, base+"relationships/"+created.GUID+"/retrieve", api.QueryRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got api.RelationshipResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Relationship)
	assert.Equal(t, "AdjacentLocation", got.Relationship.TypeName)
	assert.Equal(t, "guid-001", got.Relationship.End1GUID)
	assert.Equal(t, "guid-002", got.Relationship.End2GUID)
}

func TestErrorEnvelope(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		typ    omerrors.ErrorType
	}{
		{"unknown element", "/servers/cocoMDS1/users/garygeeke/elements/nope/retrieve", "", http.StatusBadRequest, omerrors.ErrorTypeInvalidParameter},
		{"malformed body", "/servers/cocoMDS1/users/garygeeke/elements", "{", http.StatusBadRequest, omerrors.ErrorTypeInvalidParameter},
		{"unknown server", "/servers/other/users/garygeeke/elements/find", "", http.StatusBadRequest, omerrors.ErrorTypeInvalidParameter},
		{"unknown type", "/servers/cocoMDS1/users/garygeeke/elements", api.CreateElementRequest{TypeName: "Spaceship"}, http.StatusBadRequest, omerrors.ErrorTypeInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.typ, resp.Type)
			assert.Equal(t, tt.status, resp.RelatedHTTPCode)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s, err := New(testutil.NewRepository(t), config.ServerConfig{Name: "cocoMDS1"}, zap.New(core),
		WithMetrics(metrics.NewCollector(nil), prometheus.NewRegistry()))
	require.NoError(t, err)

	rec := post(t, s.Handler(), "/servers/cocoMDS1/users/garygeeke/elements/find", api.SearchRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(logger.RequestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/servers/cocoMDS1/users/garygeeke/elements/nope/retrieve", strings.NewReader("{}"))
	req.Header.Set(logger.RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(logger.RequestIDHeader))

	failed := logs.FilterMessage("Request failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "garygeeke", fields["user_id"])
}

func TestRoutingOnlyAcceptsPost(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/servers/cocoMDS1/users/garygeeke/elements/find", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "cocoMDS1", health.Server)
	assert.Equal(t, "1.2.3", health.Version)
	require.NotNil(t, health.Resources)
	assert.Positive(t, health.Resources.GoroutineCount)

	post(t, h, "/servers/cocoMDS1/users/garygeeke/elements/find", "")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `operation="findElements"`))
}

func TestServeShutsDownWithContext(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	testutil.AssertEventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, "server did not come up")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestResourceMonitor(t *testing.T) {
	rm := NewResourceMonitor()
	usage := rm.Usage()
	assert.Positive(t, usage.GoroutineCount)
	assert.GreaterOrEqual(t, rm.Uptime(), time.Duration(0))
}
