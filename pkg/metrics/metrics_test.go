package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveCall("GlossaryTerm", "create", time.Millisecond, nil)
	c.ObserveCall("GlossaryTerm", "create", time.Millisecond, omerrors.InvalidParameter("name", "dup"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.clientCalls.WithLabelValues("GlossaryTerm", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.clientCalls.WithLabelValues("GlossaryTerm", "create", "invalid_parameter")))

	expected := `
# HELP metactx_remote_requests_total HTTP requests sent to a remote metadata server
# TYPE metactx_remote_requests_total counter
metactx_remote_requests_total{code="200",method="GET"} 2
`
	c.RecordRemoteRequest("GET", 200)
	c.RecordRemoteRequest("GET", 200)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "metactx_remote_requests_total"))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", Status(nil))
	assert.Equal(t, "internal", Status(errors.New("x")))
	assert.Equal(t, "user_not_authorized", Status(omerrors.UserNotAuthorized("u", "no")))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("op")
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
	assert.Equal(t, "op", timer.Name())
}
