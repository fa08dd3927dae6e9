package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricService_Counters(t *testing.T) {
	ms := NewMetricService()

	ms.PollCreated()
	ms.VoteRecorded(true)
	ms.VoteRecorded(true)
	ms.VoteRecorded(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(ms.pollsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(ms.votesApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(ms.votesRejected))
}

func TestMetricService_Handler(t *testing.T) {
	ms := NewMetricService()
	ms.ObserveRequest("GET /api/polls/{id}", "GET", 200, 15*time.Millisecond)

	w := httptest.NewRecorder()
	ms.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, MetricRequestDuration)
	assert.Contains(t, body, `route="GET /api/polls/{id}"`)
	assert.Contains(t, body, MetricPollsCreated)
}

func TestNewMetricService_Independent(t *testing.T) {
	// Separate registries: building twice must not panic on duplicate registration.
	a := NewMetricService()
	b := NewMetricService()
	a.PollCreated()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.pollsCreated))
}
