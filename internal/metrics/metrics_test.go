package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InstancesDoNotCollide(t *testing.T) {
	a := New()
	b := New()

	a.VotesTotal.WithLabelValues("for", "ok").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.VotesTotal.WithLabelValues("for", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.VotesTotal.WithLabelValues("for", "ok")))
}

func TestHandler_ExposesPollMetrics(t *testing.T) {
	m := New()
	m.StatesPublished.WithLabelValues("content").Inc()
	m.ActiveSubscriptions.Set(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `poll_states_published_total{state="content"} 1`))
	assert.True(t, strings.Contains(body, "poll_active_subscriptions 2"))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("boom")))
}
