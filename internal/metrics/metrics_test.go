package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentBackend(t *testing.T) {
	m := New()
	h := m.InstrumentBackend(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("get", "418")))
}

func TestInstrumentRule(t *testing.T) {
	m := New()
	h := m.InstrumentRule("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProxyRequests.WithLabelValues("/api", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProxyDuration))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ConfigReloads.WithLabelValues("ok").Inc()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `elements_config_reloads_total{result="ok"} 1`)
}
