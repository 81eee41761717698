// Package metrics owns the Prometheus collectors of one elements process and
// the optional side listener that exposes them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thecodecapo/elements/internal/logging"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	Registry        *prometheus.Registry
	BackendRequests *prometheus.CounterVec
	ProxyRequests   *prometheus.CounterVec
	ProxyDuration   *prometheus.HistogramVec
	ConfigReloads   *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		BackendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elements_backend_requests_total",
				Help: "Requests answered by the backend listener.",
			},
			[]string{"method", "code"},
		),
		ProxyRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elements_proxy_requests_total",
				Help: "Requests handled by the dev proxy, by matching rule prefix.",
			},
			[]string{"rule", "code"},
		),
		ProxyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elements_proxy_request_duration_seconds",
				Help:    "Time spent forwarding a request through the dev proxy.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"rule"},
		),
		ConfigReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elements_config_reloads_total",
				Help: "Config reload attempts, by result.",
			},
			[]string{"result"},
		),
	}
	m.Registry.MustRegister(
		m.BackendRequests,
		m.ProxyRequests,
		m.ProxyDuration,
		m.ConfigReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// InstrumentBackend counts every response of h by method and status code.
func (m *Metrics) InstrumentBackend(h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.BackendRequests, h)
}

// InstrumentRule counts and times the responses of h under the rule label.
func (m *Metrics) InstrumentRule(rule string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"rule": rule}
	return promhttp.InstrumentHandlerDuration(
		m.ProxyDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.ProxyRequests.MustCurryWith(labels), h),
	)
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the listener.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logging.Logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
