package devproxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// Proxy holds the live routing table. Reload swaps it atomically, so
// in-flight requests finish on the table they started with.
type Proxy struct {
	router  atomic.Pointer[Router]
	metrics *metrics.Metrics
}

// New builds a Proxy from cfg. m may be nil.
func New(cfg config.Dev, m *metrics.Metrics) (*Proxy, error) {
	p := &Proxy{metrics: m}
	if err := p.Reload(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload rebuilds the routing table. On error the previous table stays live.
func (p *Proxy) Reload(cfg config.Dev) error {
	router, err := NewRouter(cfg, p.metrics)
	if err != nil {
		return err
	}
	p.router.Store(router)
	return nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := p.router.Load()
	if router == nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}

// WatchConfig reloads the routing table from the file at path whenever it
// changes, until ctx is cancelled.
func (p *Proxy) WatchConfig(ctx context.Context, path string) error {
	return config.Watch(ctx, path, func() {
		logging.Logger.Info("change detected, reloading", "config", path)
		if err := p.reloadFile(path); err != nil {
			logging.Logger.Error("config reload failed", "err", err)
			p.countReload("error")
			return
		}
		logging.Logger.Info("configuration reloaded")
		p.countReload("ok")
	})
}

func (p *Proxy) reloadFile(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, err := config.Validate(cfg); err != nil {
		return err
	}
	return p.Reload(cfg.Dev)
}

func (p *Proxy) countReload(result string) {
	if p.metrics != nil {
		p.metrics.ConfigReloads.WithLabelValues(result).Inc()
	}
}

// Server is the dev proxy listener.
type Server struct {
	Addr  string
	Proxy *Proxy
}

// Start binds Addr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the proxy on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Proxy,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.Std("devproxy"),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Logger.Info("dev proxy listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logging.Logger.Info("dev proxy stopped")
		return nil
	}
}
