// Package backend implements the backend listener: one route answering GET /
// with a fixed greeting.
package backend

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/acme/autocert"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// NewHandler returns the router serving greeting on GET / and HEAD /.
// Every other path or method gets a 404.
func NewHandler(greeting string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(middleware.GetHead)
	r.MethodNotAllowed(http.NotFound)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, greeting)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Logger.Debug("backend request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote", r.RemoteAddr,
			"dur", time.Since(start))
	})
}

// Server is the backend listener.
type Server struct {
	Config  config.Backend
	Metrics *metrics.Metrics
}

// Handler returns the instrumented backend router.
func (s *Server) Handler() http.Handler {
	h := NewHandler(s.Config.Greeting)
	if s.Metrics != nil {
		h = s.Metrics.InstrumentBackend(h)
	}
	return h
}

// Start binds the configured address and serves until ctx is cancelled.
// A bind failure, such as the port being in use, is returned as is.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the listener on ln. When TLS domains are configured the
// connection is served over HTTPS with certificates obtained through ACME,
// and an HTTP listener on :80 answers the challenges.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.Std("backend"),
	}

	tlsCfg := s.Config.TLS
	if tlsCfg != nil && len(tlsCfg.Domains) > 0 {
		certManager := newCertManager(tlsCfg)
		srv.TLSConfig = certManager.TLSConfig()
		ln = tls.NewListener(ln, srv.TLSConfig)

		challenge := &http.Server{
			Addr:              ":80",
			Handler:           certManager.HTTPHandler(nil),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Logger.Info("serving ACME challenges", "addr", challenge.Addr)
			if err := challenge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Logger.Error("ACME challenge listener failed", "err", err)
			}
		}()
		defer challenge.Close()
	}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Logger.Info("backend listening", "addr", ln.Addr().String(), "tls", srv.TLSConfig != nil)
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
		logging.Logger.Info("backend stopped")
		return nil
	}
}

func newCertManager(t *config.TLS) *autocert.Manager {
	cacheDir := t.CacheDir
	if cacheDir == "" {
		cacheDir = "certs"
	}
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(t.Domains...),
		Cache:      autocert.DirCache(cacheDir),
		Email:      t.Email,
	}
}
