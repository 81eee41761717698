// Package devproxy implements the development proxy: a listener that forwards
// requests matching configured path prefixes to another origin and serves
// everything else from a static directory or an error page.
package devproxy

import (
	"embed"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/thecodecapo/elements/internal/config"
	"github.com/thecodecapo/elements/internal/logging"
	"github.com/thecodecapo/elements/internal/metrics"
)

//go:embed defaults
var defaultPages embed.FS

// Router is one immutable routing table built from a config.Dev.
type Router struct {
	routes     []routeHandler
	fallback   http.Handler
	errorPages map[int]string
}

type routeHandler struct {
	prefix  string
	target  *url.URL
	handler http.Handler
}

// matches reports whether path starts with the rule prefix. Matching is a
// plain string prefix, so /api also covers /apiary and /api.json.
func (rh *routeHandler) matches(path string) bool {
	return strings.HasPrefix(path, rh.prefix)
}

// NewRouter builds the routing table. Rules are tried longest prefix first.
// m may be nil.
func NewRouter(cfg config.Dev, m *metrics.Metrics) (*Router, error) {
	router := &Router{
		routes:     make([]routeHandler, 0, len(cfg.Proxy)),
		errorPages: cfg.ErrorPages,
	}

	for i, rule := range cfg.Proxy {
		target, err := config.ParseTarget(rule)
		if err != nil {
			return nil, fmt.Errorf("proxy[%d]: %w", i, err)
		}
		var h http.Handler = router.newReverseProxy(rule, target)
		if m != nil {
			h = m.InstrumentRule(rule.Prefix, h)
		}
		router.routes = append(router.routes, routeHandler{
			prefix:  rule.Prefix,
			target:  target,
			handler: h,
		})
	}
	sort.SliceStable(router.routes, func(i, j int) bool {
		return len(router.routes[i].prefix) > len(router.routes[j].prefix)
	})

	if cfg.StaticDir != "" {
		info, err := os.Stat(cfg.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("static dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("static dir %s is not a directory", cfg.StaticDir)
		}
		router.fallback = http.FileServer(http.Dir(cfg.StaticDir))
	}
	return router, nil
}

func (r *Router) newReverseProxy(rule config.ProxyRule, target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	originalDirector := proxy.Director

	proxy.Director = func(req *http.Request) {
		if rule.StripPrefix {
			req.URL.Path = stripPrefix(req.URL.Path, rule.Prefix)
			if req.URL.RawPath != "" {
				req.URL.RawPath = stripPrefix(req.URL.RawPath, rule.Prefix)
			}
		}
		originalDirector(req)
		if rule.ChangeOrigin {
			req.Host = target.Host
		}
	}
	proxy.ErrorLog = logging.Std("devproxy")
	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logging.Logger.Warn("proxy target unreachable", "prefix", rule.Prefix, "target", target.String(), "err", err)
		r.serveErrorPage(w, req, http.StatusBadGateway)
	}
	return proxy
}

func stripPrefix(path, prefix string) string {
	out := strings.TrimPrefix(path, strings.TrimSuffix(prefix, "/"))
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// ServeHTTP forwards matching requests and falls back to static files or
// an error page.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	requestPath := req.URL.Path

	for i := range r.routes {
		route := &r.routes[i]
		if route.matches(requestPath) {
			logging.Logger.Debug("proxying", "path", requestPath, "prefix", route.prefix, "target", route.target.String())
			route.handler.ServeHTTP(w, req)
			return
		}
	}

	if r.fallback != nil {
		r.fallback.ServeHTTP(w, req)
		return
	}

	if len(r.routes) == 0 && requestPath == "/" && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
		if htmlBytes, err := defaultPages.ReadFile("defaults/welcome.html"); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write(htmlBytes)
			return
		}
	}

	logging.Logger.Debug("no matching route", "path", requestPath)
	r.serveErrorPage(w, req, http.StatusNotFound)
}

// serveErrorPage serves the configured page for statusCode, then the embedded
// default, then plain text.
func (r *Router) serveErrorPage(w http.ResponseWriter, req *http.Request, statusCode int) {
	if pagePath, exists := r.errorPages[statusCode]; exists {
		htmlBytes, err := os.ReadFile(pagePath)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(statusCode)
			w.Write(htmlBytes)
			return
		}
		logging.Logger.Warn("failed to read custom error page", "path", pagePath, "err", err)
	}

	htmlBytes, err := defaultPages.ReadFile(fmt.Sprintf("defaults/%d.html", statusCode))
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		w.Write(htmlBytes)
		return
	}

	http.Error(w, http.StatusText(statusCode), statusCode)
}
