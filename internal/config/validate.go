package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidRule reports a proxy rule that cannot be routed.
var ErrInvalidRule = errors.New("invalid proxy rule")

// Validate checks the proxy table and returns the non-fatal warnings found
// along the way. The returned error joins every invalid rule.
func Validate(cfg *Config) ([]string, error) {
	var (
		warnings []string
		errs     []error
	)
	if cfg.Backend.Port < 1 || cfg.Backend.Port > 65535 {
		errs = append(errs, fmt.Errorf("backend port %d out of range", cfg.Backend.Port))
	}
	if cfg.Dev.Port < 1 || cfg.Dev.Port > 65535 {
		errs = append(errs, fmt.Errorf("dev port %d out of range", cfg.Dev.Port))
	}
	for i, rule := range cfg.Dev.Proxy {
		target, err := ParseTarget(rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("proxy[%d]: %w", i, err))
			continue
		}
		if !isLoopback(target.Hostname()) {
			continue
		}
		if port := targetPort(target); port != cfg.Backend.Port {
			warnings = append(warnings, fmt.Sprintf(
				"proxy rule %q targets local port %d but the backend listens on %d",
				rule.Prefix, port, cfg.Backend.Port))
		}
	}
	return warnings, errors.Join(errs...)
}

// ParseTarget validates rule and returns its parsed target URL.
func ParseTarget(rule ProxyRule) (*url.URL, error) {
	if !strings.HasPrefix(rule.Prefix, "/") {
		return nil, fmt.Errorf("%w: prefix %q must start with /", ErrInvalidRule, rule.Prefix)
	}
	u, err := url.Parse(rule.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: target %q: %v", ErrInvalidRule, rule.Target, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: target %q must be an absolute http(s) URL", ErrInvalidRule, rule.Target)
	}
	return u, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func targetPort(u *url.URL) int {
	if p := u.Port(); p != "" {
		n, _ := strconv.Atoi(p)
		return n
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}
