package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Backend.Addr())
	assert.Equal(t, ":5178", cfg.Dev.Addr())
	assert.Equal(t, "Hello from the backend!", cfg.Backend.Greeting)
	require.Len(t, cfg.Dev.Proxy, 1)
	assert.Equal(t, ProxyRule{Prefix: "/api", Target: "http://localhost:3000", ChangeOrigin: true}, cfg.Dev.Proxy[0])
	assert.Equal(t, []string{"./frontend/src/**/*.{html,js,svelte,ts}"}, cfg.Theme.Content)
}

func TestLoad_PartialFileMergesOverDefaults(t *testing.T) {
	p := writeFile(t, t.TempDir(), "elements.yaml", `
backend:
  port: 4000
dev:
  static_dir: ./build
  error_pages:
    404: ./404.html
metrics_addr: ":2112"
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Backend.Port)
	assert.Equal(t, DefaultGreeting, cfg.Backend.Greeting)
	assert.Equal(t, DefaultDevPort, cfg.Dev.Port)
	assert.Equal(t, "./build", cfg.Dev.StaticDir)
	assert.Equal(t, "./404.html", cfg.Dev.ErrorPages[404])
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.Len(t, cfg.Dev.Proxy, 1, "default rule kept when proxy is omitted")
}

func TestLoad_ProxyListReplacesDefault(t *testing.T) {
	p := writeFile(t, t.TempDir(), "elements.yaml", `
dev:
  proxy:
    - prefix: /auth
      target: http://127.0.0.1:9000
      strip_prefix: true
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Len(t, cfg.Dev.Proxy, 1)
	assert.Equal(t, "/auth", cfg.Dev.Proxy[0].Prefix)
	assert.True(t, cfg.Dev.Proxy[0].StripPrefix)
	assert.False(t, cfg.Dev.Proxy[0].ChangeOrigin)
}

func TestLoad_Malformed(t *testing.T) {
	p := writeFile(t, t.TempDir(), "elements.yaml", "backend: [")
	_, err := Load(p)
	assert.ErrorContains(t, err, "error parsing config file")
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, ResolvePath(""))

	t.Setenv(EnvPath, "/etc/elements.yaml")
	assert.Equal(t, "/etc/elements.yaml", ResolvePath(""))
	assert.Equal(t, "local.yaml", ResolvePath("local.yaml"))
}

func TestValidate_Defaults(t *testing.T) {
	warnings, err := Validate(Default())
	assert.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_PortMismatchWarns(t *testing.T) {
	cfg := Default()
	cfg.Backend.Port = 3001

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "local port 3000")
	assert.Contains(t, warnings[0], "listens on 3001")
}

func TestValidate_RemoteTargetIgnoredForPortCheck(t *testing.T) {
	cfg := Default()
	cfg.Dev.Proxy = append(cfg.Dev.Proxy, ProxyRule{Prefix: "/cdn", Target: "https://example.com"})

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_InvalidRules(t *testing.T) {
	cfg := Default()
	cfg.Dev.Proxy = []ProxyRule{
		{Prefix: "api", Target: "http://localhost:3000"},
		{Prefix: "/x", Target: "localhost:3000"},
	}
	_, err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.Contains(t, err.Error(), "proxy[0]")
	assert.Contains(t, err.Error(), "proxy[1]")
}

func TestWatch_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "elements.yaml", "backend:\n  port: 3000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(p, []byte("backend:\n  port: 3001\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	assert.NoError(t, <-done)
}
