package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultPath is used when neither --config nor ELEMENTS_CONFIG is set.
	DefaultPath = "elements.yaml"
	// EnvPath names the environment variable overriding DefaultPath.
	EnvPath = "ELEMENTS_CONFIG"

	DefaultBackendPort = 3000
	DefaultDevPort     = 5178
	DefaultGreeting    = "Hello from the backend!"
	DefaultContentGlob = "./frontend/src/**/*.{html,js,svelte,ts}"
)

// TLS holds the configuration for automatic HTTPS on the backend.
type TLS struct {
	Email    string   `yaml:"email"`
	Domains  []string `yaml:"domains"`
	CacheDir string   `yaml:"cache_dir"`
}

// Backend configures the backend listener.
type Backend struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Greeting string `yaml:"greeting"`
	TLS      *TLS   `yaml:"tls"`
}

// Addr returns the host:port the backend binds.
func (b Backend) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// ProxyRule forwards every request under Prefix to Target.
type ProxyRule struct {
	Prefix       string `yaml:"prefix"`
	Target       string `yaml:"target"`
	ChangeOrigin bool   `yaml:"change_origin"`
	StripPrefix  bool   `yaml:"strip_prefix"`
}

// Dev configures the development proxy.
type Dev struct {
	Host       string         `yaml:"host"`
	Port       int            `yaml:"port"`
	Proxy      []ProxyRule    `yaml:"proxy"`
	StaticDir  string         `yaml:"static_dir"`
	ErrorPages map[int]string `yaml:"error_pages"`
}

// Addr returns the host:port the dev proxy binds.
func (d Dev) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Theme configures the style scanner.
type Theme struct {
	Content []string `yaml:"content"`
}

// Config represents the structure of elements.yaml.
type Config struct {
	Backend     Backend `yaml:"backend"`
	Dev         Dev     `yaml:"dev"`
	Theme       Theme   `yaml:"theme"`
	MetricsAddr string  `yaml:"metrics_addr"`
	LogLevel    string  `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: Backend{
			Port:     DefaultBackendPort,
			Greeting: DefaultGreeting,
		},
		Dev: Dev{
			Port: DefaultDevPort,
			Proxy: []ProxyRule{{
				Prefix:       "/api",
				Target:       fmt.Sprintf("http://localhost:%d", DefaultBackendPort),
				ChangeOrigin: true,
			}},
		},
		Theme: Theme{
			Content: []string{DefaultContentGlob},
		},
		LogLevel: "info",
	}
}

// ResolvePath picks the config path: the flag value first, then
// ELEMENTS_CONFIG, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals data over cfg and restores defaults for fields left at
// their zero value.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	def := Default()
	if cfg.Backend.Port == 0 {
		cfg.Backend.Port = def.Backend.Port
	}
	if cfg.Backend.Greeting == "" {
		cfg.Backend.Greeting = def.Backend.Greeting
	}
	if cfg.Dev.Port == 0 {
		cfg.Dev.Port = def.Dev.Port
	}
	if cfg.Dev.Proxy == nil {
		cfg.Dev.Proxy = def.Dev.Proxy
	}
	if len(cfg.Theme.Content) == 0 {
		cfg.Theme.Content = def.Theme.Content
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	return nil
}
