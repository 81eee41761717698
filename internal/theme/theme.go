// Package theme declares the chemical element color tokens and the content
// globs scanned for style classes.
package theme

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidColor   = errors.New("invalid color")
	ErrDuplicateColor = errors.New("duplicate color")
)

// Color is one named theme token.
type Color struct {
	Name string
	Hex  string
}

// Theme is an ordered color table plus the globs of files that may use it.
type Theme struct {
	Content []string
	Colors  []Color
}

// Chemical element colors.
var elements = []Color{
	{"carbon", "#000000"},
	{"oxygen", "#ff0d0d"},
	{"nitrogen", "#3050f8"},
	{"sulfur", "#ffff30"},
	{"phosphorus", "#ff8000"},
	{"fluorine", "#90e050"},
	{"chlorine", "#1ff01f"},
	{"bromine", "#a62929"},
	{"iodine", "#940094"},
}

// Default returns a fresh copy of the built-in theme scanning content.
func Default(content ...string) *Theme {
	colors := make([]Color, len(elements))
	copy(colors, elements)
	return &Theme{
		Content: append([]string(nil), content...),
		Colors:  colors,
	}
}

// Map returns the color table keyed by name.
func (t *Theme) Map() map[string]string {
	m := make(map[string]string, len(t.Colors))
	for _, c := range t.Colors {
		m[c.Name] = c.Hex
	}
	return m
}

// Lookup returns the hex value for name.
func (t *Theme) Lookup(name string) (string, bool) {
	for _, c := range t.Colors {
		if c.Name == name {
			return c.Hex, true
		}
	}
	return "", false
}

// Merge extends base with the theme's colors. Theme entries win on name
// clashes, other base entries are kept. base is not modified.
func (t *Theme) Merge(base map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(t.Colors))
	for k, v := range base {
		out[k] = v
	}
	for _, c := range t.Colors {
		out[c.Name] = c.Hex
	}
	return out
}

var (
	hexPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// Validate rejects malformed names or hex literals and duplicate names.
func (t *Theme) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(t.Colors))
	for _, c := range t.Colors {
		if !namePattern.MatchString(c.Name) {
			errs = append(errs, fmt.Errorf("%w: name %q", ErrInvalidColor, c.Name))
		}
		if !hexPattern.MatchString(c.Hex) {
			errs = append(errs, fmt.Errorf("%w: %s has hex %q", ErrInvalidColor, c.Name, c.Hex))
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateColor, c.Name))
		}
		seen[c.Name] = true
	}
	return errors.Join(errs...)
}

// names returns the color names in declaration order.
func (t *Theme) names() []string {
	out := make([]string, len(t.Colors))
	for i, c := range t.Colors {
		out[i] = c.Name
	}
	return out
}
