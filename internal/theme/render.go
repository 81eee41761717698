package theme

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Formats accepted by Render.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSS  = "css"
)

type document struct {
	Content []string          `json:"content"`
	Colors  map[string]string `json:"colors"`
}

// Render writes the theme to w as JSON, YAML or CSS custom properties.
// YAML and CSS keep declaration order.
func (t *Theme) Render(w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document{Content: t.Content, Colors: t.Map()})
	case FormatYAML:
		colors := make(yaml.MapSlice, 0, len(t.Colors))
		for _, c := range t.Colors {
			colors = append(colors, yaml.MapItem{Key: c.Name, Value: c.Hex})
		}
		out, err := yaml.Marshal(yaml.MapSlice{
			{Key: "content", Value: t.Content},
			{Key: "colors", Value: colors},
		})
		if err != nil {
			return fmt.Errorf("marshal theme: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatCSS:
		if _, err := io.WriteString(w, ":root {\n"); err != nil {
			return err
		}
		for _, c := range t.Colors {
			if _, err := fmt.Fprintf(w, "  --color-%s: %s;\n", c.Name, c.Hex); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "}\n")
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or css)", format)
	}
}
