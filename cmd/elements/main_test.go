package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of cmd and its children back to its default so
// values from one run do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.yaml")
}

func TestThemeCommand_CSS(t *testing.T) {
	out, err := run(t, "theme", "--config", missingConfig(t), "--format", "css")
	require.NoError(t, err)
	assert.Contains(t, out, "--color-phosphorus: #ff8000;")
}

func TestThemeCommand_FormatDoesNotLeakBetweenRuns(t *testing.T) {
	_, err := run(t, "theme", "--config", missingConfig(t), "--format", "css")
	require.NoError(t, err)

	out, err := run(t, "theme", "--config", missingConfig(t))
	require.NoError(t, err)
	assert.NotContains(t, out, ":root {")
	assert.Contains(t, out, `"carbon": "#000000"`)
}

func TestThemeScanCommand(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "frontend", "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "App.svelte"), []byte(`<p class="text-bromine">x</p>`), 0o644))

	out, err := run(t, "theme", "scan", "--config", missingConfig(t), "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "COLOR")
	assert.Regexp(t, `bromine\s+1\s+frontend/src/App.svelte`, out)
	assert.Regexp(t, `carbon\s+0\s+-`, out)
}

func TestCheckCommand_Defaults(t *testing.T) {
	out, err := run(t, "check", "--config", missingConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "ok (backend :3000, dev proxy :5178, 1 proxy rules)")
	assert.NotContains(t, out, "warning")
}

func TestCheckCommand_PortMismatch(t *testing.T) {
	p := filepath.Join(t.TempDir(), "elements.yaml")
	require.NoError(t, os.WriteFile(p, []byte("backend:\n  port: 8000\n"), 0o644))

	out, err := run(t, "check", "--config", p)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: proxy rule \"/api\" targets local port 3000 but the backend listens on 8000")
}

func TestCheckCommand_InvalidRule(t *testing.T) {
	p := filepath.Join(t.TempDir(), "elements.yaml")
	require.NoError(t, os.WriteFile(p, []byte("dev:\n  proxy:\n    - prefix: api\n      target: http://localhost:3000\n"), 0o644))

	_, err := run(t, "check", "--config", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid proxy rule")
}

func TestInstallCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "install", "--config", missingConfig(t), "--component", "dev", "--dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "elements-dev.service"))
	assert.Contains(t, out, "sudo systemctl start elements-dev")
}
