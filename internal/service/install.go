// Package service installs elements components as systemd services.
package service

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/thecodecapo/elements/internal/logging"
)

// Unit describes one systemd service running an elements component.
type Unit struct {
	Component  string // "backend" or "dev"
	ExecPath   string
	User       string
	WorkingDir string
	ConfigPath string
}

// Name is the unit file name, e.g. elements-backend.service.
func (u Unit) Name() string {
	return "elements-" + u.Component + ".service"
}

// Render returns the unit file content.
func (u Unit) Render() string {
	execStart := u.ExecPath + " " + u.Component
	if u.ConfigPath != "" {
		execStart += " --config " + u.ConfigPath
	}
	return fmt.Sprintf(`[Unit]
Description=elements %s
After=network.target

[Service]
Type=simple
User=%s
Group=%s
WorkingDirectory=%s
ExecStart=%s
Restart=on-failure
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, u.Component, u.User, u.User, u.WorkingDir, execStart)
}

// CurrentUnit fills a Unit from the running executable, the current user and
// the working directory.
func CurrentUnit(component, configPath string) (Unit, error) {
	if component != "backend" && component != "dev" {
		return Unit{}, fmt.Errorf("unknown component %q (want backend or dev)", component)
	}
	execPath, err := os.Executable()
	if err != nil {
		return Unit{}, fmt.Errorf("could not get executable path: %w", err)
	}
	currentUser, err := user.Current()
	if err != nil {
		return Unit{}, fmt.Errorf("could not get current user: %w", err)
	}
	workingDir, err := os.Getwd()
	if err != nil {
		return Unit{}, fmt.Errorf("could not get working directory: %w", err)
	}
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(workingDir, configPath)
	}
	return Unit{
		Component:  component,
		ExecPath:   execPath,
		User:       currentUser.Username,
		WorkingDir: workingDir,
		ConfigPath: configPath,
	}, nil
}

// Install writes u into dir (normally /etc/systemd/system) and returns the
// written path.
func Install(u Unit, dir string) (string, error) {
	servicePath := filepath.Join(dir, u.Name())
	logging.Logger.Info("creating service file", "path", servicePath)
	if err := os.WriteFile(servicePath, []byte(u.Render()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write service file: %w", err)
	}
	return servicePath, nil
}

// FollowUp lists the systemctl commands that enable and start u.
func FollowUp(u Unit) string {
	name := strings.TrimSuffix(u.Name(), ".service")
	return strings.Join([]string{
		"sudo systemctl daemon-reload",
		"sudo systemctl enable " + name,
		"sudo systemctl start " + name,
	}, "\n")
}
