// Package logging holds the shared application logger.
package logging

import (
	"fmt"
	stdlog "log"
	"os"

	clog "github.com/charmbracelet/log"
)

// Logger prints to stderr with timestamps enabled.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
})

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it
// to Logger. An empty name leaves the current level untouched.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := clog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	Logger.SetLevel(lvl)
	return nil
}

// Std adapts Logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog and httputil.ReverseProxy.ErrorLog.
func Std(prefix string) *stdlog.Logger {
	return Logger.WithPrefix(prefix).StandardLog(clog.StandardLogOptions{
		ForceLevel: clog.ErrorLevel,
	})
}
