package service

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
)

// Exit statuses returned by ShellService.Run.
const (
	StatusOK = 0
	// StatusShellNotFound is returned when the requested shell is unknown
	// or unavailable.
	StatusShellNotFound = 1
	// StatusFailure is returned alongside an error from setup, the startup
	// script or the shell itself.
	StatusFailure = 1
	// StatusUsage covers malformed arguments and unreadable configuration.
	StatusUsage = 2
)

// ConfigError reports a configuration file that could not be used.
type ConfigError struct {
	URI string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.URI, config.FormatError(e.Err, false))
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
