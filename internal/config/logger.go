package config

import "github.com/ZebulonRouseFrantzich/appshell/internal/logging"

// Logger provides structured logging for config operations.
type Logger = logging.Logger

// defaultLogger returns the default no-op logger.
func defaultLogger() Logger {
	return logging.Nop()
}
