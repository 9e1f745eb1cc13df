// Package startup runs the user's startup script into a shell environment
// before the shell starts.
//
// The script is a Lua file executed with the environment's variables as
// globals; whatever globals it defines or changes are copied back. When a
// keyring is configured the script only runs if its detached OpenPGP
// signature verifies.
package startup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/logging"
	"github.com/ZebulonRouseFrantzich/appshell/internal/luabridge"
)

// Environment variables supplying defaults for the runner.
const (
	EnvStartup = "APPSHELL_STARTUP"
	EnvKeyring = "APPSHELL_STARTUP_KEYRING"
)

// Runner runs a startup script.
type Runner struct {
	Path    string
	Keyring string

	logger logging.Logger
}

// New creates a runner. Empty path or keyring fall back to
// $APPSHELL_STARTUP and $APPSHELL_STARTUP_KEYRING.
func New(path, keyring string, logger logging.Logger) *Runner {
	if path == "" {
		path = os.Getenv(EnvStartup)
	}
	if keyring == "" {
		keyring = os.Getenv(EnvKeyring)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{Path: expandHome(path), Keyring: expandHome(keyring), logger: logger}
}

// Configured reports whether a script path is set.
func (r *Runner) Configured() bool {
	return r != nil && r.Path != ""
}

// Run executes the script into e. A missing script is not an error. The
// returned release function frees the script's Lua state and is never nil.
func (r *Runner) Run(ctx context.Context, e *env.Env) (func(), error) {
	nop := func() {}
	if !r.Configured() {
		return nop, nil
	}

	if _, err := os.Stat(r.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("startup script not found, skipping", "path", r.Path)
			return nop, nil
		}
		return nop, err
	}

	if r.Keyring != "" {
		if err := Verify(r.Path, r.Path+SignatureSuffix, r.Keyring); err != nil {
			return nop, err
		}
		r.logger.Debug("startup script signature verified", "path", r.Path)
	}

	release, err := luabridge.ExecFile(ctx, r.Path, e)
	if err != nil {
		return nop, err
	}
	r.logger.Debug("startup script executed", "path", r.Path, "variables", e.Len())
	return release, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
