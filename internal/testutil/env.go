// Package testutil provides utilities for testing appshell in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleConfig is a configuration file declaring one application and an
// appshell section with a setup hook.
const SampleConfig = `
apps = {
  main = {
    settings = { debug = true, site_name = "Example" },
    routes = {
      { name = "home", path = "/", body = "Welcome" },
      { name = "health", path = "/health", body = "ok" },
    },
    root = { title = "Site" },
  },
  admin = {
    settings = { debug = false },
    routes = { { name = "dashboard", path = "/admin", status = 403, body = "forbidden" } },
  },
}

appshell = {
  greeting = "hello",
  setup = function(env) env.answer = 42 end,
}
`

// SetupTestEnv isolates a test from the user's appshell environment
// variables and home directory. Cleanup is handled by t.TempDir and
// t.Setenv.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("APPSHELL_DEBUG", "")
	t.Setenv("APPSHELL_STARTUP", "")
	t.Setenv("APPSHELL_STARTUP_KEYRING", "")
	t.Setenv("APPSHELL_HISTORY", filepath.Join(tmpDir, "history"))
	return tmpDir
}

// WriteFile writes content to name inside a fresh temp directory and returns
// the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteConfig writes a Lua configuration file and returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, "app.lua", content)
}
