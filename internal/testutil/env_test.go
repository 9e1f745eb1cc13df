package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/appshell/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("APPSHELL_STARTUP", "/somewhere/startup.lua")

	dir := testutil.SetupTestEnv(t)

	assert.Equal(t, dir, os.Getenv("HOME"))
	assert.Empty(t, os.Getenv("APPSHELL_STARTUP"))
	assert.Equal(t, filepath.Join(dir, "history"), os.Getenv("APPSHELL_HISTORY"))
}

func TestWriteConfig(t *testing.T) {
	path := testutil.WriteConfig(t, testutil.SampleConfig)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleConfig, string(data))
	assert.Equal(t, "app.lua", filepath.Base(path))
}

func TestWriteFile_Nested(t *testing.T) {
	path := testutil.WriteFile(t, "sub/dir/x.txt", "x")
	assert.FileExists(t, path)
}
