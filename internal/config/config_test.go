package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spantree/spantree/internal/config"
)

// TestLoad_Defaults verifies zero-config startup uses the defaults.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	// An explicit but missing config file is an error; a missing implicit
	// one is not. Exercise the implicit path from an empty directory.
	require.Error(t, err)

	t.Chdir(t.TempDir())

	cfg, err = config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Dataset)
	assert.Equal(t, config.DefaultListenAddr, cfg.Serve.ListenAddr)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
}

// TestLoad_File verifies file values override defaults.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spantree.yaml")

	content := []byte(`dataset: /data/spans.json
serve:
  listen_addr: ":9090"
log:
  level: debug
  json: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/spans.json", cfg.Dataset)
	assert.Equal(t, ":9090", cfg.Serve.ListenAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

// TestLoad_PartialFile verifies unspecified settings keep their defaults.
func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spantree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: spans.json\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "spans.json", cfg.Dataset)
	assert.Equal(t, config.DefaultListenAddr, cfg.Serve.ListenAddr)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
}

// TestLoad_EnvOverride verifies SPANTREE_* variables override the file.
func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spantree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: from-file.json\n"), 0o600))

	t.Setenv("SPANTREE_DATASET", "from-env.json")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.Dataset)
}
