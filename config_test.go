package peg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigIfExists_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfigIfExists("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfigIfExists(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pegc.toml")
	const body = `
[emit]
target = "python"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Emit.Target)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.True(t, cfg.Grammar.AddBuiltins)
	assert.True(t, cfg.Compiler.FurthestFailureReporting)
	assert.Equal(t, "parser", cfg.Emit.PackageName)
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
