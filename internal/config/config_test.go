package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bbsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
analysis:
  base_addr: 0x4000
render:
  style: lattice
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint64(0x4000), cfg.Analysis.BaseAddr)
	assert.Equal(t, 4, cfg.Analysis.Workers) // default kept
	assert.Equal(t, "lattice", cfg.Render.Style)
	assert.Equal(t, 12, cfg.Render.MaxLines)
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, `
log: {level: loud}
analysis: {workers: -1}
render: {style: ascii, max_lines: 0}
`)
	_, err := Load(path)
	require.Error(t, err)
	for _, want := range []string{`unknown level "loud"`, "analysis.workers", "render.style", "render.max_lines"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateMaxLinesFloor(t *testing.T) {
	cfg := Default()
	cfg.Render.MaxLines = 2
	assert.ErrorContains(t, cfg.Validate(), "render.max_lines must be >= 3, got 2")

	cfg.Render.MaxLines = 3
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: read")

	_, err = Load(writeFile(t, "log: ["))
	assert.ErrorContains(t, err, "config: decode")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
