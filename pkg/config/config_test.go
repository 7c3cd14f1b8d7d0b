package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	dir := filepath.Join(root, ConfigDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoad_NoConfigDir(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
wiki:
  retries: 5
  timeout: 10s
cache:
  ttl: 1h
paths:
  output: types/gmod.d.ts
  mods: mods.yaml
log:
  level: debug
`)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Wiki.Retries)
	assert.Equal(t, 10*time.Second, cfg.Wiki.Timeout)
	assert.Equal(t, Default().Wiki.BaseURL, cfg.Wiki.BaseURL, "unset fields keep their default")
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, Default().Cache.MemoSize, cfg.Cache.MemoSize)
	assert.Equal(t, "types/gmod.d.ts", cfg.Paths.Output)
	assert.Equal(t, "mods.yaml", cfg.Paths.Mods)
	assert.Equal(t, "overrides", cfg.Paths.Overrides)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"relative base url", "wiki:\n  base_url: wiki.local\n"},
		{"negative retries", "wiki:\n  retries: -1\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"negative ttl", "cache:\n  ttl: -1h\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadFromPath(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "wiki: [unclosed\n")
	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadFromPath_Missing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFindConfigDir(t *testing.T) {
	root := t.TempDir()
	_, err := FindConfigDir(root)
	assert.ErrorIs(t, err, ErrConfigNotFound)

	writeConfig(t, root, "")
	dir, err := FindConfigDir(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigDirName), dir)
	assert.Equal(t, root, ProjectRoot(root))
}

func TestSaveDefault(t *testing.T) {
	root := t.TempDir()

	path, err := SaveDefault(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigDirName, ConfigFileName), path)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "the written defaults round-trip")

	_, err = SaveDefault(root)
	require.Error(t, err, "an existing file is not overwritten")
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", "out.d.ts"), Resolve("/proj", "out.d.ts"))
	assert.Equal(t, "/abs/out.d.ts", Resolve("/proj", "/abs/out.d.ts"))
	assert.Equal(t, "", Resolve("/proj", ""))
}
