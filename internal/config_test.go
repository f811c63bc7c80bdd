package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
app_name: tabstore
storage:
  workdir: /tmp/tabstore-data
  page_size: 4096
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tabstore", cfg.AppName)
	assert.Equal(t, "/tmp/tabstore-data", cfg.Storage.Workdir)
	assert.Equal(t, 4096, cfg.Storage.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DefaultPageSize(t *testing.T) {
	path := writeConfig(t, `
app_name: tabstore
storage:
  workdir: ./data
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Storage.PageSize)
}

func TestLoadConfig_RejectsForeignPageSize(t *testing.T) {
	path := writeConfig(t, `
storage:
  workdir: ./data
  page_size: 8192
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
