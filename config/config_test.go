package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, 10*time.Second, config.Extractor.Timeout)
	assert.True(t, config.Extractor.StrictContentType)
	assert.Equal(t, int64(50*1024*1024), config.Extractor.MaxBodyBytes)
	assert.Equal(t, 3, config.Expand.MaxDepth)
	assert.Equal(t, 4, config.Expand.Concurrency)
	assert.Equal(t, 5*time.Second, config.Auditor.LinkTimeout)
	assert.Equal(t, 20, config.Auditor.MaxLinks)
	assert.Equal(t, 5, config.Auditor.LinkConcurrency)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
extractor:
  timeout: 3s
  strict_content_type: false
auditor:
  max_links: 7
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 3*time.Second, config.Extractor.Timeout)
	assert.False(t, config.Extractor.StrictContentType)
	assert.Equal(t, 7, config.Auditor.MaxLinks)

	ac := config.AuditorConfig()
	assert.Equal(t, 7, ac.MaxLinks)
	assert.Len(t, config.ExtractorOptions(), 4)
	assert.Equal(t, 3, config.ExpandOptions().MaxDepth)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SITEMAPPER_SERVER_PORT", "7070")
	t.Setenv("SITEMAPPER_EXTRACTOR_STRICT_CONTENT_TYPE", "false")
	t.Setenv("SITEMAPPER_LOG_LEVEL", "debug")

	config, err := LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.False(t, config.Extractor.StrictContentType)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigSearchPaths(t *testing.T) {
	// The package directory ships config.yaml, which the search path picks up.
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}
