package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, "file", cfg.SessionBackend)
	assert.Equal(t, "5000", cfg.ServerPort)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "STOREFRONT_API_URL=http://file.example/api/\nREQUEST_TIMEOUT=3s\nSESSION_BACKEND=memory\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("STOREFRONT_API_URL", "https://shop.example/api/")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "memory", cfg.SessionBackend)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "cookie")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
