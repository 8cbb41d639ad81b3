package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.ListTTL())
	assert.Equal(t, 10*time.Minute, cfg.StatsTTL())
	assert.Equal(t, 2*time.Minute, cfg.NearbyTTL())
	assert.Equal(t, 10*time.Second, cfg.AuthInitTimeout())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
api:
  base_url: https://api.straycare.example/api/v1
  timeout: 15s
cache:
  nearby_ttl: 90s
ui:
  theme: light
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.straycare.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, 90*time.Second, cfg.NearbyTTL())
	// Untouched sections keep defaults.
	assert.Equal(t, 10*time.Minute, cfg.StatsTTL())
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://file.example\n"), 0o644))

	t.Setenv("STRAYCARE_API_BASE_URL", "https://env.example/api/v1")
	t.Setenv("STRAYCARE_MAPS_API_KEY", "env-key")
	t.Setenv("STRAYCARE_CACHE_LIST_TTL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "env-key", cfg.Maps.APIKey)
	assert.Equal(t, time.Minute, cfg.ListTTL())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.timeout")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Maps.APIKey = "k-123"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k-123", loaded.Maps.APIKey)
}

func TestMissingMapsKeyIsNotAnError(t *testing.T) {
	cfg := Default()
	cfg.Maps.APIKey = ""
	assert.NoError(t, cfg.Validate())
}
