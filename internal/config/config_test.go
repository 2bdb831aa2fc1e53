package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault_BuiltInDefaults(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "apkrisk", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 40, cfg.Scoring.Bands.Medium)
	assert.Equal(t, 70, cfg.Scoring.Bands.High)
	assert.Equal(t, 30*time.Second, cfg.Assessing.DynamicTimeout)
	assert.Equal(t, time.Hour, cfg.Assessing.CacheTTL)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9090
scoring:
  bands:
    medium: 30
    high: 60
  weights:
    permission_density: 0.5
  caps:
    file_write_count: 10
intel:
  feeds:
    - /var/lib/apkrisk/maltrail.txt
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Scoring.Bands.Medium)
	assert.Equal(t, 60, cfg.Scoring.Bands.High)
	assert.Equal(t, 0.5, cfg.Scoring.Weights["permission_density"])
	assert.Equal(t, 10, cfg.Scoring.Caps["file_write_count"])
	assert.Equal(t, []string{"/var/lib/apkrisk/maltrail.txt"}, cfg.Intel.Feeds)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APKRISK_SERVER_HTTP_PORT", "7070")
	t.Setenv("APKRISK_LOGGER_LEVEL", "debug")

	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestScoringConfig_Overrides(t *testing.T) {
	sc := ScoringConfig{
		Weights: map[string]float64{"permission_density": 0.3},
		Caps:    map[string]int{"yara_match_count": 5},
	}

	o := sc.Overrides()
	assert.Equal(t, 0.3, o.Weights["permission_density"])
	assert.Equal(t, 5, o.Caps["yara_match_count"])
}
