package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
log:
  level: debug
  format: json
fingerprint:
  interactions: [Hydrophobic, hbdonor, Cationic]
  proximity_cutoff: 8
  workers: 2
  ordered: true
  step: 5
rules:
  Hydrophobic:
    distance: 4.0
  pistacking:
    face_to_face:
      intersect_radius: 1.8
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "goifp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, rules.DefaultInteractions, cfg.Fingerprint.Interactions)
	assert.Equal(t, runtime.NumCPU(), cfg.Fingerprint.Workers)
	assert.Equal(t, fingerprint.DefaultCacheSize, cfg.Fingerprint.CacheSize)
	assert.Equal(t, 1, cfg.Fingerprint.Step)
	assert.True(t, cfg.Fingerprint.KeepHits)
	assert.Zero(t, cfg.Fingerprint.ProximityCutoff)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GOIFP_FINGERPRINT_WORKERS", "3")
	t.Setenv("GOIFP_LOG_LEVEL", "warn")
	t.Setenv("GOIFP_FINGERPRINT_INTERACTIONS", "Hydrophobic,VdWContact")
	t.Setenv("GOIFP_FINGERPRINT_KEEP_HITS", "false")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Fingerprint.Workers)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"Hydrophobic", "VdWContact"}, cfg.Fingerprint.Interactions)
	assert.False(t, cfg.Fingerprint.KeepHits)

	path := writeConfig(t, testYAML)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Fingerprint.Workers, "environment wins over the file")
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8.0, cfg.Fingerprint.ProximityCutoff)
	assert.Equal(t, 2, cfg.Fingerprint.Workers)
	assert.True(t, cfg.Fingerprint.Ordered)
	assert.Equal(t, 5, cfg.Fingerprint.Step)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	h, ok := reg.Get("Hydrophobic")
	require.True(t, ok)
	assert.Equal(t, 4.0, h.MaxDistance())

	sel, err := cfg.SelectedRules(reg)
	require.NoError(t, err)
	names := make([]string, len(sel))
	for i, r := range sel {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{"Hydrophobic", "HBDonor", "Cationic"}, names)

	opts := cfg.PipelineOptions(nil)
	assert.Len(t, opts, 8)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown interaction", func(c *Config) { c.Fingerprint.Interactions = []string{"Telepathy"} }},
		{"cutoff", func(c *Config) { c.Fingerprint.ProximityCutoff = -1 }},
		{"workers", func(c *Config) { c.Fingerprint.Workers = -2 }},
		{"cache", func(c *Config) { c.Fingerprint.CacheSize = -1 }},
		{"step", func(c *Config) { c.Fingerprint.Step = -1 }},
		{"rules", func(c *Config) { c.Rules = map[string]map[string]interface{}{"telepathy": nil} }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
