package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(1), cfg.Seed)
	assert.Equal(t, 0.2, cfg.TickDTCap)
	assert.Equal(t, 10, cfg.ReaperInterval)
	assert.Equal(t, 3, cfg.SpawnInterval)
	assert.Equal(t, 0.2, cfg.HotspotTopFraction)
	assert.Equal(t, 0.3, cfg.HotspotProbability)
	assert.Equal(t, 30, cfg.HotspotDriftInterval)
	assert.Equal(t, 0.3, cfg.HotspotCongestionGate)
	assert.Equal(t, 0.00005, cfg.IncidentSpawnRate)
	assert.Equal(t, 30, cfg.IncidentMinDuration)
	assert.Equal(t, 120, cfg.IncidentMaxDuration)
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.yaml")
	content := "seed: 99\ntick_dt_cap: 0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 0.1, cfg.TickDTCap)
	assert.Equal(t, 10, cfg.ReaperInterval, "unset fields keep their default")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/kernel.yaml")
	assert.Error(t, err)
}

func TestKernelConfig_Distribution_FallsBackToDefault(t *testing.T) {
	cfg := &KernelConfig{}
	assert.Equal(t, DefaultDistribution(), cfg.distribution())
}

func TestKernelConfig_Distribution_FromMap(t *testing.T) {
	cfg := &KernelConfig{SpawnDistribution: map[string]float64{"car": 1.0}}
	dist := cfg.distribution()
	require.Len(t, dist, 1)
	assert.Equal(t, KindCar, dist[0].Kind)
}
