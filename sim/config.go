package sim

import (
	"fmt"

	"github.com/spf13/viper"
)

// KernelConfig groups every kernel tunable a deployer might reasonably
// want to retune without touching code, collapsed into one struct since
// the kernel has a single tunable surface.
type KernelConfig struct {
	Seed int64 `yaml:"seed" mapstructure:"seed"` // master seed for the kernel's single RNG stream

	SpawnDistribution map[string]float64 `yaml:"spawn_distribution" mapstructure:"spawn_distribution"` // kind name -> probability, defaults to {car: 0.60, bike: 0.25, pedestrian: 0.15}

	TickDTCap      float64 `yaml:"tick_dt_cap" mapstructure:"tick_dt_cap"`         // max seconds of simulated time one Tick may advance (default 0.2)
	ReaperInterval int     `yaml:"reaper_interval" mapstructure:"reaper_interval"` // Run() reaps arrived agents every N steps (default 10)
	SpawnInterval  int     `yaml:"spawn_interval" mapstructure:"spawn_interval"`   // Run() calls SpawnMix every N steps (default 3)

	HotspotTopFraction    float64 `yaml:"hotspot_top_fraction" mapstructure:"hotspot_top_fraction"`       // top out-degree fraction eligible as hotspots (default 0.2)
	HotspotProbability    float64 `yaml:"hotspot_probability" mapstructure:"hotspot_probability"`         // per-edge inclusion probability among eligible nodes (default 0.3)
	HotspotDriftInterval  int     `yaml:"hotspot_drift_interval" mapstructure:"hotspot_drift_interval"`   // apply hotspot drift every Nth tick (default 30)
	HotspotCongestionGate float64 `yaml:"hotspot_congestion_gate" mapstructure:"hotspot_congestion_gate"` // drift only applies once congestion_factor exceeds this (default 0.3)

	IncidentSpawnRate   float64 `yaml:"incident_spawn_rate" mapstructure:"incident_spawn_rate"`    // probability per elapsed-minute scaling factor (default 0.00005)
	IncidentMinDuration int     `yaml:"incident_min_duration" mapstructure:"incident_min_duration"` // seconds (default 30)
	IncidentMaxDuration int     `yaml:"incident_max_duration" mapstructure:"incident_max_duration"` // seconds (default 120)

	LogLevel string `yaml:"log_level" mapstructure:"log_level"` // logrus level name (default "info")
}

// DefaultConfig returns the kernel's built-in default tunables.
func DefaultConfig() *KernelConfig {
	return &KernelConfig{
		Seed:                  1,
		SpawnDistribution:     map[string]float64{"car": 0.60, "bike": 0.25, "pedestrian": 0.15},
		TickDTCap:             0.2,
		ReaperInterval:        10,
		SpawnInterval:         3,
		HotspotTopFraction:    0.2,
		HotspotProbability:    0.3,
		HotspotDriftInterval:  30,
		HotspotCongestionGate: 0.3,
		IncidentSpawnRate:     0.00005,
		IncidentMinDuration:   30,
		IncidentMaxDuration:   120,
		LogLevel:              "info",
	}
}

// LoadConfig reads a YAML config file via viper and merges it onto
// DefaultConfig, so a partial file only overrides what it sets.
func LoadConfig(path string) (*KernelConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("sim: loading config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("sim: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// distribution converts the config's string-keyed spawn distribution into
// the ordered Distribution the kernel's RNG draws require.
func (c *KernelConfig) distribution() Distribution {
	if len(c.SpawnDistribution) == 0 {
		return DefaultDistribution()
	}
	dist := make(Distribution, 0, len(kindOrder))
	for _, k := range kindOrder {
		if p, ok := c.SpawnDistribution[k.String()]; ok {
			dist = append(dist, KindWeight{Kind: k, Probability: p})
		}
	}
	if len(dist) == 0 {
		return DefaultDistribution()
	}
	return dist
}
