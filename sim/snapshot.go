package sim

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StateSnapshot is the full point-in-time view returned by Kernel.State.
type StateSnapshot struct {
	Step               int64               `json:"step" yaml:"step"`
	IsRunning          bool                `json:"is_running" yaml:"is_running"`
	Vehicles           []*Agent            `json:"vehicles" yaml:"vehicles"`
	VehicleStatistics  VehicleStatistics   `json:"vehicle_statistics" yaml:"vehicle_statistics"`
	TrafficStatistics  GlobalStats         `json:"traffic_statistics" yaml:"traffic_statistics"`
	EdgeTraffic        map[EdgeKey]float64 `json:"edge_traffic" yaml:"edge_traffic"`
	TrafficMultipliers map[string]float64  `json:"traffic_multipliers" yaml:"traffic_multipliers"`
	TotalSpawned       int                 `json:"total_spawned" yaml:"total_spawned"`
}

// CongestionReport is the ranked view returned by Kernel.CongestionReport.
type CongestionReport struct {
	Bottlenecks []Bottleneck     `json:"bottlenecks" yaml:"bottlenecks"`
	Nodes       []NodeCongestion `json:"nodes" yaml:"nodes"`
	Global      GlobalStats      `json:"global" yaml:"global"`
}

// yamlStateSnapshot mirrors StateSnapshot with EdgeTraffic re-keyed
// explicitly to the "u,v" string form used for TrafficMultipliers.
type yamlStateSnapshot struct {
	Step               int64              `yaml:"step"`
	IsRunning          bool               `yaml:"is_running"`
	Vehicles           []*Agent           `yaml:"vehicles"`
	VehicleStatistics  VehicleStatistics  `yaml:"vehicle_statistics"`
	TrafficStatistics  GlobalStats        `yaml:"traffic_statistics"`
	EdgeTraffic        map[string]float64 `yaml:"edge_traffic"`
	TrafficMultipliers map[string]float64 `yaml:"traffic_multipliers"`
	TotalSpawned       int                `yaml:"total_spawned"`
}

// StateYAML renders s as YAML text, for callers that want a human-readable
// dump of a point-in-time snapshot rather than the native Go struct.
func (s StateSnapshot) StateYAML() ([]byte, error) {
	edgeTraffic := make(map[string]float64, len(s.EdgeTraffic))
	for e, v := range s.EdgeTraffic {
		edgeTraffic[e.String()] = v
	}

	out := yamlStateSnapshot{
		Step:               s.Step,
		IsRunning:          s.IsRunning,
		Vehicles:           s.Vehicles,
		VehicleStatistics:  s.VehicleStatistics,
		TrafficStatistics:  s.TrafficStatistics,
		EdgeTraffic:        edgeTraffic,
		TrafficMultipliers: s.TrafficMultipliers,
		TotalSpawned:       s.TotalSpawned,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("sim: marshaling state snapshot: %w", err)
	}
	return data, nil
}
