package sim

import "sort"

// Bottleneck reports one congested edge, ranked by its effective weight.
type Bottleneck struct {
	Edge       EdgeKey `json:"edge" yaml:"edge"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Occupancy  int     `json:"occupancy" yaml:"occupancy"`
}

// NodeCongestion reports the load observed at one node's outgoing edges.
type NodeCongestion struct {
	Node             string  `json:"node" yaml:"node"`
	TotalOccupancy   int     `json:"total_occupancy" yaml:"total_occupancy"`
	AverageMultiplier float64 `json:"average_multiplier" yaml:"average_multiplier"`
}

// GlobalStats is the system-wide congestion view.
type GlobalStats struct {
	TotalEdges     int     `json:"total_edges" yaml:"total_edges"`
	CongestedEdges int     `json:"congested_edges" yaml:"congested_edges"`
	AverageMultiplier float64 `json:"average_multiplier" yaml:"average_multiplier"`
	CongestionFactor  float64 `json:"congestion_factor" yaml:"congestion_factor"`
}

// TrafficAnalyzer is the statistical-view contract the kernel consults for
// reporting and for the look-ahead reroute check. It is an external-collaborator
// interface: the kernel depends only on this, not on any concrete
// implementation, mirroring the role TrafficAnalyzer plays in
// multi_vehicle_simulator.py (get_congestion_probability,
// get_node_congestion, find_bottlenecks, get_edge_traffic_data,
// get_global_statistics) as called from the simulation loop. The
// original's TrafficAnalyzer class body itself was not present in the
// retrieved source, so DensityAnalyzer below is reconstructed from those
// call sites and from this kernel's own occupancy/weight data, documented
// as a standalone design decision in DESIGN.md.
type TrafficAnalyzer interface {
	// UpdateWeights folds current occupancy into the analyzer's internal
	// congestion estimate for edge, advancing toward convergence rather
	// than jumping — only edges with nonzero occupancy are touched.
	UpdateWeights(edge EdgeKey, occupancy int)

	// CongestionProbability returns a 0..1 estimate of how congested edge
	// currently is, independent of raw occupancy counts.
	CongestionProbability(edge EdgeKey) float64

	// NodeCongestion summarizes the congestion at one node's outgoing
	// edges.
	NodeCongestion(node string, g Graph) NodeCongestion

	// FindBottlenecks returns the top-n most congested edges, sorted
	// worst first.
	FindBottlenecks(weights map[EdgeKey]float64, occupancy map[EdgeKey][]string, n int) []Bottleneck

	// EdgeTrafficData returns the raw congestion probability for every
	// edge the analyzer has observed.
	EdgeTrafficData() map[EdgeKey]float64

	// GlobalStatistics summarizes congestion across the whole graph.
	GlobalStatistics(weights map[EdgeKey]float64) GlobalStats

	// Reset discards every learned estimate.
	Reset()
}

// DensityAnalyzer is the in-process TrafficAnalyzer backed by a simple
// occupancy-driven exponential moving average per edge — the same EMA
// shape WeightField.HotspotDrift uses for organic congestion, reused here
// for the read-side statistical view so the two concerns (weight mutation
// vs. congestion reporting) share one smoothing idiom without being
// coupled to each other's state.
type DensityAnalyzer struct {
	probability map[EdgeKey]float64
	alpha       float64
}

// NewDensityAnalyzer returns an analyzer with the given EMA smoothing
// factor (0 < alpha <= 1; higher reacts faster to occupancy changes).
func NewDensityAnalyzer(alpha float64) *DensityAnalyzer {
	return &DensityAnalyzer{
		probability: make(map[EdgeKey]float64),
		alpha:       alpha,
	}
}

// UpdateWeights nudges edge's congestion estimate toward a target derived
// from occupancy (saturating at 4 concurrent agents = fully congested).
// Never touches an edge with zero occupancy, so an edge nobody is on
// keeps its last known estimate rather than decaying — this is what
// keeps DensityAnalyzer's bookkeeping independent of WeightField's
// exactly-reversible incident multipliers: the two never fight over the
// same number.
func (d *DensityAnalyzer) UpdateWeights(edge EdgeKey, occupancy int) {
	if occupancy <= 0 {
		return
	}
	target := float64(occupancy) / 4.0
	if target > 1.0 {
		target = 1.0
	}
	current := d.probability[edge]
	d.probability[edge] = current + d.alpha*(target-current)
}

// CongestionProbability returns the edge's current estimate, or 0 if
// never observed.
func (d *DensityAnalyzer) CongestionProbability(edge EdgeKey) float64 {
	return d.probability[edge]
}

// NodeCongestion averages the congestion probability of a node's outgoing
// edges and reports it in AverageMultiplier. TotalOccupancy is left at 0.
func (d *DensityAnalyzer) NodeCongestion(node string, g Graph) NodeCongestion {
	nc := NodeCongestion{Node: node}
	edges := g[node]
	if len(edges) == 0 {
		return nc
	}
	var sum float64
	for _, e := range edges {
		key := EdgeKey{U: node, V: e.To}
		sum += d.probability[key]
	}
	nc.AverageMultiplier = sum / float64(len(edges))
	return nc
}

// FindBottlenecks returns the n worst edges by effective weight
// (multiplier), sorted descending, ties broken by edge identity for
// determinism.
func (d *DensityAnalyzer) FindBottlenecks(weights map[EdgeKey]float64, occupancy map[EdgeKey][]string, n int) []Bottleneck {
	out := make([]Bottleneck, 0, len(weights))
	for edge, mult := range weights {
		out = append(out, Bottleneck{
			Edge:       edge,
			Multiplier: mult,
			Occupancy:  len(occupancy[edge]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Multiplier != out[j].Multiplier {
			return out[i].Multiplier > out[j].Multiplier
		}
		return edgeLess(out[i].Edge, out[j].Edge)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// EdgeTrafficData returns every observed edge's congestion probability.
func (d *DensityAnalyzer) EdgeTrafficData() map[EdgeKey]float64 {
	out := make(map[EdgeKey]float64, len(d.probability))
	for k, v := range d.probability {
		out[k] = v
	}
	return out
}

// GlobalStatistics summarizes the live weight table: how many edges carry
// a multiplier above 1.0 (i.e. affected by an incident or drift) and the
// overall average. CongestionFactor is the fraction of edges above 1.0;
// it is reported only and does not gate hotspot drift (Kernel.Tick gates
// drift on elapsed time).
func (d *DensityAnalyzer) GlobalStatistics(weights map[EdgeKey]float64) GlobalStats {
	stats := GlobalStats{TotalEdges: len(weights)}
	if len(weights) == 0 {
		return stats
	}
	var sum float64
	for _, m := range weights {
		sum += m
		if m > 1.0 {
			stats.CongestedEdges++
		}
	}
	stats.AverageMultiplier = sum / float64(len(weights))
	stats.CongestionFactor = float64(stats.CongestedEdges) / float64(stats.TotalEdges)
	return stats
}

// Reset discards every learned congestion estimate.
func (d *DensityAnalyzer) Reset() {
	d.probability = make(map[EdgeKey]float64)
}
