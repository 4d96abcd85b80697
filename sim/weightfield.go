package sim

import "sort"

// WeightField holds the per-edge congestion multiplier table that the
// router consults to bias A* away from congested or incident-affected
// edges. Grounded on multi_vehicle_simulator.py's traffic_multipliers
// dict and its apply_accident/resolve_accident/drift helpers.
//
// Multipliers are purely advisory cost weights; blocking is a separate,
// absolute concern (see IncidentBook.Block) layered on top by the router.
type WeightField struct {
	mult        map[EdgeKey]float64
	blockedFrom map[EdgeKey]float64 // multiplier to restore on ClearBlocked, keyed by edge
	rng         *RNG
	edges       []EdgeKey // sorted, stable edge universe for deterministic hotspot selection
}

// NewWeightField seeds a multiplier of 1.0 for every edge in the graph.
func NewWeightField(g Graph, rng *RNG) *WeightField {
	wf := &WeightField{
		mult:        make(map[EdgeKey]float64),
		blockedFrom: make(map[EdgeKey]float64),
		rng:         rng,
	}
	for _, u := range sortedNodes(g) {
		for _, e := range g[u] {
			key := EdgeKey{U: u, V: e.To}
			wf.mult[key] = 1.0
			wf.edges = append(wf.edges, key)
		}
	}
	sort.Slice(wf.edges, func(i, j int) bool {
		if wf.edges[i].U != wf.edges[j].U {
			return wf.edges[i].U < wf.edges[j].U
		}
		return wf.edges[i].V < wf.edges[j].V
	})
	return wf
}

// Exists reports whether e is a known edge.
func (wf *WeightField) Exists(e EdgeKey) bool {
	_, ok := wf.mult[e]
	return ok
}

// Multiplier returns the current congestion multiplier for e, defaulting
// to 1.0 for an edge the field has never seen.
func (wf *WeightField) Multiplier(e EdgeKey) float64 {
	if m, ok := wf.mult[e]; ok {
		return m
	}
	return 1.0
}

// ApplyIncident multiplies e's weight by sev's severity factor. Multiple
// concurrent incidents on the same edge compound multiplicatively. While
// e is blocked, the compounding is applied to the stashed restore value
// instead of the live (pinned at 100.0) multiplier, so the edge's
// incident-only weight keeps tracking correctly underneath the block.
func (wf *WeightField) ApplyIncident(e EdgeKey, sev Severity) {
	if prior, blocked := wf.blockedFrom[e]; blocked {
		wf.blockedFrom[e] = prior * severityFactor(sev)
		return
	}
	wf.mult[e] = wf.Multiplier(e) * severityFactor(sev)
}

// ClearIncident divides e's weight by sev's severity factor, the exact
// inverse of ApplyIncident. Calling ApplyIncident then ClearIncident with
// the same severity must restore the prior multiplier within floating
// point epsilon — this is a load-bearing invariant, so the kernel's
// incident bookkeeping must always record the severity it applied with
// and clear with that same value. As with ApplyIncident, an incident
// expiring or being resolved while its edge is blocked updates the
// stashed restore value rather than the pinned live multiplier.
func (wf *WeightField) ClearIncident(e EdgeKey, sev Severity) {
	if prior, blocked := wf.blockedFrom[e]; blocked {
		wf.blockedFrom[e] = prior / severityFactor(sev)
		return
	}
	wf.mult[e] = wf.Multiplier(e) / severityFactor(sev)
}

// SetBlocked forces e's multiplier to 100.0, the absolute-override
// treatment a manual road closure gets on top of whatever multiplier the
// edge already carried. The prior value is stashed so ClearBlocked can
// restore it rather than flattening a still-open incident's contribution.
func (wf *WeightField) SetBlocked(e EdgeKey) {
	wf.blockedFrom[e] = wf.Multiplier(e)
	wf.mult[e] = 100.0
}

// ClearBlocked restores e's multiplier to whatever it was immediately
// before SetBlocked, or 1.0 if SetBlocked was never called for e.
func (wf *WeightField) ClearBlocked(e EdgeKey) {
	prior, ok := wf.blockedFrom[e]
	if !ok {
		prior = 1.0
	}
	wf.mult[e] = prior
	delete(wf.blockedFrom, e)
}

// HotspotDrift applies one round of exponentially smoothed congestion
// buildup to edges, modeling gradual organic congestion independent of
// discrete incidents. For each edge: time_penalty = 1.0 +
// congestionFactor * U(0.5, 2.0); candidate = min(mult * time_penalty,
// 5.0); mult <- 0.7*mult + 0.3*candidate. The 5.0 ceiling is the hotspot
// ceiling only — it never applies to incident or block contributions,
// which mutate the same map through ApplyIncident/SetBlocked directly.
func (wf *WeightField) HotspotDrift(edges []EdgeKey, congestionFactor float64) {
	for _, e := range edges {
		current := wf.Multiplier(e)
		penalty := 1.0 + congestionFactor*wf.rng.Uniform(0.5, 2.0)
		candidate := current * penalty
		if candidate > 5.0 {
			candidate = 5.0
		}
		wf.mult[e] = 0.7*current + 0.3*candidate
	}
}

// SelectHotspots deterministically samples edges eligible for drift:
// among the nodes whose out-degree falls in the top topFraction of the
// graph, each outgoing edge is included independently with probability
// probability. Draws are made in sorted edge order so a given RNG stream
// always yields the same hotspot set for the same graph and seed.
func (wf *WeightField) SelectHotspots(g Graph, topFraction, probability float64) []EdgeKey {
	degrees := outDegree(g)
	nodes := nodesWithOutgoing(g)
	if len(nodes) == 0 {
		return nil
	}

	sort.Slice(nodes, func(i, j int) bool {
		if degrees[nodes[i]] != degrees[nodes[j]] {
			return degrees[nodes[i]] > degrees[nodes[j]]
		}
		return nodes[i] < nodes[j]
	})

	cut := int(float64(len(nodes)) * topFraction)
	if cut < 1 {
		cut = 1
	}
	eligible := make(map[string]bool, cut)
	for _, n := range nodes[:cut] {
		eligible[n] = true
	}

	var selected []EdgeKey
	for _, e := range wf.edges {
		if !eligible[e.U] {
			continue
		}
		if wf.rng.Float64() < probability {
			selected = append(selected, e)
		}
	}
	return selected
}

// Snapshot returns a copy of every edge multiplier, keyed by "u,v" the
// way the external state view serializes it.
func (wf *WeightField) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(wf.mult))
	for e, m := range wf.mult {
		out[e.String()] = m
	}
	return out
}

// Reset restores every known edge's multiplier to 1.0 and forgets any
// pending block-restore values.
func (wf *WeightField) Reset() {
	for e := range wf.mult {
		wf.mult[e] = 1.0
	}
	wf.blockedFrom = make(map[EdgeKey]float64)
}
