package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Kernel is the tick orchestrator tying every other component together,
// grounded on multi_vehicle_simulator.py's MultiVehicleSimulator class
// (simulation_tick / run_continuous_simulation / spawn_vehicle /
// spawn_vehicle_mix / create_accident / resolve_accident).
type Kernel struct {
	graph  Graph
	coords Coordinates

	registry  *AgentRegistry
	field     *WeightField
	incidents *IncidentBook
	analyzer  TrafficAnalyzer
	rng       *RNG

	edgeLengthPx map[EdgeKey]float64
	hotspots     []EdgeKey

	config *KernelConfig
	log    logrus.FieldLogger

	step         int64
	simStart     time.Time
	lastTick     time.Time
	isRunning    bool
	totalSpawned int

	clock func() time.Time
}

// NewKernel constructs a Kernel over g and coords, performing the
// one-shot construction tasks a fresh simulation needs: default weight
// field, edge-length precomputation, and hotspot selection. Panics if g
// is nil or empty, since an empty graph is a programmer error, not a
// runtime condition callers should need to check for.
func NewKernel(g Graph, coords Coordinates, cfg *KernelConfig, log logrus.FieldLogger) *Kernel {
	if g == nil || len(g) == 0 {
		panic("sim: NewKernel requires a non-empty graph")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	rng := NewRNG(cfg.Seed)
	field := NewWeightField(g, rng)

	k := &Kernel{
		graph:        g,
		coords:       coords,
		registry:     NewAgentRegistry(),
		field:        field,
		rng:          rng,
		config:       cfg,
		log:          log,
		edgeLengthPx: edgeLengthsPx(g, coords),
		clock:        time.Now,
	}
	k.incidents = NewIncidentBook(field, rng)
	k.analyzer = NewDensityAnalyzer(0.3)
	k.hotspots = field.SelectHotspots(g, cfg.HotspotTopFraction, cfg.HotspotProbability)

	now := k.clock()
	k.simStart = now
	k.lastTick = now
	k.isRunning = true

	return k
}

// SetClockFunc overrides the wall-clock source, for deterministic tests.
func (k *Kernel) SetClockFunc(fn func() time.Time) {
	k.clock = fn
}

// Spawn creates one agent. Any of kind/start/goal left as zero value
// (kind < 0, empty string) is drawn uniformly at random; goal is resampled
// until distinct from start. Returns nil if no path exists between start
// and goal or the graph has no nodes.
func (k *Kernel) Spawn(kind Kind, start, goal string) *Agent {
	nodes := sortedNodes(k.graph)
	if len(nodes) == 0 {
		return nil
	}

	if kind < 0 {
		kind = kindOrder[k.rng.Intn(len(kindOrder))]
	}
	if start == "" {
		start = nodes[k.rng.Intn(len(nodes))]
	}
	if goal == "" {
		for {
			goal = nodes[k.rng.Intn(len(nodes))]
			if goal != start {
				break
			}
		}
	}

	path, cost, err := FindPath(k.graph, k.coords, k.field.mult, k.incidents.IsBlocked, start, goal, kind, EuclideanHeuristic)
	if err != nil {
		k.log.WithFields(logrus.Fields{"start": start, "goal": goal, "kind": kind}).Warn("sim: spawn discarded, no path")
		return nil
	}

	a := NewAgent(k.registry.NextID(kind), kind, start, goal, k.clock())
	a.SetPath(path, cost)
	k.registry.Add(a)
	k.totalSpawned++

	k.log.WithFields(logrus.Fields{"agent": a.ID, "start": start, "goal": goal}).Info("sim: agent spawned")
	return a
}

// SpawnMix spawns n agents, each drawing its Kind independently from dist
// (DefaultDistribution() if nil). Returns only the agents that spawned
// successfully.
func (k *Kernel) SpawnMix(n int, dist Distribution) []*Agent {
	if dist == nil {
		dist = DefaultDistribution()
	}
	out := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		kind := dist.Pick(k.rng.Float64())
		if a := k.Spawn(kind, "", ""); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Tick advances simulated time by one indivisible step: ages incidents,
// drifts hotspots, runs the two-pass agent update, and rebuilds occupancy.
func (k *Kernel) Tick() TickSummary {
	now := k.clock()
	dt := now.Sub(k.lastTick).Seconds()
	if dt > k.config.TickDTCap {
		dt = k.config.TickDTCap
	}
	if dt < 0 {
		dt = 0
	}
	k.lastTick = now
	k.step++

	elapsed := now.Sub(k.simStart).Seconds()
	congestionFactor := elapsed / 60.0
	if congestionFactor > 1.0 {
		congestionFactor = 1.0
	}

	elapsedMinutes := elapsed / 60.0
	spawned := k.incidents.MaybeSpawn(k.graph, elapsedMinutes, k.config.IncidentSpawnRate, k.config.IncidentMinDuration, k.config.IncidentMaxDuration, now)
	if spawned != nil {
		k.log.WithFields(logrus.Fields{"edge": spawned.Edge, "severity": spawned.Severity}).Info("sim: incident spawned")
	}
	expired := k.incidents.ExpireDue(now)
	for _, inc := range expired {
		k.log.WithFields(logrus.Fields{"edge": inc.Edge}).Debug("sim: incident expired")
	}

	k.refreshAnalyzer()

	if k.step%int64(k.config.HotspotDriftInterval) == 0 && congestionFactor > k.config.HotspotCongestionGate {
		k.field.HotspotDrift(k.hotspots, congestionFactor)
	}

	active := k.registry.Active()

	moved := k.passA(active, congestionFactor)
	arrived := k.passB(active, dt, now)

	k.registry.RebuildOccupancy()

	summary := TickSummary{
		Step:           k.step,
		ActiveVehicles: len(active) - arrived,
		Moved:          moved,
		Arrived:        arrived,
		TotalVehicles:  k.totalSpawned,
		DeltaTime:      dt,
		ElapsedTime:    elapsed,
		Accidents:      k.incidents.ActiveIncidents(),
		BlockedRoads:   k.incidents.ActiveBlocks(),
	}

	k.log.WithFields(logrus.Fields{
		"step": k.step, "active": summary.ActiveVehicles, "moved": moved, "arrived": arrived,
	}).Debug("sim: tick complete")

	return summary
}

func (k *Kernel) refreshAnalyzer() {
	for edge, occupants := range k.registry.occupied {
		k.analyzer.UpdateWeights(edge, len(occupants))
	}
}

// passA runs the planning pass over every active agent with a valid next
// node: reroute checks, leader following, and the deadband speed
// controller.
func (k *Kernel) passA(agents []*Agent, congestionFactor float64) int {
	moved := 0
	for _, a := range agents {
		edge, ok := a.CurrentEdge()
		if !ok {
			continue
		}

		if k.incidents.IsBlocked(edge) {
			if k.tryReroute(a) {
				moved++
				continue
			}
			a.TargetSpeed = 0
			a.Status = StatusStuck
			continue
		}

		if k.lookaheadTriggersReroute(a) {
			if k.tryReroute(a) {
				moved++
				continue
			}
		}

		if leaderGap, hasLeader := k.findLeaderGap(a, edge); hasLeader {
			a.SlowForLeader(leaderGap)
			continue
		}

		k.applyDeadband(a, edge)
	}
	return moved
}

// passB runs the integration pass: advance positions, advance path
// cursors on edge completion, mark newly arrived agents.
func (k *Kernel) passB(agents []*Agent, dt float64, now time.Time) int {
	arrived := 0
	for _, a := range agents {
		edge, ok := a.CurrentEdge()
		if !ok {
			continue
		}
		length := k.edgeLengthPx[edge]
		if a.UpdatePosition(dt, length) {
			if a.AdvanceNode(now) && a.Status == StatusArrived {
				k.registry.MarkArrived(a.ID)
				arrived++
			}
		}
	}
	return arrived
}

// lookaheadTriggersReroute checks the next three path edges from the
// agent's current cursor: blocked, or congestion probability above 0.5.
func (k *Kernel) lookaheadTriggersReroute(a *Agent) bool {
	for i := 0; i < 3; i++ {
		idx := a.PathIndex + i
		if idx+1 >= len(a.Path) {
			break
		}
		edge := EdgeKey{U: a.Path[idx], V: a.Path[idx+1]}
		if k.incidents.IsBlocked(edge) {
			return true
		}
		if k.analyzer.CongestionProbability(edge) > 0.5 {
			return true
		}
	}
	return false
}

// tryReroute recomputes the path from the agent's current node to its
// goal and adopts it only if the result differs from the remaining tail:
// a same-tail result is a no-op.
func (k *Kernel) tryReroute(a *Agent) bool {
	path, cost, err := FindPath(k.graph, k.coords, k.field.mult, k.incidents.IsBlocked, a.Current(), a.Goal, a.Kind, EuclideanHeuristic)
	if err != nil {
		return false
	}
	if pathsEqual(path, a.Path[a.PathIndex:]) {
		return false
	}
	a.Reroute(path, cost)
	return true
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// findLeaderGap locates the nearest agent ahead of a on the same edge and
// returns the pixel gap between them, if any.
func (k *Kernel) findLeaderGap(a *Agent, edge EdgeKey) (float64, bool) {
	length := k.edgeLengthPx[edge]
	bestGap := -1.0
	for _, id := range k.registry.AgentsOnEdge(edge) {
		if id == a.ID {
			continue
		}
		other, ok := k.registry.Get(id)
		if !ok {
			continue
		}
		if other.PositionOnEdge <= a.PositionOnEdge {
			continue
		}
		gap := (other.PositionOnEdge - a.PositionOnEdge) * length
		if bestGap < 0 || gap < bestGap {
			bestGap = gap
		}
	}
	if bestGap < 0 {
		return 0, false
	}
	return bestGap, true
}

// applyDeadband implements the deadband speed controller against the
// ideal speed derived from the edge's live multiplier.
func (k *Kernel) applyDeadband(a *Agent, edge EdgeKey) {
	mult := k.field.Multiplier(edge)
	invMult := 1.0 / mult
	if invMult < 0.2 {
		invMult = 0.2
	}
	ideal := a.MaxSpeed * invMult

	if a.CurrentSpeed < 10 {
		if a.TargetSpeed < 0.9*a.MaxSpeed {
			a.TargetSpeed = a.MaxSpeed
		}
	} else {
		delta := ideal - a.TargetSpeed
		switch {
		case delta > 2.0:
			a.TargetSpeed += 0.1
		case delta < -2.0:
			a.TargetSpeed -= 0.1
		case delta > 0.5:
			a.TargetSpeed += 0.2
		case delta < -0.5:
			a.TargetSpeed -= 0.2
		}
	}

	if mult > 3 && a.CurrentSpeed < 1 {
		a.Status = StatusStuck
	} else if a.Status == StatusStuck && a.CurrentSpeed > 3 {
		a.Status = StatusMoving
	}
}

// Run drives the continuous loop: every SpawnInterval-th step spawns a
// mix, every step ticks, every ReaperInterval-th step reaps arrived
// agents. Terminates on Stop() or ctx cancellation.
func (k *Kernel) Run(ctx context.Context, nSteps int, spawnRate int) error {
	k.isRunning = true
	for step := 0; step < nSteps; step++ {
		if !k.isRunning {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if step%k.config.SpawnInterval == 0 {
			k.SpawnMix(spawnRate, k.config.distribution())
		}
		k.Tick()
		if step%k.config.ReaperInterval == 0 {
			k.registry.ClearArrived()
		}
	}
	return nil
}

// Stop clears the running flag; Run observes it at the top of its loop.
func (k *Kernel) Stop() {
	k.isRunning = false
}

// Reset restores the kernel to its post-construction state: RNG reseeded,
// agents/occupancy/incidents/blocks cleared, multipliers restored to 1.0,
// hotspots reselected in the same order as construction so a reset kernel
// replays byte-identical to a freshly constructed one.
func (k *Kernel) Reset() {
	k.rng.Reseed()
	k.registry.Reset()
	k.field.Reset()
	k.incidents.Reset()
	k.analyzer.Reset()
	k.hotspots = k.field.SelectHotspots(k.graph, k.config.HotspotTopFraction, k.config.HotspotProbability)

	now := k.clock()
	k.step = 0
	k.simStart = now
	k.lastTick = now
	k.isRunning = true
	k.totalSpawned = 0
}

// CreateIncident opens an incident on (u,v), or on a randomly drawn edge
// if u or v is empty (mirrors Spawn's optional-argument pattern).
// Severity and duration are always drawn at random.
func (k *Kernel) CreateIncident(u, v string) *Incident {
	edge := EdgeKey{U: u, V: v}
	if u == "" || v == "" {
		nodes := sortedNodes(k.graph)
		if len(nodes) == 0 {
			return nil
		}
		n := nodes[k.rng.Intn(len(nodes))]
		edges := k.graph[n]
		if len(edges) == 0 {
			return nil
		}
		edge = EdgeKey{U: n, V: sortEdges(edges)[k.rng.Intn(len(edges))].To}
	}

	sev := severityOrder[k.rng.Intn(len(severityOrder))]
	duration := time.Duration(k.rng.UniformInt(k.config.IncidentMinDuration, k.config.IncidentMaxDuration)) * time.Second

	inc, err := k.incidents.CreateIncident(edge, sev, duration, k.clock())
	if err != nil {
		return nil
	}
	return inc
}

// ResolveIncident clears a live incident by id, returning whether it
// existed.
func (k *Kernel) ResolveIncident(id string) bool {
	return k.incidents.ResolveIncident(id) == nil
}

// Block imposes a manual road closure. Returns false if already blocked.
func (k *Kernel) Block(u, v, reason string) bool {
	edge := EdgeKey{U: u, V: v}
	if err := k.incidents.Block(edge, reason, k.clock()); err != nil {
		return false
	}
	k.field.SetBlocked(edge)
	return true
}

// Unblock lifts a manual road closure, restoring whatever multiplier the
// edge carried immediately before the block (so a still-open incident on
// the edge keeps its own effect rather than being silently cleared).
// No-op returning false if the edge was not blocked.
func (k *Kernel) Unblock(u, v string) bool {
	edge := EdgeKey{U: u, V: v}
	if !k.incidents.IsBlocked(edge) {
		return false
	}
	k.incidents.Unblock(edge)
	k.field.ClearBlocked(edge)
	return true
}

// State returns a full point-in-time snapshot.
func (k *Kernel) State() StateSnapshot {
	return StateSnapshot{
		Step:               k.step,
		IsRunning:          k.isRunning,
		Vehicles:           k.registry.All(),
		VehicleStatistics:  k.registry.Statistics(),
		TrafficStatistics:  k.analyzer.GlobalStatistics(k.field.mult),
		EdgeTraffic:        k.analyzer.EdgeTrafficData(),
		TrafficMultipliers: k.field.Snapshot(),
		TotalSpawned:       k.totalSpawned,
	}
}

// StateYAML returns State() rendered as YAML text, a convenience for
// callers that want a human-readable dump rather than the Go struct.
func (k *Kernel) StateYAML() ([]byte, error) {
	return k.State().StateYAML()
}

// CongestionReport returns a ranked view of the worst bottlenecks and
// per-node congestion, consulting the analyzer and live occupancy.
func (k *Kernel) CongestionReport(topN int) CongestionReport {
	bottlenecks := k.analyzer.FindBottlenecks(k.field.mult, k.registry.occupied, topN)

	nodes := make([]NodeCongestion, 0, len(k.graph))
	for _, n := range sortedNodes(k.graph) {
		nodes = append(nodes, k.analyzer.NodeCongestion(n, k.graph))
	}

	return CongestionReport{
		Bottlenecks: bottlenecks,
		Nodes:       nodes,
		Global:      k.analyzer.GlobalStatistics(k.field.mult),
	}
}
