package sim

import (
	"fmt"
	"sort"
)

// AgentRegistry owns every agent and the derived edge-occupancy index,
// grounded on original_source/Backend/vehicle.py's VehicleManager class.
// Id assignment uses a single counter shared across all kinds (format
// "<kind>_<n>"), matching the original's class-level counter rather than
// a per-kind counter.
type AgentRegistry struct {
	byID     map[string]*Agent
	active   map[string]bool
	occupied map[EdgeKey][]string

	nextID int
}

// NewAgentRegistry returns an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{
		byID:     make(map[string]*Agent),
		active:   make(map[string]bool),
		occupied: make(map[EdgeKey][]string),
		nextID:   1,
	}
}

// NextID allocates the next agent id for kind, e.g. "car_1", "bike_2".
func (r *AgentRegistry) NextID(kind Kind) string {
	id := fmt.Sprintf("%s_%d", kind, r.nextID)
	r.nextID++
	return id
}

// Add registers a new agent as active.
func (r *AgentRegistry) Add(a *Agent) {
	r.byID[a.ID] = a
	r.active[a.ID] = true
}

// Get returns the agent with the given id, if present.
func (r *AgentRegistry) Get(id string) (*Agent, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// All returns every agent the registry still holds (ClearArrived removes
// arrived agents), sorted by id for deterministic iteration.
func (r *AgentRegistry) All() []*Agent {
	out := make([]*Agent, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns every currently active agent, sorted by id.
func (r *AgentRegistry) Active() []*Agent {
	out := make([]*Agent, 0, len(r.active))
	for id := range r.active {
		out = append(out, r.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AgentsOnEdge returns the ids of agents currently occupying the given
// edge, in the order RebuildOccupancy discovered them (sorted by agent id
// within the full Active() scan, hence deterministic).
func (r *AgentRegistry) AgentsOnEdge(e EdgeKey) []string {
	return r.occupied[e]
}

// MarkArrived removes an agent from the active set without deleting its
// record, so final statistics can still find it via All/Get.
func (r *AgentRegistry) MarkArrived(id string) {
	delete(r.active, id)
}

// ClearArrived drops every agent whose Status is StatusArrived from the
// registry entirely (both byID and active), a "reaper" pass that
// periodically prunes terminal state to bound memory.
func (r *AgentRegistry) ClearArrived() int {
	removed := 0
	for id, a := range r.byID {
		if a.Status == StatusArrived {
			delete(r.byID, id)
			delete(r.active, id)
			removed++
		}
	}
	return removed
}

// RebuildOccupancy recomputes the edge occupancy index from scratch over
// every active agent. Called once per tick, at tick end, so that
// incremental updates during the tick never observe stale neighbor
// positions mid-pass.
func (r *AgentRegistry) RebuildOccupancy() {
	r.occupied = make(map[EdgeKey][]string)
	for _, a := range r.Active() {
		edge, ok := a.CurrentEdge()
		if !ok {
			continue
		}
		r.occupied[edge] = append(r.occupied[edge], a.ID)
	}
}

// Statistics computes the aggregate VehicleStatistics view over every
// agent the registry still holds.
func (r *AgentRegistry) Statistics() VehicleStatistics {
	stats := VehicleStatistics{
		VehiclesByKind: make(map[string]int),
	}
	var totalTravel, totalWait float64
	var arrivedCount int

	for _, a := range r.All() {
		stats.TotalVehicles++
		stats.VehiclesByKind[a.Kind.String()]++
		stats.TotalReroutes += a.RerouteCount
		totalWait += a.WaitTime

		if dur, ok := a.TravelTime(); ok {
			arrivedCount++
			totalTravel += dur.Seconds()
		}
	}
	stats.ActiveVehicles = len(r.active)
	stats.ArrivedVehicles = arrivedCount
	if arrivedCount > 0 {
		stats.AverageTravelTime = totalTravel / float64(arrivedCount)
	}
	if stats.TotalVehicles > 0 {
		stats.AverageWaitTime = totalWait / float64(stats.TotalVehicles)
	}
	return stats
}

// Reset discards every agent and occupancy entry and restarts the id
// counter at 1, so a reset registry reproduces the exact same id sequence
// as a freshly constructed one.
func (r *AgentRegistry) Reset() {
	r.byID = make(map[string]*Agent)
	r.active = make(map[string]bool)
	r.occupied = make(map[EdgeKey][]string)
	r.nextID = 1
}
