package sim

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Incident is a transient accident on an edge that multiplies its weight
// for a bounded duration, grounded on multi_vehicle_simulator.py's
// create_accident/resolve_accident pair. IDs use uuid (github.com/google/uuid)
// rather than a local counter, since incidents are externally addressable
// (CreateIncident/ResolveIncident take/return an id) independent of the
// kernel's own internal counters.
type Incident struct {
	ID        string    `json:"id" yaml:"id"`
	Edge      EdgeKey   `json:"edge" yaml:"edge"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Expired reports whether the incident's duration has elapsed as of now.
func (inc *Incident) Expired(now time.Time) bool {
	return now.Sub(inc.CreatedAt) > inc.Duration
}

// BlockedRoad is a manually or kernel-imposed absolute block on an edge,
// distinct from an Incident: a block excludes the edge from routing
// entirely rather than merely weighting it.
type BlockedRoad struct {
	Edge     EdgeKey   `json:"edge" yaml:"edge"`
	Reason   string    `json:"reason" yaml:"reason"`
	BlockedAt time.Time `json:"blocked_at" yaml:"blocked_at"`
}

// IncidentBook tracks every live incident and block, and applies their
// weight effects to a WeightField.
type IncidentBook struct {
	incidents map[string]*Incident
	blocks    map[EdgeKey]*BlockedRoad
	field     *WeightField
	rng       *RNG
}

// NewIncidentBook returns an empty book bound to field for multiplier
// effects.
func NewIncidentBook(field *WeightField, rng *RNG) *IncidentBook {
	return &IncidentBook{
		incidents: make(map[string]*Incident),
		blocks:    make(map[EdgeKey]*BlockedRoad),
		field:     field,
		rng:       rng,
	}
}

// CreateIncident opens a new incident on edge with the given severity and
// duration, applying its multiplier immediately. Returns ErrUnknownEdge if
// the edge does not exist in the bound WeightField, and ErrDuplicateBlock
// if the edge is currently blocked: no new incident opens on a closed road.
func (b *IncidentBook) CreateIncident(edge EdgeKey, sev Severity, duration time.Duration, now time.Time) (*Incident, error) {
	if !b.field.Exists(edge) {
		return nil, ErrUnknownEdge
	}
	if b.IsBlocked(edge) {
		return nil, ErrDuplicateBlock
	}
	inc := &Incident{
		ID:        uuid.NewString(),
		Edge:      edge,
		Severity:  sev,
		CreatedAt: now,
		Duration:  duration,
	}
	b.incidents[inc.ID] = inc
	b.field.ApplyIncident(edge, sev)
	return inc, nil
}

// ResolveIncident manually clears an incident before its natural
// expiration, reversing its multiplier contribution. Returns
// ErrUnknownIncident if id is not a currently open incident.
func (b *IncidentBook) ResolveIncident(id string) error {
	inc, ok := b.incidents[id]
	if !ok {
		return ErrUnknownIncident
	}
	b.field.ClearIncident(inc.Edge, inc.Severity)
	delete(b.incidents, id)
	return nil
}

// ExpireDue clears every incident whose duration has elapsed as of now,
// reversing each one's multiplier. Called once per tick.
func (b *IncidentBook) ExpireDue(now time.Time) []*Incident {
	var expired []*Incident
	for id, inc := range b.incidents {
		if inc.Expired(now) {
			b.field.ClearIncident(inc.Edge, inc.Severity)
			delete(b.incidents, id)
			expired = append(expired, inc)
		}
	}
	return expired
}

// MaybeSpawn stochastically opens a new incident this tick, scaled by
// elapsed simulated minutes and the configured spawn rate. Returns
// nil if no incident spawns. Only edges with no currently open incident
// are eligible, so severities never silently stack beyond what
// CreateIncident already allows explicitly.
func (b *IncidentBook) MaybeSpawn(g Graph, elapsedMinutes, rate float64, minDuration, maxDuration int, now time.Time) *Incident {
	if b.rng.Float64() >= rate*elapsedMinutes {
		return nil
	}

	candidates := b.candidateEdges(g)
	if len(candidates) == 0 {
		return nil
	}
	edge := candidates[b.rng.Intn(len(candidates))]

	sev := severityOrder[b.rng.Intn(len(severityOrder))]
	duration := time.Duration(b.rng.UniformInt(minDuration, maxDuration)) * time.Second

	inc, err := b.CreateIncident(edge, sev, duration, now)
	if err != nil {
		return nil
	}
	return inc
}

func (b *IncidentBook) candidateEdges(g Graph) []EdgeKey {
	var out []EdgeKey
	for _, u := range sortedNodes(g) {
		for _, e := range g[u] {
			key := EdgeKey{U: u, V: e.To}
			if _, blocked := b.blocks[key]; blocked {
				continue
			}
			occupied := false
			for _, inc := range b.incidents {
				if inc.Edge == key {
					occupied = true
					break
				}
			}
			if !occupied {
				out = append(out, key)
			}
		}
	}
	return out
}

// Block imposes an absolute routing exclusion on edge. Returns
// ErrDuplicateBlock if already blocked.
func (b *IncidentBook) Block(edge EdgeKey, reason string, now time.Time) error {
	if _, ok := b.blocks[edge]; ok {
		return ErrDuplicateBlock
	}
	b.blocks[edge] = &BlockedRoad{Edge: edge, Reason: reason, BlockedAt: now}
	return nil
}

// Unblock removes an absolute block, if present.
func (b *IncidentBook) Unblock(edge EdgeKey) {
	delete(b.blocks, edge)
}

// IsBlocked reports whether edge is currently excluded from routing.
func (b *IncidentBook) IsBlocked(edge EdgeKey) bool {
	_, ok := b.blocks[edge]
	return ok
}

// ActiveIncidents returns every open incident, sorted by id.
func (b *IncidentBook) ActiveIncidents() []*Incident {
	out := make([]*Incident, 0, len(b.incidents))
	for _, inc := range b.incidents {
		out = append(out, inc)
	}
	sortIncidents(out)
	return out
}

// ActiveBlocks returns every currently blocked edge.
func (b *IncidentBook) ActiveBlocks() []*BlockedRoad {
	out := make([]*BlockedRoad, 0, len(b.blocks))
	for _, blk := range b.blocks {
		out = append(out, blk)
	}
	sortBlocks(out)
	return out
}

// Reset clears every incident and block without touching the bound
// WeightField (the caller, Kernel.Reset, resets the field separately so
// multipliers return to 1.0 rather than being walked back incident by
// incident).
func (b *IncidentBook) Reset() {
	b.incidents = make(map[string]*Incident)
	b.blocks = make(map[EdgeKey]*BlockedRoad)
}

func sortIncidents(incs []*Incident) {
	sort.Slice(incs, func(i, j int) bool { return incs[i].ID < incs[j].ID })
}

func sortBlocks(blocks []*BlockedRoad) {
	sort.Slice(blocks, func(i, j int) bool { return edgeLess(blocks[i].Edge, blocks[j].Edge) })
}

func edgeLess(a, b EdgeKey) bool {
	if a.U != b.U {
		return a.U < b.U
	}
	return a.V < b.V
}
