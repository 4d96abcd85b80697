package sim

import (
	"fmt"
	"math"
	"time"
)

// Agent is one mobile entity with kinematic state and a path cursor over
// the graph. Grounded directly on original_source/Backend/vehicle.py's
// Vehicle class: same fields, same physics, translated to idiomatic Go
// (explicit receivers, no hidden package-level id counter — id assignment
// is AgentRegistry's job, see registry.go).
type Agent struct {
	ID   string
	Kind Kind

	Start string
	Goal  string

	Path      []string
	PathIndex int

	PositionOnEdge float64
	CurrentSpeed   float64
	TargetSpeed    float64
	MaxSpeed       float64
	Acceleration   float64

	Status Status

	CapacityUsage float64

	SpawnTime     time.Time
	ArrivalTime   time.Time // zero value until the agent arrives
	WaitTime      float64
	RerouteCount  int
	TotalDistance float64
	PathCost      float64
}

// NewAgent constructs an agent in its initial Waiting state. The caller
// must call SetPath once a route has been computed before the agent
// participates in ticks. Panics if kind is outside the closed Kind set.
func NewAgent(id string, kind Kind, start, goal string, now time.Time) *Agent {
	if _, ok := maxSpeedByKind[kind]; !ok {
		panic(fmt.Sprintf("sim: unknown agent kind %d", int(kind)))
	}
	return &Agent{
		ID:            id,
		Kind:          kind,
		Start:         start,
		Goal:          goal,
		Path:          []string{start},
		PathIndex:     0,
		MaxSpeed:      maxSpeedByKind[kind],
		CapacityUsage: capacityByKind[kind],
		Acceleration:  defaultAcceleration,
		Status:        StatusWaiting,
		SpawnTime:     now,
	}
}

// Current returns the node the agent currently occupies.
func (a *Agent) Current() string {
	return a.Path[a.PathIndex]
}

// Next returns the node the agent is heading toward, if any.
func (a *Agent) Next() (string, bool) {
	if a.PathIndex+1 < len(a.Path) {
		return a.Path[a.PathIndex+1], true
	}
	return "", false
}

// CurrentEdge returns the (current, next) edge the agent occupies, if any.
func (a *Agent) CurrentEdge() (EdgeKey, bool) {
	next, ok := a.Next()
	if !ok {
		return EdgeKey{}, false
	}
	return EdgeKey{U: a.Current(), V: next}, true
}

// SetPath replaces the agent's path and resets its edge cursor. Used both
// for the initial path assigned at spawn and, via Reroute, for a
// recomputed path. Always zeroes PositionOnEdge on adoption.
func (a *Agent) SetPath(path []string, cost float64) {
	a.Path = path
	a.PathIndex = 0
	a.PositionOnEdge = 0
	a.PathCost = cost
	if len(path) >= 2 {
		a.Status = StatusMoving
	}
}

// Reroute adopts a newly computed path in response to a blockage or
// congestion ahead, incrementing the reroute counter and resetting the
// agent to full speed.
func (a *Agent) Reroute(path []string, cost float64) {
	a.SetPath(path, cost)
	a.RerouteCount++
	a.TargetSpeed = a.MaxSpeed
	a.Status = StatusMoving
}

// AdvanceNode moves the path cursor forward by one node. Precondition:
// PositionOnEdge has reached 1.0 (or the caller otherwise intends to
// skip the remainder of the edge). Returns whether the cursor advanced.
func (a *Agent) AdvanceNode(now time.Time) bool {
	if a.PathIndex >= len(a.Path)-1 {
		a.Status = StatusArrived
		if a.ArrivalTime.IsZero() {
			a.ArrivalTime = now
		}
		return false
	}

	a.PathIndex++
	if a.PathIndex >= len(a.Path)-1 {
		a.Status = StatusArrived
		a.ArrivalTime = now
		return true
	}

	a.PositionOnEdge = 0
	a.Status = StatusMoving
	return true
}

// UpdatePosition integrates the agent's position along its current edge
// for dt seconds of simulated time. Only runs while Moving or Stuck.
// Two-stage update: slew CurrentSpeed toward TargetSpeed without
// overshoot, then advance PositionOnEdge by the distance traveled.
// Returns true iff the clip to 1.0 fired (edge-end reached).
func (a *Agent) UpdatePosition(dt, edgeLengthPx float64) bool {
	if a.Status != StatusMoving && a.Status != StatusStuck {
		return false
	}

	speedDiff := a.TargetSpeed - a.CurrentSpeed
	step := a.Acceleration * dt
	switch {
	case math.Abs(speedDiff) < step:
		a.CurrentSpeed = a.TargetSpeed
	case speedDiff > 0:
		a.CurrentSpeed += step
	default:
		a.CurrentSpeed -= step
	}

	distance := a.CurrentSpeed * dt
	a.TotalDistance += distance
	if edgeLengthPx <= 0 {
		edgeLengthPx = 100.0
	}
	a.PositionOnEdge += distance / edgeLengthPx

	if a.PositionOnEdge >= 1.0 {
		a.PositionOnEdge = 1.0
		return true
	}
	return false
}

// SlowForLeader applies the cooperative-following gap controller: stop if
// too close, slow proportionally within the caution band, resume full
// speed once clear.
func (a *Agent) SlowForLeader(gapPx float64) {
	switch {
	case gapPx < 30:
		a.TargetSpeed = 0
		a.Status = StatusStuck
	case gapPx < 60:
		a.TargetSpeed = a.MaxSpeed * gapPx / 60
		a.Status = StatusStuck
	default:
		a.TargetSpeed = a.MaxSpeed
		if a.Status == StatusStuck {
			a.Status = StatusMoving
		}
	}
}

// TravelTime returns the agent's total travel time if it has arrived.
func (a *Agent) TravelTime() (time.Duration, bool) {
	if a.ArrivalTime.IsZero() {
		return 0, false
	}
	return a.ArrivalTime.Sub(a.SpawnTime), true
}
