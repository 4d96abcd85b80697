package sim

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioGraph is a simple two-route grid: A -> B -> C is the short way,
// A -> D -> C a same-cost detour, used to exercise rerouting without
// relying on the default test fixture's single path.
func scenarioGraph() (Graph, Coordinates) {
	g := Graph{
		"A": {
			{To: "B", Cost: map[Kind]float64{KindCar: 1, KindBike: 1, KindPedestrian: 1}},
			{To: "D", Cost: map[Kind]float64{KindCar: 1, KindBike: 1, KindPedestrian: 1}},
		},
		"B": {{To: "C", Cost: map[Kind]float64{KindCar: 1, KindBike: 1, KindPedestrian: 1}}},
		"D": {{To: "C", Cost: map[Kind]float64{KindCar: 1, KindBike: 1, KindPedestrian: 1}}},
		"C": {},
	}
	coords := Coordinates{
		"A": {X: 0, Y: 0}, "B": {X: 1, Y: 0}, "D": {X: 0, Y: 1}, "C": {X: 1, Y: 1},
	}
	return g, coords
}

func newScenarioKernel(t *testing.T) *Kernel {
	t.Helper()
	g, coords := scenarioGraph()
	cfg := DefaultConfig()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewKernel(g, coords, cfg, log)
}

// Scenario A: a single car on an uncongested straight line arrives without
// ever rerouting or getting stuck.
func TestScenarioA_StraightLineNoCongestion(t *testing.T) {
	k := newScenarioKernel(t)
	now := time.Now()
	k.SetClockFunc(func() time.Time { return now })

	a := k.Spawn(KindCar, "A", "B")
	require.NotNil(t, a)

	for i := 0; i < 200; i++ {
		now = now.Add(100 * time.Millisecond)
		k.Tick()
		if a.Status == StatusArrived {
			break
		}
	}

	assert.Equal(t, StatusArrived, a.Status)
	assert.Equal(t, 0, a.RerouteCount)
}

// Scenario B: a slow leader ahead on the same edge forces its follower to
// slow via SlowForLeader rather than crash into it.
func TestScenarioB_LeaderStopsFollower(t *testing.T) {
	k := newScenarioKernel(t)
	now := time.Now()
	k.SetClockFunc(func() time.Time { return now })

	leader := k.Spawn(KindCar, "A", "C")
	follower := k.Spawn(KindCar, "A", "C")
	require.NotNil(t, leader)
	require.NotNil(t, follower)

	leader.PositionOnEdge = 0.05
	leader.CurrentSpeed = 0
	leader.TargetSpeed = 0
	leader.Status = StatusStuck
	follower.PositionOnEdge = 0.0
	follower.CurrentSpeed = 10
	follower.TargetSpeed = 30

	k.registry.RebuildOccupancy()
	now = now.Add(100 * time.Millisecond)
	k.Tick()

	assert.Equal(t, 0.0, follower.TargetSpeed)
	assert.Equal(t, StatusStuck, follower.Status)
}

// Scenario C: blocking the only short edge forces the agent to reroute
// onto the surviving detour.
func TestScenarioC_BlockedEdgeTriggersReroute(t *testing.T) {
	k := newScenarioKernel(t)
	now := time.Now()
	k.SetClockFunc(func() time.Time { return now })

	a := k.Spawn(KindCar, "A", "C")
	require.NotNil(t, a)
	require.Equal(t, []string{"A", "B", "C"}, a.Path)

	require.True(t, k.Block("A", "B", "accident"))

	now = now.Add(100 * time.Millisecond)
	k.Tick()

	assert.Equal(t, []string{"A", "D", "C"}, a.Path)
	assert.Equal(t, 1, a.RerouteCount)
}

// Scenario D: applying then resolving an incident restores the edge's
// multiplier exactly.
func TestScenarioD_IncidentRoundTrip(t *testing.T) {
	k := newScenarioKernel(t)
	edge := EdgeKey{U: "A", V: "B"}
	before := k.field.Multiplier(edge)

	inc := k.CreateIncident("A", "B")
	require.NotNil(t, inc)
	assert.NotEqual(t, before, k.field.Multiplier(edge))

	require.True(t, k.ResolveIncident(inc.ID))
	assert.InDelta(t, before, k.field.Multiplier(edge), 1e-9)
}

// Scenario E: repeated hotspot drift never pushes a multiplier above the
// 5.0 ceiling.
func TestScenarioE_HotspotDriftBounded(t *testing.T) {
	k := newScenarioKernel(t)
	k.config.IncidentSpawnRate = 0
	k.hotspots = []EdgeKey{{U: "A", V: "B"}}

	now := time.Now()
	k.SetClockFunc(func() time.Time { return now })

	for i := 0; i < 2000; i++ {
		now = now.Add(time.Second)
		k.Tick()
		assert.LessOrEqual(t, k.field.Multiplier(EdgeKey{U: "A", V: "B"}), 5.0+1e-9)
	}
}

// Scenario F: resetting a kernel and replaying it produces the same
// sequence of spawn decisions as a freshly constructed one.
func TestScenarioF_ResetReproducesSequence(t *testing.T) {
	k := newScenarioKernel(t)
	fixedNow := time.Now()
	k.SetClockFunc(func() time.Time { return fixedNow })

	first := k.SpawnMix(10, nil)
	firstIDs := idsOf(first)
	firstKinds := kindsOf(first)

	k.Reset()
	k.SetClockFunc(func() time.Time { return fixedNow })

	second := k.SpawnMix(10, nil)
	secondIDs := idsOf(second)
	secondKinds := kindsOf(second)

	assert.Equal(t, firstIDs, secondIDs)
	assert.Equal(t, firstKinds, secondKinds)
}

func idsOf(agents []*Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

func kindsOf(agents []*Agent) []Kind {
	out := make([]Kind, len(agents))
	for i, a := range agents {
		out[i] = a.Kind
	}
	return out
}
