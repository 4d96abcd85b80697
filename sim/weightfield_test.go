package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightField_DefaultsToOne(t *testing.T) {
	g, _ := testGraph()
	wf := NewWeightField(g, NewRNG(1))

	assert.Equal(t, 1.0, wf.Multiplier(EdgeKey{U: "A", V: "B"}))
	assert.True(t, wf.Exists(EdgeKey{U: "A", V: "B"}))
	assert.False(t, wf.Exists(EdgeKey{U: "Z", V: "Y"}))
}

func TestWeightField_ApplyClearIncident_ExactlyReversible(t *testing.T) {
	g, _ := testGraph()
	wf := NewWeightField(g, NewRNG(1))
	edge := EdgeKey{U: "A", V: "B"}

	before := wf.Multiplier(edge)
	wf.ApplyIncident(edge, SeverityModerate)
	assert.InDelta(t, before*4.0, wf.Multiplier(edge), 1e-12)

	wf.ClearIncident(edge, SeverityModerate)
	assert.InDelta(t, before, wf.Multiplier(edge), 1e-12)
}

func TestWeightField_CompoundingIncidents(t *testing.T) {
	g, _ := testGraph()
	wf := NewWeightField(g, NewRNG(1))
	edge := EdgeKey{U: "A", V: "B"}

	wf.ApplyIncident(edge, SeverityMinor)
	wf.ApplyIncident(edge, SeverityMinor)
	assert.InDelta(t, 4.0, wf.Multiplier(edge), 1e-12)

	wf.ClearIncident(edge, SeverityMinor)
	wf.ClearIncident(edge, SeverityMinor)
	assert.InDelta(t, 1.0, wf.Multiplier(edge), 1e-12)
}

func TestWeightField_HotspotDrift(t *testing.T) {
	g, _ := testGraph()
	edge := EdgeKey{U: "A", V: "B"}

	draw := NewRNG(1).Uniform(0.5, 2.0)
	wf := NewWeightField(g, NewRNG(1))
	wf.HotspotDrift([]EdgeKey{edge}, 0.4)

	penalty := 1.0 + 0.4*draw
	candidate := 1.0 * penalty
	if candidate > 5.0 {
		candidate = 5.0
	}
	want := 0.7*1.0 + 0.3*candidate
	assert.InDelta(t, want, wf.Multiplier(edge), 1e-9)
}

func TestWeightField_HotspotDrift_NeverExceedsCeiling(t *testing.T) {
	g, _ := testGraph()
	wf := NewWeightField(g, NewRNG(3))
	edge := EdgeKey{U: "A", V: "B"}

	for i := 0; i < 500; i++ {
		wf.HotspotDrift([]EdgeKey{edge}, 1.0)
		assert.LessOrEqual(t, wf.Multiplier(edge), 5.0+1e-9)
	}
}

func TestWeightField_SelectHotspots_Deterministic(t *testing.T) {
	g, _ := testGraph()
	wf1 := NewWeightField(g, NewRNG(7))
	wf2 := NewWeightField(g, NewRNG(7))

	h1 := wf1.SelectHotspots(g, 0.5, 0.5)
	h2 := wf2.SelectHotspots(g, 0.5, 0.5)
	assert.Equal(t, h1, h2)
}

func TestWeightField_Reset(t *testing.T) {
	g, _ := testGraph()
	wf := NewWeightField(g, NewRNG(1))
	edge := EdgeKey{U: "A", V: "B"}
	wf.ApplyIncident(edge, SeveritySevere)

	wf.Reset()
	assert.Equal(t, 1.0, wf.Multiplier(edge))
}
