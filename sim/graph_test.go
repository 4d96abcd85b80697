package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testGraph() (Graph, Coordinates) {
	g := Graph{
		"A": {{To: "B", Cost: map[Kind]float64{KindCar: 1}}},
		"B": {{To: "C", Cost: map[Kind]float64{KindCar: 1}}, {To: "A", Cost: map[Kind]float64{KindCar: 1}}},
		"C": {{To: "A", Cost: map[Kind]float64{KindCar: 1}}},
	}
	coords := Coordinates{
		"A": {X: 0, Y: 0},
		"B": {X: 1, Y: 0},
		"C": {X: 1, Y: 1},
	}
	return g, coords
}

func TestSortedNodes(t *testing.T) {
	g, _ := testGraph()
	assert.Equal(t, []string{"A", "B", "C"}, sortedNodes(g))
}

func TestOutDegree(t *testing.T) {
	g, _ := testGraph()
	deg := outDegree(g)
	assert.Equal(t, 1, deg["A"])
	assert.Equal(t, 2, deg["B"])
	assert.Equal(t, 1, deg["C"])
}

func TestEdgeLengthsPx(t *testing.T) {
	g, coords := testGraph()
	lengths := edgeLengthsPx(g, coords)

	ab := lengths[EdgeKey{U: "A", V: "B"}]
	assert.InDelta(t, 110.0, ab, 1e-9)

	bc := lengths[EdgeKey{U: "B", V: "C"}]
	assert.InDelta(t, 110.0, bc, 1e-9)
}

func TestEdgeLengthsPx_MissingCoordsFallsBackTo100(t *testing.T) {
	g := Graph{"A": {{To: "B"}}}
	coords := Coordinates{"A": {X: 0, Y: 0}}
	lengths := edgeLengthsPx(g, coords)
	assert.Equal(t, 100.0, lengths[EdgeKey{U: "A", V: "B"}])
}

func TestEdgeCostForKind_DefaultsToOne(t *testing.T) {
	e := Edge{To: "B", Cost: map[Kind]float64{KindCar: 2.5}}
	assert.Equal(t, 2.5, e.costForKind(KindCar))
	assert.Equal(t, 1.0, e.costForKind(KindBike))
}
