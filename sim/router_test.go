package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPath_StraightLine(t *testing.T) {
	g, coords := testGraph()
	path, cost, err := FindPath(g, coords, nil, nil, "A", "B", KindCar, EuclideanHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, path)
	assert.Equal(t, 1.0, cost)
}

func TestFindPath_SameNode(t *testing.T) {
	g, coords := testGraph()
	path, cost, err := FindPath(g, coords, nil, nil, "A", "A", KindCar, EuclideanHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, path)
	assert.Equal(t, 0.0, cost)
}

func TestFindPath_NoPathWhenBlocked(t *testing.T) {
	g, coords := testGraph()
	isBlocked := func(e EdgeKey) bool { return e == (EdgeKey{U: "A", V: "B"}) }
	_, _, err := FindPath(g, coords, nil, isBlocked, "A", "B", KindCar, EuclideanHeuristic)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindPath_PrefersLowerWeight(t *testing.T) {
	g := Graph{
		"A": {
			{To: "B", Cost: map[Kind]float64{KindCar: 1}},
			{To: "D", Cost: map[Kind]float64{KindCar: 1}},
		},
		"B": {{To: "C", Cost: map[Kind]float64{KindCar: 1}}},
		"D": {{To: "C", Cost: map[Kind]float64{KindCar: 1}}},
		"C": {},
	}
	coords := Coordinates{
		"A": {X: 0, Y: 0}, "B": {X: 1, Y: 0}, "D": {X: 0, Y: 1}, "C": {X: 1, Y: 1},
	}
	weights := map[EdgeKey]float64{
		{U: "A", V: "B"}: 5.0,
		{U: "A", V: "D"}: 1.0,
	}

	path, _, err := FindPath(g, coords, weights, nil, "A", "C", KindCar, EuclideanHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D", "C"}, path)
}

func TestFindPath_DeterministicTieBreak(t *testing.T) {
	g := Graph{
		"A": {
			{To: "X", Cost: map[Kind]float64{KindCar: 1}},
			{To: "Y", Cost: map[Kind]float64{KindCar: 1}},
		},
		"X": {{To: "Z", Cost: map[Kind]float64{KindCar: 1}}},
		"Y": {{To: "Z", Cost: map[Kind]float64{KindCar: 1}}},
		"Z": {},
	}
	path, _, err := FindPath(g, nil, nil, nil, "A", "Z", KindCar, EuclideanHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "X", "Z"}, path)
}

func TestEuclideanHeuristic_MissingCoordsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, EuclideanHeuristic(Coordinates{}, "A", "B"))
}
