package cmd

import sim "github.com/roadsim/kernel/sim"

// demoGraph builds a small grid road network for the CLI's standalone
// run mode. Graph loading is an external-collaborator concern: a real
// deployment would load this from a map file; this is the minimal
// fixture that lets `run` work with no other input.
func demoGraph() (sim.Graph, sim.Coordinates) {
	g := sim.Graph{}
	coords := sim.Coordinates{}

	const size = 4
	node := func(x, y int) string {
		return string(rune('A'+x)) + string(rune('0'+y))
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := node(x, y)
			coords[n] = sim.Point{X: float64(x), Y: float64(y)}

			var edges []sim.Edge
			if x+1 < size {
				edges = append(edges, sim.Edge{To: node(x+1, y), Cost: map[sim.Kind]float64{sim.KindCar: 1, sim.KindBike: 1.2, sim.KindPedestrian: 2}})
				g[node(x+1, y)] = append(g[node(x+1, y)], sim.Edge{To: n, Cost: map[sim.Kind]float64{sim.KindCar: 1, sim.KindBike: 1.2, sim.KindPedestrian: 2}})
			}
			if y+1 < size {
				edges = append(edges, sim.Edge{To: node(x, y+1), Cost: map[sim.Kind]float64{sim.KindCar: 1, sim.KindBike: 1.2, sim.KindPedestrian: 2}})
				g[node(x, y+1)] = append(g[node(x, y+1)], sim.Edge{To: n, Cost: map[sim.Kind]float64{sim.KindCar: 1, sim.KindBike: 1.2, sim.KindPedestrian: 2}})
			}
			g[n] = append(g[n], edges...)
		}
	}

	return g, coords
}
