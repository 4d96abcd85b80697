package sim

import (
	"math"
	"sort"
)

// Edge is one outgoing connection from a node, carrying a base cost per
// travel mode. Provided by the graph-loading collaborator; the kernel
// only ever reads it.
type Edge struct {
	To   string
	Cost map[Kind]float64
}

// Graph maps a node id to its ordered outgoing edges. Node ids are opaque
// strings; edge order only matters for iteration determinism downstream.
type Graph map[string][]Edge

// Point is a 2-D coordinate used for the search heuristic and for scaling
// normalized edge position into pixel distance.
type Point struct {
	X, Y float64
}

// Coordinates maps a node id to its position. A node absent from this map
// contributes a zero heuristic and falls back to the default edge length.
type Coordinates map[string]Point

// costForKind returns the base cost of an edge for the given kind, or 1.0
// if the edge carries no cost entry for that kind (defensive default;
// well-formed graphs always populate every kind).
func (e Edge) costForKind(k Kind) float64 {
	if c, ok := e.Cost[k]; ok {
		return c
	}
	return 1.0
}

// sortedNodes returns the graph's node ids in sorted order. Used whenever
// an operation must pick among nodes deterministically (random selection
// keyed off a seeded RNG index, or tie-breaking) so that iteration over
// Go's randomized map order never leaks into simulation outcomes.
func sortedNodes(g Graph) []string {
	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// nodesWithOutgoing returns, in sorted order, every node with at least one
// outgoing edge. Used by incident spawning and random-edge-block requests,
// which both require a node that can actually host a directed edge.
func nodesWithOutgoing(g Graph) []string {
	nodes := make([]string, 0, len(g))
	for n, edges := range g {
		if len(edges) > 0 {
			nodes = append(nodes, n)
		}
	}
	sort.Strings(nodes)
	return nodes
}

// outDegree returns the number of outgoing edges for every node, used by
// hotspot selection.
func outDegree(g Graph) map[string]int {
	deg := make(map[string]int, len(g))
	for n, edges := range g {
		deg[n] = len(edges)
	}
	return deg
}

// edgeLengthsPx precomputes the pixel length of every edge from
// coordinates: max(50, euclidean * 110), falling back to 100 when either
// endpoint lacks coordinates.
func edgeLengthsPx(g Graph, coords Coordinates) map[EdgeKey]float64 {
	lengths := make(map[EdgeKey]float64)
	for _, u := range sortedNodes(g) {
		for _, e := range g[u] {
			key := EdgeKey{u, e.To}
			p1, ok1 := coords[u]
			p2, ok2 := coords[e.To]
			if !ok1 || !ok2 {
				lengths[key] = 100.0
				continue
			}
			dx := p2.X - p1.X
			dy := p2.Y - p1.Y
			dist := euclidean(dx, dy) * 110.0
			if dist < 50.0 {
				dist = 50.0
			}
			lengths[key] = dist
		}
	}
	return lengths
}

func euclidean(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
