package sim

import (
	"container/heap"
	"sort"
)

// HeuristicFunc estimates the remaining cost from node to goal. Must be
// admissible (never overestimate) for FindPath's result to be optimal.
type HeuristicFunc func(coords Coordinates, node, goal string) float64

// EuclideanHeuristic is the straight-line distance heuristic, admissible
// whenever edge costs are bounded below by geometric distance (true for
// every Kind's cost function in this kernel). Nodes missing coordinates
// fall back to zero, degrading gracefully to plain Dijkstra for that node.
func EuclideanHeuristic(coords Coordinates, node, goal string) float64 {
	a, ok1 := coords[node]
	b, ok2 := coords[goal]
	if !ok1 || !ok2 {
		return 0
	}
	return euclidean(a.X-b.X, a.Y-b.Y)
}

// routeNode is one entry in the A* open set, grounded on the astar.go
// reference (internal/algo/astar.go): a heap-ordered struct carrying g/f
// scores and a parent pointer for path reconstruction.
type routeNode struct {
	id     string
	g      float64
	f      float64
	parent *routeNode
	index  int
}

// routeHeap implements container/heap.Interface with deterministic
// tie-breaking (f-score → g-score → node id) so two runs over the same
// graph and weights always pick the same path.
type routeHeap []*routeNode

func (h routeHeap) Len() int { return len(h) }

func (h routeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].id < h[j].id
}

func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *routeHeap) Push(x any) {
	n := x.(*routeNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}

// FindPath runs A* from start to goal over graph, weighting each edge's
// base cost for kind by its live multiplier in weights, and excluding any
// edge isBlocked reports as blocked. Returns ErrNoPath if goal is
// unreachable, including when start or goal is not a node of graph;
// ErrUnknownEdge is never returned here.
func FindPath(graph Graph, coords Coordinates, weights map[EdgeKey]float64, isBlocked func(EdgeKey) bool, start, goal string, kind Kind, heuristic HeuristicFunc) ([]string, float64, error) {
	if start == goal {
		return []string{start}, 0, nil
	}

	open := &routeHeap{}
	heap.Init(open)
	heap.Push(open, &routeNode{id: start, g: 0, f: heuristic(coords, start, goal)})

	best := map[string]float64{start: 0}
	closed := make(map[string]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*routeNode)

		if closed[current.id] {
			continue
		}
		closed[current.id] = true

		if current.id == goal {
			return reconstructPath(current), current.g, nil
		}

		for _, e := range sortEdges(graph[current.id]) {
			key := EdgeKey{U: current.id, V: e.To}
			if isBlocked != nil && isBlocked(key) {
				continue
			}
			if closed[e.To] {
				continue
			}

			mult := 1.0
			if weights != nil {
				if m, ok := weights[key]; ok {
					mult = m
				}
			}
			tentativeG := current.g + e.costForKind(kind)*mult

			if prior, seen := best[e.To]; seen && tentativeG >= prior {
				continue
			}
			best[e.To] = tentativeG
			heap.Push(open, &routeNode{
				id:     e.To,
				g:      tentativeG,
				f:      tentativeG + heuristic(coords, e.To, goal),
				parent: current,
			})
		}
	}

	return nil, 0, ErrNoPath
}

func reconstructPath(n *routeNode) []string {
	var path []string
	for cur := n; cur != nil; cur = cur.parent {
		path = append([]string{cur.id}, path...)
	}
	return path
}

// sortEdges returns e in a stable (To-node lexicographic) order so that,
// combined with the heap's deterministic tie-break, expansion order never
// depends on the graph's own slice ordering.
func sortEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}
