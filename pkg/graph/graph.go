package graph

import (
	"sort"
	"strings"
	"sync"
)

// Node is an entity in the tax-concept relation graph, e.g. a return form,
// a levy, or a portal subsystem.
type Node struct {
	Label      string `json:"label"`
	EntityType string `json:"entity_type"`
}

// Edge is a weighted directed relation between two nodes.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// Related is one entity reachable from a traversal seed.
type Related struct {
	Entity   string  `json:"entity"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
	Depth    int     `json:"depth"`
}

// RelationGraph is an in-memory adjacency structure over tax concepts.
// It is populated once at startup and read-only afterwards, so concurrent
// FindRelated calls need no locking. The build-time mutex only guards
// loading.
type RelationGraph struct {
	mu    sync.Mutex
	nodes map[string]Node
	adj   map[string][]Edge
}

// NewRelationGraph returns an empty graph. An empty graph is valid and
// returns no related entities for every seed.
func NewRelationGraph() *RelationGraph {
	return &RelationGraph{
		nodes: make(map[string]Node),
		adj:   make(map[string][]Edge),
	}
}

// AddNode registers an entity. Labels are matched case-insensitively.
func (g *RelationGraph) AddNode(node Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[normalizeLabel(node.Label)] = node
}

// AddEdge registers a directed relation. Endpoints missing from the node
// set are created implicitly so partial data still traverses.
func (g *RelationGraph) AddEdge(edge Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src := normalizeLabel(edge.Source)
	dst := normalizeLabel(edge.Target)
	if _, ok := g.nodes[src]; !ok {
		g.nodes[src] = Node{Label: edge.Source}
	}
	if _, ok := g.nodes[dst]; !ok {
		g.nodes[dst] = Node{Label: edge.Target}
	}
	g.adj[src] = append(g.adj[src], edge)
}

// NodeCount returns the number of distinct entities in the graph.
func (g *RelationGraph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// EdgeCount returns the number of directed relations in the graph.
func (g *RelationGraph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0
	for _, edges := range g.adj {
		count += len(edges)
	}
	return count
}

// FindRelated walks the graph breadth-first from seed and returns up to
// maxResults related entities, strongest relations first and shallower
// depth breaking ties. The seed itself is never part of the result, and a
// seed absent from the graph yields an empty result.
func (g *RelationGraph) FindRelated(seed string, maxDepth int, maxResults int) []Related {
	start := normalizeLabel(seed)
	if _, ok := g.nodes[start]; !ok {
		return nil
	}
	if maxDepth <= 0 || maxResults <= 0 {
		return nil
	}

	type queueItem struct {
		label string
		depth int
	}

	visited := map[string]bool{start: true}
	queue := []queueItem{{label: start, depth: 0}}
	results := make([]Related, 0, maxResults)

	for len(queue) > 0 && len(results) < maxResults {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, edge := range g.adj[current.label] {
			target := normalizeLabel(edge.Target)
			if visited[target] {
				continue
			}
			visited[target] = true

			node, ok := g.nodes[target]
			label := edge.Target
			if ok {
				label = node.Label
			}
			results = append(results, Related{
				Entity:   label,
				Relation: edge.Relation,
				Weight:   edge.Weight,
				Depth:    current.depth + 1,
			})
			if len(results) >= maxResults {
				break
			}
			queue = append(queue, queueItem{label: target, depth: current.depth + 1})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Weight != results[j].Weight {
			return results[i].Weight > results[j].Weight
		}
		return results[i].Depth < results[j].Depth
	})

	return results
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
