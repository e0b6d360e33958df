package navflow

import (
	"errors"
	"fmt"
)

// FindPath returns the edges of a shortest (fewest-hop) path from src to
// dst within g, using breadth-first search over the adjacency lists in
// registration order. ok is false when dst cannot be reached. A path from a
// registered node to itself is empty.
//
// Paths do not descend into subgraphs: a subgraph is one hop like any other
// node. Complexity is O(V+E).
func (g *Graph) FindPath(src, dst string) ([]*Edge, bool) {
	if !g.Has(src) || !g.Has(dst) {
		return nil, false
	}
	if src == dst {
		return []*Edge{}, true
	}

	via := make(map[string]*Edge) // node -> edge used to reach it
	visited := map[string]bool{src: true}
	queue := []string{src}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range g.edges[current] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			via[e.to] = e
			if e.to == dst {
				return unwindPath(via, src, dst), true
			}
			queue = append(queue, e.to)
		}
	}

	return nil, false
}

func unwindPath(via map[string]*Edge, src, dst string) []*Edge {
	var path []*Edge
	for at := dst; at != src; {
		e := via[at]
		path = append(path, e)
		at = e.from
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// CanNavigate reports whether dst is reachable from src.
func (g *Graph) CanNavigate(src, dst string) bool {
	_, ok := g.FindPath(src, dst)
	return ok
}

// UnreachableNodes returns the IDs, in registration order, of nodes that are
// not the destination of any edge in g. Entry points are included: nothing
// in the graph leads to them.
func (g *Graph) UnreachableNodes() []string {
	targeted := make(map[string]bool)
	for _, edges := range g.edges {
		for _, e := range edges {
			targeted[e.to] = true
		}
	}

	var out []string
	for _, id := range g.order {
		if !targeted[id] {
			out = append(out, id)
		}
	}
	return out
}

// ContainsCycle reports whether g has a directed cycle.
func (g *Graph) ContainsCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns the node IDs of the first cycle found by a depth-first
// search in registration order, starting and ending with the same ID, or
// nil for an acyclic graph. Self loops count as cycles.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(id string, path []string) []string
	dfs = func(id string, path []string) []string {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, e := range g.edges[id] {
			if onStack[e.to] {
				for i, p := range path {
					if p == e.to {
						cycle := append([]string{}, path[i:]...)
						return append(cycle, e.to)
					}
				}
			}
			if !visited[e.to] {
				if cycle := dfs(e.to, path); cycle != nil {
					return cycle
				}
			}
		}

		onStack[id] = false
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if cycle := dfs(id, nil); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Validate checks g and every nested graph for configuration errors:
// edges whose endpoints are not registered, subgraphs whose entry or exit
// is missing, and subgraphs that contain their parent. All problems are
// returned joined together.
func (g *Graph) Validate() error {
	var errs []error
	seen := make(map[*Graph]bool)

	var walk func(graph *Graph, ancestors map[*Graph]bool)
	walk = func(graph *Graph, ancestors map[*Graph]bool) {
		if ancestors[graph] {
			errs = append(errs, &ConfigurationError{Op: "validate", Err: fmt.Errorf("%w: graph %s", ErrSubgraphCycle, graph.Name())})
			return
		}
		if seen[graph] {
			return
		}
		seen[graph] = true

		for _, id := range graph.order {
			for _, e := range graph.edges[id] {
				if !graph.Has(e.to) {
					errs = append(errs, &ConfigurationError{Op: "validate", EdgeID: e.ID(), Err: fmt.Errorf("%w: destination %q", ErrUnknownEndpoint, e.to)})
				}
			}
		}

		for _, sv := range graph.Subgraphs() {
			if !sv.Graph.Has(sv.EntryID) {
				errs = append(errs, &ConfigurationError{Op: "validate", NodeID: sv.ID, Err: fmt.Errorf("%w: entry %q missing", ErrInvalidSubgraph, sv.EntryID)})
			}
			if !sv.Graph.Has(sv.ExitID) {
				errs = append(errs, &ConfigurationError{Op: "validate", NodeID: sv.ID, Err: fmt.Errorf("%w: exit %q missing", ErrInvalidSubgraph, sv.ExitID)})
			}
			next := make(map[*Graph]bool, len(ancestors)+1)
			for a := range ancestors {
				next[a] = true
			}
			next[graph] = true
			walk(sv.Graph, next)
		}
	}
	walk(g, map[*Graph]bool{})

	return errors.Join(errs...)
}
