// Package pathfinding computes routes over a building graph. ShortestPath is
// the production strategy; DFSPath is kept as an alternative traversal for
// comparison and is not guaranteed to be shortest.
package pathfinding

import (
	"wayfinder-backend/internal/domain/shared"
)

// Topology is the read-only view of a graph the resolvers need.
type Topology interface {
	HasNode(id string) bool
	Neighbors(id string) []string
}

// Strategy names a traversal algorithm.
type Strategy string

const (
	StrategyBFS Strategy = "bfs"
	StrategyDFS Strategy = "dfs"
)

// Find dispatches to the resolver for strategy. Unknown strategies use BFS.
func Find(g Topology, strategy Strategy, start, goal string) ([]string, error) {
	if strategy == StrategyDFS {
		return DFSPath(g, start, goal)
	}
	return ShortestPath(g, start, goal)
}

// ShortestPath returns a minimum-hop node sequence from start to goal,
// expanding neighbors in stored adjacency order.
func ShortestPath(g Topology, start, goal string) ([]string, error) {
	if err := checkEndpoints(g, start, goal); err != nil {
		return nil, err
	}
	if start == goal {
		return []string{start}, nil
	}

	visited := map[string]bool{start: true}
	parent := make(map[string]string)
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == goal {
			return reconstructPath(start, goal, parent), nil
		}

		for _, next := range g.Neighbors(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			queue = append(queue, next)
		}
	}

	return nil, shared.NewNoPath(start, goal)
}

// DFSPath returns some node sequence from start to goal found by an explicit
// stack depth-first search.
func DFSPath(g Topology, start, goal string) ([]string, error) {
	if err := checkEndpoints(g, start, goal); err != nil {
		return nil, err
	}
	if start == goal {
		return []string{start}, nil
	}

	visited := make(map[string]bool)
	parent := make(map[string]string)
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		if current == goal {
			return reconstructPath(start, goal, parent), nil
		}

		// Push in reverse so the first neighbor is explored first.
		neighbors := g.Neighbors(current)
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i]
			if visited[next] {
				continue
			}
			parent[next] = current
			stack = append(stack, next)
		}
	}

	return nil, shared.NewNoPath(start, goal)
}

// Distance returns the hop count of the shortest path between start and goal.
func Distance(g Topology, start, goal string) (int, error) {
	path, err := ShortestPath(g, start, goal)
	if err != nil {
		return 0, err
	}
	return len(path) - 1, nil
}

// Components groups the given node ids into connected components, in the
// order the ids are supplied.
func Components(g Topology, ids []string) [][]string {
	visited := make(map[string]bool, len(ids))
	var clusters [][]string

	for _, id := range ids {
		if visited[id] {
			continue
		}
		var cluster []string
		visited[id] = true
		queue := []string{id}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			cluster = append(cluster, current)
			for _, next := range g.Neighbors(current) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters
}

func checkEndpoints(g Topology, start, goal string) error {
	if !g.HasNode(start) {
		return shared.NewNodeNotFound(start)
	}
	if !g.HasNode(goal) {
		return shared.NewNodeNotFound(goal)
	}
	return nil
}

// reconstructPath walks predecessors back from goal, then reverses.
func reconstructPath(start, goal string, parent map[string]string) []string {
	path := []string{goal}
	for current := goal; current != start; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
