// Package graph holds the immutable building graph. A Graph is built once by
// Load and never mutated afterwards, so it can be shared by any number of
// concurrent readers without locking.
package graph

import (
	"strings"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
)

type edgeKey struct{ a, b string }

func newEdgeKey(x, y string) edgeKey {
	if x > y {
		x, y = y, x
	}
	return edgeKey{a: x, b: y}
}

// Graph is the validated location graph of one building.
type Graph struct {
	building  string
	nodes     map[string]location.Node
	order     []string
	byName    map[string]string
	adjacency map[string][]string
	edges     map[edgeKey]struct{}
	entrance    string
	unreachable []string
	warnings    []string
}

// Load validates def and builds a Graph from it. Any validation failure aborts
// the load and returns a nil graph.
func Load(def location.Definition) (*Graph, error) {
	g := &Graph{
		building:  def.Building,
		nodes:     make(map[string]location.Node, len(def.Nodes)),
		order:     make([]string, 0, len(def.Nodes)),
		byName:    make(map[string]string, len(def.Nodes)),
		adjacency: make(map[string][]string, len(def.Nodes)),
		edges:     make(map[edgeKey]struct{}),
	}

	for i, raw := range def.Nodes {
		n, err := normalizeNode(i, raw)
		if err != nil {
			return nil, err
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, shared.NewLoadError(shared.DuplicateNode, "node id %q declared more than once", n.ID)
		}
		key := nameKey(n.Name)
		if other, exists := g.byName[key]; exists {
			return nil, shared.NewLoadError(shared.DuplicateName, "nodes %q and %q share the name %q", other, n.ID, n.Name)
		}
		g.nodes[n.ID] = n
		g.byName[key] = n.ID
		g.order = append(g.order, n.ID)
		g.adjacency[n.ID] = nil
	}

	for _, e := range def.Edges {
		if err := g.addEdge(strings.TrimSpace(e.From), strings.TrimSpace(e.To)); err != nil {
			return nil, err
		}
	}
	for _, id := range g.order {
		for _, to := range g.nodes[id].ConnectsTo {
			if err := g.addEdge(id, strings.TrimSpace(to)); err != nil {
				return nil, err
			}
		}
	}

	entrance, err := g.resolveEntrance(strings.TrimSpace(def.Entrance))
	if err != nil {
		return nil, err
	}
	g.entrance = entrance
	g.unreachable = g.unreachableFrom(entrance)
	for _, id := range g.unreachable {
		g.warnings = append(g.warnings, "node "+id+" is unreachable from entrance "+entrance)
	}

	return g, nil
}

func normalizeNode(index int, n location.Node) (location.Node, error) {
	n.ID = strings.TrimSpace(n.ID)
	n.Name = strings.TrimSpace(n.Name)
	if n.ID == "" {
		return n, shared.NewLoadError(shared.InvalidNode, "node at index %d has an empty id", index)
	}
	if n.Name == "" {
		return n, shared.NewLoadError(shared.InvalidNode, "node %q has an empty name", n.ID)
	}
	t, ok := location.ParseNodeType(string(n.Type))
	if !ok {
		return n, shared.NewLoadError(shared.InvalidNode, "node %q has unknown type %q", n.ID, n.Type)
	}
	n.Type = t
	if n.Floor == 0 {
		n.Floor = location.DefaultFloor
	}
	n.Aliases = cloneStrings(n.Aliases)
	n.Rooms = cloneStrings(n.Rooms)
	n.ConnectsTo = cloneStrings(n.ConnectsTo)
	return n, nil
}

// addEdge records a symmetric edge. Re-adding an existing pair is a no-op.
func (g *Graph) addEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return shared.NewLoadError(shared.DanglingEdge, "edge %q-%q references unknown node %q", from, to, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return shared.NewLoadError(shared.DanglingEdge, "edge %q-%q references unknown node %q", from, to, to)
	}
	if from == to {
		return shared.NewLoadError(shared.SelfLoop, "node %q is connected to itself", from)
	}

	key := newEdgeKey(from, to)
	if _, exists := g.edges[key]; exists {
		return nil
	}
	g.edges[key] = struct{}{}
	g.adjacency[from] = append(g.adjacency[from], to)
	g.adjacency[to] = append(g.adjacency[to], from)
	return nil
}

func (g *Graph) resolveEntrance(explicit string) (string, error) {
	if explicit != "" {
		if _, ok := g.nodes[explicit]; !ok {
			return "", shared.NewLoadError(shared.NoEntrance, "declared entrance %q is not a node", explicit)
		}
		return explicit, nil
	}
	for _, id := range g.order {
		if g.nodes[id].Type == location.TypeEntrance {
			return id, nil
		}
	}
	return "", shared.NewLoadError(shared.NoEntrance, "no entrance declared and no node has type %q", location.TypeEntrance)
}

// unreachableFrom lists every node that cannot be reached from start.
func (g *Graph) unreachableFrom(start string) []string {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.adjacency[current] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var ids []string
	for _, id := range g.order {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Building returns the optional building label of the definition.
func (g *Graph) Building() string { return g.building }

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (location.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return location.Node{}, false
	}
	return copyNode(n), true
}

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// FindByName looks a node up by its display name, ignoring case and
// surrounding whitespace.
func (g *Graph) FindByName(name string) (location.Node, bool) {
	id, ok := g.byName[nameKey(name)]
	if !ok {
		return location.Node{}, false
	}
	return g.Node(id)
}

// Nodes returns every node in definition order.
func (g *Graph) Nodes() []location.Node {
	out := make([]location.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, copyNode(g.nodes[id]))
	}
	return out
}

// Neighbors returns the neighbor ids of id in first-seen order. The returned
// slice is shared with the graph and must not be modified.
func (g *Graph) Neighbors(id string) []string {
	adj := g.adjacency[id]
	return adj[:len(adj):len(adj)]
}

// Connected reports whether an edge joins a and b.
func (g *Graph) Connected(a, b string) bool {
	_, ok := g.edges[newEdgeKey(a, b)]
	return ok
}

// Entrance returns the id of the default entrance.
func (g *Graph) Entrance() string { return g.entrance }

// Unreachable lists, in definition order, the nodes that cannot be reached
// from the default entrance.
func (g *Graph) Unreachable() []string { return cloneStrings(g.unreachable) }

// Warnings lists non-fatal data problems found during load.
func (g *Graph) Warnings() []string { return cloneStrings(g.warnings) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func copyNode(n location.Node) location.Node {
	n.Aliases = cloneStrings(n.Aliases)
	n.Rooms = cloneStrings(n.Rooms)
	n.ConnectsTo = cloneStrings(n.ConnectsTo)
	return n
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
