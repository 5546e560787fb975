// Package graphtest provides building definitions and builders for tests.
package graphtest

import (
	"testing"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/graph"
)

// DefinitionBuilder helps create test building definitions.
type DefinitionBuilder struct {
	def location.Definition
}

func NewDefinitionBuilder() *DefinitionBuilder {
	return &DefinitionBuilder{}
}

// WithEntrance sets the explicit default entrance id.
func (b *DefinitionBuilder) WithEntrance(id string) *DefinitionBuilder {
	b.def.Entrance = id
	return b
}

// WithNode appends a node with the given id, name and type.
func (b *DefinitionBuilder) WithNode(id, name string, t location.NodeType, aliases ...string) *DefinitionBuilder {
	b.def.Nodes = append(b.def.Nodes, location.Node{
		ID:       id,
		Name:     name,
		Type:     t,
		Aliases:  aliases,
		PhotoRef: id + ".jpg",
	})
	return b
}

// WithFullNode appends a node as given.
func (b *DefinitionBuilder) WithFullNode(n location.Node) *DefinitionBuilder {
	b.def.Nodes = append(b.def.Nodes, n)
	return b
}

// WithEdge appends an undirected edge.
func (b *DefinitionBuilder) WithEdge(from, to string) *DefinitionBuilder {
	b.def.Edges = append(b.def.Edges, location.Edge{From: from, To: to})
	return b
}

// Build returns the definition.
func (b *DefinitionBuilder) Build() location.Definition {
	return b.def
}

// Scenario is the four-node reference building: an entrance leading to a
// hall that opens onto a library and room 101.
func Scenario() location.Definition {
	return NewDefinitionBuilder().
		WithNode("entrance", "Entrance", location.TypeEntrance, "main door").
		WithNode("hall", "Hall", location.TypeJunction).
		WithNode("library", "Library", location.TypeLandmark, "books").
		WithNode("room101", "Room101", location.TypeRoom, "101").
		WithEdge("entrance", "hall").
		WithEdge("hall", "library").
		WithEdge("hall", "room101").
		Build()
}

// Campus is a two-floor building joined by stairs and an elevator, with
// edges declared per node the way hand-authored files usually do.
func Campus() location.Definition {
	return location.Definition{
		Building: "Science Hall",
		Entrance: "front_entrance",
		Nodes: []location.Node{
			{ID: "front_entrance", Name: "Front Entrance", Type: location.TypeEntrance, PhotoRef: "front.jpg", Floor: 1, ConnectsTo: []string{"lobby"}},
			{ID: "lobby", Name: "Main Lobby", Type: location.TypeLandmark, PhotoRef: "lobby.jpg", Floor: 1, ConnectsTo: []string{"hallway_a", "stairs_east", "elevator"}},
			{ID: "hallway_a", Name: "Hallway A", Type: "hallway", PhotoRef: "hall_a.jpg", Floor: 1, Rooms: []string{"101", "102", "103"}, ConnectsTo: []string{"cafeteria"}},
			{ID: "cafeteria", Name: "Cafeteria", Type: location.TypeLandmark, PhotoRef: "cafe.jpg", Floor: 1, Aliases: []string{"food court"}},
			{ID: "stairs_east", Name: "East Stairs", Type: location.TypeStairs, PhotoRef: "stairs.jpg", Floor: 1, ConnectsTo: []string{"hallway_b"}},
			{ID: "elevator", Name: "Elevator", Type: location.TypeElevator, PhotoRef: "elevator.jpg", Floor: 1, ConnectsTo: []string{"hallway_b"}},
			{ID: "hallway_b", Name: "Hallway B", Type: location.TypeJunction, PhotoRef: "hall_b.jpg", Floor: 2, Rooms: []string{"201", "202"}, ConnectsTo: []string{"st_larrys"}},
			{ID: "st_larrys", Name: "St. Larry's Pub", Type: location.TypeLandmark, PhotoRef: "pub.jpg", Floor: 2},
		},
	}
}

// MustLoad loads def and fails the test on error.
func MustLoad(t testing.TB, def location.Definition) *graph.Graph {
	t.Helper()
	g, err := graph.Load(def)
	if err != nil {
		t.Fatalf("load graph: %v", err)
	}
	return g
}
