// Package location defines the building data model: nodes, edges and the
// definition document a graph is loaded from.
package location

import "strings"

// NodeType tags what kind of place a node is.
type NodeType string

const (
	TypeRoom     NodeType = "room"
	TypeLandmark NodeType = "landmark"
	TypeJunction NodeType = "junction"
	TypeStairs   NodeType = "stairs"
	TypeElevator NodeType = "elevator"
	TypeEntrance NodeType = "entrance"
)

// typeAliases maps the looser vocabulary found in hand-authored building
// files onto the canonical types.
var typeAliases = map[string]NodeType{
	"":         TypeJunction,
	"hallway":  TypeJunction,
	"corridor": TypeJunction,
	"pathway":  TypeJunction,
	"hall":     TypeJunction,
	"stair":    TypeStairs,
	"lift":     TypeElevator,
	"entry":    TypeEntrance,
	"door":     TypeEntrance,
}

// ParseNodeType canonicalizes a raw type tag. The second result is false when
// the tag is not recognised.
func ParseNodeType(raw string) (NodeType, bool) {
	t := NodeType(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t, true
	}
	if alias, ok := typeAliases[string(t)]; ok {
		return alias, true
	}
	return t, false
}

// Valid reports whether t is one of the canonical types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeRoom, TypeLandmark, TypeJunction, TypeStairs, TypeElevator, TypeEntrance:
		return true
	}
	return false
}

// IsTransition reports whether moving through a node of this type changes floor.
func (t NodeType) IsTransition() bool {
	return t == TypeStairs || t == TypeElevator
}

// DefaultFloor is assumed for nodes that do not declare one.
const DefaultFloor = 1

// Node is a navigable location in the building.
type Node struct {
	ID          string   `json:"id" yaml:"id" dynamodbav:"id"`
	Name        string   `json:"name" yaml:"name" dynamodbav:"name"`
	Type        NodeType `json:"type" yaml:"type" dynamodbav:"type"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty" dynamodbav:"aliases,omitempty"`
	Rooms       []string `json:"rooms,omitempty" yaml:"rooms,omitempty" dynamodbav:"rooms,omitempty"`
	PhotoRef    string   `json:"photo,omitempty" yaml:"photo,omitempty" dynamodbav:"photo,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" dynamodbav:"description,omitempty"`
	Floor       int      `json:"floor,omitempty" yaml:"floor,omitempty" dynamodbav:"floor,omitempty"`
	ConnectsTo  []string `json:"connects_to,omitempty" yaml:"connects_to,omitempty" dynamodbav:"connects_to,omitempty"`
}

// Edge is an undirected walkable connection. Weight is carried for future
// use; routing treats every edge as one hop.
type Edge struct {
	From   string  `json:"from" yaml:"from" dynamodbav:"from"`
	To     string  `json:"to" yaml:"to" dynamodbav:"to"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty" dynamodbav:"weight,omitempty"`
}

// Cost returns the edge weight, defaulting to 1.
func (e Edge) Cost() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// Definition is the document a building graph is built from. Edges may be
// listed at the top level, per node via ConnectsTo, or both.
type Definition struct {
	Building string `json:"building,omitempty" yaml:"building,omitempty"`
	Entrance string `json:"start_node,omitempty" yaml:"start_node,omitempty"`
	Nodes    []Node `json:"nodes" yaml:"nodes"`
	Edges    []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}
