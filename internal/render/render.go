// Package render turns a resolved node sequence into the ordered steps a
// presentation layer shows, one photo per step. It adds no left/right
// guidance; the only directional hints are floor changes at stairs and
// elevators, and the arrival marker on the last step.
package render

import (
	"strings"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
)

// Position is where a step sits in the route.
type Position string

const (
	PositionFirst  Position = "first"
	PositionMiddle Position = "middle"
	PositionLast   Position = "last"
	PositionOnly   Position = "only"
)

// Direction is the vertical direction of a floor transition.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLevel Direction = "level"
)

// Transition describes a stairs or elevator step.
type Transition struct {
	Kind      location.NodeType `json:"kind"`
	FromFloor int               `json:"from_floor"`
	ToFloor   int               `json:"to_floor"`
	Direction Direction         `json:"direction"`
}

// Arrival marks the destination step.
type Arrival struct {
	Name  string `json:"name"`
	Floor int    `json:"floor"`
}

// Step is one rendered unit of a route.
type Step struct {
	Index       int               `json:"index"`
	NodeID      string            `json:"node_id"`
	Name        string            `json:"name"`
	Type        location.NodeType `json:"type"`
	PhotoRef    string            `json:"photo_ref,omitempty"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Floor       int               `json:"floor"`
	Description string            `json:"description,omitempty"`
	Position    Position          `json:"position"`
	Transition  *Transition       `json:"transition,omitempty"`
	Arrival     *Arrival          `json:"arrival,omitempty"`
}

// NodeLookup is the slice of the graph rendering needs.
type NodeLookup interface {
	Node(id string) (location.Node, bool)
}

// Renderer renders routes, resolving photo references against an optional
// base URL.
type Renderer struct {
	photoBaseURL string
}

// New creates a Renderer. An empty base leaves photo references unchanged.
func New(photoBaseURL string) *Renderer {
	return &Renderer{photoBaseURL: photoBaseURL}
}

// Render renders path with no photo base URL.
func Render(g NodeLookup, path []string) ([]Step, error) {
	return New("").Render(g, path)
}

// Render converts path to steps. Every id must exist in g.
func (r *Renderer) Render(g NodeLookup, path []string) ([]Step, error) {
	nodes := make([]location.Node, len(path))
	for i, id := range path {
		n, ok := g.Node(id)
		if !ok {
			return nil, shared.NewNodeNotFound(id)
		}
		nodes[i] = n
	}

	steps := make([]Step, len(nodes))
	for i, n := range nodes {
		step := Step{
			Index:       i,
			NodeID:      n.ID,
			Name:        n.Name,
			Type:        n.Type,
			PhotoRef:    n.PhotoRef,
			PhotoURL:    r.PhotoURL(n.PhotoRef),
			Floor:       n.Floor,
			Description: n.Description,
			Position:    positionOf(i, len(nodes)),
		}

		// The floor change is measured across the transition node, from the
		// step before it to the step after it.
		if n.Type.IsTransition() {
			from, to := n.Floor, n.Floor
			if i > 0 {
				from = nodes[i-1].Floor
			}
			if i+1 < len(nodes) {
				to = nodes[i+1].Floor
			}
			step.Transition = &Transition{
				Kind:      n.Type,
				FromFloor: from,
				ToFloor:   to,
				Direction: directionOf(from, to),
			}
		}
		if i == len(nodes)-1 {
			step.Arrival = &Arrival{Name: n.Name, Floor: n.Floor}
		}

		steps[i] = step
	}
	return steps, nil
}

// PhotoURL joins ref onto the configured base.
func (r *Renderer) PhotoURL(ref string) string {
	if ref == "" || r.photoBaseURL == "" {
		return ref
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(r.photoBaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// NodeIDs reads the node order back out of steps.
func NodeIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.NodeID
	}
	return ids
}

// Names reads the display names back out of steps.
func Names(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

func positionOf(i, n int) Position {
	switch {
	case n == 1:
		return PositionOnly
	case i == 0:
		return PositionFirst
	case i == n-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

func directionOf(from, to int) Direction {
	switch {
	case to > from:
		return DirectionUp
	case to < from:
		return DirectionDown
	default:
		return DirectionLevel
	}
}
