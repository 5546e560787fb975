// Package locator resolves free-form text (room numbers, names, loose
// descriptions) to exactly one node of a building graph.
//
// Resolution runs cheapest and most deterministic first:
//
//  1. exact match on id, name, alias or room number, then the same comparison
//     with punctuation and separators removed
//  2. case-insensitive substring of an id, name, alias or room number,
//     preferring the shortest matching string, then the same test with
//     punctuation and separators removed
//  3. containment the other way round, for queries of at least four
//     significant characters: a name, id, alias or room number found inside
//     the query ("take me to the library"), preferring the longest
//  4. an optional TextResolver given the raw query and the node names
//
// A Locator never touches session state and never falls back to a default
// node: anything it cannot resolve is reported as NotFound.
package locator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
	"wayfinder-backend/internal/graph"
)

// Strategy records which resolution step produced a match.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNormalized Strategy = "normalized"
	StrategySubstring  Strategy = "substring"
	StrategyContained  Strategy = "contained"
	StrategySemantic   Strategy = "semantic"
)

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	NodeID   string   `json:"node_id"`
	Strategy Strategy `json:"strategy"`
}

// TextResolver maps a loose query to one of the candidate names. ok is false
// when the collaborator has no confident answer.
type TextResolver interface {
	ResolveText(ctx context.Context, query string, candidates []string) (name string, ok bool, err error)
}

// minContainedQuery is the shortest normalized query the containment step
// runs for. Shorter queries would match almost any name.
const minContainedQuery = 4

// DefaultSemanticTimeout bounds a TextResolver call when none is configured.
const DefaultSemanticTimeout = 8 * time.Second

type candidate struct {
	nodeID string
	text   string
	norm   string
}

// Locator resolves queries against one graph. It is safe for concurrent use.
type Locator struct {
	graph    *graph.Graph
	resolver TextResolver
	timeout  time.Duration
	logger   *zap.Logger

	exact      map[string]string
	normalized map[string]string
	substrings []candidate
	names      []string
}

// New builds a Locator over g. resolver may be nil, in which case step 3 is
// skipped.
func New(g *graph.Graph, resolver TextResolver, timeout time.Duration, logger *zap.Logger) *Locator {
	if timeout <= 0 {
		timeout = DefaultSemanticTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Locator{
		graph:      g,
		resolver:   resolver,
		timeout:    timeout,
		logger:     logger,
		exact:      make(map[string]string),
		normalized: make(map[string]string),
	}
	l.buildIndex()
	return l
}

// buildIndex registers ids first, then names, then aliases and rooms, so a
// node's own id or name always beats another node's alias. Within a tier the
// first node in definition order wins.
func (l *Locator) buildIndex() {
	nodes := l.graph.Nodes()

	register := func(nodeID, text string) {
		if k := fold(text); k != "" {
			if _, taken := l.exact[k]; !taken {
				l.exact[k] = nodeID
			}
		}
		if k := normalize(text); k != "" {
			if _, taken := l.normalized[k]; !taken {
				l.normalized[k] = nodeID
			}
		}
	}

	for _, n := range nodes {
		register(n.ID, n.ID)
	}
	for _, n := range nodes {
		register(n.ID, n.Name)
		l.names = append(l.names, n.Name)
	}
	for _, n := range nodes {
		for _, a := range n.Aliases {
			register(n.ID, a)
		}
		for _, r := range n.Rooms {
			register(n.ID, r)
		}
	}

	for _, n := range nodes {
		texts := append([]string{n.ID, n.Name}, n.Aliases...)
		for _, t := range append(texts, n.Rooms...) {
			if k := fold(t); k != "" {
				l.substrings = append(l.substrings, candidate{nodeID: n.ID, text: k, norm: normalize(t)})
			}
		}
	}
}

// HasTextResolver reports whether semantic resolution is available.
func (l *Locator) HasTextResolver() bool {
	return l.resolver != nil
}

// Resolve maps query to a node id using every available step.
func (l *Locator) Resolve(ctx context.Context, query string) (Resolution, error) {
	if res, ok := l.resolveLocal(query); ok {
		return res, nil
	}
	if strings.TrimSpace(query) == "" || l.resolver == nil {
		return Resolution{}, shared.NewLocationNotFound(query)
	}
	return l.resolveSemantic(ctx, query)
}

// ResolveLocal maps query to a node id using only the deterministic steps.
func (l *Locator) ResolveLocal(query string) (Resolution, error) {
	if res, ok := l.resolveLocal(query); ok {
		return res, nil
	}
	return Resolution{}, shared.NewLocationNotFound(query)
}

func (l *Locator) resolveLocal(query string) (Resolution, bool) {
	q := fold(query)
	if q == "" {
		return Resolution{}, false
	}

	if id, ok := l.exact[q]; ok {
		return Resolution{NodeID: id, Strategy: StrategyExact}, true
	}
	nq := normalize(q)
	if id, ok := l.normalized[nq]; ok && nq != "" {
		return Resolution{NodeID: id, Strategy: StrategyNormalized}, true
	}

	if c, ok := l.shortest(func(c candidate) bool { return strings.Contains(c.text, q) }); ok {
		return Resolution{NodeID: c.nodeID, Strategy: StrategySubstring}, true
	}

	if nq == "" {
		return Resolution{}, false
	}
	if c, ok := l.shortest(func(c candidate) bool { return c.norm != "" && strings.Contains(c.norm, nq) }); ok {
		return Resolution{NodeID: c.nodeID, Strategy: StrategySubstring}, true
	}

	if len(nq) < minContainedQuery {
		return Resolution{}, false
	}
	best := -1
	for i, c := range l.substrings {
		if c.norm == "" || !strings.Contains(nq, c.norm) {
			continue
		}
		if best < 0 || len(c.norm) > len(l.substrings[best].norm) {
			best = i
		}
	}
	if best >= 0 {
		return Resolution{NodeID: l.substrings[best].nodeID, Strategy: StrategyContained}, true
	}

	return Resolution{}, false
}

// shortest returns the candidate with the shortest text among those match
// accepts. Ties go to definition order.
func (l *Locator) shortest(match func(candidate) bool) (candidate, bool) {
	best := -1
	for i, c := range l.substrings {
		if !match(c) {
			continue
		}
		if best < 0 || len(c.text) < len(l.substrings[best].text) {
			best = i
		}
	}
	if best < 0 {
		return candidate{}, false
	}
	return l.substrings[best], true
}

func (l *Locator) resolveSemantic(ctx context.Context, query string) (Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	name, ok, err := l.resolver.ResolveText(ctx, strings.TrimSpace(query), l.names)
	if err != nil {
		l.logger.Warn("semantic resolution failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return Resolution{}, shared.NewLocationNotFound(query)
	}
	if !ok {
		return Resolution{}, shared.NewLocationNotFound(query)
	}

	n, found := l.graph.FindByName(name)
	if !found {
		l.logger.Debug("semantic resolution returned unknown name",
			zap.String("query", query),
			zap.String("reply", name),
		)
		return Resolution{}, shared.NewLocationNotFound(query)
	}
	return Resolution{NodeID: n.ID, Strategy: StrategySemantic}, nil
}

// Destination is one selectable entry of the destination list.
type Destination struct {
	Kind     string `json:"type"`
	Value    string `json:"value"`
	Location string `json:"location"`
	NodeID   string `json:"node_id"`
	Floor    int    `json:"floor"`
}

const (
	DestinationRoom     = "room"
	DestinationLocation = "location"
)

// Destinations lists one entry per room number and one per named place
// worth walking to, in definition order. Room-type nodes without explicit
// room numbers are listed under their name.
func (l *Locator) Destinations() []Destination {
	var out []Destination
	for _, n := range l.graph.Nodes() {
		for _, r := range n.Rooms {
			out = append(out, Destination{Kind: DestinationRoom, Value: r, Location: n.Name, NodeID: n.ID, Floor: n.Floor})
		}
		switch {
		case n.Type == location.TypeRoom && len(n.Rooms) == 0:
			out = append(out, Destination{Kind: DestinationRoom, Value: n.Name, Location: n.Name, NodeID: n.ID, Floor: n.Floor})
		case n.Type != location.TypeRoom && n.Type != location.TypeJunction:
			out = append(out, Destination{Kind: DestinationLocation, Value: n.Name, Location: n.Name, NodeID: n.ID, Floor: n.Floor})
		}
	}
	return out
}
