// Package services provides the application services of the navigation
// backend.
package services

import (
	"context"
	"time"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/render"
	"wayfinder-backend/internal/session"
)

// ============================================================================
// COLLABORATORS
// ============================================================================

// PhotoIdentifier recognizes which node a user photo was taken at. ok is
// false when the photo matches no reference.
type PhotoIdentifier interface {
	IdentifyLocation(ctx context.Context, image []byte, mimeType string) (nodeID string, ok bool, err error)
}

// InstructionWriter turns a rendered route into prose directions.
type InstructionWriter interface {
	WriteInstructions(ctx context.Context, steps []render.Step) (string, error)
}

// ============================================================================
// REQUEST TYPES
// ============================================================================

// NavigateRequest asks for a route. Start is optional: when empty the route
// begins at the session anchor. SessionID is optional too; without one a
// new session is created.
type NavigateRequest struct {
	SessionID   string
	Start       string
	Destination string
	UseAI       bool
}

// RecoverRequest re-anchors a session at a declared landmark.
type RecoverRequest struct {
	SessionID string
	Landmark  string
	UseAI     bool
}

// PhotoRecoverRequest re-anchors a session at the landmark a photo shows.
type PhotoRecoverRequest struct {
	SessionID string
	Image     []byte
	MimeType  string
}

// SearchRequest resolves a free-form query without routing.
type SearchRequest struct {
	Query string
	UseAI bool
}

// ============================================================================
// RESULT TYPES
// ============================================================================

// Route is a resolved, rendered route.
type Route struct {
	SessionID    string           `json:"session_id"`
	Start        location.Node    `json:"start"`
	Destination  location.Node    `json:"destination"`
	StartMatch   locator.Strategy `json:"start_match,omitempty"`
	DestMatch    locator.Strategy `json:"destination_match"`
	Path         []string         `json:"path"`
	Steps        []render.Step    `json:"steps"`
	Instructions string           `json:"instructions,omitempty"`
	Arrived      bool             `json:"arrived"`
	DFSPath      []string         `json:"dfs_path,omitempty"`
}

// Recovery is the outcome of re-anchoring a session.
type Recovery struct {
	Session  session.Session  `json:"session"`
	Landmark location.Node    `json:"landmark"`
	Strategy locator.Strategy `json:"matched_via"`
}

// SearchResult is a resolved query.
type SearchResult struct {
	Query    string            `json:"query"`
	NodeID   string            `json:"node_id"`
	Name     string            `json:"name"`
	Type     location.NodeType `json:"type"`
	Floor    int               `json:"floor"`
	Strategy locator.Strategy  `json:"matched_via"`
}

// Health summarizes the loaded building and optional collaborators.
type Health struct {
	Status         string    `json:"status"`
	Building       string    `json:"building,omitempty"`
	Nodes          int       `json:"nodes"`
	Edges          int       `json:"edges"`
	Entrance       string    `json:"entrance"`
	Warnings       []string  `json:"warnings,omitempty"`
	AIEnabled      bool      `json:"ai_enabled"`
	PhotoRecovery  bool      `json:"photo_recovery"`
	ActiveSessions int       `json:"active_sessions"`
	CheckedAt      time.Time `json:"checked_at"`
}
