package dto

import (
	"time"

	"wayfinder-backend/internal/application/services"
	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/render"
	"wayfinder-backend/internal/session"
)

// PlaceResponse is the short form of a node.
type PlaceResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Floor int    `json:"floor"`
	Photo string `json:"photo,omitempty"`
}

// NewPlaceResponse converts a node.
func NewPlaceResponse(n location.Node) PlaceResponse {
	return PlaceResponse{ID: n.ID, Name: n.Name, Type: string(n.Type), Floor: n.Floor, Photo: n.PhotoRef}
}

// RouteResponse is the body of a successful navigation. Photos lists one
// photo per step, in walking order.
type RouteResponse struct {
	SessionID        string        `json:"session_id"`
	Start            PlaceResponse `json:"start"`
	Destination      PlaceResponse `json:"destination"`
	StartMatch       string        `json:"start_matched_via,omitempty"`
	DestinationMatch string        `json:"destination_matched_via"`
	Path             []string      `json:"path"`
	Steps            []render.Step `json:"steps"`
	Photos           []string      `json:"photos"`
	Instructions     string        `json:"ai_instructions,omitempty"`
	Arrived          bool          `json:"arrived"`
	DFSPath          []string      `json:"dfs_path,omitempty"`
}

// NewRouteResponse flattens a route for the client.
func NewRouteResponse(r *services.Route) RouteResponse {
	photos := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		photos[i] = s.PhotoURL
	}
	return RouteResponse{
		SessionID:        r.SessionID,
		Start:            NewPlaceResponse(r.Start),
		Destination:      NewPlaceResponse(r.Destination),
		StartMatch:       string(r.StartMatch),
		DestinationMatch: string(r.DestMatch),
		Path:             r.Path,
		Steps:            r.Steps,
		Photos:           photos,
		Instructions:     r.Instructions,
		Arrived:          r.Arrived,
		DFSPath:          r.DFSPath,
	}
}

// RecoveryResponse is the body of a successful recovery.
type RecoveryResponse struct {
	SessionID string        `json:"session_id"`
	NewStart  PlaceResponse `json:"new_start"`
	MatchedBy string        `json:"matched_via"`
	Message   string        `json:"message"`
}

// NewRecoveryResponse converts a recovery.
func NewRecoveryResponse(r *services.Recovery) RecoveryResponse {
	return RecoveryResponse{
		SessionID: r.Session.ID,
		NewStart:  NewPlaceResponse(r.Landmark),
		MatchedBy: string(r.Strategy),
		Message:   "Navigation will continue from " + r.Landmark.Name,
	}
}

// DestinationsResponse is the body of GET /api/destinations.
type DestinationsResponse struct {
	Destinations []locator.Destination `json:"destinations"`
	Count        int                   `json:"count"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	ID        string    `json:"id"`
	Anchor    string    `json:"anchor_node_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionResponse converts a session.
func NewSessionResponse(s session.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Anchor:    s.AnchorNodeID,
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}
