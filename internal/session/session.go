// Package session tracks where a navigating user is considered to be standing.
// A Session is a plain value passed explicitly into every call; there is no
// process-wide "current" session.
package session

import (
	"time"

	"wayfinder-backend/internal/domain/shared"
)

// Session is the per-interaction navigation state.
type Session struct {
	ID           string    `json:"id"`
	AnchorNodeID string    `json:"anchor_node_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NodeChecker is the slice of the graph recovery needs.
type NodeChecker interface {
	HasNode(id string) bool
}

// New returns a session anchored at entrance.
func New(id, entrance string, now time.Time) Session {
	return Session{
		ID:           id,
		AnchorNodeID: entrance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Advance moves the anchor to targetID after a successful route.
func Advance(s *Session, targetID string) {
	s.AnchorNodeID = targetID
	s.UpdatedAt = time.Now()
}

// Recover force-sets the anchor to landmarkID without consulting any path.
// The anchor is left untouched when landmarkID is not a node.
func Recover(g NodeChecker, s *Session, landmarkID string) error {
	if !g.HasNode(landmarkID) {
		return shared.NewUnknownLandmark(landmarkID)
	}
	s.AnchorNodeID = landmarkID
	s.UpdatedAt = time.Now()
	return nil
}
