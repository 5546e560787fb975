// Package shared provides navigation error definitions using the unified error system.
package shared

import (
	"errors"
	"fmt"

	apperrors "wayfinder-backend/internal/errors"
)

// LoadErrorKind names the reason a graph definition was rejected.
type LoadErrorKind string

const (
	DanglingEdge  LoadErrorKind = "DanglingEdge"
	DuplicateNode LoadErrorKind = "DuplicateNode"
	NoEntrance    LoadErrorKind = "NoEntrance"
	DuplicateName LoadErrorKind = "DuplicateName"
	SelfLoop      LoadErrorKind = "SelfLoop"
	InvalidNode   LoadErrorKind = "InvalidNode"
	SourceFailed  LoadErrorKind = "SourceFailed"
)

var loadCodes = map[LoadErrorKind]apperrors.ErrorCode{
	DanglingEdge:  apperrors.CodeLoadDanglingEdge,
	DuplicateNode: apperrors.CodeLoadDuplicateNode,
	NoEntrance:    apperrors.CodeLoadNoEntrance,
	DuplicateName: apperrors.CodeLoadDuplicateName,
	SelfLoop:      apperrors.CodeLoadSelfLoop,
	InvalidNode:   apperrors.CodeLoadInvalidNode,
	SourceFailed:  apperrors.CodeLoadSourceFailed,
}

// Sentinels for errors.Is matching. Matching is by code, so the detailed
// errors returned by the constructors below compare equal to these.
var (
	ErrLocationNotFound = apperrors.NotFound(apperrors.CodeLocationNotFound.String(), "location not found").
				WithResource("location").
				Build()
	ErrNoPath = apperrors.Domain(apperrors.CodeNoPath.String(), "no route available").
			WithResource("route").
			Build()
	ErrUnknownLandmark = apperrors.NotFound(apperrors.CodeUnknownLandmark.String(), "unknown landmark").
				WithResource("landmark").
				Build()
	ErrSessionNotFound = apperrors.NotFound(apperrors.CodeSessionNotFound.String(), "session not found").
				WithResource("session").
				Build()
)

// NewLoadError reports a graph definition that failed validation.
func NewLoadError(kind LoadErrorKind, format string, args ...interface{}) *apperrors.UnifiedError {
	code, ok := loadCodes[kind]
	if !ok {
		code = apperrors.CodeLoadInvalidNode
	}
	return apperrors.Internal(code.String(), "graph definition rejected").
		WithDetails(fmt.Sprintf(format, args...)).
		WithOperation("LoadGraph").
		WithResource("graph").
		WithSeverity(apperrors.SeverityCritical).
		Build()
}

// NewLocationNotFound reports a query that resolved to no node.
func NewLocationNotFound(query string) *apperrors.UnifiedError {
	return apperrors.NotFound(apperrors.CodeLocationNotFound.String(), "location not found").
		WithDetails(fmt.Sprintf("no location matches %q", query)).
		WithResource("location").
		Build()
}

// NewNodeNotFound reports an id that is not part of the graph.
func NewNodeNotFound(id string) *apperrors.UnifiedError {
	return apperrors.NotFound(apperrors.CodeLocationNotFound.String(), "location not found").
		WithDetails(fmt.Sprintf("no node with id %q", id)).
		WithResource("node").
		Build()
}

// NewNoPath reports a goal unreachable from the start.
func NewNoPath(start, goal string) *apperrors.UnifiedError {
	return apperrors.Domain(apperrors.CodeNoPath.String(), "no route available").
		WithDetails(fmt.Sprintf("%q is not reachable from %q", goal, start)).
		WithResource("route").
		Build()
}

// NewUnknownLandmark reports a recovery target that is not a node.
func NewUnknownLandmark(landmark string) *apperrors.UnifiedError {
	return apperrors.NotFound(apperrors.CodeUnknownLandmark.String(), "unknown landmark").
		WithDetails(fmt.Sprintf("no node matches landmark %q", landmark)).
		WithResource("landmark").
		Build()
}

// NewSessionNotFound reports an unknown or expired session id.
func NewSessionNotFound(id string) *apperrors.UnifiedError {
	return apperrors.NotFound(apperrors.CodeSessionNotFound.String(), "session not found").
		WithDetails(fmt.Sprintf("session %q does not exist or has expired", id)).
		WithResource("session").
		Build()
}

// IsLoadError reports whether err is a load error of the given kind.
func IsLoadError(err error, kind LoadErrorKind) bool {
	code, ok := loadCodes[kind]
	return ok && apperrors.HasCode(err, code)
}

// IsAnyLoadError reports whether err is a load error of any kind.
func IsAnyLoadError(err error) bool {
	for kind := range loadCodes {
		if IsLoadError(err, kind) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means a query resolved to no node.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound)
}

// IsNoPath reports whether err means the goal was unreachable.
func IsNoPath(err error) bool {
	return errors.Is(err, ErrNoPath)
}

// IsUnknownLandmark reports whether err means a recovery target was not found.
func IsUnknownLandmark(err error) bool {
	return errors.Is(err, ErrUnknownLandmark)
}

// IsSessionNotFound reports whether err means the session id is unknown.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
