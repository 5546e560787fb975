// Package source reads building definitions from files or DynamoDB.
package source

import (
	"context"
	"fmt"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/graph"
	apperrors "wayfinder-backend/internal/errors"
)

// Source yields the definition a graph is built from.
type Source interface {
	Load(ctx context.Context) (location.Definition, error)
	Name() string
}

// LoadGraph reads the definition from src and builds the graph.
func LoadGraph(ctx context.Context, src Source) (*graph.Graph, error) {
	def, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Load(def)
}

// sourceFailed reports a definition that could not be read at all. It
// carries the same code as shared.SourceFailed load errors.
func sourceFailed(cause error, format string, args ...interface{}) error {
	return apperrors.Internal(apperrors.CodeLoadSourceFailed.String(), "graph definition unavailable").
		WithDetails(fmt.Sprintf(format, args...)).
		WithOperation("LoadDefinition").
		WithResource("graph").
		WithSeverity(apperrors.SeverityCritical).
		WithCause(cause).
		Build()
}
