package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"wayfinder-backend/internal/config"
	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
	apperrors "wayfinder-backend/internal/errors"
	"wayfinder-backend/internal/graph"
	"wayfinder-backend/internal/infrastructure/observability"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/pathfinding"
	"wayfinder-backend/internal/render"
	"wayfinder-backend/internal/session"
)

// NavigationService orchestrates a navigation interaction: resolve the
// user's text, route from the session anchor, render the steps and move the
// anchor. The graph is read-only; all mutable state is in the session store.
type NavigationService struct {
	graph    *graph.Graph
	locator  *locator.Locator
	sessions *session.Store
	renderer *render.Renderer
	features config.FeatureSource

	// Optional collaborators, nil when AI is not configured.
	photos       PhotoIdentifier
	instructions InstructionWriter

	metrics *observability.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// Option configures optional NavigationService dependencies.
type Option func(*NavigationService)

// WithPhotoIdentifier enables photo recovery.
func WithPhotoIdentifier(p PhotoIdentifier) Option {
	return func(s *NavigationService) { s.photos = p }
}

// WithInstructionWriter enables prose route instructions.
func WithInstructionWriter(w InstructionWriter) Option {
	return func(s *NavigationService) { s.instructions = w }
}

// WithMetrics records navigation metrics.
func WithMetrics(m *observability.Collector) Option {
	return func(s *NavigationService) { s.metrics = m }
}

// WithTracer sets the tracer used for service spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *NavigationService) { s.tracer = t }
}

// NewNavigationService creates the service.
func NewNavigationService(
	g *graph.Graph,
	loc *locator.Locator,
	sessions *session.Store,
	renderer *render.Renderer,
	features config.FeatureSource,
	logger *zap.Logger,
	opts ...Option,
) *NavigationService {
	s := &NavigationService{
		graph:    g,
		locator:  loc,
		sessions: sessions,
		renderer: renderer,
		features: features,
		tracer:   noop.NewTracerProvider().Tracer(""),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate resolves the request and returns the rendered route. On success
// the session anchor moves to the destination.
func (s *NavigationService) Navigate(ctx context.Context, req NavigateRequest) (*Route, error) {
	ctx, span := s.tracer.Start(ctx, "NavigationService.Navigate",
		trace.WithAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.Bool("request.use_ai", req.UseAI),
			attribute.Bool("request.has_start", req.Start != ""),
		),
	)
	defer span.End()

	sess, err := s.loadSession(req.SessionID)
	if err != nil {
		return nil, s.failRoute(span, "session_not_found", err)
	}

	route := &Route{}

	startID := sess.AnchorNodeID
	if req.Start != "" {
		res, err := s.resolve(ctx, req.Start, req.UseAI)
		if err != nil {
			return nil, s.failRoute(span, "start_not_found", err)
		}
		startID, route.StartMatch = res.NodeID, res.Strategy
	}

	dest, err := s.resolve(ctx, req.Destination, req.UseAI)
	if err != nil {
		return nil, s.failRoute(span, "destination_not_found", err)
	}
	route.DestMatch = dest.Strategy

	span.SetAttributes(
		attribute.String("route.start", startID),
		attribute.String("route.destination", dest.NodeID),
	)

	path, err := pathfinding.ShortestPath(s.graph, startID, dest.NodeID)
	if err != nil {
		outcome := "no_path"
		if shared.IsNotFound(err) {
			outcome = "unknown_node"
		}
		return nil, s.failRoute(span, outcome, err)
	}

	steps, err := s.renderer.Render(s.graph, path)
	if err != nil {
		return nil, s.failRoute(span, "render_failed", err)
	}

	route.Path = path
	route.Steps = steps
	route.Start, _ = s.graph.Node(startID)
	route.Destination, _ = s.graph.Node(dest.NodeID)
	route.Arrived = startID == dest.NodeID

	features := s.features.Features()
	if features.DFSComparison && !route.Arrived {
		if alt, err := pathfinding.DFSPath(s.graph, startID, dest.NodeID); err == nil {
			route.DFSPath = alt
		}
	}
	if req.UseAI && features.AIInstructions && s.instructions != nil && !route.Arrived {
		route.Instructions = s.writeInstructions(ctx, steps)
	}

	session.Advance(&sess, dest.NodeID)
	if sess, err = s.persist(sess); err != nil {
		return nil, s.failRoute(span, "session_not_found", err)
	}
	route.SessionID = sess.ID

	outcome := "found"
	if route.Arrived {
		outcome = "arrived"
	}
	if s.metrics != nil {
		s.metrics.Routes.WithLabelValues(outcome).Inc()
		s.metrics.RouteLength.Observe(float64(len(steps)))
	}
	span.SetAttributes(attribute.Int("route.steps", len(steps)))
	span.SetStatus(codes.Ok, "")

	s.logger.Info("Route computed",
		zap.String("session_id", sess.ID),
		zap.String("start", startID),
		zap.String("destination", dest.NodeID),
		zap.Int("steps", len(steps)),
		zap.Bool("arrived", route.Arrived),
	)
	return route, nil
}

// Recover re-anchors the session at the landmark the user names. Text that
// matches no node is reported as an unknown landmark and leaves the session
// unchanged.
func (s *NavigationService) Recover(ctx context.Context, req RecoverRequest) (*Recovery, error) {
	ctx, span := s.tracer.Start(ctx, "NavigationService.Recover",
		trace.WithAttributes(attribute.String("session.id", req.SessionID)),
	)
	defer span.End()

	sess, err := s.loadSession(req.SessionID)
	if err != nil {
		return nil, s.failRecovery(span, "landmark", "session_not_found", err)
	}

	res, err := s.resolve(ctx, req.Landmark, req.UseAI)
	if err != nil {
		return nil, s.failRecovery(span, "landmark", "unknown", unknownLandmark(req.Landmark, err))
	}
	return s.anchor(span, sess, res.NodeID, res.Strategy, "landmark")
}

// RecoverFromPhoto re-anchors the session at the landmark a photo shows.
func (s *NavigationService) RecoverFromPhoto(ctx context.Context, req PhotoRecoverRequest) (*Recovery, error) {
	ctx, span := s.tracer.Start(ctx, "NavigationService.RecoverFromPhoto",
		trace.WithAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.Int("photo.bytes", len(req.Image)),
			attribute.String("photo.mime_type", req.MimeType),
		),
	)
	defer span.End()

	if !s.PhotoRecoveryEnabled() {
		err := apperrors.NewError(apperrors.ErrorTypeUnavailable, apperrors.CodeAIUnavailable.String(), "photo recovery is not available").
			WithOperation("RecoverFromPhoto").
			Build()
		return nil, s.failRecovery(span, "photo", "disabled", err)
	}

	sess, err := s.loadSession(req.SessionID)
	if err != nil {
		return nil, s.failRecovery(span, "photo", "session_not_found", err)
	}

	nodeID, ok, err := s.photos.IdentifyLocation(ctx, req.Image, req.MimeType)
	if err != nil {
		s.logger.Warn("Photo identification failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil, s.failRecovery(span, "photo", "error", unknownLandmark("photo", err))
	}
	if !ok {
		return nil, s.failRecovery(span, "photo", "unknown", shared.NewUnknownLandmark("photo"))
	}
	return s.anchor(span, sess, nodeID, "photo", "photo")
}

// Search resolves a query to a node without touching any session.
func (s *NavigationService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "NavigationService.Search")
	defer span.End()

	res, err := s.resolve(ctx, req.Query, req.UseAI)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location not found")
		return nil, err
	}

	n, _ := s.graph.Node(res.NodeID)
	span.SetAttributes(attribute.String("search.node_id", n.ID))
	return &SearchResult{
		Query:    req.Query,
		NodeID:   n.ID,
		Name:     n.Name,
		Type:     n.Type,
		Floor:    n.Floor,
		Strategy: res.Strategy,
	}, nil
}

// Destinations lists the selectable destinations.
func (s *NavigationService) Destinations() []locator.Destination {
	return s.locator.Destinations()
}

// Node returns one node of the building.
func (s *NavigationService) Node(id string) (location.Node, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return location.Node{}, shared.NewNodeNotFound(id)
	}
	return n, nil
}

// CreateSession starts a session at the building entrance.
func (s *NavigationService) CreateSession() session.Session {
	sess := s.sessions.Create(s.graph.Entrance())
	s.recordSessions()
	return sess
}

// GetSession returns a live session.
func (s *NavigationService) GetSession(id string) (session.Session, error) {
	return s.sessions.Get(id)
}

// DeleteSession ends a session.
func (s *NavigationService) DeleteSession(id string) {
	s.sessions.Delete(id)
	s.recordSessions()
}

// SweepSessions drops expired sessions.
func (s *NavigationService) SweepSessions() int {
	removed := s.sessions.Sweep()
	if removed > 0 {
		s.logger.Debug("Expired sessions removed", zap.Int("removed", removed))
	}
	s.recordSessions()
	return removed
}

// RunSessionSweeper drops expired sessions every interval until ctx is done.
func (s *NavigationService) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	s.sessions.RunSweeper(ctx, interval, func(removed int) {
		if removed > 0 {
			s.logger.Debug("Expired sessions removed", zap.Int("removed", removed))
		}
		s.recordSessions()
	})
}

// PhotoRecoveryEnabled reports whether photo recovery can be served.
func (s *NavigationService) PhotoRecoveryEnabled() bool {
	return s.photos != nil && s.features.Features().PhotoRecovery
}

// Health reports the service state.
func (s *NavigationService) Health() Health {
	return Health{
		Status:         "ok",
		Building:       s.graph.Building(),
		Nodes:          s.graph.NodeCount(),
		Edges:          s.graph.EdgeCount(),
		Entrance:       s.graph.Entrance(),
		Warnings:       s.graph.Warnings(),
		AIEnabled:      s.locator.HasTextResolver() && s.features.Features().SemanticSearch,
		PhotoRecovery:  s.PhotoRecoveryEnabled(),
		ActiveSessions: s.sessions.Len(),
		CheckedAt:      time.Now().UTC(),
	}
}

// resolve runs the locator, using the semantic step only when the request
// and the feature toggles allow it.
func (s *NavigationService) resolve(ctx context.Context, query string, useAI bool) (locator.Resolution, error) {
	var (
		res locator.Resolution
		err error
	)
	if useAI && s.features.Features().SemanticSearch {
		res, err = s.locator.Resolve(ctx, query)
	} else {
		res, err = s.locator.ResolveLocal(query)
	}

	if s.metrics != nil {
		strategy := string(res.Strategy)
		if err != nil {
			strategy = "none"
		}
		s.metrics.Resolutions.WithLabelValues(strategy).Inc()
	}
	return res, err
}

// loadSession returns the stored session, or an unregistered one anchored at
// the entrance when id is empty. persist registers it, so a request that
// fails before then leaves no session behind.
func (s *NavigationService) loadSession(id string) (session.Session, error) {
	if id == "" {
		return session.Session{AnchorNodeID: s.graph.Entrance()}, nil
	}
	return s.sessions.Get(id)
}

func (s *NavigationService) persist(sess session.Session) (session.Session, error) {
	if sess.ID == "" {
		sess.ID = s.CreateSession().ID
	}
	if err := s.sessions.Save(sess); err != nil {
		return sess, err
	}
	return s.sessions.Get(sess.ID)
}

func (s *NavigationService) anchor(span trace.Span, sess session.Session, nodeID string, strategy locator.Strategy, kind string) (*Recovery, error) {
	if err := session.Recover(s.graph, &sess, nodeID); err != nil {
		return nil, s.failRecovery(span, kind, "unknown", err)
	}
	sess, err := s.persist(sess)
	if err != nil {
		return nil, s.failRecovery(span, kind, "session_not_found", err)
	}

	landmark, _ := s.graph.Node(nodeID)
	if s.metrics != nil {
		s.metrics.Recoveries.WithLabelValues(kind, "recovered").Inc()
	}
	span.SetAttributes(attribute.String("recovery.landmark", nodeID))
	span.SetStatus(codes.Ok, "")

	s.logger.Info("Session re-anchored",
		zap.String("session_id", sess.ID),
		zap.String("landmark", nodeID),
		zap.String("via", kind),
	)
	return &Recovery{Session: sess, Landmark: landmark, Strategy: strategy}, nil
}

func (s *NavigationService) writeInstructions(ctx context.Context, steps []render.Step) string {
	ctx, span := s.tracer.Start(ctx, "NavigationService.WriteInstructions")
	defer span.End()

	text, err := s.instructions.WriteInstructions(ctx, steps)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("Route instructions unavailable", zap.Error(err))
		return ""
	}
	return text
}

func (s *NavigationService) failRoute(span trace.Span, outcome string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	if s.metrics != nil {
		s.metrics.Routes.WithLabelValues(outcome).Inc()
	}
	return err
}

func (s *NavigationService) failRecovery(span trace.Span, kind, outcome string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	if s.metrics != nil {
		s.metrics.Recoveries.WithLabelValues(kind, outcome).Inc()
	}
	return err
}

func (s *NavigationService) recordSessions() {
	if s.metrics != nil {
		s.metrics.SessionsLive.Set(float64(s.sessions.Len()))
	}
}

// unknownLandmark restates a lookup failure as an unknown landmark, keeping
// the original error as the cause.
func unknownLandmark(landmark string, cause error) error {
	err := shared.NewUnknownLandmark(landmark)
	err.Cause = cause
	return err
}
