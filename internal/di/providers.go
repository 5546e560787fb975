package di

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wayfinder-backend/internal/application/services"
	"wayfinder-backend/internal/config"
	"wayfinder-backend/internal/graph"
	"wayfinder-backend/internal/graph/source"
	"wayfinder-backend/internal/infrastructure/ai"
	"wayfinder-backend/internal/infrastructure/observability"
	"wayfinder-backend/internal/infrastructure/photos"
	"wayfinder-backend/internal/interfaces/http/handlers"
	"wayfinder-backend/internal/interfaces/http/router"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/middleware"
	"wayfinder-backend/internal/render"
	"wayfinder-backend/internal/session"
)

// Version is reported in traces.
var Version = "dev"

// ============================================================================
// CONFIGURATION PROVIDERS
// ============================================================================

// ProvideLogger creates a JSON logger in production and a console logger
// elsewhere, at the configured level.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// provideFeatures hot reloads the feature toggles when the config directory
// exists. Every effective reload is published on the feature gauge.
func provideFeatures(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (config.FeatureSource, func(), error) {
	metrics.SetFeatures(cfg.Features)

	dir := config.ConfigDir()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Info("Config directory not found, feature toggles are static", zap.String("dir", dir))
		return config.StaticFeatures(cfg.Features), func() {}, nil
	}

	w, err := config.NewFeatureWatcher(dir, cfg.Environment, cfg.Features, logger)
	if err != nil {
		logger.Warn("Feature hot reloading unavailable", zap.Error(err))
		return config.StaticFeatures(cfg.Features), func() {}, nil
	}
	w.OnChange(metrics.SetFeatures)
	return w, w.Stop, nil
}

// ============================================================================
// OBSERVABILITY PROVIDERS
// ============================================================================

func provideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Environment, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ============================================================================
// GRAPH PROVIDERS
// ============================================================================

// ProvideGraphSource selects the file or DynamoDB source.
func ProvideGraphSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Source, error) {
	switch cfg.Graph.Source {
	case config.SourceDynamoDB:
		client, err := NewDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return source.NewDynamoDB(client, cfg.Graph.Table, cfg.Graph.Building, logger), nil
	default:
		return source.NewFile(cfg.Graph.Path), nil
	}
}

// NewDynamoDBClient creates a DynamoDB client for the configured region.
// A configured endpoint points the client at a local DynamoDB.
func NewDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsDynamodb.Client, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx, awsConfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsDynamodb.NewFromConfig(awsCfg, func(o *awsDynamodb.Options) {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
		o.RetryMaxAttempts = 3
		o.RetryMode = aws.RetryModeAdaptive
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	}), nil
}

// provideGraph loads and validates the building, logging every warning.
func provideGraph(ctx context.Context, src source.Source, metrics *observability.Collector, logger *zap.Logger) (*graph.Graph, error) {
	start := time.Now()
	g, err := source.LoadGraph(ctx, src)
	if metrics != nil {
		metrics.SourceDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	for _, w := range g.Warnings() {
		logger.Warn("Graph warning", zap.String("warning", w))
	}
	if metrics != nil {
		metrics.GraphNodes.Set(float64(g.NodeCount()))
		metrics.GraphEdges.Set(float64(g.EdgeCount()))
	}
	logger.Info("Building loaded",
		zap.String("source", src.Name()),
		zap.String("building", g.Building()),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("duration", time.Since(start)),
	)
	return g, nil
}

// ============================================================================
// AI PROVIDERS
// ============================================================================

// provideAIClient returns nil when no API key is configured.
func provideAIClient(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *ai.Client {
	if !cfg.AI.Enabled() {
		logger.Info("AI features disabled, no API key configured")
		return nil
	}
	breaker := ai.NewBreaker("openai", cfg.AI.CircuitBreaker, metrics, logger)
	return ai.NewClient(ai.NewOpenAIClient(cfg.AI), cfg.AI, breaker, metrics, logger)
}

func provideTextResolver(client *ai.Client) locator.TextResolver {
	if client == nil {
		return nil
	}
	return ai.NewTextResolver(client)
}

func providePhotoStore(cfg *config.Config, logger *zap.Logger) *photos.Store {
	return photos.NewStore(cfg.Graph.PhotoDir, logger)
}

// ============================================================================
// APPLICATION PROVIDERS
// ============================================================================

func provideLocator(g *graph.Graph, resolver locator.TextResolver, cfg *config.Config, logger *zap.Logger) *locator.Locator {
	return locator.New(g, resolver, cfg.AI.Timeout, logger)
}

func provideSessionStore(cfg *config.Config) *session.Store {
	return session.NewStore(cfg.Session.TTL)
}

func provideRenderer(cfg *config.Config) *render.Renderer {
	return render.New(cfg.Graph.PhotoBaseURL)
}

func provideNavigationService(
	cfg *config.Config,
	g *graph.Graph,
	loc *locator.Locator,
	sessions *session.Store,
	renderer *render.Renderer,
	features config.FeatureSource,
	client *ai.Client,
	store *photos.Store,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) *services.NavigationService {
	opts := []services.Option{services.WithTracer(tp.Tracer())}
	if metrics != nil {
		opts = append(opts, services.WithMetrics(metrics))
	}
	if client != nil {
		refs := photos.NewReferenceSet(store, g.Nodes(), cfg.AI.MaxReferencePhotos)
		opts = append(opts,
			services.WithPhotoIdentifier(ai.NewPhotoIdentifier(client, refs)),
			services.WithInstructionWriter(ai.NewInstructionWriter(client)),
		)
	}
	return services.NewNavigationService(g, loc, sessions, renderer, features, logger, opts...)
}

// ============================================================================
// INTERFACE PROVIDERS
// ============================================================================

func provideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 10*time.Minute)
}

func provideNavigationHandler(svc *services.NavigationService, cfg *config.Config, logger *zap.Logger) *handlers.NavigationHandler {
	return handlers.NewNavigationHandler(svc, cfg.Server.MaxUploadBytes, logger)
}

func provideRouter(
	cfg *config.Config,
	h *handlers.NavigationHandler,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) *chi.Mux {
	deps := router.Dependencies{
		Metrics: metrics,
		Limiter: limiter,
	}
	if cfg.Tracing.Enabled {
		deps.Tracer = tp.Tracer()
	}
	return router.New(cfg, h, deps, logger)
}
