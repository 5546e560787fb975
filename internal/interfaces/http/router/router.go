// Package router assembles the chi router of the navigation API.
package router

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	docs "wayfinder-backend/docs/swagger"
	"wayfinder-backend/internal/config"
	apperrors "wayfinder-backend/internal/errors"
	"wayfinder-backend/internal/infrastructure/observability"
	"wayfinder-backend/internal/interfaces/http/handlers"
	"wayfinder-backend/internal/middleware"
)

// Dependencies are the optional collaborators of the router. Nil fields
// switch the matching middleware off.
type Dependencies struct {
	Metrics *observability.Collector
	Tracer  trace.Tracer
	Limiter *middleware.RateLimiter
}

// New builds the HTTP handler serving the API under /api.
func New(cfg *config.Config, h *handlers.NavigationHandler, deps Dependencies, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(logger))
	if deps.Tracer != nil {
		r.Use(observability.TracingMiddleware(deps.Tracer))
	}
	if deps.Metrics != nil {
		r.Use(observability.MetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Trace-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	if deps.Metrics != nil && cfg.Metrics.Path != "" {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}
	if cfg.Graph.PhotoDir != "" && isLocalPath(cfg.Graph.PhotoBaseURL) {
		prefix := cfg.Graph.PhotoBaseURL
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Graph.PhotoDir))))
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Features.NoCacheResponses {
			api.Use(middleware.NoCache)
		}
		api.Use(middleware.Timeout(cfg.Server.RequestTimeout, logger))
		if deps.Limiter != nil {
			api.Use(deps.Limiter.Middleware(logger))
		}

		api.Get("/health", h.Health)
		api.Get("/destinations", h.Destinations)
		api.Post("/navigate", h.Navigate)
		api.Post("/search", h.Search)
		api.Post("/recover", h.Recover)
		api.Post("/recover/photo", h.RecoverFromPhoto)

		api.Post("/sessions", h.CreateSession)
		api.Get("/sessions/{id}", h.GetSession)
		api.Delete("/sessions/{id}", h.DeleteSession)

		api.Get("/docs/doc.json", serveDoc(logger))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteHTTPError(w, req,
			apperrors.NotFound("ROUTE_NOT_FOUND", "route not found").
				WithResource(req.URL.Path).
				WithSeverity(apperrors.SeverityLow).
				Build(),
			logger)
	})

	return r
}

func serveDoc(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			apperrors.WriteHTTPError(w, r, apperrors.Internal(apperrors.CodeInternalError.String(), "api documentation unavailable").WithCause(err).Build(), logger)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}
}

func isLocalPath(base string) bool {
	return len(base) > 1 && base[0] == '/' && base[1] != '/'
}

// ServerFor builds an http.Server with the configured timeouts.
func ServerFor(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr(cfg),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

func addr(cfg config.Server) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}
