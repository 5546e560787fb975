// Package di wires the navigation backend together.
package di

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wayfinder-backend/internal/application/services"
	"wayfinder-backend/internal/config"
	"wayfinder-backend/internal/graph"
	"wayfinder-backend/internal/infrastructure/observability"
	"wayfinder-backend/internal/interfaces/http/router"
	"wayfinder-backend/internal/middleware"
)

// Container holds the assembled application.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Graph     *graph.Graph
	Service   *services.NavigationService
	Router    *chi.Mux
	Metrics   *observability.Collector
	Tracing   *observability.TracerProvider
	Limiter   *middleware.RateLimiter
	ColdStart *ColdStartTracker
}

func provideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	g *graph.Graph,
	svc *services.NavigationService,
	mux *chi.Mux,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	limiter *middleware.RateLimiter,
	coldStart *ColdStartTracker,
) *Container {
	return &Container{
		Config:    cfg,
		Logger:    logger,
		Graph:     g,
		Service:   svc,
		Router:    mux,
		Metrics:   metrics,
		Tracing:   tp,
		Limiter:   limiter,
		ColdStart: coldStart,
	}
}

// Server returns an http.Server for the router.
func (c *Container) Server() *http.Server {
	return router.ServerFor(c.Config.Server, c.Router)
}

// RunBackground runs the session sweeper and the rate limiter cleanup until
// ctx is done.
func (c *Container) RunBackground(ctx context.Context) {
	go c.Service.RunSessionSweeper(ctx, c.Config.Session.SweepInterval)
	if c.Limiter != nil {
		go c.Limiter.RunCleanup(ctx, c.Config.Session.SweepInterval)
	}
}
