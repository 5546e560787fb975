package di

import "github.com/google/wire"

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ConfigProviders,
	ObservabilityProviders,
	GraphProviders,
	AIProviders,
	ApplicationProviders,
	InterfaceProviders,
	ProvideColdStartTracker,
	provideContainer,
)

// ConfigProviders provides the logger and the feature toggles.
var ConfigProviders = wire.NewSet(
	ProvideLogger,
	provideFeatures,
)

// ObservabilityProviders provides metrics and tracing.
var ObservabilityProviders = wire.NewSet(
	provideMetrics,
	provideTracing,
)

// GraphProviders loads the building.
var GraphProviders = wire.NewSet(
	ProvideGraphSource,
	provideGraph,
)

// AIProviders provides the optional OpenAI collaborators.
var AIProviders = wire.NewSet(
	provideAIClient,
	provideTextResolver,
	providePhotoStore,
)

// ApplicationProviders provides the navigation use cases.
var ApplicationProviders = wire.NewSet(
	provideLocator,
	provideSessionStore,
	provideRenderer,
	provideNavigationService,
)

// InterfaceProviders provides the HTTP layer.
var InterfaceProviders = wire.NewSet(
	provideRateLimiter,
	provideNavigationHandler,
	provideRouter,
)
