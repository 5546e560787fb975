// Package config loads and validates the navigation backend configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Graph source kinds.
const (
	SourceFile     = "file"
	SourceDynamoDB = "dynamodb"
)

// Config holds all application configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"oneof=development staging production test"`

	Server    Server    `yaml:"server" json:"server"`
	Graph     Graph     `yaml:"graph" json:"graph"`
	AWS       AWS       `yaml:"aws" json:"aws"`
	AI        AI        `yaml:"ai" json:"ai"`
	Session   Session   `yaml:"session" json:"session"`
	RateLimit RateLimit `yaml:"rate_limit" json:"rate_limit"`
	CORS      CORS      `yaml:"cors" json:"cors"`
	Logging   Logging   `yaml:"logging" json:"logging"`
	Metrics   Metrics   `yaml:"metrics" json:"metrics"`
	Tracing   Tracing   `yaml:"tracing" json:"tracing"`
	Features  Features  `yaml:"features" json:"features"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes" validate:"gt=0"`
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the
	// client address. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" json:"trust_proxy_headers"`
}

// Graph configures where the building definition and its photos live.
type Graph struct {
	Source       string `yaml:"source" json:"source" validate:"oneof=file dynamodb"`
	Path         string `yaml:"path" json:"path" validate:"required_if=Source file"`
	Table        string `yaml:"table" json:"table" validate:"required_if=Source dynamodb"`
	Building     string `yaml:"building" json:"building"`
	PhotoDir     string `yaml:"photo_dir" json:"photo_dir"`
	PhotoBaseURL string `yaml:"photo_base_url" json:"photo_base_url"`
}

// AWS holds SDK settings shared by AWS clients.
type AWS struct {
	Region   string `yaml:"region" json:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// AI configures the OpenAI-backed collaborators.
type AI struct {
	APIKey             string         `yaml:"-" json:"-"`
	BaseURL            string         `yaml:"base_url" json:"base_url"`
	TextModel          string         `yaml:"text_model" json:"text_model"`
	VisionModel        string         `yaml:"vision_model" json:"vision_model"`
	Timeout            time.Duration  `yaml:"timeout" json:"timeout" validate:"gt=0"`
	VisionTimeout      time.Duration  `yaml:"vision_timeout" json:"vision_timeout" validate:"gt=0"`
	MaxReferencePhotos int            `yaml:"max_reference_photos" json:"max_reference_photos" validate:"min=1"`
	CircuitBreaker     CircuitBreaker `yaml:"circuit_breaker" json:"circuit_breaker"`
}

// Enabled reports whether an API key is available.
func (a AI) Enabled() bool {
	return a.APIKey != ""
}

// CircuitBreaker configures the breaker around external calls.
type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests"`
	Interval         time.Duration `yaml:"interval" json:"interval"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold" validate:"gte=0,lte=1"`
	MinimumRequests  uint32        `yaml:"minimum_requests" json:"minimum_requests"`
}

// Session configures the in-memory session store.
type Session struct {
	TTL           time.Duration `yaml:"ttl" json:"ttl" validate:"gt=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval" validate:"gt=0"`
}

// RateLimit configures per-client request limiting.
type RateLimit struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" json:"burst" validate:"gte=0"`
}

// CORS configures cross-origin access.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Logging configures zap.
type Logging struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path" json:"path"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`
}

// Features are runtime toggles. They are the part of the configuration that
// is hot reloaded.
type Features struct {
	SemanticSearch   bool `yaml:"semantic_search" json:"semantic_search"`
	PhotoRecovery    bool `yaml:"photo_recovery" json:"photo_recovery"`
	AIInstructions   bool `yaml:"ai_instructions" json:"ai_instructions"`
	DFSComparison    bool `yaml:"dfs_comparison" json:"dfs_comparison"`
	NoCacheResponses bool `yaml:"no_cache_responses" json:"no_cache_responses"`
}

var configValidator = validator.New()

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Environment == Production && len(c.CORS.AllowedOrigins) == 1 && c.CORS.AllowedOrigins[0] == "*" {
		return fmt.Errorf("invalid configuration: wildcard CORS origin is not allowed in production")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// getEnvironment reads ENVIRONMENT, defaulting to development.
func getEnvironment() Environment {
	switch env := Environment(strings.ToLower(os.Getenv("ENVIRONMENT"))); env {
	case Development, Staging, Production, Test:
		return env
	default:
		return Development
	}
}
