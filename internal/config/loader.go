package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from layered sources. From lowest to highest
// priority:
//  1. defaults in code
//  2. base.{yaml,yml,json} in the config directory
//  3. <environment>.{yaml,yml,json}
//  4. features.{yaml,yml,json} (the hot-reloadable toggles)
//  5. environment variables
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
	fileLoaders []FileLoader
	lookupEnv   func(string) (string, bool)
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extensions() []string
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
		lookupEnv:   os.LookupEnv,
	}
}

// Load applies every layer and validates the result.
func (l *Loader) Load() (*Config, error) {
	l.sources = []string{"defaults"}
	cfg := l.defaultConfig()

	for _, name := range []string{"base", string(l.environment), "features"} {
		if err := l.loadFile(name, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s config: %w", name, err)
		}
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFeatures re-reads only the feature toggles on top of current.
func (l *Loader) LoadFeatures(current Features) (Features, error) {
	holder := &Config{Features: current}
	if err := l.loadFile("features", holder); err != nil && !errors.Is(err, os.ErrNotExist) {
		return current, err
	}
	l.applyFeatureEnv(&holder.Features)
	return holder.Features, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		for _, ext := range loader.Extensions() {
			path := filepath.Join(l.basePath, name+"."+ext)

			file, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}

			err = loader.Load(file, cfg)
			file.Close()
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			l.sources = append(l.sources, path)
			return nil
		}
	}
	return os.ErrNotExist
}

func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	if val, ok := l.lookupEnv("SERVER_PORT"); ok {
		if port := parseInt(val); port > 0 {
			cfg.Server.Port = port
		}
	} else if val, ok := l.lookupEnv("PORT"); ok {
		if port := parseInt(val); port > 0 {
			cfg.Server.Port = port
		}
	}
	if val, ok := l.lookupEnv("SERVER_HOST"); ok {
		cfg.Server.Host = val
	}
	if val, ok := l.lookupEnv("TRUST_PROXY_HEADERS"); ok {
		cfg.Server.TrustProxyHeaders = parseBool(val)
	}

	if val, ok := l.lookupEnv("GRAPH_SOURCE"); ok {
		cfg.Graph.Source = strings.ToLower(val)
	}
	if val, ok := l.lookupEnv("GRAPH_PATH"); ok {
		cfg.Graph.Path = val
	}
	if val, ok := l.lookupEnv("TABLE_NAME"); ok {
		cfg.Graph.Table = val
	}
	if val, ok := l.lookupEnv("BUILDING"); ok {
		cfg.Graph.Building = val
	}
	if val, ok := l.lookupEnv("PHOTO_DIR"); ok {
		cfg.Graph.PhotoDir = val
	}
	if val, ok := l.lookupEnv("PHOTO_BASE_URL"); ok {
		cfg.Graph.PhotoBaseURL = val
	}

	if val, ok := l.lookupEnv("AWS_REGION"); ok {
		cfg.AWS.Region = val
	}
	if val, ok := l.lookupEnv("AWS_ENDPOINT_URL"); ok {
		cfg.AWS.Endpoint = val
	}

	if val, ok := l.lookupEnv("OPENAI_API_KEY"); ok {
		cfg.AI.APIKey = strings.TrimSpace(val)
	}
	if val, ok := l.lookupEnv("OPENAI_BASE_URL"); ok {
		cfg.AI.BaseURL = val
	}
	if val, ok := l.lookupEnv("OPENAI_MODEL"); ok {
		cfg.AI.TextModel = val
	}
	if val, ok := l.lookupEnv("OPENAI_VISION_MODEL"); ok {
		cfg.AI.VisionModel = val
	}

	if val, ok := l.lookupEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val, ok := l.lookupEnv("ENABLE_METRICS"); ok {
		cfg.Metrics.Enabled = parseBool(val)
	}
	if val, ok := l.lookupEnv("ENABLE_TRACING"); ok {
		cfg.Tracing.Enabled = parseBool(val)
	}
	if val, ok := l.lookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		cfg.Tracing.Endpoint = val
	}
	if val, ok := l.lookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = splitList(val)
	}
	if val, ok := l.lookupEnv("SESSION_TTL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Session.TTL = d
		}
	}

	l.applyFeatureEnv(&cfg.Features)
}

func (l *Loader) applyFeatureEnv(f *Features) {
	if val, ok := l.lookupEnv("ENABLE_SEMANTIC_SEARCH"); ok {
		f.SemanticSearch = parseBool(val)
	}
	if val, ok := l.lookupEnv("ENABLE_PHOTO_RECOVERY"); ok {
		f.PhotoRecovery = parseBool(val)
	}
	if val, ok := l.lookupEnv("ENABLE_AI_INSTRUCTIONS"); ok {
		f.AIInstructions = parseBool(val)
	}
}

// defaultConfig returns a configuration that runs locally with no files.
func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            5001,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  45 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Graph: Graph{
			Source:       SourceFile,
			Path:         "data/navigation_data.json",
			PhotoDir:     "photos",
			PhotoBaseURL: "/photos",
		},
		AWS: AWS{
			Region: "us-east-1",
		},
		AI: AI{
			TextModel:          "gpt-4o-mini",
			VisionModel:        "gpt-4o",
			Timeout:            8 * time.Second,
			VisionTimeout:      30 * time.Second,
			MaxReferencePhotos: 12,
			CircuitBreaker: CircuitBreaker{
				MaxRequests:      3,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 0.6,
				MinimumRequests:  5,
			},
		},
		Session: Session{
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		RateLimit: RateLimit{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
			MaxAge:         300,
		},
		Logging: Logging{
			Level: "info",
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "wayfinder",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "wayfinder-backend",
			SampleRate:  0.1,
		},
		Features: Features{
			SemanticSearch:   true,
			PhotoRecovery:    true,
			AIInstructions:   true,
			NoCacheResponses: true,
		},
	}
}

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	return yaml.NewDecoder(reader).Decode(target)
}

func (y *YAMLLoader) Extensions() []string {
	return []string{"yaml", "yml"}
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

func (j *JSONLoader) Extensions() []string {
	return []string{"json"}
}

func parseInt(s string) int {
	val, _ := strconv.Atoi(strings.TrimSpace(s))
	return val
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(strings.TrimSpace(s))
	return val
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads configuration from CONFIG_DIR (default "config") for the
// environment named by ENVIRONMENT.
func Load() (*Config, error) {
	return NewLoader(ConfigDir(), getEnvironment()).Load()
}

// ConfigDir returns the configuration directory.
func ConfigDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}
