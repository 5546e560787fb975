package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_DefaultsOnly(t *testing.T) {
	l := NewLoader(t.TempDir(), Development)
	l.lookupEnv = envFrom(nil)

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, SourceFile, cfg.Graph.Source)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoader_Layering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: 7000
graph:
  path: buildings/science.yaml
  photo_base_url: https://cdn.example.com/photos
session:
  ttl: 10m
`)
	writeFile(t, dir, "staging.yml", `
server:
  port: 7100
logging:
  level: debug
`)
	writeFile(t, dir, "features.yaml", `
features:
  semantic_search: false
  dfs_comparison: true
`)

	l := NewLoader(dir, Staging)
	l.lookupEnv = envFrom(map[string]string{
		"OPENAI_API_KEY": " sk-test ",
		"TABLE_NAME":     "buildings",
		"ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com",
	})

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "buildings/science.yaml", cfg.Graph.Path)
	assert.Equal(t, "buildings", cfg.Graph.Table)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.True(t, cfg.AI.Enabled())
	assert.False(t, cfg.Features.SemanticSearch)
	assert.True(t, cfg.Features.DFSComparison)
	assert.True(t, cfg.Features.PhotoRecovery, "unset toggles keep defaults")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Len(t, cfg.LoadedFrom, 5)
}

func TestLoader_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: 7000\n")

	l := NewLoader(dir, Development)
	l.lookupEnv = envFrom(map[string]string{"SERVER_PORT": "9090", "ENABLE_PHOTO_RECOVERY": "false"})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Features.PhotoRecovery)
}

func TestLoader_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server: [not, a, map")

	l := NewLoader(dir, Development)
	l.lookupEnv = envFrom(nil)

	_, err := l.Load()
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		l := NewLoader("", Development)
		return l.defaultConfig()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown source", func(c *Config) { c.Graph.Source = "s3" }, true},
		{"dynamodb needs table", func(c *Config) { c.Graph.Source = SourceDynamoDB }, true},
		{"dynamodb with table", func(c *Config) {
			c.Graph.Source = SourceDynamoDB
			c.Graph.Table = "buildings"
		}, false},
		{"tracing needs endpoint", func(c *Config) { c.Tracing.Enabled = true }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"wildcard cors in production", func(c *Config) { c.Environment = Production }, true},
		{"production with origins", func(c *Config) {
			c.Environment = Production
			c.CORS.AllowedOrigins = []string{"https://nav.example.com"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeatureWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "features.yaml", "features:\n  semantic_search: true\n")

	initial := Features{SemanticSearch: true, PhotoRecovery: true}
	w, err := NewFeatureWatcher(dir, Development, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan Features, 1)
	w.OnChange(func(f Features) {
		select {
		case changed <- f:
		default:
		}
	})

	writeFile(t, dir, "features.yaml", "features:\n  semantic_search: false\n")

	assert.Eventually(t, func() bool {
		return !w.Features().SemanticSearch
	}, 3*time.Second, 20*time.Millisecond)
	assert.True(t, w.Features().PhotoRecovery)

	select {
	case f := <-changed:
		assert.False(t, f.SemanticSearch)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestFeatureWatcher_IgnoresOtherFiles(t *testing.T) {
	assert.True(t, isFeatureFile("/etc/nav/features.yaml"))
	assert.True(t, isFeatureFile("features.json"))
	assert.False(t, isFeatureFile("base.yaml"))
	assert.False(t, isFeatureFile("features.yaml.swp"))
}

func TestStaticFeatures(t *testing.T) {
	var src FeatureSource = StaticFeatures(Features{AIInstructions: true})
	assert.True(t, src.Features().AIInstructions)
}
