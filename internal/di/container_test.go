package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wayfinder-backend/internal/config"
	"wayfinder-backend/internal/infrastructure/observability"
)

const buildingYAML = `
building: Annex
start_node: door
nodes:
  - id: door
    name: Front Door
    type: entrance
    photo: door.jpg
    floor: 1
    connects_to: [atrium]
  - id: atrium
    name: Atrium
    type: landmark
    photo: atrium.jpg
    floor: 1
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_DIR", filepath.Join(t.TempDir(), "missing"))

	cfg, err := config.NewLoader(t.TempDir(), config.Development).Load()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "annex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(buildingYAML), 0o644))
	cfg.Graph.Path = path
	cfg.Graph.PhotoDir = t.TempDir()
	cfg.AI.APIKey = ""
	return cfg
}

func TestInitializeContainer(t *testing.T) {
	cfg := testConfig(t)

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, 2, c.Graph.NodeCount())
	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Limiter)
	assert.False(t, c.Service.PhotoRecoveryEnabled(), "photo recovery needs an AI client")

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"building":"Annex"`)

	assert.Equal(t, "0.0.0.0:5001", c.Server().Addr)
}

func TestInitializeContainer_BadGraph(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.Path = filepath.Join(t.TempDir(), "nowhere.yaml")

	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeContainer_WithAI(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.APIKey = "sk-test"
	cfg.AI.BaseURL = "http://127.0.0.1:1/v1"
	cfg.Metrics.Enabled = false
	cfg.RateLimit.Enabled = false

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, c.Metrics)
	assert.Nil(t, c.Limiter)
	assert.True(t, c.Service.PhotoRecoveryEnabled())
	assert.True(t, c.Service.Health().AIEnabled)
}

func TestProvideLogger(t *testing.T) {
	cfg := &config.Config{Environment: config.Production, Logging: config.Logging{Level: "warn"}}
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	cfg.Logging.Level = "loud"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideFeatures_PublishesReloads(t *testing.T) {
	dir := t.TempDir()
	featuresPath := filepath.Join(dir, "features.yaml")
	require.NoError(t, os.WriteFile(featuresPath, []byte("features:\n  semantic_search: true\n"), 0o644))

	cfg := testConfig(t)
	t.Setenv("CONFIG_DIR", dir)
	cfg.Features.SemanticSearch = true

	metrics := observability.NewCollector("test")
	features, cleanup, err := provideFeatures(cfg, metrics, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	gauge := metrics.Features.WithLabelValues("semantic_search")
	assert.Equal(t, float64(1), testutil.ToFloat64(gauge))

	require.NoError(t, os.WriteFile(featuresPath, []byte("features:\n  semantic_search: false\n"), 0o644))
	assert.Eventually(t, func() bool {
		return !features.Features().SemanticSearch && testutil.ToFloat64(gauge) == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestProvideFeatures_StaticWithoutConfigDir(t *testing.T) {
	cfg := testConfig(t)

	features, cleanup, err := provideFeatures(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, config.StaticFeatures{}, features)
}

func TestProvideTextResolver_NilClient(t *testing.T) {
	assert.Nil(t, provideTextResolver(nil))
}

func TestRunBackground(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.SweepInterval = 10 * time.Millisecond
	cfg.Session.TTL = time.Millisecond

	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := c.Service.CreateSession()
	c.RunBackground(ctx)

	assert.Eventually(t, func() bool {
		_, err := c.Service.GetSession(sess.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestColdStartTracker(t *testing.T) {
	tr := NewColdStartTracker()
	assert.True(t, tr.Observe())
	assert.False(t, tr.Observe())
	assert.GreaterOrEqual(t, tr.SinceStart(), time.Duration(0))
}
