package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/tickets"
	"bharatbus.in/internal/tracking"
)

const validConfigPath = "../../internal/appconf/testdata/config_valid.json"

func testConfigs(port int) (appconf.Config, catalog.Config, tracking.Config) {
	cfg := appconf.Config{
		Port:      port,
		Env:       appconf.Test,
		ApiKeys:   []string{"test"},
		Verbose:   false,
		RateLimit: 100,
	}
	catalogCfg := catalog.Config{
		DataPath: ":memory:",
		Env:      appconf.Test,
	}
	trackingCfg := tracking.Config{
		Seeds:           tracking.DefaultFleet(),
		RefreshInterval: 30 * time.Second,
	}
	return cfg, catalogCfg, trackingCfg
}

func noEnv(string) string { return "" }

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Single key", input: "test-key", expected: []string{"test-key"}},
		{name: "Multiple keys", input: "key1,key2,key3", expected: []string{"key1", "key2", "key3"}},
		{name: "Keys with spaces", input: " key1 , key2 , key3 ", expected: []string{"key1", "key2", "key3"}},
		{name: "Empty string", input: "", expected: []string{}},
		{name: "Only commas", input: ",,,", expected: []string{}},
		{name: "Trailing comma", input: "key1,", expected: []string{"key1"}},
		{name: "Leading comma", input: ",key1", expected: []string{"key1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAPIKeys(tt.input))
		})
	}
}

func TestBuildApplicationWithMemoryDB(t *testing.T) {
	cfg, catalogCfg, trackingCfg := testConfigs(4000)

	coreApp, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	require.NoError(t, err, "BuildApplication should not return an error")
	defer coreApp.Shutdown()

	assert.NotNil(t, coreApp.Logger, "Logger should be initialized")
	assert.Equal(t, cfg, coreApp.Config, "Config should match input")
	assert.Equal(t, catalogCfg.DataPath, coreApp.CatalogConfig.DataPath)
	assert.Nil(t, coreApp.CatalogConfig.OnReload, "caller config should not carry the metric hook")

	require.NotNil(t, coreApp.Catalog)
	assert.True(t, coreApp.Catalog.IsReady())
	routeCount := coreApp.Catalog.Snapshot().Len()
	assert.Positive(t, routeCount)

	require.NotNil(t, coreApp.Metrics)
	assert.Equal(t, float64(routeCount), testutil.ToFloat64(coreApp.Metrics.CatalogRoutes))
	assert.Equal(t, float64(1), testutil.ToFloat64(coreApp.Metrics.CatalogReloadsTotal))
	assert.Equal(t, float64(len(tracking.DefaultFleet())), testutil.ToFloat64(coreApp.Metrics.TrackedVehicles))
	assert.Len(t, coreApp.Tracker.Vehicles(), len(tracking.DefaultFleet()))

	require.NotNil(t, coreApp.Tickets)
	_, err = coreApp.Tickets.Book(tickets.Booking{From: "Howrah", To: "Salt Lake", Date: "2025-06-02", Name: "Asha", Passengers: 1})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(coreApp.Metrics.TicketsHeld))
}

func TestBuildApplicationErrorHandling(t *testing.T) {
	cfg, catalogCfg, trackingCfg := testConfigs(4000)
	catalogCfg.CatalogURL = "/nonexistent/path/to/catalog.json"

	_, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	require.Error(t, err, "Should return error for a missing catalog")
	assert.Contains(t, err.Error(), "failed to initialize catalog manager")
}

func TestCreateServer(t *testing.T) {
	cfg, catalogCfg, trackingCfg := testConfigs(8080)
	coreApp, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	assert.Equal(t, ":8080", srv.Addr, "Server address should match port")
	assert.NotNil(t, srv.Handler, "Server handler should be set")
	assert.Equal(t, time.Minute, srv.IdleTimeout)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
}

func TestCreateServerHandlerResponds(t *testing.T) {
	cfg, catalogCfg, trackingCfg := testConfigs(8080)
	coreApp, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	t.Run("current time carries a request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/where/current-time.json?key=test", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("catalog is gzip compressed when accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/where/routes.json?key=test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/where/routes.json?key=nope", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("requests are counted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(
			coreApp.Metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /healthz", "200")))
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg, catalogCfg, trackingCfg := testConfigs(0)
	coreApp, err := BuildApplication(cfg, catalogCfg, trackingCfg)
	require.NoError(t, err)

	srv, api := CreateServer(coreApp, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, coreApp, api) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "Server should shut down cleanly")
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil, noEnv)
	require.NoError(t, err)

	jsonCfg, err := opts.jsonConfig()
	require.NoError(t, err)

	cfg := jsonCfg.ToAppConfig()
	assert.Equal(t, appconf.DefaultPort, cfg.Port)
	assert.Equal(t, appconf.Development, cfg.Env)
	assert.Equal(t, []string{"test"}, cfg.ApiKeys)
	assert.Equal(t, appconf.DefaultRateLimit, cfg.RateLimit)
	assert.False(t, cfg.Verbose)

	catalogData := jsonCfg.ToCatalogConfigData()
	assert.Equal(t, appconf.DefaultDataPath, catalogData.DataPath)
	assert.Empty(t, catalogData.CatalogURL)
	assert.Equal(t, appconf.DefaultReloadInterval, catalogData.ReloadInterval)
}

func TestParseFlagsCommandLine(t *testing.T) {
	opts, err := parseFlags([]string{
		"--port", "5000",
		"--env", "test",
		"--api-keys", "a, b",
		"--rate-limit", "0",
		"--data-path", ":memory:",
		"-v",
	}, noEnv)
	require.NoError(t, err)

	jsonCfg, err := opts.jsonConfig()
	require.NoError(t, err)

	cfg := jsonCfg.ToAppConfig()
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, appconf.Test, cfg.Env)
	assert.Equal(t, []string{"a", "b"}, cfg.ApiKeys)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.True(t, cfg.Verbose)
}

func TestParseFlagsEnvironmentDefaults(t *testing.T) {
	opts, err := parseFlags(nil, envMap(map[string]string{
		"BHARATBUS_PORT":     "4500",
		"BHARATBUS_API_KEYS": "from-env",
		"BHARATBUS_VERBOSE":  "true",
	}))
	require.NoError(t, err)

	jsonCfg, err := opts.jsonConfig()
	require.NoError(t, err)

	cfg := jsonCfg.ToAppConfig()
	assert.Equal(t, 4500, cfg.Port)
	assert.Equal(t, []string{"from-env"}, cfg.ApiKeys)
	assert.True(t, cfg.Verbose)
}

func TestParseFlagsWithConfigFile(t *testing.T) {
	t.Run("file values apply", func(t *testing.T) {
		opts, err := parseFlags([]string{"--config", validConfigPath}, noEnv)
		require.NoError(t, err)

		jsonCfg, err := opts.jsonConfig()
		require.NoError(t, err)

		cfg := jsonCfg.ToAppConfig()
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, appconf.Development, cfg.Env)
		assert.Equal(t, []string{"test"}, cfg.ApiKeys)
		assert.Equal(t, 100, cfg.RateLimit)
		assert.True(t, cfg.Verbose)
	})

	t.Run("flags given override the file", func(t *testing.T) {
		opts, err := parseFlags([]string{"-c", validConfigPath, "--port", "9000"}, noEnv)
		require.NoError(t, err)

		jsonCfg, err := opts.jsonConfig()
		require.NoError(t, err)

		cfg := jsonCfg.ToAppConfig()
		assert.Equal(t, 9000, cfg.Port)
		assert.True(t, cfg.Verbose, "untouched file values stay")
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		opts, err := parseFlags([]string{"-c", validConfigPath}, envMap(map[string]string{
			"BHARATBUS_API_KEYS": "k1,k2",
		}))
		require.NoError(t, err)

		jsonCfg, err := opts.jsonConfig()
		require.NoError(t, err)

		assert.Equal(t, []string{"k1", "k2"}, jsonCfg.ToAppConfig().ApiKeys)
		assert.Equal(t, 3000, jsonCfg.ToAppConfig().Port)
	})

	t.Run("missing file", func(t *testing.T) {
		opts, err := parseFlags([]string{"-c", "does-not-exist.json"}, noEnv)
		require.NoError(t, err)

		_, err = opts.jsonConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat config file")
	})
}

func TestParseFlagsErrors(t *testing.T) {
	t.Run("non-numeric environment value", func(t *testing.T) {
		_, err := parseFlags(nil, envMap(map[string]string{"BHARATBUS_PORT": "abc"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BHARATBUS_PORT")
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := parseFlags([]string{"--no-such-flag"}, noEnv)
		assert.Error(t, err)
	})

	t.Run("positional argument", func(t *testing.T) {
		_, err := parseFlags([]string{"serve"}, noEnv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected argument")
	})

	t.Run("invalid environment name", func(t *testing.T) {
		opts, err := parseFlags([]string{"--env", "staging"}, noEnv)
		require.NoError(t, err)

		_, err = opts.jsonConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		opts, err := parseFlags([]string{"--rate-limit=-1"}, noEnv)
		require.NoError(t, err)

		_, err = opts.jsonConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate-limit")
	})
}
