package appconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileValid(t *testing.T) {
	cfg, err := LoadFromFile("testdata/config_valid.json")
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, 3000, app.Port)
	assert.Equal(t, Development, app.Env)
	assert.Equal(t, []string{"test"}, app.ApiKeys)
	assert.Equal(t, 100, app.RateLimit)
	assert.True(t, app.Verbose)

	catalog := cfg.ToCatalogConfigData()
	assert.Equal(t, "", catalog.CatalogURL)
	assert.Equal(t, DefaultDataPath, catalog.DataPath)
	assert.Equal(t, DefaultReloadInterval, catalog.ReloadInterval)
	assert.Equal(t, Development, catalog.Env)

	tracking := cfg.ToTrackingConfigData()
	assert.Equal(t, DefaultRefreshInterval, tracking.RefreshInterval)
	assert.Empty(t, tracking.Vehicles)
}

func TestLoadFromFileFull(t *testing.T) {
	cfg, err := LoadFromFile("testdata/config_full.json")
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, 8080, app.Port)
	assert.Equal(t, Production, app.Env)
	assert.Equal(t, []string{"key1", "key2", "key3"}, app.ApiKeys)
	assert.Equal(t, []string{"org.bharatbus.web"}, app.ExemptApiKeys)
	assert.Equal(t, 50, app.RateLimit)
	assert.Equal(t, "json", app.ResolvedLogFormat())

	catalog := cfg.ToCatalogConfigData()
	assert.Equal(t, "https://example.com/catalog.json", catalog.CatalogURL)
	assert.Equal(t, "X-Api-Key", catalog.AuthHeaderKey)
	assert.Equal(t, "catalog-secret", catalog.AuthHeaderValue)
	assert.Equal(t, "/data/bharatbus.db", catalog.DataPath)
	assert.Equal(t, 3600, catalog.ReloadInterval)

	tracking := cfg.ToTrackingConfigData()
	assert.Equal(t, "https://api.example.com/vehicle-positions.pb", tracking.VehiclePositionsURL)
	assert.Equal(t, "Authorization", tracking.RealTimeAuthHeaderKey)
	assert.Equal(t, "Bearer token123", tracking.RealTimeAuthHeaderValue)
	assert.Equal(t, 15, tracking.RefreshInterval)
	require.Len(t, tracking.Vehicles, 1)
	assert.Equal(t, VehicleSeed{ID: "1", Number: "81", RouteID: "1", Lat: 22.6447, Lon: 88.4342}, tracking.Vehicles[0])
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		message string
	}{
		{name: "schema violation", path: "testdata/config_invalid.json", message: "invalid configuration"},
		{name: "malformed JSON", path: "testdata/config_malformed.json", message: "failed to parse JSON config"},
		{name: "missing file", path: "testdata/nonexistent.json", message: "failed to stat config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(tt.path)
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseRejectsSemanticErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "unknown field", json: `{"prot": 3000}`},
		{name: "test env with file database", json: `{"env": "test", "data-path": "/tmp/x.db"}`},
		{name: "unsupported catalog scheme", json: `{"catalog-url": "ftp://example.com/catalog.json"}`},
		{name: "realtime feed must be http", json: `{"vehicle-positions-url": "/tmp/feed.pb"}`},
		{name: "vehicle without coordinates", json: `{"vehicles": [{"id": "1"}]}`},
		{name: "refresh too fast", json: `{"refresh-interval": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"env": "test"}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DataPath)
	assert.Equal(t, DefaultRateLimit, cfg.ToAppConfig().RateLimit)

	cfg, err = Parse([]byte(`{"rate-limit": 0}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ToAppConfig().RateLimit, "explicit zero rate limit is kept")
}

func TestNormalizeFlagBuiltConfig(t *testing.T) {
	cfg := JSONConfig{Env: "test", ApiKeys: []string{"TEST"}}
	require.NoError(t, cfg.Normalize())

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DataPath)
	require.NotNil(t, cfg.RateLimit)
	assert.Equal(t, DefaultRateLimit, *cfg.RateLimit)

	bad := JSONConfig{Env: "test", DataPath: "/tmp/catalog.db"}
	err := bad.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNormalizeRejectsOutOfRangeValues(t *testing.T) {
	limit := -1
	tests := []struct {
		name    string
		cfg     JSONConfig
		message string
	}{
		{name: "port too large", cfg: JSONConfig{Port: 70000}, message: "port must be between"},
		{name: "negative port", cfg: JSONConfig{Port: -1}, message: "port must be between"},
		{name: "negative rate limit", cfg: JSONConfig{RateLimit: &limit}, message: "rate-limit must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Normalize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
