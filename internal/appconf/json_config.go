package appconf

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultPort            = 4000
	DefaultRateLimit       = 100
	DefaultDataPath        = "./bharatbus.db"
	DefaultReloadInterval  = 24 * 60 * 60
	DefaultRefreshInterval = 30
)

//go:embed config.schema.json
var configSchemaSource string

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaSource)

// VehicleSeed is a bus position configured up front, used when no realtime
// feed is available.
type VehicleSeed struct {
	ID      string  `json:"id"`
	Number  string  `json:"number"`
	RouteID string  `json:"route-id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// JSONConfig mirrors the config file layout.
type JSONConfig struct {
	Port          int      `json:"port"`
	Env           string   `json:"env"`
	ApiKeys       []string `json:"api-keys"`
	ExemptApiKeys []string `json:"exempt-api-keys"`
	RateLimit     *int     `json:"rate-limit"`
	Verbose       bool     `json:"verbose"`
	LogFormat     string   `json:"log-format"`

	CatalogURL             string `json:"catalog-url"`
	CatalogAuthHeaderKey   string `json:"catalog-auth-header-key"`
	CatalogAuthHeaderValue string `json:"catalog-auth-header-value"`
	DataPath               string `json:"data-path"`
	ReloadInterval         int    `json:"reload-interval"`

	VehiclePositionsURL     string        `json:"vehicle-positions-url"`
	RealTimeAuthHeaderKey   string        `json:"realtime-auth-header-key"`
	RealTimeAuthHeaderValue string        `json:"realtime-auth-header-value"`
	RefreshInterval         int           `json:"refresh-interval"`
	Vehicles                []VehicleSeed `json:"vehicles"`
}

// CatalogConfigData carries the catalog settings without importing the
// catalog package.
type CatalogConfigData struct {
	CatalogURL      string
	AuthHeaderKey   string
	AuthHeaderValue string
	DataPath        string
	ReloadInterval  int // seconds
	Env             Environment
	Verbose         bool
}

// TrackingConfigData carries the live tracking settings.
type TrackingConfigData struct {
	VehiclePositionsURL     string
	RealTimeAuthHeaderKey   string
	RealTimeAuthHeaderValue string
	RefreshInterval         int // seconds
	Vehicles                []VehicleSeed
	Verbose                 bool
}

// LoadFromFile reads, schema-validates and decodes a JSON config file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse validates and decodes config file contents.
func Parse(data []byte) (*JSONConfig, error) {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := configSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize checks the cross-field rules and fills in defaults. Configs
// built from command line flags go through it as well as parsed files.
func (c *JSONConfig) Normalize() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.applyDefaults()
	return nil
}

func (c *JSONConfig) validate() error {
	env, err := ParseEnvironment(c.Env)
	if err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	if c.RateLimit != nil && *c.RateLimit < 0 {
		return fmt.Errorf("rate-limit must not be negative, got %d", *c.RateLimit)
	}
	if env == Test && c.DataPath != "" && c.DataPath != ":memory:" {
		return fmt.Errorf("test environment must use in-memory storage, got data-path %q", c.DataPath)
	}
	if strings.Contains(c.CatalogURL, "://") && !isHTTPURL(c.CatalogURL) {
		return fmt.Errorf("catalog-url must be a local path or an http(s) URL, got %q", c.CatalogURL)
	}
	if c.VehiclePositionsURL != "" && !isHTTPURL(c.VehiclePositionsURL) {
		return fmt.Errorf("vehicle-positions-url must be an http(s) URL, got %q", c.VehiclePositionsURL)
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (c *JSONConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.RateLimit == nil {
		limit := DefaultRateLimit
		c.RateLimit = &limit
	}
	if c.DataPath == "" {
		if env, _ := ParseEnvironment(c.Env); env == Test {
			c.DataPath = ":memory:"
		} else {
			c.DataPath = DefaultDataPath
		}
	}
	if c.ReloadInterval == 0 {
		c.ReloadInterval = DefaultReloadInterval
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
}

func (c *JSONConfig) environment() Environment {
	env, _ := ParseEnvironment(c.Env)
	return env
}

// ToAppConfig converts the file config to the HTTP-facing Config.
func (c *JSONConfig) ToAppConfig() Config {
	rateLimit := DefaultRateLimit
	if c.RateLimit != nil {
		rateLimit = *c.RateLimit
	}
	return Config{
		Port:          c.Port,
		Env:           c.environment(),
		ApiKeys:       c.ApiKeys,
		ExemptApiKeys: c.ExemptApiKeys,
		RateLimit:     rateLimit,
		Verbose:       c.Verbose,
		LogFormat:     c.LogFormat,
	}
}

// ToCatalogConfigData extracts the catalog settings.
func (c *JSONConfig) ToCatalogConfigData() CatalogConfigData {
	return CatalogConfigData{
		CatalogURL:      c.CatalogURL,
		AuthHeaderKey:   c.CatalogAuthHeaderKey,
		AuthHeaderValue: c.CatalogAuthHeaderValue,
		DataPath:        c.DataPath,
		ReloadInterval:  c.ReloadInterval,
		Env:             c.environment(),
		Verbose:         c.Verbose,
	}
}

// ToTrackingConfigData extracts the live tracking settings.
func (c *JSONConfig) ToTrackingConfigData() TrackingConfigData {
	return TrackingConfigData{
		VehiclePositionsURL:     c.VehiclePositionsURL,
		RealTimeAuthHeaderKey:   c.RealTimeAuthHeaderKey,
		RealTimeAuthHeaderValue: c.RealTimeAuthHeaderValue,
		RefreshInterval:         c.RefreshInterval,
		Vehicles:                c.Vehicles,
		Verbose:                 c.Verbose,
	}
}
