package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"bharatbus.in/internal/appconf"
)

// envPrefix prefixes the environment variables that supply flag defaults,
// for example BHARATBUS_API_KEYS for --api-keys.
const envPrefix = "BHARATBUS_"

type cliOptions struct {
	configPath string

	port          int
	env           string
	apiKeys       string
	exemptApiKeys string
	rateLimit     int
	verbose       bool
	logFormat     string

	catalogURL      string
	catalogAuthKey  string
	catalogAuthVal  string
	dataPath        string
	reloadInterval  int
	vehiclesURL     string
	realtimeAuthKey string
	realtimeAuthVal string
	refreshInterval int

	flagSet *pflag.FlagSet
	envSet  map[string]bool
}

// envName maps a flag name to its environment variable.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// parseFlags reads command line flags. getenv supplies defaults so that a
// .env file or the process environment can stand in for any flag.
func parseFlags(args []string, getenv func(string) string) (*cliOptions, error) {
	opts := &cliOptions{envSet: make(map[string]bool)}
	fs := pflag.NewFlagSet("bharatbus-api", pflag.ContinueOnError)
	opts.flagSet = fs

	str := func(target *string, name, def, usage string) {
		if v := getenv(envName(name)); v != "" {
			def = v
			opts.envSet[name] = true
		}
		fs.StringVar(target, name, def, usage)
	}
	num := func(target *int, name string, def int, usage string) error {
		if v := getenv(envName(name)); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer, got %q", envName(name), v)
			}
			def = parsed
			opts.envSet[name] = true
		}
		fs.IntVar(target, name, def, usage)
		return nil
	}

	fs.StringVarP(&opts.configPath, "config", "c", getenv(envName("config")), "path to a JSON config file")
	str(&opts.env, "env", "development", "environment: development, test or production")
	str(&opts.apiKeys, "api-keys", "test", "comma separated API keys")
	str(&opts.exemptApiKeys, "exempt-api-keys", "", "comma separated API keys that skip rate limiting")
	str(&opts.logFormat, "log-format", "", "log output: json, text or color (default by environment)")
	str(&opts.catalogURL, "catalog-url", "", "route catalog: JSON or GTFS zip, local path or http(s) URL (default embedded)")
	str(&opts.catalogAuthKey, "catalog-auth-header-key", "", "header name sent when downloading the catalog")
	str(&opts.catalogAuthVal, "catalog-auth-header-value", "", "header value sent when downloading the catalog")
	str(&opts.dataPath, "data-path", "", "SQLite catalog store path, or :memory:")
	str(&opts.vehiclesURL, "vehicle-positions-url", "", "GTFS-realtime vehicle positions feed URL")
	str(&opts.realtimeAuthKey, "realtime-auth-header-key", "", "header name sent to the vehicle positions feed")
	str(&opts.realtimeAuthVal, "realtime-auth-header-value", "", "header value sent to the vehicle positions feed")

	for _, n := range []struct {
		target *int
		name   string
		def    int
		usage  string
	}{
		{&opts.port, "port", appconf.DefaultPort, "HTTP listen port"},
		{&opts.rateLimit, "rate-limit", appconf.DefaultRateLimit, "requests per second per API key, 0 disables limiting"},
		{&opts.reloadInterval, "reload-interval", appconf.DefaultReloadInterval, "seconds between reloads of a remote catalog"},
		{&opts.refreshInterval, "refresh-interval", appconf.DefaultRefreshInterval, "seconds between vehicle feed polls"},
	} {
		if err := num(n.target, n.name, n.def, n.usage); err != nil {
			return nil, err
		}
	}

	verbose := getenv(envName("verbose"))
	opts.envSet["verbose"] = verbose != ""
	fs.BoolVarP(&opts.verbose, "verbose", "v", verbose == "true" || verbose == "1", "debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// overrides reports whether the flag should replace a value from the
// config file: it was given on the command line or through the environment.
func (opts *cliOptions) overrides(name string) bool {
	return opts.flagSet.Changed(name) || opts.envSet[name]
}

// jsonConfig merges the config file, when given, with the flags. Without a
// file every flag applies.
func (opts *cliOptions) jsonConfig() (*appconf.JSONConfig, error) {
	cfg := &appconf.JSONConfig{}
	fromFile := opts.configPath != ""
	if fromFile {
		loaded, err := appconf.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	apply := func(name string) bool { return !fromFile || opts.overrides(name) }

	if apply("port") {
		cfg.Port = opts.port
	}
	if apply("env") {
		cfg.Env = opts.env
	}
	if apply("api-keys") {
		cfg.ApiKeys = ParseAPIKeys(opts.apiKeys)
	}
	if apply("exempt-api-keys") {
		cfg.ExemptApiKeys = ParseAPIKeys(opts.exemptApiKeys)
	}
	if apply("rate-limit") {
		limit := opts.rateLimit
		cfg.RateLimit = &limit
	}
	if apply("verbose") {
		cfg.Verbose = opts.verbose
	}
	if apply("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if apply("catalog-url") {
		cfg.CatalogURL = opts.catalogURL
	}
	if apply("catalog-auth-header-key") {
		cfg.CatalogAuthHeaderKey = opts.catalogAuthKey
	}
	if apply("catalog-auth-header-value") {
		cfg.CatalogAuthHeaderValue = opts.catalogAuthVal
	}
	if apply("data-path") {
		cfg.DataPath = opts.dataPath
	}
	if apply("reload-interval") {
		cfg.ReloadInterval = opts.reloadInterval
	}
	if apply("vehicle-positions-url") {
		cfg.VehiclePositionsURL = opts.vehiclesURL
	}
	if apply("realtime-auth-header-key") {
		cfg.RealTimeAuthHeaderKey = opts.realtimeAuthKey
	}
	if apply("realtime-auth-header-value") {
		cfg.RealTimeAuthHeaderValue = opts.realtimeAuthVal
	}
	if apply("refresh-interval") {
		cfg.RefreshInterval = opts.refreshInterval
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
