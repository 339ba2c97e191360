// Package appconf holds the service configuration: the values the HTTP
// layer needs directly, and the JSON config file that also carries catalog
// and tracking settings.
package appconf

// Config holds the HTTP-facing settings of the application.
type Config struct {
	Port          int
	Env           Environment
	ApiKeys       []string
	ExemptApiKeys []string
	RateLimit     int // requests per second per API key
	Verbose       bool
	LogFormat     string // "json", "text" or "color"; empty picks by environment
}

// ResolvedLogFormat returns LogFormat, or the environment default when unset.
func (c Config) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	switch c.Env {
	case Production:
		return "json"
	case Test:
		return "text"
	default:
		return "color"
	}
}
