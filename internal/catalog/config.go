package catalog

import (
	"time"

	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/clock"
)

// Config holds the catalog settings for the Manager.
type Config struct {
	// CatalogURL is a local path or an http(s) URL. Empty selects the
	// embedded default catalog.
	CatalogURL      string
	AuthHeaderKey   string
	AuthHeaderValue string
	DataPath        string
	ReloadInterval  time.Duration
	Env             appconf.Environment
	Verbose         bool

	Clock clock.Clock
	// OnReload, when set, is called after every successful snapshot swap.
	OnReload func(*Snapshot)
}

// FromConfigData converts the file level settings.
func FromConfigData(data appconf.CatalogConfigData) Config {
	return Config{
		CatalogURL:      data.CatalogURL,
		AuthHeaderKey:   data.AuthHeaderKey,
		AuthHeaderValue: data.AuthHeaderValue,
		DataPath:        data.DataPath,
		ReloadInterval:  time.Duration(data.ReloadInterval) * time.Second,
		Env:             data.Env,
		Verbose:         data.Verbose,
	}
}

func (c Config) isRemote() bool {
	return isHTTPSource(c.CatalogURL)
}
