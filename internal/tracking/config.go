package tracking

import (
	"time"

	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/clock"
)

// Config selects where vehicle positions come from.
type Config struct {
	VehiclePositionsURL     string
	RealTimeAuthHeaderKey   string
	RealTimeAuthHeaderValue string
	RefreshInterval         time.Duration
	Seeds                   []Vehicle
	Verbose                 bool

	Clock clock.Clock
	// OnRefresh, when set, receives the vehicle count after each refresh.
	OnRefresh func(count int)
}

// FromConfigData converts the file level settings. An empty vehicle list
// selects DefaultFleet.
func FromConfigData(data appconf.TrackingConfigData) Config {
	seeds := seedsFromConfig(data.Vehicles)
	if len(seeds) == 0 {
		seeds = DefaultFleet()
	}
	interval := time.Duration(data.RefreshInterval) * time.Second
	if interval <= 0 {
		interval = appconf.DefaultRefreshInterval * time.Second
	}
	return Config{
		VehiclePositionsURL:     data.VehiclePositionsURL,
		RealTimeAuthHeaderKey:   data.RealTimeAuthHeaderKey,
		RealTimeAuthHeaderValue: data.RealTimeAuthHeaderValue,
		RefreshInterval:         interval,
		Seeds:                   seeds,
		Verbose:                 data.Verbose,
	}
}

func (c Config) headers() map[string]string {
	if c.RealTimeAuthHeaderKey == "" || c.RealTimeAuthHeaderValue == "" {
		return nil
	}
	return map[string]string{c.RealTimeAuthHeaderKey: c.RealTimeAuthHeaderValue}
}
