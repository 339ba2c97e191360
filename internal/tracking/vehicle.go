package tracking

import (
	"time"

	"bharatbus.in/internal/appconf"
)

// Source values for Vehicle.Source.
const (
	SourceSeed     = "seed"
	SourceRealtime = "gtfs-rt"
)

// StaleThreshold is how old a realtime position may get before it is no
// longer reported.
const StaleThreshold = 15 * time.Minute

// Vehicle is the last known position of one bus.
type Vehicle struct {
	ID        string
	Number    string
	RouteID   string
	Lat       float64
	Lon       float64
	Bearing   *float64
	UpdatedAt time.Time
	Source    string
}

// NearbyVehicle pairs a vehicle with its distance from a search point.
type NearbyVehicle struct {
	Vehicle
	DistanceMeters float64
}

// DefaultFleet is the demo fleet used when no vehicles are configured:
// bus 81 near Madhyamgram and bus 42E near Esplanade.
func DefaultFleet() []Vehicle {
	return []Vehicle{
		{ID: "1", Number: "81", RouteID: "1", Lat: 22.6447, Lon: 88.4342, Source: SourceSeed},
		{ID: "2", Number: "42E", RouteID: "2", Lat: 22.5698, Lon: 88.3631, Source: SourceSeed},
	}
}

func seedsFromConfig(seeds []appconf.VehicleSeed) []Vehicle {
	vehicles := make([]Vehicle, 0, len(seeds))
	for _, s := range seeds {
		number := s.Number
		if number == "" {
			number = s.ID
		}
		vehicles = append(vehicles, Vehicle{
			ID:      s.ID,
			Number:  number,
			RouteID: s.RouteID,
			Lat:     s.Lat,
			Lon:     s.Lon,
			Source:  SourceSeed,
		})
	}
	return vehicles
}

// stale reports whether a realtime vehicle is too old to show. Seeded
// vehicles never go stale.
func (v Vehicle) stale(now time.Time) bool {
	if v.Source != SourceRealtime {
		return false
	}
	return now.Sub(v.UpdatedAt) > StaleThreshold
}
