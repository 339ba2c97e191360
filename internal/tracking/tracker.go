package tracking

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/rtree"

	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/logging"
	"bharatbus.in/internal/utils"
)

// Tracker holds the current vehicle positions and a spatial index over them.
type Tracker struct {
	config Config
	clock  clock.Clock

	mu          sync.RWMutex
	vehicles    []Vehicle
	byID        map[string]int
	index       *rtree.RTreeG[int]
	lastRefresh time.Time

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewTracker loads the seeded fleet. Realtime polling starts with Start.
func NewTracker(config Config) *Tracker {
	c := config.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	t := &Tracker{
		config:       config,
		clock:        c,
		shutdownChan: make(chan struct{}),
	}
	seeds := make([]Vehicle, len(config.Seeds))
	for i, v := range config.Seeds {
		v.Source = SourceSeed
		v.UpdatedAt = c.Now()
		seeds[i] = v
	}
	t.replace(seeds)
	return t
}

// HasRealtimeFeed reports whether a GTFS-RT feed is configured.
func (t *Tracker) HasRealtimeFeed() bool {
	return t.config.VehiclePositionsURL != ""
}

// Start polls the realtime feed in the background until Shutdown. It does
// nothing without a feed.
func (t *Tracker) Start(ctx context.Context) {
	if !t.HasRealtimeFeed() {
		return
	}
	t.wg.Add(1)
	go t.refreshPeriodically(ctx)
}

func (t *Tracker) refreshPeriodically(ctx context.Context) {
	defer t.wg.Done()

	logger := slog.Default().With(slog.String("component", "vehicle_tracker"))

	interval := t.config.RefreshInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		refreshCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		if err := t.Refresh(refreshCtx); err != nil {
			logging.LogError(logger, "Error refreshing vehicle positions", err,
				slog.String("source", t.config.VehiclePositionsURL))
		}
		cancel()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-t.shutdownChan:
			logging.LogOperation(logger, "shutting_down_vehicle_refresh")
			return
		}
	}
}

// Refresh fetches the realtime feed once and replaces the tracked vehicles.
// On error the previous positions are kept.
func (t *Tracker) Refresh(ctx context.Context) error {
	feed, err := loadRealtimeData(ctx, t.config.VehiclePositionsURL, t.config.headers())
	if err != nil {
		return err
	}
	vehicles := vehiclesFromFeed(feed.Vehicles, t.clock.Now())
	t.replace(vehicles)

	if t.config.Verbose {
		logging.LogOperation(slog.Default().With(slog.String("component", "vehicle_tracker")),
			"vehicle_positions_refreshed",
			slog.Int("feed_vehicles", len(feed.Vehicles)),
			slog.Int("tracked", len(vehicles)))
	}
	return nil
}

// replace swaps the vehicle set and rebuilds the index.
func (t *Tracker) replace(vehicles []Vehicle) {
	slices.SortFunc(vehicles, func(a, b Vehicle) int {
		return strings.Compare(a.ID, b.ID)
	})

	byID := make(map[string]int, len(vehicles))
	index := &rtree.RTreeG[int]{}
	for i, v := range vehicles {
		byID[v.ID] = i
		point := [2]float64{v.Lon, v.Lat}
		index.Insert(point, point, i)
	}

	t.mu.Lock()
	t.vehicles = vehicles
	t.byID = byID
	t.index = index
	t.lastRefresh = t.clock.Now()
	t.mu.Unlock()

	if t.config.OnRefresh != nil {
		t.config.OnRefresh(len(vehicles))
	}
}

// LastRefresh is when the vehicle set was last replaced.
func (t *Tracker) LastRefresh() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastRefresh
}

// Vehicles returns every fresh vehicle ordered by ID.
func (t *Tracker) Vehicles() []Vehicle {
	now := t.clock.Now()
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Vehicle, 0, len(t.vehicles))
	for _, v := range t.vehicles {
		if !v.stale(now) {
			result = append(result, v)
		}
	}
	return result
}

// Vehicle looks up one fresh vehicle.
func (t *Tracker) Vehicle(id string) (Vehicle, bool) {
	now := t.clock.Now()
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.byID[id]
	if !ok || t.vehicles[i].stale(now) {
		return Vehicle{}, false
	}
	return t.vehicles[i], true
}

// VehiclesForRoute returns the fresh vehicles serving routeID.
func (t *Tracker) VehiclesForRoute(routeID string) []Vehicle {
	now := t.clock.Now()
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Vehicle, 0)
	for _, v := range t.vehicles {
		if v.RouteID == routeID && !v.stale(now) {
			result = append(result, v)
		}
	}
	return result
}

// VehiclesNear returns fresh vehicles within radius meters of (lat, lon),
// nearest first.
func (t *Tracker) VehiclesNear(lat, lon, radius float64) []NearbyVehicle {
	now := t.clock.Now()
	bounds := utils.CalculateBounds(lat, lon, radius)

	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]NearbyVehicle, 0)
	t.index.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, i int) bool {
			v := t.vehicles[i]
			if v.stale(now) {
				return true
			}
			if d := utils.Distance(lat, lon, v.Lat, v.Lon); d <= radius {
				result = append(result, NearbyVehicle{Vehicle: v, DistanceMeters: d})
			}
			return true
		})

	slices.SortFunc(result, func(a, b NearbyVehicle) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

// Shutdown stops the refresh loop. It is safe to call more than once.
func (t *Tracker) Shutdown() {
	t.shutdownOnce.Do(func() {
		close(t.shutdownChan)
		t.wg.Wait()
	})
}
