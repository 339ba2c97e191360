package catalog

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"bharatbus.in/catalogdb"
	"bharatbus.in/internal/logging"
	"bharatbus.in/internal/routes"
)

const unknownOperator = "Other"

// ParseGTFS maps a GTFS static archive onto catalog entries. Each route is
// described by its longest trip; routes without trips are skipped.
func ParseGTFS(data []byte) ([]Entry, error) {
	staticData, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	logger := slog.Default().With(slog.String("component", "catalog_gtfs_import"))

	tripCounts := make(map[string]int)
	longest := make(map[string]*gtfs.ScheduledTrip)
	for i := range staticData.Trips {
		t := &staticData.Trips[i]
		if t.Route == nil || len(t.StopTimes) == 0 {
			continue
		}
		tripCounts[t.Route.Id]++
		if best, ok := longest[t.Route.Id]; !ok || len(t.StopTimes) > len(best.StopTimes) {
			longest[t.Route.Id] = t
		}
	}

	var (
		entries []Entry
		skipped int
	)
	for i := range staticData.Routes {
		r := &staticData.Routes[i]
		trip, ok := longest[r.Id]
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, routeEntry(r, trip, tripCounts[r.Id]))
	}

	logging.LogOperation(logger, "gtfs_catalog_parsed",
		slog.Int("routes", len(entries)),
		slog.Int("skipped_routes", skipped),
		slog.Int("warnings", len(staticData.Warnings)))

	return entries, nil
}

func routeEntry(r *gtfs.Route, trip *gtfs.ScheduledTrip, trips int) Entry {
	stopTimes := slices.Clone(trip.StopTimes)
	slices.SortStableFunc(stopTimes, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})

	operator := unknownOperator
	if r.Agency != nil && r.Agency.Name != "" {
		operator = r.Agency.Name
	}

	var (
		stops []string
		path  []catalogdb.Point
	)
	for _, st := range stopTimes {
		if st.Stop == nil {
			continue
		}
		stops = append(stops, pickFirstAvailable(st.Stop.Name, st.Stop.Id))
		if st.Stop.Latitude != nil && st.Stop.Longitude != nil {
			path = append(path, catalogdb.Point{Lat: *st.Stop.Latitude, Lon: *st.Stop.Longitude})
		}
	}

	first, last := stopTimes[0], stopTimes[len(stopTimes)-1]
	record := routes.RouteRecord{
		ID:        routes.RouteID(r.Id),
		BusNumber: pickFirstAvailable(r.ShortName, r.LongName, r.Id),
		Operator:  operator,
		Departure: formatClock(first.DepartureTime),
		Arrival:   formatClock(last.ArrivalTime),
		Duration:  formatDuration(last.ArrivalTime - first.DepartureTime),
		Stops:     stops,
		Frequency: formatTrips(trips),
	}
	if len(stops) > 0 {
		record.From = stops[0]
		record.To = stops[len(stops)-1]
	}

	return Entry{Category: operator, Route: record, Path: path}
}

// formatClock renders a GTFS time of day (which may pass 24:00) as "08:05 AM".
func formatClock(d time.Duration) string {
	d %= 24 * time.Hour
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("03:04 PM")
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func formatTrips(n int) string {
	if n == 1 {
		return "1 trip"
	}
	return fmt.Sprintf("%d trips", n)
}

func pickFirstAvailable(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
