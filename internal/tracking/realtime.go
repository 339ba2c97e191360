package tracking

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"bharatbus.in/internal/logging"
)

const maxFeedSize = 25 * 1024 * 1024

// realtimeHTTPClient is used for every feed request. Its timeout stays below
// the per-refresh context timeout.
var realtimeHTTPClient = newRealtimeHTTPClient()

func newRealtimeHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}

func loadRealtimeData(ctx context.Context, source string, headers map[string]string) (*gtfs.Realtime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Add(key, value)
	}

	resp, err := realtimeHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GTFS-RT request: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_realtime_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtfs-rt fetch failed: %s returned %s", source, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > maxFeedSize {
		return nil, fmt.Errorf("GTFS-RT response exceeds size limit of %d bytes", maxFeedSize)
	}

	return gtfs.ParseRealtime(body, &gtfs.ParseRealtimeOptions{})
}

// vehiclesFromFeed keeps feed vehicles that have an ID and a position.
// Vehicles without a timestamp are stamped with fetchedAt.
func vehiclesFromFeed(feed []gtfs.Vehicle, fetchedAt time.Time) []Vehicle {
	vehicles := make([]Vehicle, 0, len(feed))
	for _, v := range feed {
		if v.ID == nil || v.ID.ID == "" {
			continue
		}
		if v.Position == nil || v.Position.Latitude == nil || v.Position.Longitude == nil {
			continue
		}

		vehicle := Vehicle{
			ID:        v.ID.ID,
			Number:    v.ID.ID,
			Lat:       float64(*v.Position.Latitude),
			Lon:       float64(*v.Position.Longitude),
			UpdatedAt: fetchedAt,
			Source:    SourceRealtime,
		}
		if v.ID.Label != "" {
			vehicle.Number = v.ID.Label
		}
		if v.Trip != nil {
			vehicle.RouteID = v.Trip.ID.RouteID
		}
		if v.Position.Bearing != nil {
			bearing := float64(*v.Position.Bearing)
			vehicle.Bearing = &bearing
		}
		if v.Timestamp != nil {
			vehicle.UpdatedAt = *v.Timestamp
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles
}
