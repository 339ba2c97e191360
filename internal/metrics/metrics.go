// Package metrics exposes the service's Prometheus instruments on a private
// registry.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bharatbus"

// Metrics holds every instrument the service records.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RouteSearchesTotal  *prometheus.CounterVec
	RouteSearchResults  prometheus.Histogram
	CatalogRoutes       prometheus.Gauge
	CatalogReloadsTotal prometheus.Counter
	TrackedVehicles     prometheus.Gauge
	TicketsHeld         prometheus.Gauge

	// catalog store connection pool
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	logger *slog.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger registers all instruments. logger receives collector
// failures and may be nil.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RouteSearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_searches_total",
			Help:      "Route searches by whether the result list was truncated",
		}, []string{"truncated"}),
		RouteSearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "route_search_results",
			Help:      "Number of routes matched per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		CatalogRoutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_routes",
			Help:      "Routes in the current catalog snapshot",
		}),
		CatalogReloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog snapshots published",
		}),
		TrackedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_vehicles",
			Help:      "Vehicles held by the tracker after the last refresh",
		}),
		TicketsHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tickets_held",
			Help:      "Tickets booked since start and held in memory",
		}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open catalog database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Number of catalog database connections currently in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle catalog database connections",
		}),
		DBWaitSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_wait_seconds_total",
			Help:      "Total time blocked waiting for a catalog database connection",
		}),
		logger: logger,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RouteSearchesTotal,
		m.RouteSearchResults,
		m.CatalogRoutes,
		m.CatalogReloadsTotal,
		m.TrackedVehicles,
		m.TicketsHeld,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitSecondsTotal,
	)

	return m
}

// ObserveRouteSearch records one search and how many routes it matched
// before truncation.
func (m *Metrics) ObserveRouteSearch(matched int, truncated bool) {
	m.RouteSearchesTotal.WithLabelValues(strconv.FormatBool(truncated)).Inc()
	m.RouteSearchResults.Observe(float64(matched))
}

// CatalogReloaded records a published snapshot of n routes.
func (m *Metrics) CatalogReloaded(n int) {
	m.CatalogRoutes.Set(float64(n))
	m.CatalogReloadsTotal.Inc()
}

func (m *Metrics) SetTrackedVehicles(n int) {
	m.TrackedVehicles.Set(float64(n))
}

func (m *Metrics) SetTicketsHeld(n int) {
	m.TicketsHeld.Set(float64(n))
}

// StartDBStatsCollector samples db.Stats every interval until Shutdown.
// Only the first call starts a collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// register with the WaitGroup before Shutdown can observe cancel
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("panic in DB stats collector", "error", r)
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastWait time.Duration
		for {
			select {
			case <-ticker.C:
				lastWait = m.recordDBStats(db.Stats(), lastWait)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Metrics) recordDBStats(stats sql.DBStats, lastWait time.Duration) time.Duration {
	m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
	m.DBConnectionsInUse.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
	if delta := stats.WaitDuration - lastWait; delta > 0 {
		m.DBWaitSecondsTotal.Add(delta.Seconds())
	}
	return stats.WaitDuration
}

// Shutdown stops the collector and waits for it. Safe to call repeatedly.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
