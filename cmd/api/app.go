package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"bharatbus.in/internal/app"
	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/logging"
	"bharatbus.in/internal/metrics"
	"bharatbus.in/internal/restapi"
	"bharatbus.in/internal/tickets"
	"bharatbus.in/internal/tracking"
	"bharatbus.in/internal/webui"
)

const (
	dbStatsInterval = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

// ParseAPIKeys splits a comma-separated list, dropping blank entries.
func ParseAPIKeys(apiKeysFlag string) []string {
	keys := []string{}
	for _, key := range strings.Split(apiKeysFlag, ",") {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}

// BuildApplication loads the catalog, seeds the tracker, opens an empty
// ticket store and registers metrics. The returned Application keeps the
// configs as given; the metric hooks are attached to the copies handed to
// the catalog and tracker.
func BuildApplication(cfg appconf.Config, catalogCfg catalog.Config, trackingCfg tracking.Config) (*app.Application, error) {
	logger := slog.Default().With(slog.String("component", "app"))
	m := metrics.NewWithLogger(logger)

	managerCfg := catalogCfg
	previousReload := managerCfg.OnReload
	managerCfg.OnReload = func(s *catalog.Snapshot) {
		m.CatalogReloaded(s.Len())
		if previousReload != nil {
			previousReload(s)
		}
	}

	manager, err := catalog.NewManager(context.Background(), managerCfg)
	if err != nil {
		m.Shutdown()
		return nil, fmt.Errorf("failed to initialize catalog manager: %w", err)
	}
	m.StartDBStatsCollector(manager.DB().DB, dbStatsInterval)

	trackerCfg := trackingCfg
	previousRefresh := trackerCfg.OnRefresh
	trackerCfg.OnRefresh = func(n int) {
		m.SetTrackedVehicles(n)
		if previousRefresh != nil {
			previousRefresh(n)
		}
	}
	tracker := tracking.NewTracker(trackerCfg)

	clk := clock.RealClock{}
	store := tickets.NewStore(tickets.Config{Clock: clk, OnBook: m.SetTicketsHeld})

	return &app.Application{
		Config:         cfg,
		CatalogConfig:  catalogCfg,
		TrackingConfig: trackingCfg,
		Logger:         logger,
		Catalog:        manager,
		Tracker:        tracker,
		Tickets:        store,
		Clock:          clk,
		Metrics:        m,
	}, nil
}

// CreateServer wires the REST API, the debug page and the middleware chain.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webui.NewWebUI(coreApp).SetWebUIRoutes(mux)

	handler := restapi.MetricsHandler(coreApp.Metrics)(mux)

	compress, err := restapi.NewCompressionMiddleware(gzhttp.DefaultMinSize)
	if err != nil {
		logging.LogError(coreApp.Logger, "gzip middleware unavailable, serving uncompressed", err)
	} else {
		handler = compress(handler)
	}

	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return srv, api
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// and stops background work.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := coreApp.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if coreApp.Tracker != nil {
		coreApp.Tracker.Start(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "starting_server",
			slog.String("addr", srv.Addr),
			slog.String("env", coreApp.Config.Env.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logging.LogOperation(logger, "shutting_down_server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
		cancel()
	}

	api.Shutdown()
	logging.LogOperation(logger, "server_stopped")
	return runErr
}
