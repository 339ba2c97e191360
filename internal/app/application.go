package app

import (
	"log/slog"

	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/metrics"
	"bharatbus.in/internal/tickets"
	"bharatbus.in/internal/tracking"
)

// Application holds the dependencies shared by HTTP handlers, helpers and
// middleware.
type Application struct {
	Config         appconf.Config
	CatalogConfig  catalog.Config
	TrackingConfig tracking.Config
	Logger         *slog.Logger
	Catalog        *catalog.Manager
	Tracker        *tracking.Tracker
	Tickets        *tickets.Store
	Clock          clock.Clock
	Metrics        *metrics.Metrics
}

// Shutdown stops background work owned by the application.
func (app *Application) Shutdown() {
	if app.Tracker != nil {
		app.Tracker.Shutdown()
	}
	if app.Catalog != nil {
		app.Catalog.Shutdown()
	}
	if app.Metrics != nil {
		app.Metrics.Shutdown()
	}
}
