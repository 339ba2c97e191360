package restapi

import (
	"time"

	"bharatbus.in/internal/app"
	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/tickets"
)

// RestAPI serves the /api/where endpoints over an Application.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI builds the API and its per-key rate limiter, and an empty
// ticket store when the application has none. Call Shutdown to stop the
// limiter's cleanup loop.
func NewRestAPI(application *app.Application) *RestAPI {
	if application.Clock == nil {
		application.Clock = clock.RealClock{}
	}
	if application.Tickets == nil {
		application.Tickets = tickets.NewStore(tickets.Config{Clock: application.Clock})
	}
	return &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(
			application.Config.RateLimit,
			time.Second,
			application.Config.ExemptApiKeys,
			application.Clock,
		),
	}
}

// Shutdown stops the rate limiter and the application's background work.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
	if api.Application != nil {
		api.Application.Shutdown()
	}
}
