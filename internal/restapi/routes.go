package restapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache tiers in seconds.
const (
	cacheCatalog  = 300
	cacheRealtime = 30
	cacheNone     = 0
)

// SetRoutes registers every API endpoint on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	api.handle(mux, "GET /api/where/routes.json", cacheCatalog, api.routesHandler)
	api.handle(mux, "GET /api/where/route/{id}", cacheCatalog, api.routeHandler)
	api.handle(mux, "GET /api/where/search/route.json", cacheCatalog, api.routeSearchHandler)
	api.handle(mux, "GET /api/where/search/endpoints.json", cacheCatalog, api.endpointsSearchHandler)
	api.handle(mux, "GET /api/where/shape/{id}", cacheCatalog, api.shapeHandler)
	api.handle(mux, "GET /api/where/config.json", cacheCatalog, api.configHandler)

	api.handle(mux, "GET /api/where/vehicles.json", cacheRealtime, api.vehiclesHandler)
	api.handle(mux, "GET /api/where/vehicle/{id}", cacheRealtime, api.vehicleHandler)
	api.handle(mux, "GET /api/where/vehicles-for-route/{id}", cacheRealtime, api.vehiclesForRouteHandler)
	api.handle(mux, "GET /api/where/vehicles-for-location.json", cacheRealtime, api.vehiclesForLocationHandler)
	api.handle(mux, "GET /api/where/current-time.json", cacheRealtime, api.currentTimeHandler)

	api.handle(mux, "POST /api/where/tickets", cacheNone, api.bookTicketHandler)
	api.handle(mux, "GET /api/where/tickets/me", cacheNone, api.myTicketsHandler)
	api.handle(mux, "GET /api/where/tickets/{id}", cacheNone, api.ticketHandler)

	mux.Handle("GET /healthz", CacheControlMiddleware(cacheNone, http.HandlerFunc(api.healthHandler)))

	if api.Application != nil && api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// handle wraps an endpoint with cache headers, the API key check and the
// per-key rate limit, in that order from the outside in.
func (api *RestAPI) handle(mux *http.ServeMux, pattern string, cacheSeconds int, handler http.HandlerFunc) {
	limited := api.rateLimiter.Handler()(handler)
	mux.Handle(pattern, CacheControlMiddleware(cacheSeconds, api.requireAPIKey(limited)))
}

func (api *RestAPI) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
