package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bharatbus.in/internal/logging"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports 503 until the catalog is loaded and its store
// answers a ping.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.Catalog == nil {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "catalog not initialized",
		})
		return
	}

	if !api.Catalog.IsReady() {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "starting",
			Detail: "route catalog is still loading",
		})
		return
	}

	if !api.Catalog.IsHealthy(r.Context()) {
		logging.FromContext(r.Context()).Warn("catalog health check failed",
			slog.String("component", "restapi"))
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "database connection failed",
		})
		return
	}

	writeHealth(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func writeHealth(w http.ResponseWriter, status int, body HealthResponse) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
