package restapi

import (
	"net/http"

	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
)

// endpointsSearchHandler matches routes by origin and destination text.
func (api *RestAPI) endpointsSearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	snapshot := api.Catalog.Snapshot()

	matched := routes.MatchEndpoints(snapshot.Routes, query.Get("from"), query.Get("to"))
	list := routeModels(snapshot, matched)

	response := models.NewListResponse(list, routeReferences(list), false, api.Clock)
	api.sendResponse(w, r, response)
}
