package restapi

import (
	"net/http"

	"bharatbus.in/internal/models"
)

// routesHandler returns the whole catalog, flat and grouped by category,
// with the fare range the route browser starts from.
func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Catalog.Snapshot()

	list := routeModels(snapshot, snapshot.Routes)
	priceRange := snapshot.DefaultPriceRange()

	response := models.NewGroupedListResponse(
		list,
		groupModels(snapshot, snapshot.Groups),
		&priceRange,
		routeReferences(list),
		false,
		api.Clock,
	)
	api.sendResponse(w, r, response)
}
