package restapi

import (
	"net/http"

	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
	"bharatbus.in/internal/utils"
)

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	queryParamID := utils.ExtractIDFromParams(r)

	if err := utils.ValidateID(queryParamID); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"id": {err.Error()}})
		return
	}

	snapshot := api.Catalog.Snapshot()
	record, ok := snapshot.Route(routes.RouteID(queryParamID))
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	entry := routeModel(snapshot, record)
	references := routeReferences([]models.RouteModel{entry})

	response := models.NewEntryResponse(entry, references, api.Clock)
	api.sendResponse(w, r, response)
}
