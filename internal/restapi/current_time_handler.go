package restapi

import (
	"net/http"

	"bharatbus.in/internal/models"
)

// currentTimeHandler reports the server clock so clients can judge how
// fresh vehicle positions are.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	timeData := models.NewCurrentTimeData(api.Clock.Now())
	response := models.NewEntryResponse(timeData, models.NewEmptyReferences(), api.Clock)

	api.sendResponse(w, r, response)
}
