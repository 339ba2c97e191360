package restapi

import (
	"net/http"

	"github.com/twpayne/go-polyline"

	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
	"bharatbus.in/internal/utils"
)

// shapeHandler encodes a route's path as a Google polyline. Routes without
// at least two path points have no shape.
func (api *RestAPI) shapeHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r)
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"id": {err.Error()}})
		return
	}

	path := api.Catalog.Snapshot().Path(routes.RouteID(id))
	if len(path) < 2 {
		api.sendNotFound(w, r)
		return
	}

	coords := make([][]float64, 0, len(path))
	for _, point := range path {
		coords = append(coords, []float64{point.Lat, point.Lon})
	}

	shape := models.ShapeModel{
		Length: len(coords),
		Levels: "",
		Points: string(polyline.EncodeCoords(coords)),
	}

	response := models.NewEntryResponse(shape, models.NewEmptyReferences(), api.Clock)
	api.sendResponse(w, r, response)
}
