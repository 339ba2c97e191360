package restapi

import (
	"net/http"

	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
	"bharatbus.in/internal/tracking"
	"bharatbus.in/internal/utils"
)

const (
	defaultVehicleSearchRadius = 2000.0
	maxVehicleSearchRadius     = 50000.0
)

func vehicleModel(v tracking.Vehicle) models.VehicleStatusModel {
	return models.VehicleStatusModel{
		VehicleID:      v.ID,
		Number:         v.Number,
		RouteID:        v.RouteID,
		Location:       models.Location{Lat: v.Lat, Lon: v.Lon},
		Bearing:        v.Bearing,
		LastUpdateTime: v.UpdatedAt.UnixMilli(),
		Source:         v.Source,
	}
}

// vehicleReferences returns the catalog routes the vehicles serve, in
// first-seen order, with their operators.
func vehicleReferences(snapshot *catalog.Snapshot, vehicles []models.VehicleStatusModel) models.ReferencesModel {
	references := models.NewEmptyReferences()
	seen := make(map[string]struct{})
	for _, v := range vehicles {
		if _, ok := seen[v.RouteID]; ok || v.RouteID == "" {
			continue
		}
		seen[v.RouteID] = struct{}{}
		if record, ok := snapshot.Route(routes.RouteID(v.RouteID)); ok {
			references.Routes = append(references.Routes, routeModel(snapshot, record))
		}
	}
	references.Operators = models.OperatorReferences(references.Routes)
	return references
}

func (api *RestAPI) sendVehicleList(w http.ResponseWriter, r *http.Request, list []models.VehicleStatusModel) {
	references := vehicleReferences(api.Catalog.Snapshot(), list)
	response := models.NewListResponse(list, references, false, api.Clock)
	api.sendResponse(w, r, response)
}

func (api *RestAPI) vehiclesHandler(w http.ResponseWriter, r *http.Request) {
	vehicles := api.Tracker.Vehicles()
	list := make([]models.VehicleStatusModel, 0, len(vehicles))
	for _, v := range vehicles {
		list = append(list, vehicleModel(v))
	}
	api.sendVehicleList(w, r, list)
}

func (api *RestAPI) vehicleHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r)
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"id": {err.Error()}})
		return
	}

	vehicle, ok := api.Tracker.Vehicle(id)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	entry := vehicleModel(vehicle)
	references := vehicleReferences(api.Catalog.Snapshot(), []models.VehicleStatusModel{entry})
	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.Clock))
}

// vehiclesForRouteHandler lists the buses on a route. A route that is
// neither in the catalog nor served by any tracked bus is a 404.
func (api *RestAPI) vehiclesForRouteHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r)
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"id": {err.Error()}})
		return
	}

	vehicles := api.Tracker.VehiclesForRoute(id)
	if _, known := api.Catalog.Snapshot().Route(routes.RouteID(id)); !known && len(vehicles) == 0 {
		api.sendNotFound(w, r)
		return
	}

	list := make([]models.VehicleStatusModel, 0, len(vehicles))
	for _, v := range vehicles {
		list = append(list, vehicleModel(v))
	}
	api.sendVehicleList(w, r, list)
}

// vehiclesForLocationHandler lists buses within radius meters of lat/lon,
// nearest first. Radii above the maximum are clamped.
func (api *RestAPI) vehiclesForLocationHandler(w http.ResponseWriter, r *http.Request) {
	fieldErrors := FieldErrors{}

	lat := requiredCoordinate(r, "lat", 90, fieldErrors)
	lon := requiredCoordinate(r, "lon", 180, fieldErrors)

	radius := defaultVehicleSearchRadius
	if v, present, err := utils.ParseFloatParam(r, "radius"); err != nil {
		fieldErrors.add("radius", err.Error())
	} else if present {
		if v <= 0 {
			fieldErrors.add("radius", "radius must be positive")
		} else {
			radius = min(v, maxVehicleSearchRadius)
		}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	nearby := api.Tracker.VehiclesNear(lat, lon, radius)
	list := make([]models.VehicleStatusModel, 0, len(nearby))
	for _, n := range nearby {
		model := vehicleModel(n.Vehicle)
		distance := n.DistanceMeters
		model.DistanceMeters = &distance
		list = append(list, model)
	}
	api.sendVehicleList(w, r, list)
}

func requiredCoordinate(r *http.Request, name string, limit float64, fieldErrors FieldErrors) float64 {
	v, present, err := utils.ParseFloatParam(r, name)
	switch {
	case err != nil:
		fieldErrors.add(name, err.Error())
	case !present:
		fieldErrors.add(name, name+" is required")
	case v < -limit || v > limit:
		fieldErrors.add(name, name+" is out of range")
	}
	return v
}
