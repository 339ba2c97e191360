package restapi

import (
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
)

func routeModel(snapshot *catalog.Snapshot, record routes.RouteRecord) models.RouteModel {
	return models.NewRouteModel(record, snapshot.Category(record.ID), len(snapshot.Path(record.ID)) > 1)
}

func routeModels(snapshot *catalog.Snapshot, records []routes.RouteRecord) []models.RouteModel {
	list := make([]models.RouteModel, 0, len(records))
	for _, record := range records {
		list = append(list, routeModel(snapshot, record))
	}
	return list
}

func groupModels(snapshot *catalog.Snapshot, groups []routes.Group) []models.RouteGroupModel {
	result := make([]models.RouteGroupModel, 0, len(groups))
	for _, group := range groups {
		result = append(result, models.RouteGroupModel{
			Category: group.Category,
			Routes:   routeModels(snapshot, group.Routes),
		})
	}
	return result
}

// routeReferences lists the operators of list. Routes themselves are
// already in the payload.
func routeReferences(list []models.RouteModel) models.ReferencesModel {
	references := models.NewEmptyReferences()
	references.Operators = models.OperatorReferences(list)
	return references
}
