package models

import "bharatbus.in/internal/routes"

// RouteModel is a catalog route as served by the API.
type RouteModel struct {
	routes.RouteRecord
	Category string `json:"category"`
	HasShape bool   `json:"hasShape"`
}

type RouteGroupModel struct {
	Category string       `json:"category"`
	Routes   []RouteModel `json:"routes"`
}

func NewRouteModel(record routes.RouteRecord, category string, hasShape bool) RouteModel {
	return RouteModel{RouteRecord: record, Category: category, HasShape: hasShape}
}
