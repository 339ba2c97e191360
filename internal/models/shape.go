package models

// ShapeModel is a route path in Google encoded polyline format.
type ShapeModel struct {
	Length int    `json:"length"`
	Levels string `json:"levels"`
	Points string `json:"points"`
}
