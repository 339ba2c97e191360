package models

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// VehicleStatusModel is the last known position of a bus.
type VehicleStatusModel struct {
	VehicleID      string   `json:"vehicleId"`
	Number         string   `json:"number"`
	RouteID        string   `json:"routeId"`
	Location       Location `json:"location"`
	Bearing        *float64 `json:"bearing,omitempty"`
	LastUpdateTime int64    `json:"lastUpdateTime"`
	Source         string   `json:"source"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}
