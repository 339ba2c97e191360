// Package utils holds small helpers shared by the HTTP layer and the
// tracker: great-circle distances, bounding boxes and request parameters.
package utils

import "math"

// RadiusOfEarthInMeters is the mean Earth radius.
const RadiusOfEarthInMeters = 6371010.0

// CoordinateBounds is a latitude/longitude bounding box.
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b CoordinateBounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance in meters. City-scale pairs
// (under about 0.2 degrees apart) use the equirectangular approximation.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := toRadians(lon2-lon1) * math.Cos(toRadians(lat1+lat2)/2)
		y := toRadians(lat2 - lat1)
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaLon := toRadians(lon2 - lon1)

	y := math.Sqrt(math.Pow(math.Cos(phi2)*math.Sin(deltaLon), 2) +
		math.Pow(math.Cos(phi1)*math.Sin(phi2)-math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon), 2))
	x := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// CalculateBounds returns the box that encloses a circle of radius meters
// around the point.
func CalculateBounds(lat, lon, radius float64) CoordinateBounds {
	latOffset := radius / RadiusOfEarthInMeters
	lonOffset := radius / (math.Cos(toRadians(lat)) * RadiusOfEarthInMeters)

	latOffsetDeg := latOffset * 180 / math.Pi
	lonOffsetDeg := lonOffset * 180 / math.Pi

	return CoordinateBounds{
		MinLat: lat - latOffsetDeg,
		MaxLat: lat + latOffsetDeg,
		MinLon: lon - lonOffsetDeg,
		MaxLon: lon + lonOffsetDeg,
	}
}
