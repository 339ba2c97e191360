// Package routes holds the bus route record model and the pure search filter
// used by the routes browser: substring matching with a bounded edit-distance
// fallback, an inclusive fare range and operator tags.
package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RouteID identifies a route. Catalogs may supply it as a JSON number or a
// JSON string; it is always held as a string.
type RouteID string

// UnmarshalJSON accepts a JSON string or number. Null, booleans and other
// values are rejected.
func (id *RouteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("route id must not be null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RouteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("route id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("route id %q is not a number: %w", n, err)
	}
	*id = RouteID(n.String())
	return nil
}

// RouteRecord is a single bus service listing. Records are immutable once
// loaded from the catalog.
type RouteRecord struct {
	ID        RouteID  `json:"id"`
	BusNumber string   `json:"busNumber"`
	Operator  string   `json:"operator"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Departure string   `json:"departure"`
	Arrival   string   `json:"arrival,omitempty"`
	Duration  string   `json:"duration"`
	Fare      float64  `json:"fare"`
	Stops     []string `json:"stops"`
	Frequency string   `json:"frequency"`
	Rating    *float64 `json:"rating,omitempty"`
}

// PriceRange is an inclusive fare bound. Callers keep Min <= Max.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether fare lies within the range, both ends inclusive.
func (p PriceRange) Contains(fare float64) bool {
	return fare >= p.Min && fare <= p.Max
}

// FilterCriteria is built fresh for every search.
type FilterCriteria struct {
	// Query must already be normalized with NormalizeQuery.
	Query        string
	PriceRange   PriceRange
	OperatorTags []string
}

// NewFilterCriteria normalizes the raw query and drops blank operator tags.
func NewFilterCriteria(rawQuery string, priceRange PriceRange, operatorTags []string) FilterCriteria {
	tags := make([]string, 0, len(operatorTags))
	for _, tag := range operatorTags {
		if normalized := NormalizeQuery(tag); normalized != "" {
			tags = append(tags, normalized)
		}
	}
	return FilterCriteria{
		Query:        NormalizeQuery(rawQuery),
		PriceRange:   priceRange,
		OperatorTags: tags,
	}
}

// DefaultPriceRange spans from zero to the highest fare in routes, which is
// where the fare sliders start.
func DefaultPriceRange(routes []RouteRecord) PriceRange {
	bounds := PriceRange{}
	for _, route := range routes {
		if route.Fare > bounds.Max {
			bounds.Max = route.Fare
		}
	}
	return bounds
}

// FareBounds returns the lowest and highest fare in routes. An empty slice
// yields the zero range.
func FareBounds(routes []RouteRecord) PriceRange {
	if len(routes) == 0 {
		return PriceRange{}
	}
	bounds := PriceRange{Min: routes[0].Fare, Max: routes[0].Fare}
	for _, route := range routes[1:] {
		if route.Fare < bounds.Min {
			bounds.Min = route.Fare
		}
		if route.Fare > bounds.Max {
			bounds.Max = route.Fare
		}
	}
	return bounds
}
