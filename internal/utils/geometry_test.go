package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		tolerance float64
	}{
		{name: "same point", lat1: 22.5839, lon1: 88.3424, lat2: 22.5839, lon2: 88.3424, expected: 0, tolerance: 0.001},
		{name: "Howrah to Esplanade", lat1: 22.5839, lon1: 88.3424, lat2: 22.5646, lon2: 88.3510, expected: 2320, tolerance: 50},
		{name: "Kolkata to Siliguri", lat1: 22.5726, lon1: 88.3639, lat2: 26.7271, lon2: 88.3953, expected: 462000, tolerance: 2000},
		{name: "quarter of the equator", lat1: 0, lon1: 0, lat2: 0, lon2: 90, expected: 10007543, tolerance: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.tolerance)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	assert.InDelta(t,
		Distance(22.6447, 88.4342, 22.5698, 88.3631),
		Distance(22.5698, 88.3631, 22.6447, 88.4342),
		0.0001)
}

func TestCalculateBounds(t *testing.T) {
	lat, lon := 22.5726, 88.3639
	bounds := CalculateBounds(lat, lon, 1000)

	assert.InDelta(t, 0.01798, bounds.MaxLat-bounds.MinLat, 0.0002)
	assert.InDelta(t, 0.01946, bounds.MaxLon-bounds.MinLon, 0.0002)
	assert.True(t, bounds.Contains(lat, lon))

	// Every point in the circle lies inside the box.
	assert.True(t, bounds.Contains(lat+0.0089, lon))
	assert.True(t, bounds.Contains(lat, lon-0.0096))
	assert.False(t, bounds.Contains(lat+0.02, lon))
}
