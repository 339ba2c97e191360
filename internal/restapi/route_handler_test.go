package restapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/routes.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, model.Version)

	data := dataMap(t, model)
	list := dataList(t, model)
	assert.Len(t, list, 12)

	groups, ok := data["groups"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{
		"Public / STU (NBSTC examples)",
		"WBTC / CSTC & Government (Kolkata area examples)",
		"Private / Other / Mixed (sample private and SD series)",
		"Live tracked (Kolkata city)",
	}, collectStrings(t, groups, "category"))

	priceRange := data["priceRange"].(map[string]interface{})
	assert.Equal(t, 0.0, priceRange["min"])
	assert.Equal(t, 150.0, priceRange["max"])
}

func TestRouteHandlerRequiresValidApiKey(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/route/2001.json?key=invalid")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, model.Code)
	assert.Equal(t, "permission denied", model.Text)
}

func TestRouteHandlerEndToEnd(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/route/2001.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", model.Text)

	entry := dataEntry(t, model)
	assert.Equal(t, "2001", entry["id"])
	assert.Equal(t, "E-1", entry["busNumber"])
	assert.Equal(t, "WBTC", entry["operator"])
	assert.Equal(t, 20.0, entry["fare"])
	assert.Equal(t, "WBTC / CSTC & Government (Kolkata area examples)", entry["category"])
	assert.Equal(t, false, entry["hasShape"])
	assert.Equal(t, []interface{}{"Jadavpur", "Tollygunge", "Kalighat", "Howrah"}, entry["stops"])

	references := dataMap(t, model)["references"].(map[string]interface{})
	operators := references["operators"].([]interface{})
	assert.Equal(t, []string{"WBTC"}, collectStrings(t, operators, "name"))
}

func TestRouteHandlerWithoutJSONSuffix(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/route/2?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := dataEntry(t, model)
	assert.Equal(t, "42E", entry["busNumber"])
	assert.Equal(t, true, entry["hasShape"])
}

func TestInvalidRouteID(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/route/9999.json?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
	assert.Equal(t, "resource not found", model.Text)
}

func TestRouteHandlerRejectsOversizedID(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/route/"+strings.Repeat("x", 129)+"?key=TEST")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fieldErrorsOf(t, model), "id")
}

func TestShapeHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/shape/1.json?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := dataEntry(t, model)
	assert.Equal(t, 4.0, entry["length"])
	points, ok := entry["points"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, points)
}

func TestShapeHandlerWithoutPath(t *testing.T) {
	tests := []string{"1001", "unknown"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, resp, _ := serveAndRetrieveEndpoint(t, "/api/where/shape/"+id+".json?key=TEST")
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}
