package webui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bharatbus.in/internal/app"
	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/tickets"
	"bharatbus.in/internal/tracking"
)

func newTestWebUI(t *testing.T, env appconf.Environment) *WebUI {
	t.Helper()
	manager, err := catalog.NewManager(context.Background(), catalog.Config{
		DataPath: ":memory:",
		Env:      appconf.Test,
	})
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	store := tickets.NewStore(tickets.Config{})
	_, err = store.Book(tickets.Booking{From: "Howrah", To: "Salt Lake", Date: "2025-06-02", Name: "Asha", Passengers: 1})
	require.NoError(t, err)

	return NewWebUI(&app.Application{
		Config:  appconf.Config{Env: env},
		Catalog: manager,
		Tracker: tracking.NewTracker(tracking.Config{Seeds: tracking.DefaultFleet()}),
		Tickets: store,
	})
}

func serveDebug(webUI *WebUI, query string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/debug"+query, nil))
	return rr
}

func TestDebugIndexHandler_ProductionReturns404(t *testing.T) {
	webUI := &WebUI{
		Application: &app.Application{
			Config: appconf.Config{Env: appconf.Production},
		},
	}

	rr := serveDebug(webUI, "?dataType=routes")

	assert.Equal(t, http.StatusNotFound, rr.Code, "Should return 404 in Production")
}

func TestDebugIndexHandler_DataTypes(t *testing.T) {
	webUI := newTestWebUI(t, appconf.Development)

	tests := []struct {
		dataType string
		title    string
		contains string
	}{
		{dataType: "groups", title: "Catalog - Groups", contains: "Live tracked (Kolkata city)"},
		{dataType: "routes", title: "Catalog - Routes", contains: "NB-101"},
		{dataType: "operators", title: "Catalog - Operators", contains: "NBSTC"},
		{dataType: "fares", title: "Catalog - Fare Bounds", contains: "150"},
		{dataType: "import_metadata", title: "Catalog Store - Import Metadata", contains: "embedded:catalog.json"},
		{dataType: "table_counts", title: "Catalog Store - Table Counts", contains: "route_stops"},
		{dataType: "vehicles", title: "Tracking - Vehicles", contains: "42E"},
		{dataType: "tickets", title: "Tickets", contains: "Asha"},
		{dataType: "", title: "Choose a data type", contains: "table_counts"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			rr := serveDebug(webUI, "?dataType="+tt.dataType)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), "<h1>"+tt.title+"</h1>")
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestDebugIndexHandler_WithoutCatalog(t *testing.T) {
	webUI := NewWebUI(&app.Application{Config: appconf.Config{Env: appconf.Development}})

	rr := serveDebug(webUI, "?dataType=routes")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Catalog not loaded")
}
