package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bharatbus.in/internal/app"
	"bharatbus.in/internal/appconf"
	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/metrics"
	"bharatbus.in/internal/models"
	"bharatbus.in/internal/tracking"
)

// testTime is when the seeded fleet was last seen in every test API.
var testTime = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithClock(t, clock.NewMockClock(testTime))
}

// createTestApiWithClock builds an API over the embedded catalog in an
// in-memory store and the default two-bus fleet. The API key is TEST.
func createTestApiWithClock(t *testing.T, c clock.Clock) *RestAPI {
	t.Helper()
	return createTestApiWithConfig(t, c, appconf.Config{
		Env:       appconf.Test,
		ApiKeys:   []string{"TEST"},
		RateLimit: 100,
	})
}

func createTestApiWithConfig(t *testing.T, c clock.Clock, cfg appconf.Config) *RestAPI {
	t.Helper()

	manager, err := catalog.NewManager(context.Background(), catalog.Config{
		DataPath: ":memory:",
		Env:      appconf.Test,
		Clock:    c,
	})
	require.NoError(t, err)

	tracker := tracking.NewTracker(tracking.Config{
		Seeds: tracking.DefaultFleet(),
		Clock: c,
	})

	application := &app.Application{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Catalog: manager,
		Tracker: tracker,
		Clock:   c,
		Metrics: metrics.New(),
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(MetricsHandler(api.Metrics)(mux))
	t.Cleanup(server.Close)
	return server
}

func serveAndRetrieveEndpoint(t *testing.T, path string) (*RestAPI, *http.Response, models.ResponseModel) {
	t.Helper()
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, path)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, path string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := newTestServer(t, api)

	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var model models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &model), "body: %s", body)
	return resp, model
}

// dataMap returns model.Data as a JSON object.
func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", model.Data)
	return data
}

func dataList(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	list, ok := dataMap(t, model)["list"].([]interface{})
	require.True(t, ok, "list missing from data")
	return list
}

func dataEntry(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	entry, ok := dataMap(t, model)["entry"].(map[string]interface{})
	require.True(t, ok, "entry missing from data")
	return entry
}

// collectStrings extracts the string field key from every object in list.
func collectStrings(t *testing.T, list []interface{}, key string) []string {
	t.Helper()
	values := make([]string, 0, len(list))
	for i, item := range list {
		object, ok := item.(map[string]interface{})
		require.True(t, ok, "item %d is not an object", i)
		value, ok := object[key].(string)
		require.True(t, ok, "item %d key %q is not a string: %T", i, key, object[key])
		values = append(values, value)
	}
	return values
}

func fieldErrorsOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	fieldErrors, ok := dataMap(t, model)["fieldErrors"].(map[string]interface{})
	require.True(t, ok, "fieldErrors missing from data")
	return fieldErrors
}

func newRawServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
