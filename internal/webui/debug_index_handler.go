package webui

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"bharatbus.in/internal/appconf"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// debugDataTypes lists the values accepted by ?dataType=, in menu order.
var debugDataTypes = []string{
	"groups",
	"routes",
	"operators",
	"fares",
	"import_metadata",
	"table_counts",
	"vehicles",
	"tickets",
}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: debugDataTypes,
	})
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps catalog and tracker state. It does not exist in
// production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	title, data := webUI.debugSection(r.Context(), r.URL.Query().Get("dataType"))
	writeDebugData(w, title, data)
}

func (webUI *WebUI) debugSection(ctx context.Context, dataType string) (string, interface{}) {
	if webUI.Catalog == nil {
		return "Catalog not loaded", map[string]string{"error": "the catalog manager is not initialized"}
	}
	snapshot := webUI.Catalog.Snapshot()

	switch dataType {
	case "groups":
		return "Catalog - Groups", snapshot.Groups
	case "routes":
		return "Catalog - Routes", snapshot.Routes
	case "operators":
		return "Catalog - Operators", snapshot.Operators()
	case "fares":
		return "Catalog - Fare Bounds", snapshot.FareBounds()
	case "import_metadata":
		metadata, err := webUI.Catalog.DB().GetImportMetadata(ctx)
		if err != nil {
			return "Catalog Store - Import Metadata", map[string]string{"error": err.Error()}
		}
		return "Catalog Store - Import Metadata", metadata
	case "table_counts":
		counts, err := webUI.Catalog.DB().TableCounts(ctx)
		if err != nil {
			return "Catalog Store - Table Counts", map[string]string{"error": err.Error()}
		}
		return "Catalog Store - Table Counts", counts
	case "vehicles":
		if webUI.Tracker == nil {
			return "Tracking - Vehicles", map[string]string{"error": "tracking is not initialized"}
		}
		return "Tracking - Vehicles", webUI.Tracker.Vehicles()
	case "tickets":
		if webUI.Tickets == nil {
			return "Tickets", map[string]string{"error": "the ticket store is not initialized"}
		}
		return "Tickets", webUI.Tickets.Tickets()
	default:
		return "Choose a data type", map[string]interface{}{"dataTypes": debugDataTypes}
	}
}
