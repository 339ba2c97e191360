package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"bharatbus.in/catalogdb"
	"bharatbus.in/internal/routes"
)

// Entry is one catalog route with its category and map path.
type Entry = catalogdb.Entry

//go:embed catalog.schema.json
var catalogSchemaSource string

var catalogSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchemaSource)

var zipMagic = []byte("PK\x03\x04")

type jsonCatalog struct {
	Groups []jsonGroup `json:"groups"`
}

type jsonGroup struct {
	Category string      `json:"category"`
	Routes   []jsonRoute `json:"routes"`
}

type jsonRoute struct {
	routes.RouteRecord
	Path []catalogdb.Point `json:"path,omitempty"`
}

// ParseEntries decodes a catalog source. GTFS zip archives are detected by
// extension or content, everything else is read as a JSON catalog.
func ParseEntries(data []byte, source string) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	if strings.HasSuffix(strings.ToLower(source), ".zip") || bytes.HasPrefix(data, zipMagic) {
		entries, err = ParseGTFS(data)
	} else {
		entries, err = ParseJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if err := checkUniqueIDs(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseJSON decodes and schema-validates a JSON route catalog.
func ParseJSON(data []byte) ([]Entry, error) {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	if err := catalogSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	var doc jsonCatalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	var entries []Entry
	for _, g := range doc.Groups {
		for _, r := range g.Routes {
			entries = append(entries, Entry{
				Category: g.Category,
				Route:    r.RouteRecord,
				Path:     r.Path,
			})
		}
	}
	return entries, nil
}

func checkUniqueIDs(entries []Entry) error {
	seen := make(map[routes.RouteID]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Route.ID]; ok {
			return fmt.Errorf("duplicate route id %q", e.Route.ID)
		}
		seen[e.Route.ID] = struct{}{}
	}
	return nil
}
