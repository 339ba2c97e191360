package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bharatbus.in/internal/logging"
	"bharatbus.in/internal/routes"
)

// Point is one coordinate along a route's path.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Entry is a catalog route together with its display category and optional
// map path.
type Entry struct {
	Category string
	Route    routes.RouteRecord
	Path     []Point
}

// ImportMetadata describes the source of the stored catalog.
type ImportMetadata struct {
	FileHash   string
	FileSource string
	ImportTime time.Time
	RouteCount int
}

// GetImportMetadata returns sql.ErrNoRows when nothing has been imported.
func (c *Client) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	var (
		meta       ImportMetadata
		importedAt int64
	)
	err := c.DB.QueryRowContext(ctx,
		`SELECT file_hash, file_source, import_time, route_count FROM import_metadata WHERE id = 1`,
	).Scan(&meta.FileHash, &meta.FileSource, &importedAt, &meta.RouteCount)
	if err != nil {
		return ImportMetadata{}, err
	}
	meta.ImportTime = time.UnixMilli(importedAt)
	return meta, nil
}

// NeedsImport reports whether hash and source differ from the stored catalog.
func (c *Client) NeedsImport(ctx context.Context, hash, source string) (bool, error) {
	existing, err := c.GetImportMetadata(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking import metadata: %w", err)
	}
	return existing.FileHash != hash || existing.FileSource != source, nil
}

// ReplaceCatalog swaps the stored catalog for entries in one transaction.
// Entries keep their slice order.
func (c *Client) ReplaceCatalog(ctx context.Context, entries []Entry, hash, source string, importedAt time.Time) error {
	logger := componentLogger()
	start := time.Now()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "replace_catalog")

	for _, stmt := range []string{
		"DELETE FROM route_path",
		"DELETE FROM route_stops",
		"DELETE FROM routes",
		"DELETE FROM import_metadata",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error clearing catalog: %w", err)
		}
	}

	insertRoute, err := tx.PrepareContext(ctx, `INSERT INTO routes (
		position, id, category, bus_number, operator, origin, destination,
		departure, arrival, duration, fare, frequency, rating
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(insertRoute, logger, "insert_route_stmt")

	insertStop, err := tx.PrepareContext(ctx,
		`INSERT INTO route_stops (route_id, stop_sequence, name) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(insertStop, logger, "insert_stop_stmt")

	insertPoint, err := tx.PrepareContext(ctx,
		`INSERT INTO route_path (route_id, point_sequence, lat, lon) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(insertPoint, logger, "insert_point_stmt")

	for i, e := range entries {
		r := e.Route
		id := string(r.ID)
		if _, err := insertRoute.ExecContext(ctx, i, id, e.Category, r.BusNumber, r.Operator,
			r.From, r.To, r.Departure, toNullString(r.Arrival), r.Duration, r.Fare,
			r.Frequency, toNullFloat64(r.Rating)); err != nil {
			return fmt.Errorf("unable to insert route %s: %w", id, err)
		}
		for seq, name := range r.Stops {
			if _, err := insertStop.ExecContext(ctx, id, seq, name); err != nil {
				return fmt.Errorf("unable to insert stop for route %s: %w", id, err)
			}
		}
		for seq, p := range e.Path {
			if _, err := insertPoint.ExecContext(ctx, id, seq, p.Lat, p.Lon); err != nil {
				return fmt.Errorf("unable to insert path for route %s: %w", id, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_metadata (id, file_hash, file_source, import_time, route_count) VALUES (1, ?, ?, ?, ?)`,
		hash, source, importedAt.UnixMilli(), len(entries)); err != nil {
		return fmt.Errorf("unable to record import metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.importRuntime = time.Since(start)
	logging.LogOperation(logger, "catalog_import_completed",
		slog.Int("routes", len(entries)),
		slog.String("hash", shortHash(hash)),
		slog.String("source", source),
		slog.Duration("duration", c.importRuntime))
	return nil
}

// ListEntries loads the stored catalog in import order.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := c.DB.QueryContext(ctx, `SELECT id, category, bus_number, operator, origin,
		destination, departure, arrival, duration, fare, frequency, rating
		FROM routes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, componentLogger(), "route_rows")

	var entries []Entry
	index := make(map[string]int)
	for rows.Next() {
		var (
			e       Entry
			id      string
			arrival sql.NullString
			rating  sql.NullFloat64
		)
		if err := rows.Scan(&id, &e.Category, &e.Route.BusNumber, &e.Route.Operator, &e.Route.From,
			&e.Route.To, &e.Route.Departure, &arrival, &e.Route.Duration, &e.Route.Fare,
			&e.Route.Frequency, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		e.Route.ID = routes.RouteID(id)
		e.Route.Arrival = arrival.String
		if rating.Valid {
			v := rating.Float64
			e.Route.Rating = &v
		}
		index[id] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := c.loadStops(ctx, entries, index); err != nil {
		return nil, err
	}
	if err := c.loadPaths(ctx, entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) loadStops(ctx context.Context, entries []Entry, index map[string]int) error {
	rows, err := c.DB.QueryContext(ctx,
		`SELECT route_id, name FROM route_stops ORDER BY route_id, stop_sequence`)
	if err != nil {
		return fmt.Errorf("failed to query route stops: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, componentLogger(), "stop_rows")

	for rows.Next() {
		var routeID, name string
		if err := rows.Scan(&routeID, &name); err != nil {
			return fmt.Errorf("failed to scan route stop: %w", err)
		}
		if i, ok := index[routeID]; ok {
			entries[i].Route.Stops = append(entries[i].Route.Stops, name)
		}
	}
	return rows.Err()
}

func (c *Client) loadPaths(ctx context.Context, entries []Entry, index map[string]int) error {
	rows, err := c.DB.QueryContext(ctx,
		`SELECT route_id, lat, lon FROM route_path ORDER BY route_id, point_sequence`)
	if err != nil {
		return fmt.Errorf("failed to query route paths: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, componentLogger(), "path_rows")

	for rows.Next() {
		var (
			routeID string
			p       Point
		)
		if err := rows.Scan(&routeID, &p.Lat, &p.Lon); err != nil {
			return fmt.Errorf("failed to scan route path: %w", err)
		}
		if i, ok := index[routeID]; ok {
			entries[i].Path = append(entries[i].Path, p)
		}
	}
	return rows.Err()
}

// TableCounts returns row counts for each catalog table.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"routes", "route_stops", "route_path", "import_metadata"} {
		var n int
		// table names come from the fixed list above
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
