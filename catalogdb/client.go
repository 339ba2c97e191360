package catalogdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
	"bharatbus.in/internal/logging"
)

// Client is the SQLite backed route catalog store.
type Client struct {
	config        Config
	DB            *sql.DB
	importRuntime time.Duration
}

// NewClient opens the database and applies the embedded schema.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}
	if config.Verbose {
		logging.LogOperation(slog.Default().With(slog.String("component", "catalogdb")),
			"catalog_tables_created", slog.String("path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) GetDBPath() string {
	return c.config.DBPath
}

// ImportRuntime is how long the last ReplaceCatalog call took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// Ping checks that the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
