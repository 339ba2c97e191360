package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bharatbus.in/catalogdb"
	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/logging"
)

// Manager owns the catalog store and publishes snapshots of it.
type Manager struct {
	config Config
	db     *catalogdb.Client
	clock  clock.Clock

	snapshotMutex sync.RWMutex
	snapshot      *Snapshot

	reloadMutex  sync.Mutex
	ready        atomic.Bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewManager opens the store, performs the first load and, for remote
// sources, starts the periodic reload.
func NewManager(ctx context.Context, config Config) (*Manager, error) {
	db, err := catalogdb.NewClient(catalogdb.Config{
		DBPath:  config.DataPath,
		Env:     config.Env,
		Verbose: config.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog database client: %w", err)
	}

	c := config.Clock
	if c == nil {
		c = clock.RealClock{}
	}

	manager := &Manager{
		config:       config,
		db:           db,
		clock:        c,
		shutdownChan: make(chan struct{}),
	}

	if err := manager.ForceReload(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if config.isRemote() && config.ReloadInterval > 0 {
		manager.wg.Add(1)
		go manager.reloadPeriodically()
	}

	return manager, nil
}

// Snapshot returns the current catalog. It is never nil after NewManager
// succeeds.
func (manager *Manager) Snapshot() *Snapshot {
	manager.snapshotMutex.RLock()
	defer manager.snapshotMutex.RUnlock()
	return manager.snapshot
}

// DB exposes the underlying store for health checks and metrics.
func (manager *Manager) DB() *catalogdb.Client {
	return manager.db
}

// ForceReload reads the source again, re-imports it when its hash changed
// and swaps in a fresh snapshot. On failure the previous snapshot stays.
func (manager *Manager) ForceReload(ctx context.Context) error {
	manager.reloadMutex.Lock()
	defer manager.reloadMutex.Unlock()

	logger := slog.Default().With(slog.String("component", "catalog_manager"))

	data, source, err := rawCatalogData(ctx, manager.config)
	if err != nil {
		logging.LogError(logger, "Error loading catalog source", err, slog.String("source", source))
		return err
	}

	hash := catalogdb.HashSource(data)
	needsImport, err := manager.db.NeedsImport(ctx, hash, source)
	if err != nil {
		return err
	}

	if needsImport {
		entries, err := ParseEntries(data, source)
		if err != nil {
			logging.LogError(logger, "Error parsing catalog", err, slog.String("source", source))
			return fmt.Errorf("error parsing catalog %s: %w", source, err)
		}
		if err := manager.db.ReplaceCatalog(ctx, entries, hash, source, manager.clock.Now()); err != nil {
			return fmt.Errorf("error storing catalog: %w", err)
		}
	} else {
		logging.LogOperation(logger, "catalog_unchanged_skipping_import",
			slog.String("source", source))
	}

	entries, err := manager.db.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("error reading stored catalog: %w", err)
	}

	snapshot := newSnapshot(entries, source, hash, manager.clock.Now())

	manager.snapshotMutex.Lock()
	manager.snapshot = snapshot
	manager.snapshotMutex.Unlock()
	manager.ready.Store(true)

	logging.LogOperation(logger, "catalog_snapshot_swapped",
		slog.Int("routes", snapshot.Len()),
		slog.Int("groups", len(snapshot.Groups)),
		slog.String("source", source))

	if manager.config.OnReload != nil {
		manager.config.OnReload(snapshot)
	}
	return nil
}

func (manager *Manager) reloadPeriodically() {
	defer manager.wg.Done()

	logger := slog.Default().With(slog.String("component", "catalog_reloader"))

	ticker := time.NewTicker(manager.config.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			err := manager.ForceReload(ctx)
			cancel()
			if err != nil {
				logging.LogError(logger, "Error reloading catalog", err,
					slog.String("source", manager.config.CatalogURL))
			}
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_catalog_reloads")
			return
		}
	}
}

// IsReady reports whether a snapshot has been published.
func (manager *Manager) IsReady() bool {
	return manager.ready.Load()
}

// IsHealthy reports readiness plus a reachable store.
func (manager *Manager) IsHealthy(ctx context.Context) bool {
	if !manager.IsReady() {
		return false
	}
	return manager.db.Ping(ctx) == nil
}

// Shutdown stops background reloads and closes the store. It is safe to
// call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		logging.SafeCloseWithLogging(manager.db,
			slog.Default().With(slog.String("component", "catalog_manager")),
			"catalog_database")
	})
}
