// Package sqlite implements the SQLite storage backend for basket.
//
// Entries live in entries.jsonl, which is the source of truth. On Attach the
// file is loaded into a fresh SQLite database that serves reads; every write
// goes to SQLite first and is then persisted back to entries.jsonl using the
// configured sync strategy.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Backend implements types.Storage using SQLite as the query engine and a
// JSONL file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *zap.Logger

	syncStrategy  string         // immediate, on_close or batch
	batchSize     int            // number of writes before batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // queue of writes pending JSONL persist
	pendingCount  int            // writes since the last flush
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite represents a deferred JSONL write operation.
type pendingWrite struct {
	key       string       // entry key that triggered the write
	operation string       // "set" or "remove"
	persist   func() error // writes the current snapshot to entries.jsonl
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, initializes the SQLite schema and
// loads entries.jsonl. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// The database is a cache of entries.jsonl; start fresh every time.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(dataDir, entriesJSONL)
	if err := ensureJSONL(jsonlPath); err != nil {
		db.Close()
		return err
	}

	loaded, err := loadEntries(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil
	b.pendingCount = 0
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.logger.Debug("storage attached",
		zap.String("data_dir", dataDir),
		zap.String("sync", b.syncStrategy),
		zap.Int("entries", loaded))
	return nil
}

// Detach flushes pending writes and closes the SQLite connection.
// After Detach, all operations return ErrStorageDetached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.logger.Debug("storage detached", zap.String("data_dir", b.config.DataDir))
	return nil
}

// DataDir returns the directory the backend is attached to, or "" when
// detached.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return ""
	}
	return b.config.DataDir
}

// generateUUID generates a new UUID v7 for entry revisions.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// shouldPersistImmediately reports whether JSONL writes happen on every call.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// persistOrQueue writes entries.jsonl now or defers it, depending on the
// sync strategy. The caller must hold b.mu.
func (b *Backend) persistOrQueue(key, operation string) error {
	if b.shouldPersistImmediately() {
		return b.persistEntries()
	}
	b.queueWrite(key, operation, b.persistEntries)
	return nil
}

// queueWrite adds a write operation to the pending queue. Every queued write
// persists the full snapshot, so only the first one since the last flush is
// kept. The caller must hold b.mu.
func (b *Backend) queueWrite(key, operation string, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if len(b.pendingWrites) == 0 {
		b.pendingWrites = append(b.pendingWrites, pendingWrite{
			key:       key,
			operation: operation,
			persist:   persist,
		})
	}
	b.pendingCount++

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && b.pendingCount >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.logger.Warn("batch flush failed", zap.Error(err))
		}
	}
}

// flushPendingWritesLocked flushes all pending writes to entries.jsonl.
// The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked executes all pending writes.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	for _, pw := range b.pendingWrites {
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s %s: %w", pw.operation, pw.key, err)
		}
	}

	b.logger.Debug("flushed pending writes", zap.Int("writes", b.pendingCount))
	b.pendingWrites = nil
	b.pendingCount = 0
	return nil
}

// startBatchTimer starts the batch interval timer for periodic flushes.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Warn("interval flush failed", zap.Error(err))
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
