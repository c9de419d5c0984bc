package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// GetItem returns the value stored under key.
// Returns ErrNotFound if absent, ErrStorageDetached if not attached.
func (b *Backend) GetItem(key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrStorageDetached
	}

	var value string
	err := b.db.QueryRow("SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading entry %q: %w", key, err)
	}
	return value, nil
}

// SetItem upserts key and persists entries.jsonl according to the sync
// strategy. Each write gets a fresh revision.
func (b *Backend) SetItem(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStorageDetached
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := b.db.Exec(`
		INSERT INTO entries (key, value, revision, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			updated_at = excluded.updated_at`,
		key, value, generateUUID(), now)
	if err != nil {
		return fmt.Errorf("upserting entry %q: %w", key, err)
	}

	return b.persistOrQueue(key, "set")
}

// RemoveItem deletes key. Removing an absent key succeeds without touching
// entries.jsonl.
func (b *Backend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStorageDetached
	}

	res, err := b.db.Exec("DELETE FROM entries WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting entry %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	return b.persistOrQueue(key, "remove")
}

// Keys returns all keys in ascending order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStorageDetached
	}

	rows, err := b.db.Query("SELECT key FROM entries ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// persistEntries reads every entry from SQLite and rewrites entries.jsonl
// atomically. The caller must hold b.mu.
func (b *Backend) persistEntries() error {
	rows, err := b.db.Query(
		"SELECT key, value, revision, updated_at FROM entries ORDER BY key ASC")
	if err != nil {
		return fmt.Errorf("querying entries for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var e entryJSON
		if err := rows.Scan(&e.Key, &e.Value, &e.Revision, &e.UpdatedAt); err != nil {
			return fmt.Errorf("scanning entry for JSONL: %w", err)
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling entry for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating entries for JSONL: %w", err)
	}

	if err := writeJSONL(filepath.Join(b.config.DataDir, entriesJSONL), records); err != nil {
		return err
	}
	b.logger.Debug("persisted entries", zap.Int("count", len(records)))
	return nil
}
