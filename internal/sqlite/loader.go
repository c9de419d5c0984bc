package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// loadEntries reads entries.jsonl from dataDir and inserts every record into
// the entries table inside one transaction: all succeed or the database stays
// empty. Malformed lines and records without a key are skipped. Unknown fields
// are ignored. A later line for the same key replaces an earlier one.
func loadEntries(db *sql.DB, dataDir string) (int, error) {
	records, err := readJSONL(filepath.Join(dataDir, entriesJSONL))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entries (key, value, revision, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = excluded.revision,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, rec := range records {
		var e entryJSON
		if err := json.Unmarshal(rec, &e); err != nil {
			continue
		}
		if e.Key == "" {
			continue
		}
		if e.Revision == "" {
			e.Revision = generateUUID()
		}
		if e.UpdatedAt == "" {
			e.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, err := stmt.Exec(e.Key, e.Value, e.Revision, e.UpdatedAt); err != nil {
			return 0, fmt.Errorf("loading entry %q: %w", e.Key, err)
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}
