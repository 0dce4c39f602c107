package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLBackend implements StorageBackend on top of an SQLite database
type SQLBackend struct {
	mu     sync.Mutex
	db     *sql.DB
	driver interfaces.StorageDriver
	path   string
}

var _ interfaces.StorageBackend = (*SQLBackend)(nil)

// OpenSQL opens (creating if needed) the SQLite database at path with the given driver
func OpenSQL(ctx context.Context, driver interfaces.StorageDriver, path string) (*SQLBackend, error) {
	switch driver {
	case interfaces.DriverSQLite3, interfaces.DriverSQLite:
	case "":
		driver = interfaces.DriverSQLite3
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported storage driver: %s", driver))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewStorageError("failed to create storage directory", err)
		}
	}

	db, err := sql.Open(string(driver), path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open database", err)
	}

	// Test the database connection to detect corruption early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewStorageError("database file is corrupted or inaccessible", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		if isCorruptionError(err) {
			return nil, errors.NewStorageError("database file is corrupted and cannot be initialized", err)
		}
		return nil, errors.NewStorageError("failed to create database schema", err)
	}

	return &SQLBackend{db: db, driver: driver, path: path}, nil
}

// isCorruptionError checks if an error indicates database corruption
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// Common SQLite corruption error messages
	return strings.Contains(msg, "database disk image is malformed") ||
		strings.Contains(msg, "file is not a database") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database corruption")
}

func storageError(action string, err error) error {
	if isCorruptionError(err) {
		return errors.NewStorageError("database file is corrupted", err)
	}
	return errors.NewStorageError(action, err)
}

// Get reads the value stored under key
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, errors.NewStorageError("database not initialized", nil)
	}

	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to read %s", key), err)
	}
	return []byte(value), nil
}

// Set upserts value under key
func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return errors.NewStorageError("database not initialized", nil)
	}

	if _, err := b.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)",
		key, string(value), time.Now().UTC(),
	); err != nil {
		return storageError(fmt.Sprintf("failed to write %s", key), err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return errors.NewStorageError("database not initialized", nil)
	}

	if _, err := b.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return storageError(fmt.Sprintf("failed to delete %s", key), err)
	}
	return nil
}

// Keys lists every stored key in lexical order
func (b *SQLBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, errors.NewStorageError("database not initialized", nil)
	}

	rows, err := b.db.QueryContext(ctx, "SELECT key FROM kv_store ORDER BY key")
	if err != nil {
		return nil, storageError("failed to query keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, storageError("failed to scan key row", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate keys", err)
	}
	return keys, nil
}

// Driver returns the database/sql driver name in use
func (b *SQLBackend) Driver() interfaces.StorageDriver {
	return b.driver
}

// Path returns the database file path
func (b *SQLBackend) Path() string {
	return b.path
}

// Close closes the database connection
func (b *SQLBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}

	if err := b.db.Close(); err != nil {
		return errors.NewStorageError("failed to close database", err)
	}

	b.db = nil
	return nil
}
