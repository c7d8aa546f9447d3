package names

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a SQLiteKV that lives only as long as the process.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS names (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteKV is a KV backed by a single SQLite table.
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the names database at path.
// Parent directories are created as required.
func OpenSQLite(path string) (*SQLiteKV, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &SQLiteKV{db: db}, nil
}

func (kv *SQLiteKV) Get(key string) (string, bool, error) {
	var v string
	err := kv.db.QueryRow(`SELECT value FROM names WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (kv *SQLiteKV) Set(key, value string) error {
	_, err := kv.db.Exec(`
		INSERT INTO names (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return err
}

// Close closes the underlying database.
func (kv *SQLiteKV) Close() error {
	return kv.db.Close()
}
