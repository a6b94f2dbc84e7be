package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	// openTimeout bounds the first round trip to a freshly opened file.
	openTimeout = 5 * time.Second
)

// ErrCorrupt is returned by HealthCheck when SQLite's integrity check fails.
var ErrCorrupt = errors.New("database: integrity check failed")

// DB is the node's SQLite handle.
//
// It holds a single connection. The control loop is the only writer and
// every statement runs in autocommit, so a write that returned nil is on
// disk: the actuator levels restored at boot are the last ones acknowledged.
type DB struct {
	*sql.DB
}

// Config contains database settings. These map to the database section of
// config.yaml.
type Config struct {
	// Path is the SQLite file. Missing parent directories are created.
	Path string

	// WALMode selects the write-ahead log instead of a rollback journal.
	// Either way commits are fully synced.
	WALMode bool

	// BusyTimeout is how long a statement waits on a lock (seconds).
	BusyTimeout int
}

// Open opens or creates the database at cfg.Path and checks it responds.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("opening database: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Permissions are advisory on some filesystems

	return &DB{DB: sqlDB}, nil
}

// dsn builds the go-sqlite3 connection string.
// See: https://github.com/mattn/go-sqlite3#connection-string
//
// synchronous=FULL syncs on every commit. NORMAL would be faster in WAL
// mode but can lose the last commit on power loss, and the node is
// switched off at the mains.
func dsn(cfg Config) string {
	q := url.Values{}
	q.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout*int(time.Second/time.Millisecond)))
	q.Set("_synchronous", "FULL")
	if cfg.WALMode {
		q.Set("_journal_mode", "WAL")
	}
	return "file:" + cfg.Path + "?" + q.Encode()
}

// Close closes the database. Closing twice is a no-op.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck runs SQLite's quick integrity check. SD cards wear out, and a
// damaged page would otherwise only surface when the levels are next read.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s", ErrCorrupt, result)
	}
	return nil
}
