package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB wraps the database connection. The id generator and clock are fields so
// tests can pin them.
type DB struct {
	*sql.DB
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// New opens the database at its default location and initializes the schema
func New(log *slog.Logger) (*DB, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return Open(dbPath, log)
}

// Open opens a database at the given path and initializes the schema.
// Tests pass ":memory:".
func Open(path string, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The store owns a single connection; statement execution serializes on
	// it. This also keeps ":memory:" databases coherent across calls.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		log.Error("schema init failed", "path", path, "error", err)
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{
		DB:    conn,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// getDBPath returns the path to the database file
func getDBPath() (string, error) {
	if path := os.Getenv("TODOER_DB"); path != "" {
		return path, nil
	}

	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "todoer")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "todoer.db"), nil
}

// DataDir returns the directory holding the database and log files
func DataDir() (string, error) {
	path, err := getDBPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
