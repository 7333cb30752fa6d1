package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens the library database at path (":memory:" for tests).
// The pragmas ride on the DSN so every pooled connection gets them:
// foreign_keys backs the folder/track/playlist references in the schema,
// and the busy timeout lets control requests wait out a scan commit
// instead of failing with SQLITE_BUSY.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		// WAL keeps Browse reads going while the scanner writes; it has
		// no meaning for an in-memory database.
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase bounds the connection pool. The HTTP handlers and the
// scanner share one handle, so a small pool is plenty.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
