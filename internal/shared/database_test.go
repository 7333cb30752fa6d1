package shared

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDatabase(t *testing.T) {
	t.Run("opens a file database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.db")
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("failed to read journal_mode: %v", err)
		}
		if !strings.EqualFold(mode, "wal") {
			t.Errorf("journal_mode = %q, want wal", mode)
		}
	})

	t.Run("enforces foreign keys", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		var on int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("failed to read foreign_keys: %v", err)
		}
		if on != 1 {
			t.Fatalf("foreign_keys = %d, want 1", on)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		// a track must reference an existing folder row
		_, err = db.Exec(`INSERT INTO tracks (path, title, title_sort, folder_id)
			VALUES ('/x.mp3', 'x', 'x', 12345)`)
		if err == nil {
			t.Error("expected foreign key violation for unknown folder_id")
		}
	})

	t.Run("sets a busy timeout", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		var timeout int
		if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("failed to read busy_timeout: %v", err)
		}
		if timeout != 5000 {
			t.Errorf("busy_timeout = %d, want 5000", timeout)
		}
	})
}
