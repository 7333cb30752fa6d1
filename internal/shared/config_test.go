package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "contentdir.db" {
			t.Errorf("expected database path contentdir.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9790 {
			t.Errorf("expected server port 9790, got %d", config.Server.Port)
		}

		if config.Server.FriendlyName != "contentdir" {
			t.Errorf("expected friendly name contentdir, got %s", config.Server.FriendlyName)
		}

		if config.Library.NewMusicLimit != 100 {
			t.Errorf("expected new music limit 100, got %d", config.Library.NewMusicLimit)
		}

		if config.Events.RateMs != 200 {
			t.Errorf("expected event rate 200ms, got %d", config.Events.RateMs)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "127.0.0.1"
port = 8200
friendly_name = "Attic Media"
rate_limit = 10.0
rate_burst = 20

[database]
path = "/custom/path.db"
max_open_conns = 8
max_idle_conns = 4

[library]
media_dirs = ["/srv/music", "/srv/video"]
new_music_limit = 50

[events]
rate_ms = 500
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8200 || config.Server.FriendlyName != "Attic Media" {
			t.Errorf("server config = %+v", config.Server)
		}
		if len(config.Library.MediaDirs) != 2 || config.Library.MediaDirs[0] != "/srv/music" {
			t.Errorf("media dirs = %v", config.Library.MediaDirs)
		}
		if config.Library.NewMusicLimit != 50 {
			t.Errorf("new music limit = %d", config.Library.NewMusicLimit)
		}
		if config.Events.Rate() != 500*time.Millisecond {
			t.Errorf("event rate = %v", config.Events.Rate())
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestEventsRateDefault(t *testing.T) {
	tests := []struct {
		rateMs int
		want   time.Duration
	}{
		{0, 200 * time.Millisecond},
		{-5, 200 * time.Millisecond},
		{1000, time.Second},
	}
	for _, tt := range tests {
		e := EventsConfig{RateMs: tt.rateMs}
		if got := e.Rate(); got != tt.want {
			t.Errorf("Rate(%d) = %v, want %v", tt.rateMs, got, tt.want)
		}
	}
}
