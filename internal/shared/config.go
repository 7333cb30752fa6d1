package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Library  LibraryConfig  `toml:"library"`
	Events   EventsConfig   `toml:"events"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string  `toml:"host"`
	Port         int     `toml:"port"`
	FriendlyName string  `toml:"friendly_name"`
	RateLimit    float64 `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst    int     `toml:"rate_burst"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LibraryConfig contains media library settings.
type LibraryConfig struct {
	MediaDirs     []string `toml:"media_dirs"`
	NewMusicLimit int      `toml:"new_music_limit"` // cap on the "new music" hierarchy total
}

// EventsConfig contains UPnP eventing settings.
type EventsConfig struct {
	RateMs int `toml:"rate_ms"` // minimum delay between change broadcasts
}

// Rate returns the broadcast coalescing interval as a [time.Duration].
func (e EventsConfig) Rate() time.Duration {
	if e.RateMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(e.RateMs) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
