package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/directory"
	"github.com/froydnj/contentdir/internal/library"
	"github.com/froydnj/contentdir/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, scanCommand, serveCommand, browseCommand, searchCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the command's --config flag, falling back to the
// runner's config when the file is absent.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		return r.config
	}
	if _, err := os.Stat(configPath); err != nil {
		return r.config
	}
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return r.config
	}
	return config
}

// openLibrary opens the configured database and applies pending migrations.
func (r *Runner) openLibrary(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// buildService assembles the directory core over an open database. The
// notifier's revision starts at the last completed scan time.
func (r *Runner) buildService(ctx context.Context, db *sql.DB, config *shared.Config, b directory.Broadcaster) (*directory.Service, *library.Store, error) {
	store := library.NewStore(db, r.logger)

	last, err := store.LastScanTime(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scan state: %w", err)
	}

	notifier := directory.NewNotifier(uint32(last), config.Events.Rate(), b, r.logger)
	caps := directory.Caps{
		NewMusicLimit: uint32(config.Library.NewMusicLimit),
		ResourceBase:  fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port),
	}
	return directory.NewService(store, caps, notifier, r.logger), store, nil
}

// nopBroadcaster discards notifications for commands with no subscribers
// (browse, tui, scan).
type nopBroadcaster struct{}

func (nopBroadcaster) NotifyAll(revision uint32)        {}
func (nopBroadcaster) NotifyOne(sid string, rev uint32) {}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
