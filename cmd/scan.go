package main

import (
	"context"
	"fmt"
	"time"

	"github.com/froydnj/contentdir/internal/library"
	"github.com/froydnj/contentdir/internal/shared"
	"github.com/urfave/cli/v3"
)

// Scan rebuilds the library from the configured media directories.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if len(config.Library.MediaDirs) == 0 {
		return fmt.Errorf("%w: no media directories configured", shared.ErrInvalidConfig)
	}

	db, err := r.openLibrary(config)
	if err != nil {
		return err
	}
	defer db.Close()

	scanner := library.NewScanner(db, config.Library.MediaDirs, r.logger)

	var progress chan library.ProgressUpdate
	done := make(chan struct{})
	if !cmd.Bool("quiet") {
		progress = make(chan library.ProgressUpdate, 16)
		go func() {
			defer close(done)
			for u := range progress {
				switch u.Phase {
				case library.PhaseWalk:
					r.writePlain("scanned %d files (%s)\n", u.FilesSeen, u.Path)
				case library.PhaseCommit:
					r.writePlain("committing %d files...\n", u.FilesSeen)
				}
			}
		}()
	} else {
		close(done)
	}

	res, err := scanner.Scan(ctx, progress)
	if progress != nil {
		close(progress)
	}
	<-done
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	r.writePlain("scan complete: %d files in %s\n", res.FilesSeen, res.Elapsed.Round(time.Millisecond))
	return nil
}
