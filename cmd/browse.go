package main

import (
	"context"
	"fmt"

	"github.com/froydnj/contentdir/internal/directory"
	"github.com/froydnj/contentdir/internal/formatter"
	"github.com/froydnj/contentdir/internal/shared"
	"github.com/urfave/cli/v3"
)

// Browse lists one container of the virtual hierarchy from the command line,
// going through the same translation path a control point would.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	objectID := cmd.StringArg("object")
	if objectID == "" {
		objectID = directory.RootID
	}
	flag := "BrowseDirectChildren"
	if cmd.Bool("metadata") {
		flag = "BrowseMetadata"
	}

	config := r.loadConfig(cmd)
	db, err := r.openLibrary(config)
	if err != nil {
		return err
	}
	defer db.Close()

	service, _, err := r.buildService(ctx, db, config, nopBroadcaster{})
	if err != nil {
		return err
	}
	defer service.Notifier().Stop()

	res, err := service.Browse(ctx, objectID, flag, "*",
		uint32(cmd.Int("start")), uint32(cmd.Int("count")), cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("browse failed (fault %d): %w", directory.FaultCode(err), err)
	}

	return r.writeResult(cmd, objectID, &res)
}

// Search runs a SearchCriteria query against the root container.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	criteria := cmd.StringArg("criteria")
	if criteria == "" {
		return fmt.Errorf("%w: search criteria argument required", shared.ErrUnsupportedCriteria)
	}

	config := r.loadConfig(cmd)
	db, err := r.openLibrary(config)
	if err != nil {
		return err
	}
	defer db.Close()

	service, _, err := r.buildService(ctx, db, config, nopBroadcaster{})
	if err != nil {
		return err
	}
	defer service.Notifier().Stop()

	res, err := service.Search(ctx, directory.RootID, criteria, "*",
		0, uint32(cmd.Int("count")), cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("search failed (fault %d): %w", directory.FaultCode(err), err)
	}

	return r.writeResult(cmd, criteria, &res)
}

// writeResult renders a browse result in the requested output format.
func (r *Runner) writeResult(cmd *cli.Command, title string, res *directory.BrowseResult) error {
	if cmd.Bool("json") {
		return r.writeJSON(res.Objects, true)
	}

	switch format := cmd.String("format"); format {
	case "didl":
		return r.writePlain("%s\n", res.XML)
	case "csv":
		out, err := formatter.ExportToCSV(res)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)
	case "markdown", "md":
		out, err := formatter.ExportToMarkdown(title, res)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)
	case "text", "":
		out, err := formatter.ExportToText(title, res)
		if err != nil {
			return err
		}
		return r.writePlain("%s", out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
