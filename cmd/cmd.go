// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration and database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// scanCommand rebuilds the library from the configured media directories.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan media directories and rebuild the library",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress progress output",
			},
		},
		Action: r.Scan,
	}
}

// serveCommand runs the UPnP media server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the UPnP media server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "scan",
				Usage: "Rescan media directories on startup",
			},
		},
		Action: r.Serve,
	}
}

// browseCommand lists one container of the virtual hierarchy.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "List a container of the library hierarchy",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "object",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "metadata",
				Usage: "Show the object's own metadata instead of its children",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv, markdown, didl",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "UPnP SortCriteria, e.g. +dc:title",
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "Starting index",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Maximum entries to return (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Browse,
	}
}

// searchCommand runs a SearchCriteria query against the library.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the library with UPnP SearchCriteria",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "criteria",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv, markdown, didl",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "UPnP SortCriteria, e.g. +dc:title",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Maximum entries to return (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive library browser",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
