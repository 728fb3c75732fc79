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

// serveCommand runs the web front end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web front end",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes a starter config and prepares the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing and run database migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// historyCommand prints recorded downloads.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded downloads, newest first",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of downloads to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show downloads with this status (running, completed, failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// m3uCommand regenerates a playlist listing by hand.
func m3uCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "m3u",
		Usage: "Write <dir>/<dir>.m3u listing the audio files in dir",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "dir"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ext",
				Usage: "Audio file extension to list",
				Value: ".flac",
			},
		},
		Action: r.WriteM3U,
	}
}
