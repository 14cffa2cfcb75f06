// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/scx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template, initialize the database and run migrations",
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage SoundCloud authentication",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Usage: "Requested scope (e.g. non-expiring)"},
					&cli.StringFlag{Name: "display", Usage: "Connect screen display mode (e.g. popup)"},
					&cli.StringFlag{Name: "state", Usage: "State value; generated when empty"},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Authorize in the browser and store the issued token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Usage: "Requested scope (e.g. non-expiring)"},
					&cli.DurationFlag{Name: "timeout", Usage: "How long to wait for the redirect", Value: defaultLoginTimeout},
					&cli.BoolFlag{Name: "no-browser", Usage: "Print the URL instead of opening a browser"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "password",
				Usage: "Exchange a username and password for a token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Sources: cli.EnvVars("SCX_PASSWORD")},
				},
				Action: r.AuthPassword,
			},
			{
				Name:   "status",
				Usage:  "Show the stored token and the authenticated user",
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Refresh the access token",
				Action: r.AuthRefresh,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Request parameter as key=value (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		}
	}
	verb := func(name, usage string) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Arguments: []cli.Argument{
				&cli.StringArg{Name: "path"},
			},
			Flags:  flags(),
			Action: r.API,
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the SoundCloud API",
		Commands: []*cli.Command{
			verb("get", "GET a path, params in the query string"),
			verb("post", "POST to a path, params in the form body"),
			verb("put", "PUT to a path, params in the form body"),
			verb("delete", "DELETE a path, params in the query string"),
			verb("head", "HEAD a path, params in the query string"),
		},
	}
}

func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "Show the authenticated user",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: r.Me,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List the authenticated user's playlists",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to print",
			},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON", Value: true},
		},
		Action: r.Playlists,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a playlist and its tracks, or every playlist with --all",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, csv, md or txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output base path (defaults to the playlist id)",
			},
			&cli.BoolFlag{Name: "all", Usage: "Export every playlist of the authenticated user"},
			&cli.StringFlag{Name: "dir", Usage: "Output directory for --all (defaults to soundcloud_export_{epoch})"},
			&cli.IntFlag{Name: "workers", Usage: "Concurrent exports for --all (max 10)", Value: tasks.DefaultWorkers},
			&cli.IntFlag{Name: "rate", Usage: "Playlist fetches per second for --all", Value: tasks.DefaultRateLimit},
		},
		Action: r.Export,
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Create a playlist from a JSON export",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Override the playlist title"},
			&cli.BoolFlag{Name: "private", Usage: "Create the playlist as private"},
		},
		Action: r.Import,
	}
}

func copyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Duplicate a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Title of the new playlist (defaults to the source title)"},
		},
		Action: r.Copy,
	}
}

func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Compare the tracks of two playlists",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "source"},
			&cli.StringArg{Name: "dest"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: r.Diff,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Find the best matching track",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "title"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: r.Search,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show requests made with scx api",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of entries", Value: 20},
			&cli.StringFlag{Name: "method", Usage: "Only show this HTTP method"},
			&cli.BoolFlag{Name: "failed", Usage: "Only show failed requests"},
			&cli.BoolFlag{Name: "clear", Usage: "Delete the listed entries"},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for browsing playlists.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive playlist browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory for exports", Value: "."},
		},
		Action: r.TUI,
	}
}
