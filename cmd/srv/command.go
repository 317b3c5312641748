package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Intranet"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startRealtime,
			Name:        "realtime",
			Usage:       "Start realtime service",
			Flags:       []cli.Flag{},
			Category:    "Realtime",
			Description: `Serves the websocket live channel, presence, and notification fan-out.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Applies the schema migrations and exits.`,
		},
	}

	s.app = app
}
