package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casoauth/cmd/app/commands"
	"github.com/allisson/casoauth/internal/app"
	"github.com/allisson/casoauth/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the OAuth and login HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create or upgrade the client, token and personal token tables",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "connection-string",
					Usage: "Override DB_CONNECTION_STRING, e.g. to migrate with a privileged user",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if dsn := cmd.String("connection-string"); dsn != "" {
					cfg.DBConnectionString = dsn
				}

				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
	}
}
