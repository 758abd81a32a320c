package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casoauth/cmd/app/commands"
	"github.com/allisson/casoauth/internal/app"
	"github.com/allisson/casoauth/internal/config"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-audit-logs",
			Usage: "Check the signatures of audit log entries in a time range",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "start-date",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Range start (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS', UTC)",
				},
				&cli.StringFlag{
					Name:     "end-date",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Range end, inclusive (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS', UTC)",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditLogs(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("start-date"),
					cmd.String("end-date"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-audit-logs",
			Usage: "Delete audit log entries older than a number of days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Usage:   "Age in days beyond which entries are deleted (defaults to AUDIT_RETENTION_DAYS)",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Only count the entries that would be deleted",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				auditLogUseCase, err := container.AuditLogUseCase()
				if err != nil {
					return err
				}

				days := int(cmd.Int("days"))
				if !cmd.IsSet("days") {
					days = cfg.AuditRetentionDays
				}

				return commands.RunCleanAuditLogs(
					ctx,
					auditLogUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					days,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
