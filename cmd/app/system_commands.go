package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phivault/cmd/app/commands"
	"github.com/allisson/phivault/internal/app"
	"github.com/allisson/phivault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the field API and metrics servers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create the audit_events table (AUDIT_DRIVER=database)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewLogger(cfg.LogLevel, os.Stdout)

				return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-audit-events",
			Usage: "Delete audit events older than the given number of days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete audit events older than this many days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many events would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				logger := app.NewLogger(cfg.LogLevel, os.Stderr)
				container, err := app.NewAuditContainer(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCleanAuditEvents(
					ctx,
					container.AuditEventUseCase(),
					logger,
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
