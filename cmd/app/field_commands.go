package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phivault/cmd/app/commands"
	"github.com/allisson/phivault/internal/app"
	"github.com/allisson/phivault/internal/config"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

func fieldContextFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "field", Required: true, Usage: "Field name (e.g., ssn, diagnosis_code)"},
		&cli.StringFlag{Name: "resource-type", Usage: "Resource type (e.g., patient)"},
		&cli.StringFlag{Name: "resource-id", Usage: "Resource identifier"},
		&cli.StringFlag{Name: "user-id", Usage: "Acting user identifier"},
		&cli.StringFlag{Name: "organization-id", Usage: "Tenant identifier"},
		&cli.StringFlag{Name: "classification", Usage: "Explicit sensitivity level"},
		formatFlag(),
	}
}

func fieldContextFrom(cmd *cli.Command) phiDomain.FieldContext {
	return phiDomain.FieldContext{
		FieldName:          cmd.String("field"),
		ResourceType:       cmd.String("resource-type"),
		ResourceID:         cmd.String("resource-id"),
		UserID:             cmd.String("user-id"),
		OrganizationID:     cmd.String("organization-id"),
		DataClassification: cmd.String("classification"),
	}
}

// withFieldContainer runs fn with a container whose cache is disabled: one-shot commands
// gain nothing from caching plaintext.
func withFieldContainer(ctx context.Context, fn func(container *app.Container) error) error {
	cfg := config.Load()
	cfg.CacheDriver = config.CacheDriverNone
	cfg.MetricsEnabled = false

	container, err := app.NewContainer(ctx, cfg, app.NewLogger(cfg.LogLevel, os.Stderr))
	if err != nil {
		return err
	}
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

func getFieldCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt-field",
			Usage: "Encrypt one value with the configured key",
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: "value", Required: true, Usage: "Plaintext value"},
			}, fieldContextFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withFieldContainer(ctx, func(container *app.Container) error {
					return commands.RunEncryptField(
						ctx,
						container.FieldCipher(),
						commands.DefaultIO().Writer,
						cmd.String("value"),
						fieldContextFrom(cmd),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "decrypt-field",
			Usage: "Decrypt one envelope with the configured key",
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: "envelope", Required: true, Usage: "Envelope produced by encrypt-field"},
			}, fieldContextFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withFieldContainer(ctx, func(container *app.Container) error {
					return commands.RunDecryptField(
						ctx,
						container.FieldCipher(),
						commands.DefaultIO().Writer,
						cmd.String("envelope"),
						fieldContextFrom(cmd),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
