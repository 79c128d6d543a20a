package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phivault/cmd/app/commands"
	"github.com/allisson/phivault/internal/app"
	authService "github.com/allisson/phivault/internal/auth/service"
	"github.com/allisson/phivault/internal/config"
	cryptoService "github.com/allisson/phivault/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate ENCRYPTION_KEY and ENCRYPTION_SALT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Wrap the key with this KMS key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()

				return commands.RunCreateEncryptionKey(
					ctx,
					cryptoService.NewKMSService(),
					app.NewLogger(cfg.LogLevel, os.Stderr),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-api-token",
			Usage: "Generate a bearer token for the field API and its API_TOKEN_HASH",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				tokenService, err := authService.NewAPITokenService("")
				if err != nil {
					return err
				}

				return commands.RunCreateAPIToken(tokenService, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
