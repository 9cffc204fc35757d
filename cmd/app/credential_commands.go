package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/actiongate/cmd/app/commands"
	"github.com/allisson/actiongate/internal/app"
	"github.com/allisson/actiongate/internal/config"
)

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-credential",
			Usage: "Issue a new bearer credential (the secret is shown only once)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Opaque owner identifier",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable credential name",
				},
				&cli.StringFlag{
					Name:    "permissions",
					Aliases: []string{"p"},
					Usage:   "Comma-separated permission list ('*' grants everything)",
				},
				&cli.IntFlag{
					Name:    "expires-in-days",
					Aliases: []string{"e"},
					Value:   -1,
					Usage:   "Days until expiry (0 never expires, omit for the configured default)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				expiresInDays := int(cmd.Int("expires-in-days"))
				if expiresInDays < 0 {
					expiresInDays = int(cfg.CredentialDefaultExpiration.Hours() / 24)
				}

				return commands.RunCreateCredential(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("owner"),
					cmd.String("name"),
					cmd.String("permissions"),
					expiresInDays,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-credential",
			Usage: "Revoke credentials by secret, by owner, or by owner and name",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Plaintext secret of the credential to revoke",
				},
				&cli.StringFlag{
					Name:    "owner",
					Aliases: []string{"o"},
					Usage:   "Revoke all of an owner's active credentials",
				},
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "Restrict owner revocation to credentials with this name",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeCredential(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("secret"),
					cmd.String("owner"),
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-credentials",
			Usage: "List all of an owner's credentials (secrets are never shown)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Opaque owner identifier",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunListCredentials(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("owner"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "cleanup-expired",
			Usage: "Deactivate all credentials whose expiry has passed",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				credentialUseCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanupExpired(
					ctx,
					credentialUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
