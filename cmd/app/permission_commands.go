package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/actiongate/cmd/app/commands"
	"github.com/allisson/actiongate/internal/app"
	"github.com/allisson/actiongate/internal/config"
)

func getPermissionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set-permission",
			Usage: "Create or replace the permission override for an action",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "action",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Action identifier (e.g., 'system.info')",
				},
				&cli.StringFlag{
					Name:    "permissions",
					Aliases: []string{"p"},
					Usage:   "Comma-separated permission list (empty opens the action to any authenticated caller)",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Human-readable reason for the override",
				},
				&cli.BoolFlag{
					Name:    "active",
					Value:   true,
					Usage:   "Whether the override replaces the handler default",
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

				resolver, err := container.PermissionResolver()
				if err != nil {
					return err
				}

				return commands.RunSetPermission(
					ctx,
					resolver,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("action"),
					cmd.String("permissions"),
					cmd.String("description"),
					cmd.Bool("active"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "remove-permission",
			Usage: "Delete the permission override for an action, restoring the handler default",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "action",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Action identifier (e.g., 'system.info')",
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

				resolver, err := container.PermissionResolver()
				if err != nil {
					return err
				}

				return commands.RunRemovePermission(
					ctx,
					resolver,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("action"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sync-permissions",
			Usage: "Bulk-apply permission overrides from a JSON document",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "spec",
					Aliases: []string{"s"},
					Usage:   "JSON document mapping action identifiers to override specs (omit to read from stdin)",
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

				resolver, err := container.PermissionResolver()
				if err != nil {
					return err
				}

				return commands.RunSyncPermissions(
					ctx,
					resolver,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("spec"),
					cmd.String("format"),
				)
			},
		},
	}
}
