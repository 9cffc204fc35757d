// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/actiongate/internal/app"
)

func main() {
	cmd := &cli.Command{
		Name:     "app",
		Usage:    "Action dispatch gateway",
		Version:  app.Version,
		Commands: getCommands(app.Version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
