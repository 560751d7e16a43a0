package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envsecrets/cmd/app/commands"
	"github.com/allisson/envsecrets/internal/app"
	"github.com/allisson/envsecrets/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-service-account",
			Usage: "Create a service account and print its one-time secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "organization-id",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Organization ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable service account name",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				serviceAccountUseCase, err := container.ServiceAccountUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateServiceAccount(
					ctx,
					serviceAccountUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("organization-id"),
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "grant-environment-access",
			Usage: "Grant a user or service account access to an environment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "principal-type",
					Aliases: []string{"t"},
					Value:   "service_account",
					Usage:   "Principal type: 'user' or 'service_account'",
				},
				&cli.StringFlag{
					Name:     "principal-id",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Principal ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "environment-id",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Environment ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				accessUseCase, err := container.AccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunGrantEnvironmentAccess(
					ctx,
					accessUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("principal-type"),
					cmd.String("principal-id"),
					cmd.String("environment-id"),
				)
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete service account tokens expired for more than the given number of days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   30,
					Usage:   "Delete tokens expired for more than this many days",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Only count the tokens that would be deleted",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
