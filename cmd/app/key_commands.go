package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envsecrets/cmd/app/commands"
	"github.com/allisson/envsecrets/internal/app"
	"github.com/allisson/envsecrets/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-server-secret",
			Usage: "Generate a new SERVER_SECRET, optionally wrapped with KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://, awskms:///alias/..., hashivault://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateServerSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "create-environment-keys",
			Usage: "Generate the keypair seed and blind-index salt of an environment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "environment-id",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Environment ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				envKeyUseCase, err := container.EnvironmentKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateEnvironmentKeys(
					ctx,
					envKeyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("environment-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
