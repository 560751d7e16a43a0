package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envsecrets/cmd/app/commands"
	"github.com/allisson/envsecrets/internal/app"
	"github.com/allisson/envsecrets/internal/config"
)

func getDynamicSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-provider-credentials",
			Usage: "Store encrypted provider credentials for an organization",
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
					Usage:    "Human-readable credentials name",
				},
				&cli.StringFlag{
					Name:  "provider",
					Value: "aws-iam",
					Usage: "Provider identifier",
				},
				&cli.StringFlag{
					Name:     "credentials",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "JSON object of credential fields",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				dynamicSecretUseCase, err := container.DynamicSecretUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateProviderCredentials(
					ctx,
					dynamicSecretUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("organization-id"),
					cmd.String("name"),
					cmd.String("provider"),
					cmd.String("credentials"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-dynamic-secret",
			Usage: "Define a dynamic secret in an environment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "environment-id",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Environment ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Dynamic secret name",
				},
				&cli.StringFlag{
					Name:  "path",
					Value: "/",
					Usage: "Folder path of the dynamic secret",
				},
				&cli.StringFlag{
					Name:  "provider",
					Value: "aws-iam",
					Usage: "Provider identifier",
				},
				&cli.StringFlag{
					Name:     "config",
					Required: true,
					Usage:    "Provider config as a JSON object",
				},
				&cli.StringFlag{
					Name:     "key-map",
					Required: true,
					Usage:    `JSON array of {"id","key_name"} output key mappings`,
				},
				&cli.DurationFlag{
					Name:  "default-ttl",
					Value: time.Hour,
					Usage: "Lease TTL when none is requested",
				},
				&cli.DurationFlag{
					Name:  "max-ttl",
					Value: 24 * time.Hour,
					Usage: "Upper bound on lease lifetime",
				},
				&cli.StringFlag{
					Name:     "authentication-ref",
					Required: true,
					Usage:    "Provider credentials ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				dynamicSecretUseCase, err := container.DynamicSecretUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateDynamicSecret(
					ctx,
					dynamicSecretUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.DynamicSecretFlags{
						EnvironmentID:     cmd.String("environment-id"),
						Name:              cmd.String("name"),
						Path:              cmd.String("path"),
						Provider:          cmd.String("provider"),
						Config:            cmd.String("config"),
						KeyMap:            cmd.String("key-map"),
						DefaultTTL:        cmd.Duration("default-ttl"),
						MaxTTL:            cmd.Duration("max-ttl"),
						AuthenticationRef: cmd.String("authentication-ref"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-lease",
			Usage: "Revoke a lease and tear down its provider credentials",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "lease-id",
					Aliases:  []string{"l"},
					Required: true,
					Usage:    "Lease ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				leaseUseCase, err := container.LeaseUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeLease(
					ctx,
					leaseUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("lease-id"),
				)
			},
		},
	}
}
