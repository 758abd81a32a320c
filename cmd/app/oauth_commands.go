package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/casoauth/cmd/app/commands"
	"github.com/allisson/casoauth/internal/app"
	"github.com/allisson/casoauth/internal/config"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   "text",
	Usage:   "Output format: 'text' or 'json'",
}

func getOAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-client",
			Usage: "Register an OAuth client and print its secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "Client ID (generated when omitted)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable client name",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Client description shown to users",
				},
				&cli.StringFlag{
					Name:     "redirect-uri",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Registered callback URL",
				},
				&cli.BoolFlag{
					Name:  "auto-approve",
					Value: false,
					Usage: "Skip the user approval step",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				clientUseCase, err := container.ClientUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateClient(
					ctx,
					clientUseCase,
					container.Logger(),
					commands.ClientFlags{
						ID:          cmd.String("id"),
						Name:        cmd.String("name"),
						Description: cmd.String("description"),
						RedirectURI: cmd.String("redirect-uri"),
						AutoApprove: cmd.Bool("auto-approve"),
					},
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "create-personal-token",
			Usage: "Provision a personal token for a principal",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Token name",
				},
				&cli.StringFlag{
					Name:     "principal",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Principal the token acts for",
				},
				&cli.StringFlag{
					Name:    "scopes",
					Aliases: []string{"s"},
					Usage:   "Space or comma separated scope names",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				personalTokenUseCase, err := container.PersonalTokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePersonalToken(
					ctx,
					personalTokenUseCase,
					container.Logger(),
					cmd.String("name"),
					cmd.String("principal"),
					cmd.String("scopes"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "revoke-client-tokens",
			Usage: "Revoke every refresh and access token issued to a client",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Client ID",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Client secret (prompted when omitted)",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeClientTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					cmd.String("id"),
					cmd.String("secret"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
