package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "maidclient",
		Usage: "client for a quorum-replicated storage network",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML client config",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "Run the account-creation flow against an in-process vault group",
				Action: demo,
			},
			{
				Name:  "repl",
				Usage: "Interactive shell against an in-process vault group",
				Flags: []cli.Flag{&cli.StringFlag{
					Name:  "keystore",
					Value: "maidclient-keys.db",
					Usage: "path to the local keyring store",
				}},
				Action: repl,
			},
			{
				Name:  "api",
				Usage: "Serve the HTTP admin API over an in-process vault group",
				Flags: []cli.Flag{&cli.StringFlag{
					Name:    "listen",
					Aliases: []string{"l"},
					Value:   ":8080",
					Usage:   "HTTP listen address",
				}},
				Action: serveAPI,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
