package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/matchdex/internal/config"
	"github.com/kailas-cloud/matchdex/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "matchctl",
		Usage:   "Run matchdex searches and manage records from the command line",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Configuration environment (config/<env>.yaml)",
				Value:   config.GetEnv(),
				Sources: cli.EnvVars("ENV"),
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			similarCommand(),
			seedCommand(),
			healthCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
