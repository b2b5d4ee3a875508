package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/app"
	"github.com/kailas-cloud/matchdex/internal/config"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	logpkg "github.com/kailas-cloud/matchdex/internal/logger"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Compile and run a filter set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filters", Usage: "Filter set as a JSON object", Value: "{}"},
			&cli.StringFlag{Name: "locale", Usage: "Request locale, e.g. nl_BE"},
			&cli.FloatFlag{Name: "lat", Usage: "Center latitude"},
			&cli.FloatFlag{Name: "lon", Usage: "Center longitude"},
			&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
			&cli.IntFlag{Name: "per-page", Usage: "Results per page"},
			&cli.BoolFlag{Name: "include-disabled", Usage: "Keep disabled users"},
			&cli.BoolFlag{Name: "explain", Usage: "Ask the index to explain scores"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			set, err := parseFilters(c.String("filters"))
			if err != nil {
				return err
			}
			opts := searchuc.Options{
				Locale:          c.String("locale"),
				Page:            c.Int("page"),
				PerPage:         c.Int("per-page"),
				IncludeDisabled: c.Bool("include-disabled"),
				Explain:         c.Bool("explain"),
			}
			if c.IsSet("lat") || c.IsSet("lon") {
				p, err := geo.NewPoint(c.Float("lat"), c.Float("lon"))
				if err != nil {
					return fmt.Errorf("center: %w", err)
				}
				opts.Center = &p
			}

			return withApp(ctx, c, func(a *app.App) error {
				res, err := a.Search.Search(ctx, set, opts)
				if err != nil {
					return err
				}
				return printJSON(c.Root().Writer, res)
			})
		},
	}
}

func similarCommand() *cli.Command {
	return &cli.Command{
		Name:  "similar",
		Usage: "Find users similar to a given user",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Usage: "User ID", Required: true},
			&cli.StringFlag{Name: "locale", Usage: "Request locale"},
			&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
			&cli.IntFlag{Name: "per-page", Usage: "Results per page"},
			&cli.FloatFlag{Name: "distance-km", Usage: "Radius of the broadened search"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			opts := searchuc.SimilarOptions{
				Locale:     c.String("locale"),
				Page:       c.Int("page"),
				PerPage:    c.Int("per-page"),
				DistanceKm: c.Float("distance-km"),
			}
			return withApp(ctx, c, func(a *app.App) error {
				res, err := a.Search.SimilarByID(ctx, c.Int64("id"), opts)
				if err != nil {
					return err
				}
				return printJSON(c.Root().Writer, res)
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load users and places from a JSON file into the record store",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one seed file")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer func() { _ = f.Close() }()

			data, err := parseSeed(f)
			if err != nil {
				return err
			}

			cfg, log, err := load(c)
			if err != nil {
				return err
			}
			store, err := app.NewStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := data.apply(ctx, store); err != nil {
				return err
			}
			log.Info("Seeded record store",
				zap.Int("users", len(data.Users)),
				zap.Int("places", len(data.Places)),
			)
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the record store and the search index",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app.App) error {
				return printJSON(c.Root().Writer, a.Health.Check(ctx))
			})
		},
	}
}

func load(c *cli.Command) (config.Config, *zap.Logger, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

func withApp(ctx context.Context, c *cli.Command, fn func(a *app.App) error) error {
	cfg, log, err := load(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func parseFilters(s string) (filter.Set, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("parse filters: %w", err)
	}
	set := make(filter.Set, len(raw))
	for k, v := range raw {
		set[filter.Key(k)] = v
	}
	return set, nil
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
