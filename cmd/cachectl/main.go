package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ggorockee/companyfinder/internal/config"
	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/services"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := newApp().Run(os.Args); err != nil {
		logger.GetLogger("cachectl").Error(err)
		logger.Sync()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cachectl",
		Usage: "Inspect and maintain the company result cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Cache backend (postgres, badger); defaults to CACHE_BACKEND",
			},
			&cli.StringFlag{
				Name:  "badger-path",
				Usage: "Badger directory; defaults to BADGER_PATH",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Run a search through the cache and print the companies as JSON",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "location",
						Aliases:  []string{"l"},
						Usage:    "Free-text location",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "industry",
						Aliases:  []string{"i"},
						Usage:    "Industry keyword",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "radius",
						Aliases: []string{"r"},
						Usage:   "Radius in km",
						Value:   services.DefaultRadiusKm,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete companies by id",
				ArgsUsage: "ID...",
				Action:    deleteCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print the number of cached rows and the capacity",
				Action: statsCommand,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached row",
				Action: clearCommand,
			},
		},
	}
}

// withServices opens the configured store for the duration of fn
func withServices(c *cli.Context, fn func(ctx context.Context, svc *services.Services) error) error {
	cfg := config.Load()
	if backend := c.String("backend"); backend != "" {
		cfg.Cache.Backend = backend
	}
	if path := c.String("badger-path"); path != "" {
		cfg.Cache.BadgerPath = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open result cache: %w", err)
	}
	defer store.Close()

	return fn(ctx, services.New(cfg, store))
}

func searchCommand(c *cli.Context) error {
	query := models.SearchQuery{
		Location: c.String("location"),
		Industry: c.String("industry"),
		RadiusKm: c.Int("radius"),
	}
	return withServices(c, func(ctx context.Context, svc *services.Services) error {
		companies, err := svc.Search.Run(ctx, query)
		var notFound *services.NotFoundError
		if errors.As(err, &notFound) {
			return cli.Exit("Location not found.", 2)
		}
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, companies)
	})
}

func deleteCommand(c *cli.Context) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return cli.Exit("at least one id is required", 2)
	}
	return withServices(c, func(ctx context.Context, svc *services.Services) error {
		deleted, err := svc.Deletion.DeleteSelected(ctx, ids)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "deleted %d rows\n", deleted)
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, svc *services.Services) error {
		stats, err := svc.Cache.Stats(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, stats)
	})
}

func clearCommand(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, svc *services.Services) error {
		cleared, err := svc.Cache.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "cleared %d rows\n", cleared)
		return nil
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
