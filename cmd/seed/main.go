// Package main provides a tool to seed a ShoeFit data directory with catalog
// shoes, demo accounts and their owned shoes from a YAML file.
//
// Usage:
//
//	seed --config shoefit.yaml --file catalog.yaml
//	seed --data-path ~/.shoefit --file catalog.yaml --skip-images
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	dataPath   string
	file       string
	skipImages bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the ShoeFit catalog and demo accounts",
		Long: `Seed reads a YAML file and creates the catalog shoes, accounts and
owned shoes it lists. Entries that already exist are skipped, so the same file
can be applied repeatedly.

Catalog entries with an image_url have their photo downloaded and stored like
an admin upload.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to the server YAML config")
	flags.StringVar(&opts.dataPath, "data-path", "", "Override the data directory")
	flags.StringVarP(&opts.file, "file", "f", "", "Seed file (YAML)")
	flags.BoolVar(&opts.skipImages, "skip-images", false, "Do not download catalog images")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var args []string
	if opts.configPath != "" {
		args = append(args, "--config", opts.configPath)
	}
	if opts.dataPath != "" {
		args = append(args, "--data-path", opts.dataPath)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	level := logger.ParseLevel(cfg.Logger.Level)
	if opts.verbose {
		level = logger.ParseLevel("debug")
	}
	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Level:       level,
		Environment: cfg.App.Environment,
	})

	file, err := LoadSeedFile(opts.file)
	if err != nil {
		return err
	}

	seeder, err := OpenSeeder(cfg, log.Logger)
	if err != nil {
		return err
	}
	defer seeder.Close()
	seeder.SkipImages = opts.skipImages

	report, err := seeder.Apply(ctx, file)
	if err != nil {
		return err
	}

	log.Info("Seed complete",
		"catalog_created", report.CatalogCreated,
		"catalog_skipped", report.CatalogSkipped,
		"images", report.Images,
		"users_created", report.UsersCreated,
		"users_skipped", report.UsersSkipped,
		"shoes_created", report.ShoesCreated,
	)
	return nil
}
