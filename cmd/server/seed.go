package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"course-market/internal/seed"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load course categories into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Seed.File
			}

			data, err := seed.Load(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeStore()

			n, err := seed.Apply(ctx, store.Categories, data, logger)
			if err != nil {
				return err
			}
			logger.Infof("seeded %d categories from %s", n, file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed file (defaults to seed.file)")
	return cmd
}
