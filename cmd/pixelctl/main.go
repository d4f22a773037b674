// Command pixelctl runs operational tasks against the PixelFeed database.
package main

import (
	"context"
	"fmt"
	"os"

	"pixelfeed/internal/config"
	"pixelfeed/internal/database"
	"pixelfeed/internal/seed"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pixelctl",
		Short:         "Operational tooling for the PixelFeed backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd())
	return root
}

func connect() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and the stats views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		opts    seed.Options
		fixture string
		clean   bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			return runSeed(cmd.Context(), cmd, db, opts, fixture, clean)
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 20, "number of users to generate")
	cmd.Flags().IntVar(&opts.Posts, "posts", 100, "number of posts to generate")
	cmd.Flags().IntVar(&opts.FollowsPerUser, "follows", 5, "follows per generated user")
	cmd.Flags().IntVar(&opts.LikesPerPost, "likes", 8, "maximum likes per post")
	cmd.Flags().IntVar(&opts.CommentsPerPost, "comments", 3, "maximum comments per post")
	cmd.Flags().IntVar(&opts.MaxDays, "days", 30, "spread post timestamps over this many days")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().StringVar(&fixture, "fixture", "", "YAML fixture to load instead of generated data")
	cmd.Flags().BoolVar(&clean, "clean", false, "delete existing social data first")
	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, db *gorm.DB, opts seed.Options, fixture string, clean bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s := seed.NewSeeder(db, opts.Seed)

	if clean {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
	}

	var (
		sum seed.Summary
		err error
	)
	if fixture != "" {
		fx, ferr := seed.LoadFixture(fixture)
		if ferr != nil {
			return ferr
		}
		sum, err = s.ApplyFixture(ctx, fx)
	} else {
		sum, err = s.Run(ctx, opts)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", sum)
	return nil
}
