package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/example/recallbox/internal/config"
	"github.com/example/recallbox/internal/database"
	"github.com/example/recallbox/internal/review"
)

// app bundles what every subcommand needs
type app struct {
	cfg      *config.Config
	db       *sqlx.DB
	items    *database.ReviewableItemRepository
	progress *database.UserProgressRepository
	users    *database.UserRepository
	service  *review.Service
	clock    review.Clock
}

func openApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	dsn, err := cfg.DataSource()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.Driver(), dsn)
	if err != nil {
		return nil, err
	}
	slog.Info("database ready", slog.String("driver", cfg.Driver()))

	a := &app{
		cfg:      cfg,
		db:       db,
		items:    database.NewReviewableItemRepository(db),
		progress: database.NewUserProgressRepository(db),
		users:    database.NewUserRepository(db),
		clock:    review.SystemClock{},
	}
	a.service = review.NewService(a.progress, a.items)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "recallbox",
		Short:         "Leitner-box review bot for questions and flashcards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file to load before reading settings")

	root.AddCommand(
		newServeCmd(&envFile),
		newImportCmd(&envFile),
		newStatsCmd(&envFile),
		newBackfillCmd(&envFile),
		newRemindCmd(&envFile),
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newStatsCmd(envFile *string) *cobra.Command {
	var (
		userID    int64
		container string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print review statistics for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.service.GetReviewStats(cmd.Context(), userID, container, a.clock.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d\ndue: %d\nnew: %d\n", stats.TotalCount, stats.DueCount, stats.NewCount)
			for i, n := range stats.BoxDistribution {
				fmt.Fprintf(out, "box %d: %d\n", i+1, n)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&container, "container", "", "limit to one video or study set")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newBackfillCmd(envFile *string) *cobra.Command {
	var (
		userID    int64
		container string
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Schedule previously answered items that have no progress yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.service.BackfillProgressForContainer(cmd.Context(), userID, container, a.clock.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d progress records\n", len(created))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&container, "container", "", "video or study set id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}

// withTimeout bounds one-shot commands that talk to external services
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
