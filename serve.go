package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/recallbox/internal/bot"
	"github.com/example/recallbox/internal/excel"
	"github.com/example/recallbox/internal/scheduler"
)

func (a *app) newBot() (*bot.Bot, error) {
	return bot.New(bot.Config{
		Token:                   a.cfg.TelegramToken,
		BatchSize:               a.cfg.BatchSize,
		AdminUserIDs:            a.cfg.AdminUserIDs,
		DefaultNotificationHour: a.cfg.NotificationStartHour,
	}, a.service, a.users, a.items, a.clock)
}

func (a *app) newScheduler(b *bot.Bot) *scheduler.Scheduler {
	return scheduler.New(b, a.users, a.service, a.clock, scheduler.Options{
		StartHour: a.cfg.NotificationStartHour,
		EndHour:   a.cfg.NotificationEndHour,
		Interval:  a.cfg.ReminderInterval,
	})
}

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := a.newBot()
			if err != nil {
				return err
			}
			if err := b.Connect(); err != nil {
				return err
			}

			if a.cfg.SchedulerEnabled {
				s := a.newScheduler(b)
				if err := s.Start(ctx); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
				defer s.Stop()
				slog.Info("scheduler started", slog.Duration("interval", a.cfg.ReminderInterval))
			}

			slog.Info("bot started, press Ctrl+C to stop")
			err = b.Start(ctx)

			// Give in-flight handlers time to finish
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := b.Stop(shutdownCtx); stopErr != nil {
				slog.Error("error during shutdown", slog.Any("error", stopErr))
			}

			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newImportCmd(envFile *string) *cobra.Command {
	importConfig := excel.DefaultImportConfig()
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions and flashcards from an Excel or CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := excel.ImportItems(cmd.Context(), a.items, importConfig, a.clock.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed: %d\ncreated: %d\nskipped: %d\n", result.TotalProcessed, result.Created, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&importConfig.FilePath, "file", "", "path to .xlsx or .csv file")
	f.Int64Var(&importConfig.UserID, "user", 0, "owner of the imported items")
	f.StringVar(&importConfig.DefaultContainer, "container", "", "container for rows that leave it empty")
	f.StringVar(&importConfig.SheetName, "sheet", importConfig.SheetName, "sheet to read from Excel files")
	f.IntVar(&importConfig.StartRow, "start-row", importConfig.StartRow, "first data row (1-based)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRemindCmd(envFile *string) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send a due-review reminder to one user now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := withTimeout(cmd.Context())
			defer cancel()

			user, err := a.users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user %d is not registered", userID)
			}

			b, err := a.newBot()
			if err != nil {
				return err
			}
			if err := b.Connect(); err != nil {
				return err
			}
			return a.newScheduler(b).RunManualCheck(ctx, *user)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
