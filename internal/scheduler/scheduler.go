package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/recallbox/internal/review"
	"github.com/example/recallbox/pkg/models"
)

// Notifier sends due-review reminders
type Notifier interface {
	SendReminders(ctx context.Context, user models.User, stats models.StudyModeStats) error
}

// UserSource lists users who want a reminder at a given hour
type UserSource interface {
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// StatsSource computes study statistics
type StatsSource interface {
	GetStudyModeStats(ctx context.Context, userID int64, asOf time.Time) (models.StudyModeStats, error)
}

// Options configures the reminder window and frequency
type Options struct {
	StartHour int
	EndHour   int
	Interval  time.Duration
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     UserSource
	stats     StatsSource
	clock     review.Clock
	opts      Options
}

// New creates a new scheduler instance
func New(notifier Notifier, users UserSource, stats StatsSource, clock review.Clock, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     users,
		stats:     stats,
		clock:     clock,
		opts:      opts,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.opts.Interval).Do(func() {
		sent := s.checkAndSendReminders(ctx)
		slog.Debug("reminder check finished", slog.Int("sent", sent))
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) inWindow(hour int) bool {
	if s.opts.StartHour <= s.opts.EndHour {
		return hour >= s.opts.StartHour && hour <= s.opts.EndHour
	}
	// window wraps midnight
	return hour >= s.opts.StartHour || hour <= s.opts.EndHour
}

// checkAndSendReminders notifies users whose reminder hour is now and who have
// due items. It returns the number of reminders sent.
func (s *Scheduler) checkAndSendReminders(ctx context.Context) int {
	now := s.clock.Now()
	currentHour := now.Hour()

	if !s.inWindow(currentHour) {
		slog.Debug("outside notification hours, skipping reminders",
			slog.Int("hour", currentHour), slog.Int("start", s.opts.StartHour), slog.Int("end", s.opts.EndHour))
		return 0
	}

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		slog.Error("failed to get users for notification", slog.Any("error", err))
		return 0
	}

	sent := 0
	for _, user := range users {
		stats, err := s.stats.GetStudyModeStats(ctx, user.ID, now)
		if err != nil {
			slog.Error("failed to get study stats", slog.Int64("user", user.ID), slog.Any("error", err))
			continue
		}
		if stats.DueCount == 0 {
			continue
		}
		if err := s.notifier.SendReminders(ctx, user, stats); err != nil {
			slog.Error("failed to send reminder", slog.Int64("user", user.ID), slog.Any("error", err))
			continue
		}
		sent++
	}
	return sent
}

// RunManualCheck forces a reminder for one user regardless of the hour
func (s *Scheduler) RunManualCheck(ctx context.Context, user models.User) error {
	stats, err := s.stats.GetStudyModeStats(ctx, user.ID, s.clock.Now())
	if err != nil {
		return err
	}
	if stats.DueCount == 0 {
		return nil
	}
	return s.notifier.SendReminders(ctx, user, stats)
}
