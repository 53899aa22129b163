package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/recallbox/internal/review"
	"github.com/example/recallbox/pkg/models"
)

// sender is the part of the Telegram API the bot talks to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// userStore persists learners and their reminder settings
type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Register(ctx context.Context, user *models.User) error
	UpdateNotificationSettings(ctx context.Context, userID int64, enabled bool, hour int) error
}

// containerLister lists the containers a user has content in
type containerLister interface {
	ListContainers(ctx context.Context, userID int64) ([]string, error)
}

// Config holds bot settings
type Config struct {
	Token        string
	BatchSize    int
	AdminUserIDs map[int64]bool
	// DefaultNotificationHour is assigned to newly registered users
	DefaultNotificationHour int
}

// Bot represents the Telegram bot application
type Bot struct {
	api        sender
	botAPI     *tgbotapi.BotAPI
	config     Config
	service    *review.Service
	users      userStore
	containers containerLister
	clock      review.Clock
}

// New creates a new bot instance. The Telegram connection is made in Start.
func New(config Config, service *review.Service, users userStore, containers containerLister, clock review.Clock) (*Bot, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	return &Bot{
		config:     config,
		service:    service,
		users:      users,
		containers: containers,
		clock:      clock,
	}, nil
}

// Connect authorizes against the Telegram API
func (b *Bot) Connect() error {
	botAPI, err := tgbotapi.NewBotAPI(b.config.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	slog.Info("authorized on telegram", slog.String("account", botAPI.Self.UserName))
	return nil
}

// Start connects to Telegram if needed and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		if err := b.Connect(); err != nil {
			return err
		}
	}
	botAPI := b.botAPI

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops polling for updates
func (b *Bot) Stop(ctx context.Context) error {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	slog.Info("bot stopped")
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.reply(update.Message.Chat.ID, "Send /help to see what I can do.")
	}
	if err != nil {
		slog.Error("failed to handle update", slog.Int("update", update.UpdateID), slog.Any("error", err))
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(ctx context.Context, user models.User, stats models.StudyModeStats) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}
	chatID := user.ChatID
	if chatID == 0 {
		chatID = user.ID
	}

	msg := tgbotapi.NewMessage(chatID, reminderText(stats))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Start review", callbackStartReview),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	slog.Info("reminder sent", slog.Int64("user", user.ID), slog.Int("due", stats.DueCount))
	return nil
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) now() time.Time {
	return b.clock.Now()
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminUserIDs[userID]
}
