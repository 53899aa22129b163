package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/recallbox/internal/review"
	"github.com/example/recallbox/pkg/models"
)

const helpText = `Commands:
/review - review items that are due
/learn <container> - go through new items
/stats [container] - progress overview
/containers - list your videos and study sets
/backfill <container> - schedule items you answered before
/remind <hour|off> - daily reminder hour (0-23)`

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	args := strings.TrimSpace(message.CommandArguments())
	userID, chatID := message.From.ID, message.Chat.ID

	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(ctx, message)
	case "help":
		err = b.reply(chatID, helpText)
	case "review":
		err = b.sendNextDue(ctx, userID, chatID)
	case "learn":
		err = b.sendNextNew(ctx, userID, chatID, args)
	case "stats":
		err = b.handleStats(ctx, userID, chatID, args)
	case "userstats":
		err = b.handleUserStats(ctx, userID, chatID, args)
	case "containers":
		err = b.handleContainers(ctx, userID, chatID)
	case "backfill":
		err = b.handleBackfill(ctx, userID, chatID, args)
	case "remind":
		err = b.handleRemind(ctx, userID, chatID, args)
	default:
		err = b.reply(chatID, "Unknown command. Send /help to see available commands.")
	}
	return err
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	existing, err := b.users.GetByID(ctx, message.From.ID)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:                  message.From.ID,
		ChatID:              message.Chat.ID,
		Username:            message.From.UserName,
		FirstName:           message.From.FirstName,
		NotificationEnabled: true,
		NotificationHour:    b.config.DefaultNotificationHour,
	}
	if err := b.users.Register(ctx, user); err != nil {
		return err
	}

	greeting := "Welcome back"
	if existing == nil {
		greeting = "Welcome"
	}
	return b.reply(message.Chat.ID, fmt.Sprintf("%s, %s!\n\n%s", greeting, message.From.FirstName, helpText))
}

func (b *Bot) handleStats(ctx context.Context, userID, chatID int64, containerID string) error {
	stats, err := b.service.GetReviewStats(ctx, userID, containerID, b.now())
	if err != nil {
		return err
	}
	if stats.TotalCount == 0 {
		return b.reply(chatID, "You have no items yet. Import some content first.")
	}
	return b.reply(chatID, statsText(stats, containerID))
}

func (b *Bot) handleUserStats(ctx context.Context, userID, chatID int64, args string) error {
	if !b.isAdmin(userID) {
		return b.reply(chatID, "This command is for administrators only.")
	}
	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.reply(chatID, "Usage: /userstats <user id>")
	}
	stats, err := b.service.GetReviewStats(ctx, target, "", b.now())
	if err != nil {
		return err
	}
	return b.reply(chatID, fmt.Sprintf("User %d\n%s", target, statsText(stats, "")))
}

func (b *Bot) handleContainers(ctx context.Context, userID, chatID int64) error {
	containers, err := b.containers.ListContainers(ctx, userID)
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		return b.reply(chatID, "You have no content yet.")
	}
	return b.reply(chatID, "Your content:\n• "+strings.Join(containers, "\n• "))
}

func (b *Bot) handleBackfill(ctx context.Context, userID, chatID int64, containerID string) error {
	if containerID == "" {
		return b.reply(chatID, "Usage: /backfill <container>")
	}
	created, err := b.service.BackfillProgressForContainer(ctx, userID, containerID, b.now())
	if err != nil {
		return err
	}
	if len(created) == 0 {
		return b.reply(chatID, "Nothing to backfill: every answered item is already scheduled.")
	}
	return b.reply(chatID, fmt.Sprintf("Scheduled %d previously answered items for review.", len(created)))
}

func (b *Bot) handleRemind(ctx context.Context, userID, chatID int64, args string) error {
	if args == "off" {
		if err := b.users.UpdateNotificationSettings(ctx, userID, false, b.config.DefaultNotificationHour); err != nil {
			return err
		}
		return b.reply(chatID, "Reminders turned off.")
	}
	hour, err := strconv.Atoi(args)
	if err != nil || hour < 0 || hour > 23 {
		return b.reply(chatID, "Usage: /remind <hour 0-23|off>")
	}
	if err := b.users.UpdateNotificationSettings(ctx, userID, true, hour); err != nil {
		return err
	}
	return b.reply(chatID, fmt.Sprintf("I will remind you at %02d:00 when items are due.", hour))
}

func (b *Bot) sendNextDue(ctx context.Context, userID, chatID int64) error {
	due, err := b.service.DueItems(ctx, userID, b.now(), b.config.BatchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return b.reply(chatID, "🎉 Nothing is due. Come back later or /learn something new.")
	}
	if len(due) > 1 {
		slog.Debug("review batch", slog.Int64("user", userID), slog.Int("due", len(due)))
	}
	return b.sendPrompt(chatID, due[0].Item, review.ModeReview)
}

func (b *Bot) sendNextNew(ctx context.Context, userID, chatID int64, containerID string) error {
	items, err := b.service.NewItems(ctx, userID, containerID, 1)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.reply(chatID, "No new items here. Try /review.")
	}
	return b.sendPrompt(chatID, items[0], review.ModeLearn)
}

func (b *Bot) sendPrompt(chatID int64, item models.ReviewableItem, mode review.Mode) error {
	msg := tgbotapi.NewMessage(chatID, promptText(item))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👀 Show answer", showData(item.ID, mode)),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		slog.Warn("failed to answer callback", slog.Any("error", err))
	}

	userID, chatID := callback.From.ID, callback.Message.Chat.ID
	if callback.Data == callbackStartReview {
		return b.sendNextDue(ctx, userID, chatID)
	}

	action, err := parseCardAction(callback.Data)
	if err != nil {
		return err
	}

	item, err := b.service.LoadItem(ctx, userID, action.ItemID)
	if errors.Is(err, review.ErrItemNotFound) || errors.Is(err, review.ErrUserNotAuthorized) {
		return b.reply(chatID, "This item is no longer available.")
	}
	if err != nil {
		return err
	}

	if action.Kind == callbackShowPrefix {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, callback.Message.MessageID, revealText(*item),
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("✅ Knew it", answerData(item.ID, action.Mode, true)),
					tgbotapi.NewInlineKeyboardButtonData("❌ Missed it", answerData(item.ID, action.Mode, false)),
				),
			))
		_, err := b.api.Send(edit)
		return err
	}

	progress, created, err := b.service.Answer(ctx, item, action.IsCorrect, action.Mode, b.now())
	if err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID,
		revealText(*item)+"\n\n"+outcomeText(progress, created, action.Mode))
	if _, err := b.api.Send(edit); err != nil {
		return err
	}

	if action.Mode == review.ModeLearn {
		return b.sendNextNew(ctx, userID, chatID, item.ContainerID)
	}
	return b.sendNextDue(ctx, userID, chatID)
}
