package bot

import (
	"fmt"
	"strings"

	"github.com/example/recallbox/internal/review"
	"github.com/example/recallbox/pkg/models"
)

// Constants for callback data
const (
	callbackStartReview  = "start_review"
	callbackShowPrefix   = "show"
	callbackAnswerPrefix = "ans"
)

// cardAction is a decoded inline-button press on an item
type cardAction struct {
	Kind      string // callbackShowPrefix or callbackAnswerPrefix
	ItemID    string
	Mode      review.Mode
	IsCorrect bool
}

func modeCode(m review.Mode) string {
	if m == review.ModeLearn {
		return "l"
	}
	return "r"
}

func showData(itemID string, mode review.Mode) string {
	return strings.Join([]string{callbackShowPrefix, itemID, modeCode(mode)}, ":")
}

func answerData(itemID string, mode review.Mode, isCorrect bool) string {
	correct := "0"
	if isCorrect {
		correct = "1"
	}
	return strings.Join([]string{callbackAnswerPrefix, itemID, modeCode(mode), correct}, ":")
}

// parseCardAction decodes show:<item>:<mode> and ans:<item>:<mode>:<0|1>
func parseCardAction(data string) (cardAction, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 || parts[1] == "" {
		return cardAction{}, fmt.Errorf("malformed callback %q", data)
	}

	a := cardAction{Kind: parts[0], ItemID: parts[1]}
	switch parts[2] {
	case "r":
		a.Mode = review.ModeReview
	case "l":
		a.Mode = review.ModeLearn
	default:
		return cardAction{}, fmt.Errorf("unknown mode in callback %q", data)
	}

	switch a.Kind {
	case callbackShowPrefix:
		if len(parts) != 3 {
			return cardAction{}, fmt.Errorf("malformed callback %q", data)
		}
	case callbackAnswerPrefix:
		if len(parts) != 4 || (parts[3] != "0" && parts[3] != "1") {
			return cardAction{}, fmt.Errorf("malformed callback %q", data)
		}
		a.IsCorrect = parts[3] == "1"
	default:
		return cardAction{}, fmt.Errorf("unknown callback %q", data)
	}
	return a, nil
}

func itemLabel(t models.ItemType) string {
	if t == models.ItemTypeFlashcard {
		return "🃏 Flashcard"
	}
	return "❓ Question"
}

func promptText(item models.ReviewableItem) string {
	return fmt.Sprintf("%s · %s\n\n%s", itemLabel(item.ItemType), item.ContainerID, item.Prompt)
}

func revealText(item models.ReviewableItem) string {
	return promptText(item) + "\n\n💡 " + item.Answer
}

func outcomeText(p *models.ProgressRecord, created bool, mode review.Mode) string {
	var text strings.Builder
	if mode == review.ModeLearn && !created {
		text.WriteString("Already scheduled, review history kept.\n")
	}
	fmt.Fprintf(&text, "📦 Box %d/%d", p.BoxLevel, models.BoxCount)
	if p.NextReviewDate != nil {
		fmt.Fprintf(&text, " · next review %s", *p.NextReviewDate)
	}
	return text.String()
}

func statsText(stats models.ReviewStats, containerID string) string {
	var text strings.Builder
	if containerID != "" {
		fmt.Fprintf(&text, "📊 Statistics for %s\n\n", containerID)
	} else {
		text.WriteString("📊 Your statistics\n\n")
	}
	fmt.Fprintf(&text, "Items: %d\n", stats.TotalCount)
	fmt.Fprintf(&text, "Due now: %d\n", stats.DueCount)
	fmt.Fprintf(&text, "New: %d\n", stats.NewCount)
	text.WriteString("\nBoxes:\n")
	for i, n := range stats.BoxDistribution {
		fmt.Fprintf(&text, "  %d: %d\n", i+1, n)
	}
	return text.String()
}

func reminderText(stats models.StudyModeStats) string {
	noun := "items"
	if stats.DueCount == 1 {
		noun = "item"
	}
	return fmt.Sprintf("🔔 You have %d %s due for review. Press the button to start.", stats.DueCount, noun)
}
