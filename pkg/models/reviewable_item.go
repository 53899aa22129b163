package models

import (
	"errors"
	"fmt"
	"time"
)

// ItemType distinguishes the two kinds of reviewable content
type ItemType string

const (
	// ItemTypeQuestion is a multiple-choice question
	ItemTypeQuestion ItemType = "question"
	// ItemTypeFlashcard is a front/back flashcard
	ItemTypeFlashcard ItemType = "flashcard"
)

// ErrInvalidItem is returned by ReviewableItem.Validate
var ErrInvalidItem = errors.New("models: invalid reviewable item")

// ParseItemType converts a raw string into an ItemType
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeQuestion, ItemTypeFlashcard:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("%w: unknown item type %q", ErrInvalidItem, s)
}

// ReviewableItem is one unit of spaced repetition owned by a user.
// Exactly one of QuestionID and FlashcardID is set, matching ItemType.
type ReviewableItem struct {
	ID          string    `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	ContainerID string    `json:"container_id" db:"container_id"` // video or study set
	ItemType    ItemType  `json:"item_type" db:"item_type"`
	QuestionID  *string   `json:"question_id" db:"question_id"`
	FlashcardID *string   `json:"flashcard_id" db:"flashcard_id"`
	Prompt      string    `json:"prompt" db:"prompt"`
	Answer      string    `json:"answer" db:"answer"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SourceID returns the id of the underlying question or flashcard
func (i ReviewableItem) SourceID() string {
	switch {
	case i.QuestionID != nil:
		return *i.QuestionID
	case i.FlashcardID != nil:
		return *i.FlashcardID
	}
	return ""
}

// Validate checks the tagged-variant invariant
func (i ReviewableItem) Validate() error {
	if i.ID == "" || i.UserID <= 0 || i.ContainerID == "" {
		return fmt.Errorf("%w: id, user and container are required", ErrInvalidItem)
	}
	switch i.ItemType {
	case ItemTypeQuestion:
		if i.QuestionID == nil || *i.QuestionID == "" || i.FlashcardID != nil {
			return fmt.Errorf("%w: question item must carry only a question id", ErrInvalidItem)
		}
	case ItemTypeFlashcard:
		if i.FlashcardID == nil || *i.FlashcardID == "" || i.QuestionID != nil {
			return fmt.Errorf("%w: flashcard item must carry only a flashcard id", ErrInvalidItem)
		}
	default:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidItem, i.ItemType)
	}
	return nil
}

// SourceRef identifies an underlying question or flashcard
type SourceRef struct {
	Type ItemType
	ID   string
}
