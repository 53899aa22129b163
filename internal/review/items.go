package review

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/example/recallbox/internal/leitner"
	"github.com/example/recallbox/pkg/models"
)

// Mode selects which progress policy an answer goes through
type Mode int

const (
	// ModeReview is a dedicated review session (ProcessAnswer)
	ModeReview Mode = iota
	// ModeLearn is the first pass over new material (InitializeProgress)
	ModeLearn
)

func (m Mode) String() string {
	if m == ModeLearn {
		return "learn"
	}
	return "review"
}

// ResolveItem maps a question or flashcard id to the user's reviewable item
func (s *Service) ResolveItem(ctx context.Context, userID int64, ref models.SourceRef) (*models.ReviewableItem, error) {
	if userID <= 0 || ref.ID == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "user id and source id are required")
	}
	if _, err := models.ParseItemType(string(ref.Type)); err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	item, err := s.inventory.FindBySource(ctx, ref)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve item")
	}
	if item == nil {
		return nil, errors.Wrapf(ErrItemNotFound, "%s %s", ref.Type, ref.ID)
	}
	if item.UserID != userID {
		return nil, errors.Wrapf(ErrUserNotAuthorized, "%s %s", ref.Type, ref.ID)
	}
	return item, nil
}

// LoadItem fetches a reviewable item by id and checks ownership
func (s *Service) LoadItem(ctx context.Context, userID int64, itemID string) (*models.ReviewableItem, error) {
	if err := validateKey(userID, itemID); err != nil {
		return nil, err
	}
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load item")
	}
	if item == nil {
		return nil, errors.Wrapf(ErrItemNotFound, "item %s", itemID)
	}
	if item.UserID != userID {
		return nil, errors.Wrapf(ErrUserNotAuthorized, "item %s", itemID)
	}
	return item, nil
}

// Answer logs the answer to item and applies the progress policy for mode.
// created is always false in review mode.
func (s *Service) Answer(ctx context.Context, item *models.ReviewableItem, isCorrect bool, mode Mode, now time.Time) (*models.ProgressRecord, bool, error) {
	if err := s.inventory.RecordAnswer(ctx, &models.Answer{
		UserID:      item.UserID,
		ItemID:      item.ID,
		ContainerID: item.ContainerID,
		IsCorrect:   isCorrect,
		AnsweredAt:  now,
	}); err != nil {
		return nil, false, errors.Wrap(err, "failed to record answer")
	}

	if mode == ModeLearn {
		return s.InitializeProgress(ctx, item.UserID, item.ID, isCorrect, now)
	}
	p, err := s.ProcessAnswer(ctx, item.UserID, item.ID, isCorrect, now)
	return p, false, err
}

// AnswerBySource resolves a question or flashcard id and answers it
func (s *Service) AnswerBySource(ctx context.Context, userID int64, ref models.SourceRef, isCorrect bool, mode Mode, now time.Time) (*models.ProgressRecord, bool, error) {
	item, err := s.ResolveItem(ctx, userID, ref)
	if err != nil {
		return nil, false, err
	}
	return s.Answer(ctx, item, isCorrect, mode, now)
}

// DueItem pairs a reviewable item with its progress
type DueItem struct {
	Item     models.ReviewableItem
	Progress models.ProgressRecord
}

// DueItems returns up to limit items due on asOf, most overdue first, then
// lowest box. limit <= 0 means no limit.
func (s *Service) DueItems(ctx context.Context, userID int64, asOf time.Time, limit int) ([]DueItem, error) {
	if userID <= 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "user id is required")
	}

	due, err := s.store.FindDueForUser(ctx, userID, asOf.Format(leitner.DateLayout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find due progress")
	}

	sort.SliceStable(due, func(i, j int) bool {
		di, dj := *due[i].NextReviewDate, *due[j].NextReviewDate
		if di != dj {
			return di < dj
		}
		return due[i].BoxLevel < due[j].BoxLevel
	})

	var out []DueItem
	for _, p := range due {
		if limit > 0 && len(out) >= limit {
			break
		}
		item, err := s.inventory.GetItem(ctx, p.ItemID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load due item")
		}
		if item == nil {
			// progress for content that has since been deleted
			continue
		}
		out = append(out, DueItem{Item: *item, Progress: p})
	}
	return out, nil
}

// NewItems returns up to limit items in containerID the user has never answered.
// An empty containerID means all containers; limit <= 0 means no limit.
func (s *Service) NewItems(ctx context.Context, userID int64, containerID string, limit int) ([]models.ReviewableItem, error) {
	if userID <= 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "user id is required")
	}

	items, err := s.inventory.ListItems(ctx, userID, containerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}
	tracked, err := s.store.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list progress")
	}
	has := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		has[p.ItemID] = true
	}

	var out []models.ReviewableItem
	for _, it := range items {
		if has[it.ID] {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
