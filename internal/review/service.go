// Package review implements the answer-processing and statistics use-cases
// on top of the Leitner box model.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/example/recallbox/internal/leitner"
	"github.com/example/recallbox/pkg/models"
)

// Service orchestrates progress updates for answered items
type Service struct {
	store     ProgressStore
	inventory Inventory
}

// NewService creates a new review service
func NewService(store ProgressStore, inventory Inventory) *Service {
	return &Service{
		store:     store,
		inventory: inventory,
	}
}

func validateKey(userID int64, itemID string) error {
	if userID <= 0 {
		return errors.Wrap(ErrInvalidArgument, "user id is required")
	}
	if itemID == "" {
		return errors.Wrap(ErrInvalidArgument, "item id is required")
	}
	return nil
}

// ProcessAnswer records an answer given during a review session.
// An item answered for the first time starts in box 1 whatever the outcome.
func (s *Service) ProcessAnswer(ctx context.Context, userID int64, itemID string, isCorrect bool, now time.Time) (*models.ProgressRecord, error) {
	if err := validateKey(userID, itemID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find progress")
	}
	if existing != nil {
		return s.advance(ctx, existing, isCorrect, now)
	}

	first := leitner.FirstAnswer(isCorrect, now)
	p := newRecord(userID, itemID, first, now)
	err = s.store.Create(ctx, p)
	if errors.Is(err, ErrProgressExists) {
		// A concurrent first answer won the insert; apply ours on top of it.
		existing, err = s.store.FindByUserAndItem(ctx, userID, itemID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reload progress")
		}
		if existing == nil {
			return nil, errors.Wrap(ErrProgressNotFound, "progress vanished after conflict")
		}
		return s.advance(ctx, existing, isCorrect, now)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create progress")
	}

	slog.Debug("progress created",
		slog.Int64("user", userID), slog.String("item", itemID), slog.Bool("correct", isCorrect))
	return p, nil
}

func (s *Service) advance(ctx context.Context, p *models.ProgressRecord, isCorrect bool, now time.Time) (*models.ProgressRecord, error) {
	o, err := leitner.ApplyAnswer(p.BoxLevel, isCorrect, p.TimesCorrect, p.TimesIncorrect, now)
	if err != nil {
		return nil, err
	}

	updated := *p
	updated.BoxLevel = o.BoxLevel
	updated.NextReviewDate = &o.NextReviewDate
	updated.TimesCorrect = o.TimesCorrect
	updated.TimesIncorrect = o.TimesIncorrect
	updated.LastReviewedAt = &o.LastReviewedAt

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, errors.Wrap(err, "failed to update progress")
	}

	slog.Debug("progress updated",
		slog.Int64("user", p.UserID), slog.String("item", p.ItemID),
		slog.Int("from_box", p.BoxLevel), slog.Int("to_box", updated.BoxLevel))
	return &updated, nil
}

// InitializeProgress enrolls an item answered while first learning the material.
// It never touches an existing record; created reports whether a record was made.
func (s *Service) InitializeProgress(ctx context.Context, userID int64, itemID string, isCorrect bool, now time.Time) (*models.ProgressRecord, bool, error) {
	if err := validateKey(userID, itemID); err != nil {
		return nil, false, err
	}

	existing, err := s.store.FindByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to find progress")
	}
	if existing != nil {
		return existing, false, nil
	}

	box := leitner.InitialBox(isCorrect)
	next, err := leitner.NextReviewDate(box, now)
	if err != nil {
		return nil, false, err
	}
	o := leitner.Outcome{
		BoxLevel:       box,
		NextReviewDate: next,
		LastReviewedAt: now,
	}
	if isCorrect {
		o.TimesCorrect = 1
	} else {
		o.TimesIncorrect = 1
	}

	p := newRecord(userID, itemID, o, now)
	err = s.store.Create(ctx, p)
	if errors.Is(err, ErrProgressExists) {
		existing, err = s.store.FindByUserAndItem(ctx, userID, itemID)
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to reload progress")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create progress")
	}
	return p, true, nil
}

// BackfillProgressForContainer enrolls every item the user has answered in
// containerID but that has no progress yet, at box 1 due tomorrow.
func (s *Service) BackfillProgressForContainer(ctx context.Context, userID int64, containerID string, now time.Time) ([]*models.ProgressRecord, error) {
	if userID <= 0 || containerID == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "user id and container id are required")
	}

	answered, err := s.inventory.ListAnsweredItemIDs(ctx, userID, containerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list answered items")
	}
	if len(answered) == 0 {
		return nil, nil
	}

	tracked, err := s.store.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list progress")
	}
	has := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		has[p.ItemID] = true
	}

	next, err := leitner.NextReviewDate(leitner.MinBox, now)
	if err != nil {
		return nil, err
	}

	var batch []*models.ProgressRecord
	seen := make(map[string]bool, len(answered))
	for _, itemID := range answered {
		if has[itemID] || seen[itemID] {
			continue
		}
		seen[itemID] = true
		d := next
		batch = append(batch, &models.ProgressRecord{
			UserID:         userID,
			ItemID:         itemID,
			BoxLevel:       leitner.MinBox,
			NextReviewDate: &d,
			CreatedAt:      now,
		})
	}
	if len(batch) == 0 {
		return nil, nil
	}

	if err := s.store.CreateBatch(ctx, batch); err != nil {
		return nil, errors.Wrap(err, "failed to create progress batch")
	}

	slog.Info("backfilled progress",
		slog.Int64("user", userID), slog.String("container", containerID), slog.Int("count", len(batch)))
	return batch, nil
}

func newRecord(userID int64, itemID string, o leitner.Outcome, now time.Time) *models.ProgressRecord {
	next := o.NextReviewDate
	reviewed := o.LastReviewedAt
	return &models.ProgressRecord{
		UserID:         userID,
		ItemID:         itemID,
		BoxLevel:       o.BoxLevel,
		NextReviewDate: &next,
		TimesCorrect:   o.TimesCorrect,
		TimesIncorrect: o.TimesIncorrect,
		LastReviewedAt: &reviewed,
		CreatedAt:      now,
	}
}
