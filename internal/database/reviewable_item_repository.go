package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/recallbox/internal/review"
	"github.com/example/recallbox/pkg/models"
)

const itemColumns = `id, user_id, container_id, item_type, question_id, flashcard_id, prompt, answer, created_at`

// ReviewableItemRepository handles the inventory of reviewable items and the answer log
type ReviewableItemRepository struct {
	db *sqlx.DB
}

// NewReviewableItemRepository creates a new repository instance
func NewReviewableItemRepository(db *sqlx.DB) *ReviewableItemRepository {
	return &ReviewableItemRepository{db: db}
}

// CreateItems inserts a batch of items in one transaction
func (r *ReviewableItemRepository) CreateItems(ctx context.Context, items []models.ReviewableItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviewable_items (` + itemColumns + `)
		VALUES (:id, :user_id, :container_id, :item_type, :question_id, :flashcard_id, :prompt, :answer, :created_at)
	`
	for _, item := range items {
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("failed to create reviewable item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reviewable items: %w", err)
	}
	return nil
}

// GetItem returns an item by id, or nil when it does not exist
func (r *ReviewableItemRepository) GetItem(ctx context.Context, itemID string) (*models.ReviewableItem, error) {
	return r.getOne(ctx, `id = ?`, itemID)
}

// FindBySource returns the item backed by a question or flashcard, or nil
func (r *ReviewableItemRepository) FindBySource(ctx context.Context, ref models.SourceRef) (*models.ReviewableItem, error) {
	switch ref.Type {
	case models.ItemTypeQuestion:
		return r.getOne(ctx, `question_id = ?`, ref.ID)
	case models.ItemTypeFlashcard:
		return r.getOne(ctx, `flashcard_id = ?`, ref.ID)
	}
	return nil, fmt.Errorf("unknown item type %q", ref.Type)
}

func (r *ReviewableItemRepository) getOne(ctx context.Context, where string, arg any) (*models.ReviewableItem, error) {
	var item models.ReviewableItem
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM reviewable_items WHERE ` + where)
	err := r.db.GetContext(ctx, &item, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewable item: %w", err)
	}
	return &item, nil
}

func scope(userID int64, containerID string) (string, []any) {
	if containerID == "" {
		return `user_id = ?`, []any{userID}
	}
	return `user_id = ? AND container_id = ?`, []any{userID, containerID}
}

// CountItems counts a user's items, optionally in one container
func (r *ReviewableItemRepository) CountItems(ctx context.Context, userID int64, containerID string) (int, error) {
	where, args := scope(userID, containerID)
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM reviewable_items WHERE ` + where)
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count reviewable items: %w", err)
	}
	return count, nil
}

// ListItems returns a user's items in creation order, optionally in one container
func (r *ReviewableItemRepository) ListItems(ctx context.Context, userID int64, containerID string) ([]models.ReviewableItem, error) {
	where, args := scope(userID, containerID)
	var items []models.ReviewableItem
	query := r.db.Rebind(`SELECT ` + itemColumns + ` FROM reviewable_items WHERE ` + where + ` ORDER BY created_at, id`)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviewable items: %w", err)
	}
	return items, nil
}

// ListContainers returns the distinct containers a user has items in
func (r *ReviewableItemRepository) ListContainers(ctx context.Context, userID int64) ([]string, error) {
	var containers []string
	query := r.db.Rebind(`SELECT DISTINCT container_id FROM reviewable_items WHERE user_id = ? ORDER BY container_id`)
	if err := r.db.SelectContext(ctx, &containers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return containers, nil
}

// RecordAnswer appends to the answer log
func (r *ReviewableItemRepository) RecordAnswer(ctx context.Context, a *models.Answer) error {
	query := r.db.Rebind(`
		INSERT INTO answers (user_id, item_id, container_id, is_correct, answered_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := r.db.ExecContext(ctx, query, a.UserID, a.ItemID, a.ContainerID, a.IsCorrect, a.AnsweredAt); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// ListAnsweredItemIDs returns the distinct items a user has answered in a container
func (r *ReviewableItemRepository) ListAnsweredItemIDs(ctx context.Context, userID int64, containerID string) ([]string, error) {
	var ids []string
	query := r.db.Rebind(`
		SELECT DISTINCT a.item_id
		FROM answers a
		JOIN reviewable_items i ON i.id = a.item_id
		WHERE a.user_id = ? AND a.container_id = ?
		ORDER BY a.item_id
	`)
	if err := r.db.SelectContext(ctx, &ids, query, userID, containerID); err != nil {
		return nil, fmt.Errorf("failed to list answered items: %w", err)
	}
	return ids, nil
}

var _ review.Inventory = (*ReviewableItemRepository)(nil)
