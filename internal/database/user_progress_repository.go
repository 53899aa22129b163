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

const progressColumns = `id, user_id, item_id, box_level, next_review_date,
	times_correct, times_incorrect, last_reviewed_at, created_at`

// UserProgressRepository handles database operations for Leitner progress
type UserProgressRepository struct {
	db *sqlx.DB
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository(db *sqlx.DB) *UserProgressRepository {
	return &UserProgressRepository{db: db}
}

// FindByUserAndItem returns the progress for a user and item, or nil when there is none
func (r *UserProgressRepository) FindByUserAndItem(ctx context.Context, userID int64, itemID string) (*models.ProgressRecord, error) {
	var progress models.ProgressRecord
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND item_id = ?`)
	err := r.db.GetContext(ctx, &progress, query, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return &progress, nil
}

const insertProgress = `
	INSERT INTO user_progress (
		user_id, item_id, box_level, next_review_date,
		times_correct, times_incorrect, last_reviewed_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, item_id) DO NOTHING
`

// Create inserts a new progress record. It fails with review.ErrProgressExists
// when the pair is already tracked.
func (r *UserProgressRepository) Create(ctx context.Context, progress *models.ProgressRecord) error {
	return insertProgressRow(ctx, r.db, progress)
}

// CreateBatch inserts all records in one transaction
func (r *UserProgressRepository) CreateBatch(ctx context.Context, records []*models.ProgressRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, progress := range records {
		if err := insertProgressRow(ctx, tx, progress); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress batch: %w", err)
	}
	return nil
}

func insertProgressRow(ctx context.Context, q sqlx.ExtContext, progress *models.ProgressRecord) error {
	result, err := q.ExecContext(ctx, q.Rebind(insertProgress),
		progress.UserID,
		progress.ItemID,
		progress.BoxLevel,
		progress.NextReviewDate,
		progress.TimesCorrect,
		progress.TimesIncorrect,
		progress.LastReviewedAt,
		progress.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d item %s: %w", progress.UserID, progress.ItemID, review.ErrProgressExists)
	}

	err = sqlx.GetContext(ctx, q, &progress.ID,
		q.Rebind(`SELECT id FROM user_progress WHERE user_id = ? AND item_id = ?`),
		progress.UserID, progress.ItemID)
	if err != nil {
		return fmt.Errorf("failed to get progress id: %w", err)
	}
	return nil
}

// Update overwrites the scheduling fields of an existing record
func (r *UserProgressRepository) Update(ctx context.Context, progress *models.ProgressRecord) error {
	query := r.db.Rebind(`
		UPDATE user_progress SET
			box_level = ?,
			next_review_date = ?,
			times_correct = ?,
			times_incorrect = ?,
			last_reviewed_at = ?
		WHERE user_id = ? AND item_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		progress.BoxLevel,
		progress.NextReviewDate,
		progress.TimesCorrect,
		progress.TimesIncorrect,
		progress.LastReviewedAt,
		progress.UserID,
		progress.ItemID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d item %s: %w", progress.UserID, progress.ItemID, review.ErrProgressNotFound)
	}
	return nil
}

// FindAllByUser returns every progress record of a user
func (r *UserProgressRepository) FindAllByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	var progress []models.ProgressRecord
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return progress, nil
}

// FindDueForUser returns records scheduled on or before asOf (YYYY-MM-DD)
func (r *UserProgressRepository) FindDueForUser(ctx context.Context, userID int64, asOf string) ([]models.ProgressRecord, error) {
	var progress []models.ProgressRecord
	query := r.db.Rebind(`
		SELECT ` + progressColumns + ` FROM user_progress
		WHERE user_id = ? AND next_review_date IS NOT NULL AND next_review_date <= ?
		ORDER BY next_review_date ASC, box_level ASC
	`)
	if err := r.db.SelectContext(ctx, &progress, query, userID, asOf); err != nil {
		return nil, fmt.Errorf("failed to get due progress: %w", err)
	}
	return progress, nil
}

// Stats counts due and tracked items and builds the box histogram for a
// user's items, limited to containerID when it is not empty.
func (r *UserProgressRepository) Stats(ctx context.Context, userID int64, asOf string, containerID string) (models.ProgressStats, error) {
	var stats models.ProgressStats

	where := `p.user_id = ? AND i.user_id = p.user_id`
	args := []any{userID}
	if containerID != "" {
		where += ` AND i.container_id = ?`
		args = append(args, containerID)
	}

	var rows []struct {
		BoxLevel int `db:"box_level"`
		Total    int `db:"total"`
		Due      int `db:"due"`
	}
	query := r.db.Rebind(`
		SELECT p.box_level AS box_level,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN p.next_review_date IS NOT NULL AND p.next_review_date <= ? THEN 1 ELSE 0 END), 0) AS due
		FROM user_progress p
		JOIN reviewable_items i ON i.id = p.item_id
		WHERE ` + where + `
		GROUP BY p.box_level
	`)
	if err := r.db.SelectContext(ctx, &rows, query, append([]any{asOf}, args...)...); err != nil {
		return stats, fmt.Errorf("failed to get progress statistics: %w", err)
	}

	for _, row := range rows {
		if row.BoxLevel < 1 || row.BoxLevel > models.BoxCount {
			continue
		}
		stats.Boxes[row.BoxLevel-1] = row.Total
		stats.Progressed += row.Total
		stats.DueCount += row.Due
	}
	return stats, nil
}

var _ review.ProgressStore = (*UserProgressRepository)(nil)
