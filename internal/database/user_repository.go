package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/recallbox/pkg/models"
)

const userColumns = `id, chat_id, username, first_name, notification_enabled, notification_hour, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by Telegram ID, or nil when unknown
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// Register inserts the user or refreshes its chat and profile fields.
// Notification settings of a known user are left alone.
func (r *UserRepository) Register(ctx context.Context, user *models.User) error {
	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = excluded.chat_id,
			username = excluded.username,
			first_name = excluded.first_name,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.ChatID,
		user.Username,
		user.FirstName,
		user.NotificationEnabled,
		user.NotificationHour,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// UpdateNotificationSettings changes reminder preferences
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, userID int64, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid notification hour %d", hour)
	}
	query := r.db.Rebind(`UPDATE users SET notification_enabled = ?, notification_hour = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, enabled, hour, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

// GetUsersForNotification returns users with reminders enabled at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users
		WHERE notification_enabled = ? AND notification_hour = ?
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
