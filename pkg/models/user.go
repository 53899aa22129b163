package models

import "time"

// User represents a learner reachable through Telegram
type User struct {
	ID                  int64     `json:"id" db:"id"` // Telegram user ID
	ChatID              int64     `json:"chat_id" db:"chat_id"`
	Username            string    `json:"username" db:"username"`
	FirstName           string    `json:"first_name" db:"first_name"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
