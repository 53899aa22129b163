package models

import "time"

// Answer is one logged response to a reviewable item
type Answer struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	ItemID      string    `json:"item_id" db:"item_id"`
	ContainerID string    `json:"container_id" db:"container_id"`
	IsCorrect   bool      `json:"is_correct" db:"is_correct"`
	AnsweredAt  time.Time `json:"answered_at" db:"answered_at"`
}
