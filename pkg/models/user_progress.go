package models

import "time"

// ProgressRecord is the Leitner scheduling state of one item for one user
type ProgressRecord struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	ItemID         string     `json:"item_id" db:"item_id"`
	BoxLevel       int        `json:"box_level" db:"box_level"`               // 1 (struggling) .. 5 (mastered)
	NextReviewDate *string    `json:"next_review_date" db:"next_review_date"` // YYYY-MM-DD, nil until scheduled
	TimesCorrect   int        `json:"times_correct" db:"times_correct"`
	TimesIncorrect int        `json:"times_incorrect" db:"times_incorrect"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// IsDue reports whether the record is scheduled on or before asOf (YYYY-MM-DD)
func (p ProgressRecord) IsDue(asOf string) bool {
	return p.NextReviewDate != nil && *p.NextReviewDate <= asOf
}
