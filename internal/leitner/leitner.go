// Package leitner implements the five-box Leitner schedule used for reviews.
// All functions are pure; callers supply the current time.
package leitner

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format of next review dates
const DateLayout = "2006-01-02"

const (
	// MinBox is the most frequently reviewed box
	MinBox = 1
	// MaxBox is the mastery box
	MaxBox = 5
)

// ErrInvalidBoxLevel is returned for box levels outside [MinBox, MaxBox]
var ErrInvalidBoxLevel = errors.New("leitner: invalid box level")

// intervals holds the review interval in days, indexed by box level - 1
var intervals = [MaxBox]int{1, 3, 7, 14, 30}

// Interval returns the number of days until an item in boxLevel is due again
func Interval(boxLevel int) (int, error) {
	if boxLevel < MinBox || boxLevel > MaxBox {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBoxLevel, boxLevel)
	}
	return intervals[boxLevel-1], nil
}

// NextReviewDate returns now plus the box interval as a YYYY-MM-DD date
func NextReviewDate(boxLevel int, now time.Time) (string, error) {
	days, err := Interval(boxLevel)
	if err != nil {
		return "", err
	}
	return now.AddDate(0, 0, days).Format(DateLayout), nil
}

// NextBoxLevel advances one box on a correct answer, capped at MaxBox.
// Any incorrect answer sends the item back to MinBox.
func NextBoxLevel(currentBox int, isCorrect bool) int {
	if !isCorrect {
		return MinBox
	}
	if currentBox >= MaxBox {
		return MaxBox
	}
	return currentBox + 1
}

// Outcome is the full state to persist after an answer
type Outcome struct {
	BoxLevel       int
	NextReviewDate string
	TimesCorrect   int
	TimesIncorrect int
	LastReviewedAt time.Time
}

// ApplyAnswer computes the post-answer state of an item currently in
// currentBoxLevel with the given counters.
func ApplyAnswer(currentBoxLevel int, isCorrect bool, timesCorrect, timesIncorrect int, now time.Time) (Outcome, error) {
	if currentBoxLevel < MinBox || currentBoxLevel > MaxBox {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidBoxLevel, currentBoxLevel)
	}

	box := NextBoxLevel(currentBoxLevel, isCorrect)
	next, err := NextReviewDate(box, now)
	if err != nil {
		return Outcome{}, err
	}

	if isCorrect {
		timesCorrect++
	} else {
		timesIncorrect++
	}

	return Outcome{
		BoxLevel:       box,
		NextReviewDate: next,
		TimesCorrect:   timesCorrect,
		TimesIncorrect: timesIncorrect,
		LastReviewedAt: now,
	}, nil
}

// FirstAnswer is the state of an item answered for the first time in a
// review session: box 1 regardless of the outcome.
func FirstAnswer(isCorrect bool, now time.Time) Outcome {
	next, _ := NextReviewDate(MinBox, now)
	o := Outcome{
		BoxLevel:       MinBox,
		NextReviewDate: next,
		LastReviewedAt: now,
	}
	if isCorrect {
		o.TimesCorrect = 1
	} else {
		o.TimesIncorrect = 1
	}
	return o
}

// InitialBox is the starting box for an item first answered while learning:
// a correct first answer skips straight to box 2.
func InitialBox(isCorrect bool) int {
	if isCorrect {
		return 2
	}
	return MinBox
}

// IsMastered reports whether an item has reached the last box
func IsMastered(boxLevel int) bool {
	return boxLevel >= MaxBox
}
