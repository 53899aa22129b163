package review

import "errors"

var (
	// ErrInvalidArgument is returned before any store access when identifiers are missing
	ErrInvalidArgument = errors.New("review: invalid argument")
	// ErrItemNotFound is returned when a question or flashcard id maps to no reviewable item
	ErrItemNotFound = errors.New("review: item not found")
	// ErrUserNotAuthorized is returned when an item belongs to another user
	ErrUserNotAuthorized = errors.New("review: user not authorized for item")
	// ErrProgressExists is returned by ProgressStore.Create when the (user, item) pair already has a record
	ErrProgressExists = errors.New("review: progress already exists")
	// ErrProgressNotFound is returned by ProgressStore.Update when no record matched
	ErrProgressNotFound = errors.New("review: progress not found")
)
