package leitner

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 28, 15, 30, 0, 0, time.UTC)

func TestNextBoxLevel(t *testing.T) {
	tests := []struct {
		box       int
		isCorrect bool
		want      int
	}{
		{1, true, 2},
		{2, true, 3},
		{3, true, 4},
		{4, true, 5},
		{5, true, 5},
		{1, false, 1},
		{2, false, 1},
		{3, false, 1},
		{4, false, 1},
		{5, false, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextBoxLevel(tt.box, tt.isCorrect), "box=%d correct=%v", tt.box, tt.isCorrect)
	}
}

func TestNextReviewDate(t *testing.T) {
	want := map[int]string{
		1: "2025-01-29",
		2: "2025-01-31",
		3: "2025-02-04",
		4: "2025-02-11",
		5: "2025-02-27",
	}
	for box, date := range want {
		got, err := NextReviewDate(box, t0)
		require.NoError(t, err)
		assert.Equal(t, date, got, "box %d", box)
	}
}

func TestNextReviewDateInvalidBox(t *testing.T) {
	for _, box := range []int{0, 6, -1} {
		_, err := NextReviewDate(box, t0)
		assert.True(t, errors.Is(err, ErrInvalidBoxLevel), "box %d", box)
	}
}

func TestNextReviewDateIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2025, 1, 28, 23, 59, 59, 0, time.UTC)
	early := time.Date(2025, 1, 28, 0, 0, 1, 0, time.UTC)
	a, err := NextReviewDate(2, late)
	require.NoError(t, err)
	b, err := NextReviewDate(2, early)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestApplyAnswerCorrect(t *testing.T) {
	o, err := ApplyAnswer(2, true, 3, 1, t0)
	require.NoError(t, err)
	assert.Equal(t, 3, o.BoxLevel)
	assert.Equal(t, "2025-02-04", o.NextReviewDate)
	assert.Equal(t, 4, o.TimesCorrect)
	assert.Equal(t, 1, o.TimesIncorrect)
	assert.Equal(t, t0, o.LastReviewedAt)
}

func TestApplyAnswerIncorrectResets(t *testing.T) {
	o, err := ApplyAnswer(5, false, 10, 0, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, o.BoxLevel)
	assert.Equal(t, "2025-01-29", o.NextReviewDate)
	assert.Equal(t, 10, o.TimesCorrect)
	assert.Equal(t, 1, o.TimesIncorrect)
}

func TestApplyAnswerInvalidBox(t *testing.T) {
	_, err := ApplyAnswer(0, true, 0, 0, t0)
	assert.ErrorIs(t, err, ErrInvalidBoxLevel)
}

func TestFirstAnswer(t *testing.T) {
	o := FirstAnswer(false, t0)
	assert.Equal(t, 1, o.BoxLevel)
	assert.Equal(t, 0, o.TimesCorrect)
	assert.Equal(t, 1, o.TimesIncorrect)
	assert.Equal(t, "2025-01-29", o.NextReviewDate)

	o = FirstAnswer(true, t0)
	assert.Equal(t, 1, o.BoxLevel)
	assert.Equal(t, 1, o.TimesCorrect)
	assert.Equal(t, 0, o.TimesIncorrect)
}

func TestInitialBox(t *testing.T) {
	assert.Equal(t, 2, InitialBox(true))
	assert.Equal(t, 1, InitialBox(false))
}

func TestSaturatesAtMastery(t *testing.T) {
	box := MinBox
	seen := []int{box}
	for i := 0; i < 5; i++ {
		box = NextBoxLevel(box, true)
		seen = append(seen, box)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 5}, seen)
	assert.True(t, IsMastered(box))
}
