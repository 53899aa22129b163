package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/example/recallbox/pkg/models"
)

var t0 = time.Date(2025, 1, 28, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func seedItems(t *testing.T, repo *ReviewableItemRepository, userID int64, container string, ids ...string) {
	t.Helper()
	items := make([]models.ReviewableItem, 0, len(ids))
	for i, id := range ids {
		items = append(items, models.ReviewableItem{
			ID:          id,
			UserID:      userID,
			ContainerID: container,
			ItemType:    models.ItemTypeQuestion,
			QuestionID:  strPtr("q-" + id),
			Prompt:      "prompt " + id,
			Answer:      "answer " + id,
			CreatedAt:   t0.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, repo.CreateItems(context.Background(), items))
}
