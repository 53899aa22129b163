package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/recallbox/pkg/models"
)

var t0 = time.Date(2025, 1, 28, 9, 0, 0, 0, time.UTC)

type memWriter struct {
	existing map[models.SourceRef]bool
	created  []models.ReviewableItem
}

func (m *memWriter) FindBySource(_ context.Context, ref models.SourceRef) (*models.ReviewableItem, error) {
	if m.existing[ref] {
		return &models.ReviewableItem{ID: "existing"}, nil
	}
	return nil, nil
}

func (m *memWriter) CreateItems(_ context.Context, items []models.ReviewableItem) error {
	m.created = append(m.created, items...)
	return nil
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "items.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportExcel(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"type", "container", "source", "prompt", "answer"},
		{"question", "video-1", "q1", "What is 2+2?", "4"},
		{"Flashcard", "", "f1", "Capital of France", "Paris"},
		{"video", "video-1", "x1", "bad type", ""},
		{"question", "video-1", "", "no source", ""},
		{"question", "video-1", "q1", "duplicate in file", ""},
		{"question", "video-1", "q-old", "already imported", ""},
	})

	w := &memWriter{existing: map[models.SourceRef]bool{{Type: models.ItemTypeQuestion, ID: "q-old"}: true}}
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = 7
	cfg.DefaultContainer = "inbox"

	result, err := ImportItems(context.Background(), w, cfg, t0)
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 2)

	require.Len(t, w.created, 2)
	q := w.created[0]
	assert.Equal(t, models.ItemTypeQuestion, q.ItemType)
	assert.Equal(t, "q1", *q.QuestionID)
	assert.Nil(t, q.FlashcardID)
	assert.Equal(t, int64(7), q.UserID)
	assert.NotEmpty(t, q.ID)

	card := w.created[1]
	assert.Equal(t, models.ItemTypeFlashcard, card.ItemType)
	assert.Equal(t, "inbox", card.ContainerID)
	assert.Equal(t, "Paris", card.Answer)
	assert.NotEqual(t, q.ID, card.ID)
}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	content := "type,container,source,prompt,answer\n" +
		"flashcard,set-1,f1,front one,back one\n" +
		"\n" +
		"question,set-1,q1,\"Which, exactly?\",this\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	w := &memWriter{}
	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.UserID = 1

	result, err := ImportItems(context.Background(), w, cfg, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Which, exactly?", w.created[1].Prompt)
}

func TestImportRequiresUser(t *testing.T) {
	_, err := ImportItems(context.Background(), &memWriter{}, DefaultImportConfig(), t0)
	assert.Error(t, err)
}
