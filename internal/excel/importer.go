package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/recallbox/pkg/models"
)

// ItemWriter stores imported items
type ItemWriter interface {
	FindBySource(ctx context.Context, ref models.SourceRef) (*models.ReviewableItem, error)
	CreateItems(ctx context.Context, items []models.ReviewableItem) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	UserID           int64  // Owner of the imported items
	DefaultContainer string // Used when the container cell is empty
	TypeColumn       string // Column with "question" or "flashcard"
	ContainerColumn  string // Column with the video / study set id
	SourceColumn     string // Column with the question or flashcard id
	PromptColumn     string // Column with the question text or card front
	AnswerColumn     string // Column with the answer or card back
	SheetName        string // Name of the sheet to import
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TypeColumn:      "A",
		ContainerColumn: "B",
		SourceColumn:    "C",
		PromptColumn:    "D",
		AnswerColumn:    "E",
		SheetName:       "Sheet1",
		StartRow:        2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// ImportItems imports reviewable items from an Excel or CSV file
func ImportItems(ctx context.Context, w ItemWriter, config ImportConfig, now time.Time) (*ImportResult, error) {
	if config.UserID <= 0 {
		return nil, errors.New("user id is required")
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	cols, err := config.columns()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var items []models.ReviewableItem
	inFile := make(map[models.SourceRef]bool)

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}
		result.TotalProcessed++

		item, err := parseRow(row, cols, config, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		ref := models.SourceRef{Type: item.ItemType, ID: item.SourceID()}
		if inFile[ref] {
			result.Skipped++
			continue
		}
		existing, err := w.FindBySource(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing item: %w", err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		inFile[ref] = true
		items = append(items, item)
	}

	if len(items) > 0 {
		if err := w.CreateItems(ctx, items); err != nil {
			return nil, fmt.Errorf("failed to save items: %w", err)
		}
	}
	result.Created = len(items)
	return result, nil
}

type columnIndexes struct {
	itemType, container, source, prompt, answer int
}

func (c ImportConfig) columns() (columnIndexes, error) {
	var idx columnIndexes
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{c.TypeColumn, &idx.itemType},
		{c.ContainerColumn, &idx.container},
		{c.SourceColumn, &idx.source},
		{c.PromptColumn, &idx.prompt},
		{c.AnswerColumn, &idx.answer},
	} {
		n, err := excelize.ColumnNameToNumber(col.name)
		if err != nil {
			return idx, fmt.Errorf("invalid column %q: %w", col.name, err)
		}
		*col.dst = n - 1
	}
	return idx, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, cols columnIndexes, config ImportConfig, now time.Time) (models.ReviewableItem, error) {
	itemType, err := models.ParseItemType(strings.ToLower(cell(row, cols.itemType)))
	if err != nil {
		return models.ReviewableItem{}, err
	}

	sourceID := cell(row, cols.source)
	if sourceID == "" {
		return models.ReviewableItem{}, errors.New("missing source id")
	}
	container := cell(row, cols.container)
	if container == "" {
		container = config.DefaultContainer
	}

	item := models.ReviewableItem{
		ID:          uuid.NewString(),
		UserID:      config.UserID,
		ContainerID: container,
		ItemType:    itemType,
		Prompt:      cell(row, cols.prompt),
		Answer:      cell(row, cols.answer),
		CreatedAt:   now,
	}
	if itemType == models.ItemTypeQuestion {
		item.QuestionID = &sourceID
	} else {
		item.FlashcardID = &sourceID
	}
	if item.Prompt == "" {
		return models.ReviewableItem{}, errors.New("missing prompt")
	}
	if err := item.Validate(); err != nil {
		return models.ReviewableItem{}, err
	}
	return item, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
