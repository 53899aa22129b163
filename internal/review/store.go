package review

import (
	"context"
	"time"

	"github.com/example/recallbox/pkg/models"
)

// ProgressStore persists per-user, per-item Leitner state.
// Create must be an atomic create-if-absent and fail with ErrProgressExists
// when a record for the pair already exists.
type ProgressStore interface {
	FindByUserAndItem(ctx context.Context, userID int64, itemID string) (*models.ProgressRecord, error)
	Create(ctx context.Context, p *models.ProgressRecord) error
	CreateBatch(ctx context.Context, records []*models.ProgressRecord) error
	Update(ctx context.Context, p *models.ProgressRecord) error
	FindAllByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error)
	FindDueForUser(ctx context.Context, userID int64, asOf string) ([]models.ProgressRecord, error)
	// Stats aggregates over the user's items, optionally limited to one container.
	Stats(ctx context.Context, userID int64, asOf string, containerID string) (models.ProgressStats, error)
}

// Inventory is the read side of the content layer plus the answer log.
// GetItem and FindBySource return (nil, nil) when nothing matches.
// An empty containerID means all of the user's items.
type Inventory interface {
	GetItem(ctx context.Context, itemID string) (*models.ReviewableItem, error)
	FindBySource(ctx context.Context, ref models.SourceRef) (*models.ReviewableItem, error)
	CountItems(ctx context.Context, userID int64, containerID string) (int, error)
	ListItems(ctx context.Context, userID int64, containerID string) ([]models.ReviewableItem, error)
	ListAnsweredItemIDs(ctx context.Context, userID int64, containerID string) ([]string, error)
	RecordAnswer(ctx context.Context, a *models.Answer) error
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return time.Time(c) }
