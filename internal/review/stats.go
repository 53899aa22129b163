package review

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/example/recallbox/internal/leitner"
	"github.com/example/recallbox/pkg/models"
)

// GetStudyModeStats returns due, new and total counts across all of a user's items
func (s *Service) GetStudyModeStats(ctx context.Context, userID int64, asOf time.Time) (models.StudyModeStats, error) {
	rs, err := s.GetReviewStats(ctx, userID, "", asOf)
	if err != nil {
		return models.StudyModeStats{}, err
	}
	return rs.StudyModeStats, nil
}

// GetReviewStats returns counts and the box histogram, limited to containerID
// when it is not empty. Counts are not read in one transaction and may be
// slightly stale under concurrent answers.
func (s *Service) GetReviewStats(ctx context.Context, userID int64, containerID string, asOf time.Time) (models.ReviewStats, error) {
	if userID <= 0 {
		return models.ReviewStats{}, errors.Wrap(ErrInvalidArgument, "user id is required")
	}

	total, err := s.inventory.CountItems(ctx, userID, containerID)
	if err != nil {
		return models.ReviewStats{}, errors.Wrap(err, "failed to count items")
	}

	ps, err := s.store.Stats(ctx, userID, asOf.Format(leitner.DateLayout), containerID)
	if err != nil {
		return models.ReviewStats{}, errors.Wrap(err, "failed to aggregate progress")
	}

	newCount := total - ps.Progressed
	if newCount < 0 {
		newCount = 0
	}

	return models.ReviewStats{
		StudyModeStats: models.StudyModeStats{
			DueCount:   ps.DueCount,
			NewCount:   newCount,
			TotalCount: total,
		},
		BoxDistribution: ps.Boxes,
	}, nil
}
