package tracker

import (
	"context"
	"time"

	"github.com/example/hifzbot/internal/juz"
	"github.com/example/hifzbot/internal/review"
	"github.com/example/hifzbot/pkg/models"
)

// StatsRecorder maintains the once-per-day progress snapshot.
type StatsRecorder struct {
	store StatStore
}

// NewStatsRecorder creates a recorder writing to store.
func NewStatsRecorder(store StatStore) *StatsRecorder {
	return &StatsRecorder{store: store}
}

// RecordSnapshot upserts today's DailyStat. Calling it again for the same
// date with the same inputs stores the same row.
func (r *StatsRecorder) RecordSnapshot(ctx context.Context, userID int64, pages int, priority []int, sectionsPerDay int, today time.Time) (*models.DailyStat, error) {
	yesterday, err := r.store.GetByDate(ctx, userID, yesterdayOf(today))
	if err != nil {
		return nil, storeError("get yesterday's snapshot", err)
	}

	previous := 0
	if yesterday != nil {
		previous = yesterday.PagesMemorized
	}
	progress := pages - previous
	if progress < 0 {
		progress = 0
	}

	base := juz.BaseCount(pages)
	stat := &models.DailyStat{
		UserID:             userID,
		Date:               dateOf(today),
		PagesMemorized:     pages,
		BaseSectionCount:   base,
		TotalSectionCount:  base + len(priority),
		DailyProgressPages: progress,
		SectionsPerDay:     sectionsPerDay,
		PagesRepeated:      review.DailyBudget(sectionsPerDay),
	}
	if err := r.store.Upsert(ctx, stat); err != nil {
		return nil, storeError("upsert snapshot", err)
	}
	return stat, nil
}

func dateOf(t time.Time) string {
	return t.Format(models.DateLayout)
}

func yesterdayOf(t time.Time) string {
	return t.AddDate(0, 0, -1).Format(models.DateLayout)
}
