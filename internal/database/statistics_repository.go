package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/hifzbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// DailyStatRepository handles the daily progress snapshots
type DailyStatRepository struct {
	db *sqlx.DB
}

// NewDailyStatRepository creates a new repository instance
func NewDailyStatRepository(db *sqlx.DB) *DailyStatRepository {
	return &DailyStatRepository{db: db}
}

const statColumns = `id, user_id, date, pages_memorized, base_section_count,
	total_section_count, daily_progress_pages, sections_per_day, pages_repeated`

// GetByDate returns the snapshot of a user for date, or nil if there is none
func (r *DailyStatRepository) GetByDate(ctx context.Context, userID int64, date string) (*models.DailyStat, error) {
	var stat models.DailyStat
	err := r.db.GetContext(ctx, &stat,
		r.db.Rebind("SELECT "+statColumns+" FROM daily_stats WHERE user_id = ? AND date = ?"),
		userID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stat: %w", err)
	}
	return &stat, nil
}

// Upsert inserts the snapshot or replaces the one stored for the same user and date
func (r *DailyStatRepository) Upsert(ctx context.Context, stat *models.DailyStat) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO daily_stats (
			user_id, date, pages_memorized, base_section_count, total_section_count,
			daily_progress_pages, sections_per_day, pages_repeated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			pages_memorized = excluded.pages_memorized,
			base_section_count = excluded.base_section_count,
			total_section_count = excluded.total_section_count,
			daily_progress_pages = excluded.daily_progress_pages,
			sections_per_day = excluded.sections_per_day,
			pages_repeated = excluded.pages_repeated
		RETURNING id`),
		stat.UserID,
		stat.Date,
		stat.PagesMemorized,
		stat.BaseSectionCount,
		stat.TotalSectionCount,
		stat.DailyProgressPages,
		stat.SectionsPerDay,
		stat.PagesRepeated,
	).Scan(&stat.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

// ListRange returns the snapshots dated from..to inclusive, oldest first
func (r *DailyStatRepository) ListRange(ctx context.Context, userID int64, from, to string) ([]models.DailyStat, error) {
	var stats []models.DailyStat
	err := r.db.SelectContext(ctx, &stats, r.db.Rebind(`
		SELECT `+statColumns+` FROM daily_stats
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`),
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return stats, nil
}

// ListAll returns every snapshot of a user, oldest first
func (r *DailyStatRepository) ListAll(ctx context.Context, userID int64) ([]models.DailyStat, error) {
	var stats []models.DailyStat
	err := r.db.SelectContext(ctx, &stats,
		r.db.Rebind("SELECT "+statColumns+" FROM daily_stats WHERE user_id = ? ORDER BY date ASC"),
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return stats, nil
}
