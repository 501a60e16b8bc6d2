package tracker

import (
	"context"

	"github.com/example/hifzbot/pkg/models"
)

// UserStore persists one UserProgress per user.
type UserStore interface {
	// GetOrCreate returns the stored progress, creating the default record on first use.
	GetOrCreate(ctx context.Context, userID int64) (*models.UserProgress, error)
	// Save writes every progress field in a single statement.
	Save(ctx context.Context, p *models.UserProgress) error
	SetPlanMessage(ctx context.Context, userID int64, messageID int) error
}

// StatStore persists DailyStat rows keyed by user and date.
type StatStore interface {
	// GetByDate returns nil, nil when there is no snapshot for date.
	GetByDate(ctx context.Context, userID int64, date string) (*models.DailyStat, error)
	Upsert(ctx context.Context, stat *models.DailyStat) error
	// ListRange returns snapshots with from <= date <= to, oldest first.
	ListRange(ctx context.Context, userID int64, from, to string) ([]models.DailyStat, error)
	ListAll(ctx context.Context, userID int64) ([]models.DailyStat, error)
}

// ActionStore persists the undo log.
type ActionStore interface {
	Append(ctx context.Context, rec *models.ActionRecord) error
	// Latest returns nil, nil when the user has no recorded actions.
	Latest(ctx context.Context, userID int64) (*models.ActionRecord, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, userID int64, limit int) ([]models.ActionRecord, error)
	Delete(ctx context.Context, id int64) error
}
