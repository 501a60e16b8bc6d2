package database

import (
	"context"
	"fmt"

	"github.com/example/hifzbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserProgressRepository handles the memorization progress stored on the users table
type UserProgressRepository struct {
	db *sqlx.DB
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository(db *sqlx.DB) *UserProgressRepository {
	return &UserProgressRepository{db: db}
}

// GetOrCreate returns the progress of a user, inserting the default row on first use
func (r *UserProgressRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserProgress, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (telegram_id, sections_per_day) VALUES (?, ?)
		ON CONFLICT (telegram_id) DO NOTHING`),
		userID, models.DefaultSectionsPerDay)
	if err != nil {
		return nil, fmt.Errorf("failed to create user progress: %w", err)
	}

	var row userRow
	err = r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE telegram_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return row.progress(), nil
}

// Save writes the progress fields in one statement. The plan message id is
// owned by SetPlanMessage and left untouched.
func (r *UserProgressRepository) Save(ctx context.Context, p *models.UserProgress) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET
			pages_memorized = ?,
			last_section_used = ?,
			priority_list = ?,
			sections_per_day = ?,
			cached_plan_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE telegram_id = ?`),
		p.PagesMemorized,
		p.LastSectionUsed,
		juzList(p.PriorityList),
		p.SectionsPerDay,
		nullDate(p.CachedPlanDate),
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return expectOneRow(res, "user", p.UserID)
}

// SetPlanMessage stores the id of the last delivered plan message, 0 clears it
func (r *UserProgressRepository) SetPlanMessage(ctx context.Context, userID int64, messageID int) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE users SET plan_message_id = ? WHERE telegram_id = ?"),
		nullMessageID(messageID), userID)
	if err != nil {
		return fmt.Errorf("failed to set plan message: %w", err)
	}
	return expectOneRow(res, "user", userID)
}
