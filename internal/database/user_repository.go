package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/hifzbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles the Telegram profile and reminder settings of users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertProfile inserts the user or refreshes the stored names
func (r *UserRepository) UpsertProfile(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = CURRENT_TIMESTAMP`),
		user.ID, user.Username, user.FirstName, user.LastName)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID returns a user by Telegram ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE telegram_id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	u := row.user()
	return &u, nil
}

// ListAwaitingPlan returns users with reminders on who have not received a plan for date
func (r *UserRepository) ListAwaitingPlan(ctx context.Context, date string) ([]models.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+userColumns+` FROM users
		WHERE reminders_enabled = ?
			AND (cached_plan_date IS NULL OR cached_plan_date <> ?)
		ORDER BY telegram_id`),
		true, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list users awaiting plan: %w", err)
	}

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

// SetReminders turns the daily reminder on or off
func (r *UserRepository) SetReminders(ctx context.Context, id int64, enabled bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE users SET reminders_enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE telegram_id = ?`),
		enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update reminders: %w", err)
	}
	return expectOneRow(res, "user", id)
}

func expectOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d not found", what, id)
	}
	return nil
}
