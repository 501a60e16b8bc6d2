package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/hifzbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ActionRepository handles the per-user undo log
type ActionRepository struct {
	db *sqlx.DB
}

// NewActionRepository creates a new repository instance
func NewActionRepository(db *sqlx.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Append inserts rec and sets its ID
func (r *ActionRepository) Append(ctx context.Context, rec *models.ActionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO user_actions (
			user_id, action_type, previous_value, new_value,
			previous_priority_list, new_priority_list, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		rec.UserID,
		string(rec.ActionType),
		rec.PreviousValue,
		rec.NewValue,
		juzList(rec.PreviousPriorityList),
		juzList(rec.NewPriorityList),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to append action: %w", err)
	}
	return nil
}

// Latest returns the most recent action of a user, or nil if there is none
func (r *ActionRepository) Latest(ctx context.Context, userID int64) (*models.ActionRecord, error) {
	var row actionRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind("SELECT "+actionColumns+" FROM user_actions WHERE user_id = ? ORDER BY id DESC LIMIT 1"),
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest action: %w", err)
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Recent returns up to limit actions of a user, newest first
func (r *ActionRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.ActionRecord, error) {
	var rows []actionRow
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind("SELECT "+actionColumns+" FROM user_actions WHERE user_id = ? ORDER BY id DESC LIMIT ?"),
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	recs := make([]models.ActionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Delete removes an action by ID. Deleting a missing action is not an error.
func (r *ActionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM user_actions WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	return nil
}

func (r actionRow) record() (models.ActionRecord, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return models.ActionRecord{}, fmt.Errorf("failed to parse action time %q: %w", r.CreatedAt, err)
	}
	return models.ActionRecord{
		ID:                   r.ID,
		UserID:               r.UserID,
		ActionType:           models.ActionType(r.ActionType),
		PreviousValue:        r.PreviousValue,
		NewValue:             r.NewValue,
		PreviousPriorityList: []int(r.PreviousPriorityList),
		NewPriorityList:      []int(r.NewPriorityList),
		CreatedAt:            createdAt,
	}, nil
}
