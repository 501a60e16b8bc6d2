package tracker

import (
	"context"
	"log"
	"time"

	"github.com/example/hifzbot/pkg/models"
)

// ActionLog is the append-only per-user history used for undo.
type ActionLog struct {
	store  ActionStore
	logger *log.Logger
	now    func() time.Time
}

// NewActionLog creates a log writing to store.
func NewActionLog(store ActionStore, logger *log.Logger) *ActionLog {
	return &ActionLog{store: store, logger: logger, now: time.Now}
}

// Record appends rec. A failure is logged and reported as false; the
// mutation it describes goes ahead but cannot be undone.
func (l *ActionLog) Record(ctx context.Context, rec *models.ActionRecord) bool {
	rec.CreatedAt = l.now()
	if err := l.store.Append(ctx, rec); err != nil {
		l.logger.Printf("failed to record %s for user %d, action will not be undoable: %v", rec.ActionType, rec.UserID, err)
		return false
	}
	return true
}

// Last returns the most recent record of the user.
func (l *ActionLog) Last(ctx context.Context, userID int64) (*models.ActionRecord, error) {
	rec, err := l.store.Latest(ctx, userID)
	if err != nil {
		return nil, storeError("get latest action", err)
	}
	if rec == nil {
		return nil, ErrNoActionToUndo
	}
	return rec, nil
}

// Consume deletes a record that has been undone.
func (l *ActionLog) Consume(ctx context.Context, rec *models.ActionRecord) error {
	if err := l.store.Delete(ctx, rec.ID); err != nil {
		return storeError("delete action", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (l *ActionLog) Recent(ctx context.Context, userID int64, limit int) ([]models.ActionRecord, error) {
	recs, err := l.store.Recent(ctx, userID, limit)
	if err != nil {
		return nil, storeError("list actions", err)
	}
	return recs, nil
}
