package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/example/hifzbot/pkg/models"
)

// juzList is a list of juz numbers stored as a JSON array in a TEXT column
type juzList []int

// Value implements driver.Valuer
func (l juzList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal juz list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *juzList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = juzList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into juz list", src)
	}
	if len(raw) == 0 {
		*l = juzList{}
		return nil
	}
	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to parse juz list: %w", err)
	}
	if out == nil {
		out = []int{}
	}
	*l = out
	return nil
}

// userRow is one row of the users table
type userRow struct {
	TelegramID       int64          `db:"telegram_id"`
	Username         string         `db:"username"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	PagesMemorized   int            `db:"pages_memorized"`
	LastSectionUsed  int            `db:"last_section_used"`
	PriorityList     juzList        `db:"priority_list"`
	SectionsPerDay   int            `db:"sections_per_day"`
	CachedPlanDate   sql.NullString `db:"cached_plan_date"`
	PlanMessageID    sql.NullInt64  `db:"plan_message_id"`
	RemindersEnabled bool           `db:"reminders_enabled"`
	CreatedAt        sql.NullString `db:"created_at"`
	UpdatedAt        sql.NullString `db:"updated_at"`
}

const userColumns = `telegram_id, username, first_name, last_name, pages_memorized,
	last_section_used, priority_list, sections_per_day, cached_plan_date,
	plan_message_id, reminders_enabled, created_at, updated_at`

func (r userRow) progress() *models.UserProgress {
	return &models.UserProgress{
		UserID:          r.TelegramID,
		PagesMemorized:  r.PagesMemorized,
		LastSectionUsed: r.LastSectionUsed,
		PriorityList:    []int(r.PriorityList),
		SectionsPerDay:  r.SectionsPerDay,
		CachedPlanDate:  r.CachedPlanDate.String,
		PlanMessageID:   int(r.PlanMessageID.Int64),
	}
}

func (r userRow) user() models.User {
	return models.User{
		ID:               r.TelegramID,
		Username:         r.Username,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		RemindersEnabled: r.RemindersEnabled,
		CreatedAt:        r.CreatedAt.String,
		UpdatedAt:        r.UpdatedAt.String,
	}
}

// actionRow is one row of the user_actions table
type actionRow struct {
	ID                   int64   `db:"id"`
	UserID               int64   `db:"user_id"`
	ActionType           string  `db:"action_type"`
	PreviousValue        int     `db:"previous_value"`
	NewValue             int     `db:"new_value"`
	PreviousPriorityList juzList `db:"previous_priority_list"`
	NewPriorityList      juzList `db:"new_priority_list"`
	CreatedAt            string  `db:"created_at"`
}

const actionColumns = `id, user_id, action_type, previous_value, new_value,
	previous_priority_list, new_priority_list, created_at`

func nullDate(date string) sql.NullString {
	return sql.NullString{String: date, Valid: date != ""}
}

func nullMessageID(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
