package models

import "time"

// ActionType names a mutating user action that can be undone
type ActionType string

const (
	ActionAddPage            ActionType = "ADD_PAGE"
	ActionSetPageCountManual ActionType = "UPDATE_PAGES_MANUAL"
	ActionSetSectionsPerDay  ActionType = "SET_JUZ_PER_DAY"
	ActionAddPriority        ActionType = "ADD_EXTRA_JUZ"
	ActionRemovePriority     ActionType = "REMOVE_EXTRA_JUZ"
	ActionClearPriority      ActionType = "CLEAR_EXTRA_JUZ"
)

// IsPriorityEdit reports whether the action changed the priority list.
func (t ActionType) IsPriorityEdit() bool {
	switch t {
	case ActionAddPriority, ActionRemovePriority, ActionClearPriority:
		return true
	}
	return false
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionAddPage, ActionSetPageCountManual, ActionSetSectionsPerDay:
		return true
	}
	return t.IsPriorityEdit()
}

// ActionRecord is one entry of the per-user undo log
type ActionRecord struct {
	ID                   int64      `json:"id" db:"id"`
	UserID               int64      `json:"user_id" db:"user_id"`
	ActionType           ActionType `json:"action_type" db:"action_type"`
	PreviousValue        int        `json:"previous_value" db:"previous_value"`
	NewValue             int        `json:"new_value" db:"new_value"`
	PreviousPriorityList []int      `json:"previous_priority_list" db:"-"`
	NewPriorityList      []int      `json:"new_priority_list" db:"-"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}
