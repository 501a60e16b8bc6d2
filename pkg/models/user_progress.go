package models

// DateLayout is the format of every calendar date stored by the bot.
const DateLayout = "2006-01-02"

// Default values for a freshly created user
const (
	DefaultSectionsPerDay = 1
	MinSectionsPerDay     = 1
	MaxSectionsPerDay     = 5
)

// UserProgress tracks how far a user got in memorizing the Quran and
// where the review rotation stopped.
type UserProgress struct {
	UserID          int64  `json:"user_id" db:"telegram_id"`
	PagesMemorized  int    `json:"pages_memorized" db:"pages_memorized"`     // 0..604
	LastSectionUsed int    `json:"last_section_used" db:"last_section_used"` // rotation cursor, 0 = not started
	PriorityList    []int  `json:"priority_list" db:"-"`                     // sorted, unique, 1..30
	SectionsPerDay  int    `json:"sections_per_day" db:"sections_per_day"`   // 1..5
	CachedPlanDate  string `json:"cached_plan_date" db:"-"`                  // YYYY-MM-DD, "" when unset
	PlanMessageID   int    `json:"plan_message_id" db:"-"`                   // last delivered plan message, 0 when none
}

// NewUserProgress returns the initial state of a user who has not started yet.
func NewUserProgress(userID int64) *UserProgress {
	return &UserProgress{
		UserID:         userID,
		PriorityList:   []int{},
		SectionsPerDay: DefaultSectionsPerDay,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (p UserProgress) Clone() UserProgress {
	c := p
	c.PriorityList = append([]int{}, p.PriorityList...)
	return c
}
