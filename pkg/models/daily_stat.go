package models

// DailyStat is the once-per-day snapshot of a user's progress
type DailyStat struct {
	ID                 int64  `json:"id" db:"id"`
	UserID             int64  `json:"user_id" db:"user_id"`
	Date               string `json:"date" db:"date"` // YYYY-MM-DD
	PagesMemorized     int    `json:"pages_memorized" db:"pages_memorized"`
	BaseSectionCount   int    `json:"base_section_count" db:"base_section_count"`
	TotalSectionCount  int    `json:"total_section_count" db:"total_section_count"`
	DailyProgressPages int    `json:"daily_progress_pages" db:"daily_progress_pages"`
	SectionsPerDay     int    `json:"sections_per_day" db:"sections_per_day"`
	PagesRepeated      int    `json:"pages_repeated" db:"pages_repeated"`
}
