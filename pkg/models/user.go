package models

// User represents a Telegram user using the bot
type User struct {
	ID               int64  `json:"id" db:"telegram_id"` // Telegram User ID
	Username         string `json:"username" db:"username"`
	FirstName        string `json:"first_name" db:"first_name"`
	LastName         string `json:"last_name" db:"last_name"`
	RemindersEnabled bool   `json:"reminders_enabled" db:"reminders_enabled"`
	CreatedAt        string `json:"created_at" db:"created_at"`
	UpdatedAt        string `json:"updated_at" db:"updated_at"`
}
