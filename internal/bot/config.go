package bot

import (
	"time"
)

// Options tunes the bot behaviour
type Options struct {
	// Number of actions listed in the history view
	HistoryLimit int
	// Time zone calendar days are computed in
	Location *time.Location
	// Log Telegram API traffic
	Debug bool
}

// DefaultOptions returns the default bot options
func DefaultOptions() Options {
	return Options{
		HistoryLimit: 10,
		Location:     time.UTC,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = d.HistoryLimit
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}
