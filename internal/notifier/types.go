package notifier

import "time"

// Config controls notice pacing.
type Config struct {
	// RatePerSec is the token bucket refill rate. Burst is always 1.
	// Default: 1.
	RatePerSec int
}

const historyLimit = 50

type HistoryItem struct {
	At   time.Time
	Text string
}

// NotificationEvent is emitted on the event bus after every delivery attempt.
// Keep it small; subscribers may log it.
type NotificationEvent struct {
	ChatID   int64     `json:"chat_id,omitempty"`
	Username string    `json:"username,omitempty"`
	ThreadID int       `json:"thread_id,omitempty"`
	Length   int       `json:"length"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}
