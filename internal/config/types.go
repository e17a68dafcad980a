package config

// Config holds hwbot's non-secret settings. Secrets never live here; see
// Credentials.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Poller    PollerConfig    `json:"poller"`
	Logging   LoggingConfig   `json:"logging"`
}

type PracticumConfig struct {
	// Endpoint overrides the homework status API URL.
	Endpoint string `json:"endpoint,omitempty"`
}

type TelegramConfig struct {
	// APIURL overrides the Bot API base URL (self-hosted Bot API servers).
	APIURL string `json:"api_url,omitempty"`
	// ThreadID posts notices into a forum topic of the destination chat.
	ThreadID int `json:"thread_id,omitempty"`
	// RatePerSec paces outgoing notices. Default: 1.
	RatePerSec int `json:"rate_per_sec,omitempty"`
	// GroupLog is the chat id that receives mirrored log lines
	// (logging.telegram). Empty disables that sink.
	GroupLog string `json:"group_log,omitempty"`
}

// PollerConfig controls the poll cadence.
//
// Schedule accepts a Go duration ("600s", "10m"), HH:MM ("00:10"),
// "@every 10m" or a cron expression ("*/10 * * * *").
type PollerConfig struct {
	Schedule string `json:"schedule,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level,omitempty"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id,omitempty"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// DefaultSchedule is the poll cadence used when poller.schedule is empty.
const DefaultSchedule = "600s"

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{RatePerSec: 1},
		Poller:   PollerConfig{Schedule: DefaultSchedule},
		Logging: LoggingConfig{
			Level:   "INFO",
			Console: true,
			Telegram: LoggingTelegram{
				MinLevel:   "ERROR",
				RatePerSec: 1,
			},
		},
	}
}
