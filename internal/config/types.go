package config

// Config is the daemon configuration, loaded from JSON or YAML.
//
// All durations are Go duration strings ("16ms", "10s", "1m").
type Config struct {
	Logging  LoggingConfig   `json:"logging"`
	Loop     LoopConfig      `json:"loop"`
	Storage  *StorageConfig  `json:"storage,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Jobs     []JobConfig     `json:"jobs"`
}

type LoggingConfig struct {
	Level   string               `json:"level"`
	Console bool                 `json:"console"`
	File    LoggingFileConfig    `json:"file"`
	Forward LoggingForwardConfig `json:"forward"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingForwardConfig mirrors warnings and errors to the telegram chat.
type LoggingForwardConfig struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// LoopConfig controls how trackers are polled.
//
// Defaults:
//   - interval: 1/60 s
//   - timezone: "local" ("utc" or any IANA name also accepted)
//   - engine: "robfig" ("gronx" also accepted)
type LoopConfig struct {
	Interval string `json:"interval,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Engine   string `json:"engine,omitempty"`
}

// StorageConfig selects where firing history goes. Nil or driver "none"
// disables history.
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type TelegramConfig struct {
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	ThreadID   int    `json:"thread_id,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}

// JobConfig is one named schedule and what to do when it arrives.
// Exactly one of Schedule and Preset must be set.
type JobConfig struct {
	Name     string       `json:"name"`
	Schedule string       `json:"schedule,omitempty"`
	Preset   string       `json:"preset,omitempty"`
	Action   ActionConfig `json:"action"`
}

// ActionConfig lists the side effects of an arrival. Empty means log only.
type ActionConfig struct {
	Log      string `json:"log,omitempty"`
	Command  string `json:"command,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
	Telegram string `json:"telegram,omitempty"`
}
