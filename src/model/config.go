package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig controls the global zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"console"` // json, console
	Output     string `envconfig:"OUTPUT" default:"stderr"` // stdout, stderr, file
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339"`
	FilePath   string `envconfig:"FILE_PATH" default:"logs/assistant.log"`
}

// LLMConfig holds configuration for the remote generation provider.
// An empty Provider disables remote generation and every reply is synthesized offline.
type LLMConfig struct {
	Provider    string        `envconfig:"PROVIDER"` // openai, ollama, deepseek, ark
	Model       string        `envconfig:"MODEL" default:"openai/gpt-3.5-turbo"`
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL" default:"https://openrouter.ai/api/v1"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"512"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.3"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"8s"`
}

// ConversationConfig bounds the per-session conversation memory
type ConversationConfig struct {
	MaxHistoryTurns int           `envconfig:"MAX_HISTORY_TURNS" default:"10"`
	HistoryWindow   int           `envconfig:"HISTORY_WINDOW" default:"5"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

// CatalogConfig describes where catalog snapshots come from
type CatalogConfig struct {
	SeedFile        string        `envconfig:"SEED_FILE" default:"config.yaml"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1m"`
}
