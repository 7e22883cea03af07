// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"

	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/internal/domain/quiz"
)

// MaxCelebrationDuration caps the confetti timer.
const MaxCelebrationDuration = 30 * time.Second

const defaultCelebrationDuration = 6 * time.Second

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Names and Partners are the accepted answers for the first two steps.
	// From the environment they are comma-separated.
	Names    []string `koanf:"names"`
	Partners []string `koanf:"partners"`

	// DecoyMaxX and DecoyMaxY bound the decline control displacement in pixels.
	DecoyMaxX int `koanf:"decoy_max_x"`
	DecoyMaxY int `koanf:"decoy_max_y"`

	// SessionTTL is how long an idle session survives.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// JanitorInterval is how often idle sessions are swept.
	JanitorInterval time.Duration `koanf:"janitor_interval"`

	// MaxSessions caps live sessions.
	MaxSessions int `koanf:"max_sessions"`

	// EventQueueSize bounds the in-memory transition event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of event sink workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the decline gesture cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CelebrationDuration is how long confetti runs after the reveal.
	CelebrationDuration time.Duration `koanf:"celebration_duration"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool `koanf:"cookie_secure"`

	// TelegramToken enables the Telegram front-end when set.
	TelegramToken string `koanf:"telegram_token"`

	Music         media.Track        `koanf:"music"`
	Messages      quiz.Messages      `koanf:"messages"`
	ScoreMessages quiz.ScoreMessages `koanf:"score_messages"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Names:               quiz.DefaultNames(),
		Partners:            quiz.DefaultPartners(),
		DecoyMaxX:           80,
		DecoyMaxY:           60,
		SessionTTL:          30 * time.Minute,
		JanitorInterval:     time.Minute,
		MaxSessions:         10_000,
		EventQueueSize:      4_096,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		CelebrationDuration: defaultCelebrationDuration,
		ShutdownTimeout:     10 * time.Second,
		Music:               media.DefaultTrack(),
		Messages:            quiz.DefaultMessages(),
		ScoreMessages:       quiz.DefaultScoreMessages(),
	}
}

// QuizOptions builds controller options from the configuration.
func (c *Config) QuizOptions() []quiz.Option {
	return []quiz.Option{
		quiz.WithNames(quiz.NewAllowList(c.Names...)),
		quiz.WithPartners(quiz.NewAllowList(c.Partners...)),
		quiz.WithDecoyBounds(c.DecoyMaxX, c.DecoyMaxY),
		quiz.WithMessages(c.Messages),
		quiz.WithScoreMessages(c.ScoreMessages),
	}
}
