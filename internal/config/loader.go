package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/lovequiz/pkg/logger"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "LOVEQUIZ_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LOVEQUIZ_CONFIG is set
//  3. env (prefix LOVEQUIZ_)
//
// Nested keys use a double underscore in the environment, so
// LOVEQUIZ_MUSIC__VOLUME sets music.volume.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(key, EnvPrefix)
		key = strings.ReplaceAll(strings.ToLower(key), "__", ".")
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")

	cfg := *base
	// Lists replace the defaults instead of merging element-wise.
	if k.Exists("names") {
		cfg.Names = nil
	}
	if k.Exists("partners") {
		cfg.Partners = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are read from the environment as comma-separated values.
var listKeys = map[string]struct{}{ //nolint:gochecknoglobals // lookup table
	"names":    {},
	"partners": {},
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks ranges and normalizes values that have a hard cap.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.DecoyMaxX < 0 || c.DecoyMaxY < 0:
		return fmt.Errorf("%w: decoy bounds must not be negative", ErrInvalidConfig)
	case c.SessionTTL <= 0:
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	case c.JanitorInterval <= 0:
		return fmt.Errorf("%w: janitor_interval must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.EventQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.Music.Volume < 0 || c.Music.Volume > 1:
		return fmt.Errorf("%w: music.volume %.2f outside [0,1]", ErrInvalidConfig, c.Music.Volume)
	case len(c.Names) == 0 || len(c.Partners) == 0:
		return fmt.Errorf("%w: names and partners must not be empty", ErrInvalidConfig)
	}
	if c.CelebrationDuration <= 0 {
		c.CelebrationDuration = defaultCelebrationDuration
	}
	if c.CelebrationDuration > MaxCelebrationDuration {
		c.CelebrationDuration = MaxCelebrationDuration
	}
	return nil
}
