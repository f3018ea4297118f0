package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if NOTESCORE_CONFIG is set
//  3. env (prefix NOTESCORE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("NOTESCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: NOTESCORE_LOG_LEVEL, NOTESCORE_MF_DEADLINE_MS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("NOTESCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "notescore_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if cfg.MFDeadlineMS <= 0 {
		return nil, fmt.Errorf("%w: mf_deadline_ms must be positive", ErrInvalidConfig)
	}
	if cfg.TriggerThreshold <= 0 {
		return nil, fmt.Errorf("%w: trigger_threshold must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
