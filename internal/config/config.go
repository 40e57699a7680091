// Package config loads runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by every command.
type Config struct {
	// DBPath overrides the default database location.
	DBPath string `env:"KNOWING_DB"`

	// Learner is the learner id used when --learner is not given.
	Learner string `env:"KNOWING_LEARNER" envDefault:"default"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"KNOWING_LOG_LEVEL" envDefault:"warn"`

	// LogFormat is text or json.
	LogFormat string `env:"KNOWING_LOG_FORMAT" envDefault:"text"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
