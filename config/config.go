/*
Package config loads the engine configuration.

Defaults cover local development out of the box; an optional YAML file and
DISPATCH_-prefixed environment variables layer on top, in that order, so
env always wins.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `json:"server"`
	Auth    AuthConfig    `json:"auth"`
	Planner PlannerConfig `json:"planner"`
	Logging LoggingConfig `json:"logging"`
}

type ServerConfig struct {
	Port   int    `json:"port"`
	DBPath string `json:"dbPath"`
}

type AuthConfig struct {
	// Tokens are the accepted bearer tokens. Empty disables auth, which is
	// only sane for local development.
	Tokens []string `json:"tokens"`
}

type PlannerConfig struct {
	DailyCapMinutes        int      `json:"dailyCapMinutes"`
	SlotStepMinutes        int      `json:"slotStepMinutes"`
	DefaultDurationMinutes int      `json:"defaultDurationMinutes"`
	LockTTLMinutes         int      `json:"lockTtlMinutes"`
	SchedulableCategories  []string `json:"schedulableCategories"`
	SpareToday             bool     `json:"spareToday"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

// Default returns the configuration used when no file or env overrides are
// present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:   8080,
			DBPath: "dispatch.db",
		},
		Planner: PlannerConfig{
			DailyCapMinutes:        480,
			SlotStepMinutes:        15,
			DefaultDurationMinutes: 60,
			LockTTLMinutes:         30,
			SchedulableCategories:  []string{"operational", "support"},
			SpareToday:             true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then DISPATCH_-prefixed environment
// variables (DISPATCH_SERVER__PORT=9090 sets server.port).
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := k.Load(env.Provider("DISPATCH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dispatch_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("failed to load env overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Planner.DailyCapMinutes <= 0 {
		return fmt.Errorf("dailyCapMinutes must be positive, got %d", c.Planner.DailyCapMinutes)
	}
	if c.Planner.SlotStepMinutes <= 0 {
		return fmt.Errorf("slotStepMinutes must be positive, got %d", c.Planner.SlotStepMinutes)
	}
	if c.Planner.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("defaultDurationMinutes must be positive, got %d", c.Planner.DefaultDurationMinutes)
	}
	return nil
}
