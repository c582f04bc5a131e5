// Package config loads and validates the bot configuration from a YAML file
// and supports hot-swapping the presentation knobs at runtime.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doorman-bot/doorman/pkg/application"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TimeButton is one preset duration on the admin keyboard.
type TimeButton struct {
	Label string  `yaml:"label"`
	Hours float64 `yaml:"hours"`
}

// Config is the full bot configuration. Missing fields keep their defaults.
type Config struct {
	BotToken             string            `yaml:"bot_token"`
	AdminIDs             []int64           `yaml:"admin_ids"`
	ChannelID            int64             `yaml:"channel_id"`
	ChannelLink          string            `yaml:"channel_link"`
	Contact              string            `yaml:"contact"`
	WarningHours         float64           `yaml:"warning_hours"`
	CheckInterval        Duration          `yaml:"check_interval"`
	DataDir              string            `yaml:"data_dir"`
	LogLevel             string            `yaml:"log_level"`
	ShowSubscriptionInfo bool              `yaml:"show_subscription_info"`
	TimeButtons          []TimeButton      `yaml:"time_buttons"`
	Messages             application.Texts `yaml:"messages"`
}

// Default returns the stock configuration: everything but the credentials.
func Default() *Config {
	return &Config{
		WarningHours:         24,
		CheckInterval:        Duration(5 * time.Minute),
		DataDir:              "data",
		LogLevel:             "info",
		ShowSubscriptionInfo: true,
		TimeButtons: []TimeButton{
			{Label: "1 час", Hours: 1},
			{Label: "3 часа", Hours: 3},
			{Label: "1 день", Hours: 24},
			{Label: "3 дня", Hours: 72},
		},
		Messages: application.DefaultTexts(),
	}
}

// Load reads the YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the bot cannot run without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required")
	}
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("at least one admin_ids entry is required")
	}
	if c.ChannelID == 0 {
		return fmt.Errorf("channel_id is required")
	}
	if c.WarningHours <= 0 {
		return fmt.Errorf("warning_hours must be positive")
	}
	if c.CheckInterval.Std() < time.Second {
		return fmt.Errorf("check_interval must be at least one second")
	}
	return nil
}

// WarningThreshold converts the configured warning window to a duration.
func (c *Config) WarningThreshold() time.Duration {
	return time.Duration(c.WarningHours * float64(time.Hour))
}

// IsAdmin reports whether the user id is a configured admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
