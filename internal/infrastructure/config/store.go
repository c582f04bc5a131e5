package config

import (
	"log/slog"
	"sync"
)

// Store holds the live configuration and swaps the presentation knobs when
// the file changes. Credentials and wiring (token, channel, data dir, check
// interval) require a restart; a reload that touches them is logged and the
// old values are kept.
type Store struct {
	mu     sync.RWMutex
	cfg    *Config
	logger *slog.Logger
}

func NewStore(cfg *Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cfg: cfg, logger: logger}
}

// Current returns the live configuration.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ApplyReload merges a freshly loaded file into the live configuration.
func (s *Store) ApplyReload(fresh *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fresh.BotToken != s.cfg.BotToken || fresh.ChannelID != s.cfg.ChannelID ||
		fresh.DataDir != s.cfg.DataDir || fresh.CheckInterval != s.cfg.CheckInterval {
		s.logger.Warn("config reload changes token/channel/data_dir/check_interval; those need a restart and were ignored")
	}

	next := *s.cfg
	next.AdminIDs = fresh.AdminIDs
	next.ChannelLink = fresh.ChannelLink
	next.Contact = fresh.Contact
	next.WarningHours = fresh.WarningHours
	next.ShowSubscriptionInfo = fresh.ShowSubscriptionInfo
	next.TimeButtons = fresh.TimeButtons
	next.Messages = fresh.Messages
	s.cfg = &next

	s.logger.Info("configuration reloaded",
		"admins", len(next.AdminIDs), "time_buttons", len(next.TimeButtons))
}
