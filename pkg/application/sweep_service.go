package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/doorman-bot/doorman/pkg/domain/access"
	"github.com/doorman-bot/doorman/pkg/domain/events"
)

// SweepService is the recurring expiry check: one tick scans every grant,
// revokes the lapsed ones and warns the nearly-lapsed once per grant period.
type SweepService struct {
	grants    access.GrantRepository
	allowlist access.AllowlistRepository
	gate      events.ChannelGate
	messenger events.Messenger
	config    func() SweepConfig
	logger    *slog.Logger
	now       func() time.Time
}

// SweepConfig bundles the sweeper's tuning knobs. The config callback is
// consulted on every tick, so reloaded templates, contact and warning
// threshold take effect without a restart. The interval is read once at
// start; changing it requires a restart.
type SweepConfig struct {
	WarningThreshold time.Duration
	Interval         time.Duration
	Contact          string
	Texts            Texts
}

func NewSweepService(grants access.GrantRepository, allowlist access.AllowlistRepository, gate events.ChannelGate, messenger events.Messenger, config func() SweepConfig, logger *slog.Logger) *SweepService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepService{
		grants:    grants,
		allowlist: allowlist,
		gate:      gate,
		messenger: messenger,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// settings reads the live configuration and fills in the stock values.
func (s *SweepService) settings() SweepConfig {
	cfg := s.config()
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.WarningThreshold <= 0 {
		cfg.WarningThreshold = 24 * time.Hour
	}
	return cfg
}

// Run schedules the sweep at the configured interval and blocks until the
// context is cancelled. The first tick fires one interval after start.
func (s *SweepService) Run(ctx context.Context) {
	interval := s.settings().Interval

	scheduler := cron.New()
	scheduler.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.Tick(ctx)
	}))
	scheduler.Start()
	s.logger.Info("expiry sweeper started", "interval", interval)

	<-ctx.Done()
	<-scheduler.Stop().Done()
}

// Tick runs one full pass over the grant snapshot. A failure on one record
// never aborts the rest; the tick always runs to completion.
func (s *SweepService) Tick(ctx context.Context) {
	cfg := s.settings()
	now := s.now()
	for _, grant := range s.grants.All() {
		if grant.ExpiresAt == nil {
			continue
		}

		if grant.Lapsed(now) {
			s.revoke(ctx, grant, cfg)
			continue
		}

		remaining := grant.ExpiresAt.Sub(now)
		if remaining <= cfg.WarningThreshold && !grant.WarningSent && !s.allowlist.Contains(grant.UserID) {
			s.warn(ctx, grant, remaining, cfg)
		}
	}
}

// revoke evicts a lapsed member, notifies the bystanders and deletes the
// record. If the eviction itself fails the record stays put and the next
// tick retries; nobody is notified about a removal that did not happen.
func (s *SweepService) revoke(ctx context.Context, grant access.Grant, cfg SweepConfig) {
	if err := s.gate.RemoveMember(ctx, grant.UserID); err != nil {
		s.logger.Error("failed to remove lapsed member, will retry next sweep",
			"user_id", grant.UserID, "error", err)
		return
	}

	s.deliver(s.messenger.NotifyUser(ctx, grant.UserID, Render(cfg.Texts.UserKick, map[string]string{
		"contact": cfg.Contact,
	})))
	for _, d := range s.messenger.NotifyAdmins(ctx, Render(cfg.Texts.AdminKick, map[string]string{
		"display": access.DisplayName(grant.UserID, grant.Username),
		"id":      strconv.FormatInt(grant.UserID, 10),
	})) {
		s.deliver(d)
	}

	s.grants.Remove(grant.UserID)
	s.logger.Info("lapsed grant revoked", "user_id", grant.UserID)
}

// warn fires the one near-expiry notice for the current grant period.
func (s *SweepService) warn(ctx context.Context, grant access.Grant, remaining time.Duration, cfg SweepConfig) {
	timeLeft := access.RemainingLabel(*grant.ExpiresAt, s.now())

	s.deliver(s.messenger.NotifyUser(ctx, grant.UserID, Render(cfg.Texts.UserWarning, map[string]string{
		"time_left": timeLeft,
		"contact":   cfg.Contact,
	})))
	for _, d := range s.messenger.NotifyAdmins(ctx, Render(cfg.Texts.AdminWarning, map[string]string{
		"display":   access.DisplayName(grant.UserID, grant.Username),
		"id":        strconv.FormatInt(grant.UserID, 10),
		"time_left": timeLeft,
	})) {
		s.deliver(d)
	}

	s.grants.MarkWarned(grant.UserID)
	s.logger.Info("expiry warning sent", "user_id", grant.UserID, "remaining", remaining)
}

// deliver logs failed notification deliveries without affecting the sweep.
func (s *SweepService) deliver(d events.Delivery) {
	if d.Delivered() {
		return
	}
	s.logger.Warn("notification not delivered",
		"delivery_id", d.ID, "recipient", d.Recipient, "error", d.Err)
}
