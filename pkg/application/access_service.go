// Package application wires the stores, the decision logic and the chat
// transport into the services the bot runs on.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/doorman-bot/doorman/pkg/domain/access"
	"github.com/doorman-bot/doorman/pkg/domain/events"
)

// AccessService is the single authority on who may enter the channel. It
// layers the three-way decision and the grant/revoke operations over the two
// stores.
type AccessService struct {
	grants    access.GrantRepository
	allowlist access.AllowlistRepository
	gate      events.ChannelGate
	logger    *slog.Logger
	now       func() time.Time
}

func NewAccessService(grants access.GrantRepository, allowlist access.AllowlistRepository, gate events.ChannelGate, logger *slog.Logger) *AccessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessService{
		grants:    grants,
		allowlist: allowlist,
		gate:      gate,
		logger:    logger,
		now:       time.Now,
	}
}

// Decide returns the three-way access verdict: allowlist first, then an
// unexpired grant, otherwise denied.
func (s *AccessService) Decide(userID int64) access.Decision {
	if s.allowlist.Contains(userID) {
		return access.Decision{Verdict: access.VerdictVip}
	}
	if grant := s.grants.Get(userID); grant != nil && grant.Active(s.now()) {
		return access.Decision{Verdict: access.VerdictActive, ExpiresAt: *grant.ExpiresAt}
	}
	return access.Decision{Verdict: access.VerdictDenied}
}

// Register ensures a bare record exists for the user so the admin can pick a
// duration next. VIPs cannot carry a parallel timed record.
func (s *AccessService) Register(userID int64, username string) (*access.Grant, error) {
	if s.allowlist.Contains(userID) {
		return nil, access.ErrAlreadyVip
	}
	return s.grants.Ensure(userID, username), nil
}

// Grant issues or extends a timed grant. Rejections leave the store
// unchanged.
func (s *AccessService) Grant(userID int64, hours float64, username string) (*access.Grant, error) {
	if err := access.ValidateHours(hours); err != nil {
		return nil, err
	}
	if s.allowlist.Contains(userID) {
		return nil, access.ErrAlreadyVip
	}

	grant, err := s.grants.Extend(userID, username, hours)
	if err != nil {
		return nil, err
	}
	s.logger.Info("access granted", "user_id", userID, "hours", hours, "expires_at", grant.ExpiresAt)
	return grant, nil
}

// Revoke removes the member from the channel and deletes the record. The
// eviction must succeed before the record is dropped; otherwise the caller
// (or the next sweep) retries.
func (s *AccessService) Revoke(ctx context.Context, userID int64) error {
	if err := s.gate.RemoveMember(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove member %d from channel: %w", userID, err)
	}
	s.grants.Remove(userID)
	s.logger.Info("access revoked", "user_id", userID)
	return nil
}

// Grants exposes the grant store for listing surfaces.
func (s *AccessService) Grants() access.GrantRepository {
	return s.grants
}

// Allowlist exposes the allowlist for the VIP admin surface.
func (s *AccessService) Allowlist() access.AllowlistRepository {
	return s.allowlist
}

// Now returns the service clock. Listing surfaces use it so every view of
// "active" agrees with the decision logic.
func (s *AccessService) Now() time.Time {
	return s.now()
}
