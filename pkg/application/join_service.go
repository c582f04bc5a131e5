package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/doorman-bot/doorman/pkg/domain/access"
	"github.com/doorman-bot/doorman/pkg/domain/events"
)

// JoinOutcome is the terminal state of one join-request handling pass.
type JoinOutcome string

const (
	// JoinApproved means the request was accepted on the strength of an
	// active grant.
	JoinApproved JoinOutcome = "approved"
	// JoinApprovedVip means the request was accepted via the allowlist.
	JoinApprovedVip JoinOutcome = "approved_vip"
	// JoinLeftPending means the request was deliberately left open so a
	// later grant can still be approved by the admin.
	JoinLeftPending JoinOutcome = "left_pending"
)

// JoinService consumes inbound join requests and turns the access decision
// into an approval or a deliberate non-answer.
type JoinService struct {
	access    *AccessService
	gate      events.ChannelGate
	messenger events.Messenger
	texts     func() Texts
	logger    *slog.Logger
	now       func() time.Time
}

// NewJoinService wires the gate. The texts callback is read on every request
// so reloaded templates apply without a restart.
func NewJoinService(access *AccessService, gate events.ChannelGate, messenger events.Messenger, texts func() Texts, logger *slog.Logger) *JoinService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JoinService{
		access:    access,
		gate:      gate,
		messenger: messenger,
		texts:     texts,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle processes one join request. A denied user is never declined
// outright: the request stays pending on the platform so a later grant can
// be approved retroactively.
func (s *JoinService) Handle(ctx context.Context, userID int64, username string) (JoinOutcome, error) {
	display := access.DisplayName(userID, username)
	decision := s.access.Decide(userID)
	texts := s.texts()

	switch decision.Verdict {
	case access.VerdictVip:
		if err := s.gate.ApproveJoinRequest(ctx, userID); err != nil {
			s.logger.Error("failed to approve VIP join request", "user_id", userID, "error", err)
			return JoinLeftPending, err
		}
		s.notifyAdmins(ctx, Render(texts.AdminVip, map[string]string{
			"display": display,
			"id":      strconv.FormatInt(userID, 10),
		}))
		s.logger.Info("join request approved", "user_id", userID, "verdict", "vip")
		return JoinApprovedVip, nil

	case access.VerdictActive:
		if err := s.gate.ApproveJoinRequest(ctx, userID); err != nil {
			s.logger.Error("failed to approve join request", "user_id", userID, "error", err)
			return JoinLeftPending, err
		}
		now := s.now()
		s.notifyAdmins(ctx, Render(texts.AdminApproved, map[string]string{
			"display":      display,
			"expires_date": access.ExpiryDate(decision.ExpiresAt),
			"time_left":    access.RemainingLabel(decision.ExpiresAt, now),
		}))
		s.logger.Info("join request approved", "user_id", userID, "expires_at", decision.ExpiresAt)
		return JoinApproved, nil

	default:
		s.notifyAdmins(ctx, Render(texts.AdminPending, map[string]string{
			"display": display,
			"id":      strconv.FormatInt(userID, 10),
		}))
		s.logger.Info("join request left pending", "user_id", userID)
		return JoinLeftPending, nil
	}
}

func (s *JoinService) notifyAdmins(ctx context.Context, text string) {
	for _, d := range s.messenger.NotifyAdmins(ctx, text) {
		if !d.Delivered() {
			s.logger.Warn("admin notification not delivered",
				"delivery_id", d.ID, "recipient", d.Recipient, "error", d.Err)
		}
	}
}
