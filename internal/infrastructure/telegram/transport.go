package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doorman-bot/doorman/pkg/domain/events"
)

// Transport implements the application's Messenger and ChannelGate ports on
// top of the Bot API client. The admin set is read through a callback on
// every fan-out, so a config reload that adds admins takes effect at once.
type Transport struct {
	api       API
	channelID int64
	adminIDs  func() []int64
	logger    *slog.Logger
}

func NewTransport(api API, channelID int64, adminIDs func() []int64, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if adminIDs == nil {
		adminIDs = func() []int64 { return nil }
	}
	return &Transport{api: api, channelID: channelID, adminIDs: adminIDs, logger: logger}
}

// NotifyUser sends a direct message. The outcome is a Delivery, never an
// error: unreachable users (blocked bot, never started it) are a normal
// condition.
func (t *Transport) NotifyUser(ctx context.Context, userID int64, text string) events.Delivery {
	err := t.api.SendMessage(ctx, userID, text, nil)
	d := events.NewDelivery(userID, err)
	if !d.Delivered() {
		t.logger.Warn("user notification failed", "delivery_id", d.ID, "user_id", userID, "error", err)
	}
	return d
}

// NotifyAdmins fans one message out to every admin; one failure never stops
// the rest.
func (t *Transport) NotifyAdmins(ctx context.Context, text string) []events.Delivery {
	adminIDs := t.adminIDs()
	deliveries := make([]events.Delivery, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		err := t.api.SendMessage(ctx, adminID, text, nil)
		d := events.NewDelivery(adminID, err)
		if !d.Delivered() {
			t.logger.Warn("admin notification failed", "delivery_id", d.ID, "admin_id", adminID, "error", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries
}

// ApproveJoinRequest accepts the user's pending request to the channel.
func (t *Transport) ApproveJoinRequest(ctx context.Context, userID int64) error {
	return t.api.ApproveChatJoinRequest(ctx, t.channelID, userID)
}

// RemoveMember evicts via a ban/unban cycle. The unban lets the user apply
// again after a future grant, so a failed unban fails the removal: the caller
// keeps its record and the next sweep retries the full cycle. Both steps are
// idempotent on the API side.
func (t *Transport) RemoveMember(ctx context.Context, userID int64) error {
	if err := t.api.BanChatMember(ctx, t.channelID, userID); err != nil {
		return fmt.Errorf("ban member %d: %w", userID, err)
	}
	if err := t.api.UnbanChatMember(ctx, t.channelID, userID); err != nil {
		return fmt.Errorf("unban member %d after eviction: %w", userID, err)
	}
	return nil
}
