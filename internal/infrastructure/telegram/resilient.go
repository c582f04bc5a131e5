package telegram

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// API is the mutating slice of the client used by the transport adapters.
// The long-poll read stays outside: the poll loop does its own backoff.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error
	ApproveChatJoinRequest(ctx context.Context, chatID, userID int64) error
	BanChatMember(ctx context.Context, chatID, userID int64) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
}

// Resilient wraps the client's mutating calls with a per-call timeout and a
// short retry, so one slow or flaky API call cannot stall a sweep tick.
type Resilient struct {
	inner API
}

func NewResilient(inner API) *Resilient {
	return &Resilient{inner: inner}
}

func (r *Resilient) execute(ctx context.Context, op func(ctx context.Context) error) error {
	retryer := retry.New[struct{}](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})
	timeouter := timeout.New[struct{}](timeout.Config{
		DefaultTimeout: 15 * time.Second,
	})

	_, err := timeouter.Execute(ctx, 15*time.Second, func(ctx context.Context) (struct{}, error) {
		return retryer.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, op(ctx)
		})
	})
	return err
}

func (r *Resilient) SendMessage(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.SendMessage(ctx, chatID, text, keyboard)
	})
}

func (r *Resilient) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboardMarkup) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.EditMessageText(ctx, chatID, messageID, text, keyboard)
	})
}

func (r *Resilient) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.AnswerCallbackQuery(ctx, callbackID, text, showAlert)
	})
}

func (r *Resilient) ApproveChatJoinRequest(ctx context.Context, chatID, userID int64) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.ApproveChatJoinRequest(ctx, chatID, userID)
	})
}

func (r *Resilient) BanChatMember(ctx context.Context, chatID, userID int64) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.BanChatMember(ctx, chatID, userID)
	})
}

func (r *Resilient) UnbanChatMember(ctx context.Context, chatID, userID int64) error {
	return r.execute(ctx, func(ctx context.Context) error {
		return r.inner.UnbanChatMember(ctx, chatID, userID)
	})
}
