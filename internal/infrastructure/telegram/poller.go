package telegram

import (
	"context"
	"log/slog"
	"time"
)

// Handler receives the three update kinds the bot subscribes to.
type Handler interface {
	HandleMessage(ctx context.Context, msg *Message)
	HandleCallback(ctx context.Context, cb *CallbackQuery)
	HandleJoinRequest(ctx context.Context, req *ChatJoinRequest)
}

// Updater is the slice of the client the poller needs.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error)
}

const (
	pollTimeoutSeconds = 60
	pollErrorBackoff   = 5 * time.Second
)

// Poller fetches updates in a long-poll loop and dispatches them to the
// handler. Updates are processed in order on the polling goroutine.
type Poller struct {
	client  Updater
	handler Handler
	logger  *slog.Logger
}

func NewPoller(client Updater, handler Handler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{client: client, handler: handler, logger: logger}
}

// Run polls until the context is cancelled. Transient API errors are logged
// and retried after a short backoff; the offset only advances past updates
// that were handed to the handler.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("polling failed", "error", err)
			select {
			case <-time.After(pollErrorBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			p.dispatch(ctx, update)
			offset = update.UpdateID + 1
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update Update) {
	switch {
	case update.Message != nil:
		p.handler.HandleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		p.handler.HandleCallback(ctx, update.CallbackQuery)
	case update.ChatJoinRequest != nil:
		p.handler.HandleJoinRequest(ctx, update.ChatJoinRequest)
	}
}
