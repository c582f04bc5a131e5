package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/doorman-bot/doorman/internal/infrastructure/config"
	"github.com/doorman-bot/doorman/pkg/application"
	"github.com/doorman-bot/doorman/pkg/domain/access"
	"github.com/doorman-bot/doorman/pkg/domain/flow"
)

// Prompt texts for the multi-step admin dialogs. These are operator-facing
// fixtures rather than subscriber-facing templates, so they live here and
// not in the configurable message set.
const (
	promptUserID = "👤 Отправьте ID пользователя:\n\n" +
		"Примеры:\n" +
		"• 123456789 (ID)\n" +
		"ℹ️ Пользователь получит уведомление со ссылкой на канал!\n\n" +
		"Отмена: /cancel"
	promptCustomHours = "⏱ Введите количество часов (можно с дробной частью):\n\n" +
		"Например: 1.5 (полтора часа)\n\n" +
		"Отмена: /cancel"
	promptVipAdd    = "👑 Отправьте ID пользователя для добавления в VIP:\n\nОтмена: /cancel"
	promptVipRemove = "👑 Отправьте ID пользователя для удаления из VIP:\n\nОтмена: /cancel"
	noAccessToast   = "У вас нет доступа!"
)

// Bot is the command and button surface. It owns no business state: all
// decisions go through the application services, all dialog state through
// the session store.
type Bot struct {
	api      API
	cfg      *config.Store
	access   *application.AccessService
	roster   *application.RosterService
	join     *application.JoinService
	sessions *flow.Sessions
	logger   *slog.Logger
	now      func() time.Time
}

func NewBot(api API, cfg *config.Store, accessSvc *application.AccessService, roster *application.RosterService, join *application.JoinService, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		cfg:      cfg,
		access:   accessSvc,
		roster:   roster,
		join:     join,
		sessions: flow.NewSessions(),
		logger:   logger,
		now:      time.Now,
	}
}

// HandleJoinRequest forwards the platform event to the join gate.
func (b *Bot) HandleJoinRequest(ctx context.Context, req *ChatJoinRequest) {
	if _, err := b.join.Handle(ctx, req.From.ID, req.From.Username); err != nil {
		b.logger.Error("join request handling failed", "user_id", req.From.ID, "error", err)
	}
}

// HandleMessage routes commands and dialog input.
func (b *Bot) HandleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	userID := msg.From.ID
	cfg := b.cfg.Current()

	if cmd, ok := parseCommand(msg.Text); ok {
		b.handleCommand(ctx, cfg, msg, cmd)
		return
	}

	if cfg.IsAdmin(userID) {
		b.handleDialogInput(ctx, cfg, msg)
	}
}

func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	// Strip the bot-name suffix of group-style commands.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return cmd, true
}

func (b *Bot) handleCommand(ctx context.Context, cfg *config.Config, msg *Message, cmd string) {
	userID := msg.From.ID
	admin := cfg.IsAdmin(userID)

	switch cmd {
	case "/start":
		if admin {
			b.reply(ctx, msg, cfg.Messages.Start, nil)
		} else {
			b.reply(ctx, msg, cfg.Messages.UserStart, nil)
		}

	case "/help":
		if !admin {
			return
		}
		b.reply(ctx, msg, application.Render(cfg.Messages.Help, map[string]string{
			"warning_hours": strconv.FormatFloat(cfg.WarningHours, 'f', -1, 64),
		}), nil)

	case "/info", "/status":
		if !cfg.ShowSubscriptionInfo {
			return
		}
		b.sendStatus(ctx, cfg, msg)

	case "/vip":
		if !admin {
			return
		}
		b.reply(ctx, msg, b.vipListText(), vipKeyboard())

	case "/users":
		if !admin {
			return
		}
		roster := b.roster.Snapshot()
		if len(roster.Active) == 0 && len(roster.Expired) == 0 {
			b.reply(ctx, msg, "📭 Нет пользователей с ограниченным доступом.", nil)
			return
		}
		b.reply(ctx, msg, b.rosterListText(roster), rosterKeyboard(roster))

	case "/add":
		if !admin {
			return
		}
		b.startPrompt(ctx, msg.Chat.ID, userID, flow.EventPromptUser, promptUserID)

	case "/cancel":
		b.sessions.Reset(userID)
		b.reply(ctx, msg, "❌ Операция отменена.", nil)
	}
}

// sendStatus answers the self-service /status command.
func (b *Bot) sendStatus(ctx context.Context, cfg *config.Config, msg *Message) {
	decision := b.access.Decide(msg.From.ID)
	switch decision.Verdict {
	case access.VerdictVip:
		b.reply(ctx, msg, cfg.Messages.StatusVip, nil)
	case access.VerdictActive:
		b.reply(ctx, msg, application.Render(cfg.Messages.StatusActive, map[string]string{
			"expires_date": access.ExpiryDate(decision.ExpiresAt),
			"time_left":    access.RemainingLabel(decision.ExpiresAt, b.now()),
			"contact":      cfg.Contact,
		}), nil)
	default:
		b.reply(ctx, msg, application.Render(cfg.Messages.StatusNone, map[string]string{
			"contact": cfg.Contact,
		}), nil)
	}
}

// handleDialogInput feeds non-command text into the admin's prompt dialog.
func (b *Bot) handleDialogInput(ctx context.Context, cfg *config.Config, msg *Message) {
	session, err := b.sessions.Get(msg.From.ID)
	if err != nil {
		b.logger.Error("session unavailable", "admin_id", msg.From.ID, "error", err)
		return
	}

	switch session.Machine.Current() {
	case flow.StateAwaitingUserID:
		b.dialogUserID(ctx, cfg, msg, session)
	case flow.StateAwaitingCustomHour:
		b.dialogCustomHours(ctx, cfg, msg, session)
	case flow.StateAwaitingVipID:
		b.dialogVipID(ctx, msg, session)
	}
}

func (b *Bot) dialogUserID(ctx context.Context, cfg *config.Config, msg *Message, session *flow.Session) {
	targetID, err := parseUserID(msg.Text)
	if err != nil {
		b.reply(ctx, msg, "❌ Неверный формат. Отправьте числовой ID (например: 123456789).\n\nПопробуйте снова или /cancel", nil)
		return
	}

	if _, err := b.access.Register(targetID, ""); err != nil {
		if errors.Is(err, access.ErrAlreadyVip) {
			b.reply(ctx, msg, "⚠️ Этот пользователь является VIP и имеет бессрочный доступ.", nil)
			b.endDialog(msg.From.ID, session)
			return
		}
		b.logger.Error("failed to register user", "target_id", targetID, "error", err)
		b.reply(ctx, msg, "❌ Произошла ошибка. Попробуйте снова.", nil)
		b.endDialog(msg.From.ID, session)
		return
	}

	b.reply(ctx, msg, fmt.Sprintf("✅ Пользователь ID: %d добавлен!\n\nВыберите время доступа:", targetID),
		timeKeyboard(targetID, cfg.TimeButtons))
	b.endDialog(msg.From.ID, session)
}

func (b *Bot) dialogCustomHours(ctx context.Context, cfg *config.Config, msg *Message, session *flow.Session) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(msg.Text), 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Неверный формат. Введите число часов (можно с дробной частью).", nil)
		return
	}
	if access.ValidateHours(hours) != nil {
		b.reply(ctx, msg, "❌ Время должно быть положительным числом.", nil)
		return
	}

	targetID := session.Context.TargetID
	if targetID == 0 {
		b.reply(ctx, msg, "❌ Ошибка. Попробуйте снова.", nil)
		b.endDialog(msg.From.ID, session)
		return
	}

	grant, err := b.access.Grant(targetID, hours, "")
	if err != nil {
		b.logger.Error("failed to grant custom hours", "target_id", targetID, "error", err)
		b.reply(ctx, msg, "❌ Произошла ошибка. Попробуйте снова.", nil)
		b.endDialog(msg.From.ID, session)
		return
	}

	b.notifyGranted(ctx, cfg, grant)
	b.reply(ctx, msg, b.grantSummary(grant, "✅ <b>Доступ предоставлен!</b>"), nil)
	b.endDialog(msg.From.ID, session)
}

func (b *Bot) dialogVipID(ctx context.Context, msg *Message, session *flow.Session) {
	targetID, err := parseUserID(msg.Text)
	if err != nil {
		b.reply(ctx, msg, "❌ Не удалось определить пользователя. Попробуйте снова или /cancel", nil)
		return
	}

	switch session.Context.VipAction {
	case flow.VipAdd:
		b.access.Allowlist().Add(targetID)
		b.reply(ctx, msg, fmt.Sprintf("✅ Пользователь ID: %d добавлен в VIP!", targetID), nil)
	case flow.VipRemove:
		b.access.Allowlist().Remove(targetID)
		b.reply(ctx, msg, fmt.Sprintf("✅ Пользователь ID: %d удален из VIP!", targetID), nil)
	}
	b.endDialog(msg.From.ID, session)
}

// HandleCallback routes inline keyboard presses.
func (b *Bot) HandleCallback(ctx context.Context, cb *CallbackQuery) {
	cfg := b.cfg.Current()
	if !cfg.IsAdmin(cb.From.ID) {
		b.answer(ctx, cb.ID, noAccessToast, false)
		return
	}
	if cb.Message == nil {
		b.answer(ctx, cb.ID, "", false)
		return
	}

	data := cb.Data
	switch {
	case data == cbAddVip:
		b.startVipPrompt(ctx, cb, flow.VipAdd, promptVipAdd)
	case data == cbRemoveVip:
		b.startVipPrompt(ctx, cb, flow.VipRemove, promptVipRemove)
	case data == cbAddUser:
		b.startPrompt(ctx, cb.Message.Chat.ID, cb.From.ID, flow.EventPromptUser, promptUserID)
		b.answer(ctx, cb.ID, "", false)
	case data == cbBackToList:
		b.callbackBackToList(ctx, cb)
	case strings.HasPrefix(data, cbUserInfo):
		b.callbackUserInfo(ctx, cfg, cb, strings.TrimPrefix(data, cbUserInfo))
	case strings.HasPrefix(data, cbAddTime):
		b.callbackAddTime(ctx, cfg, cb, strings.TrimPrefix(data, cbAddTime))
	case strings.HasPrefix(data, cbCustomTime):
		b.callbackCustomTime(ctx, cb, strings.TrimPrefix(data, cbCustomTime))
	case strings.HasPrefix(data, cbRemoveUser):
		b.callbackRemoveUser(ctx, cb, strings.TrimPrefix(data, cbRemoveUser))
	default:
		b.answer(ctx, cb.ID, "", false)
	}
}

func (b *Bot) startVipPrompt(ctx context.Context, cb *CallbackQuery, action flow.VipAction, prompt string) {
	b.sessions.Reset(cb.From.ID)
	session, err := b.sessions.Get(cb.From.ID)
	if err != nil {
		b.logger.Error("session unavailable", "admin_id", cb.From.ID, "error", err)
		return
	}
	if err := session.Machine.Transition(flow.EventPromptVip); err != nil {
		b.logger.Error("vip prompt transition failed", "error", err)
		return
	}
	session.Context.VipAction = action
	b.send(ctx, cb.Message.Chat.ID, prompt, nil)
	b.answer(ctx, cb.ID, "", false)
}

func (b *Bot) callbackUserInfo(ctx context.Context, cfg *config.Config, cb *CallbackQuery, rawID string) {
	targetID, err := parseUserID(rawID)
	if err != nil {
		b.answer(ctx, cb.ID, "Пользователь не найден!", true)
		return
	}
	grant := b.access.Grants().Get(targetID)
	if grant == nil {
		b.answer(ctx, cb.ID, "Пользователь не найден!", true)
		return
	}

	text := fmt.Sprintf("<b>👤 Пользователь: %s</b>\n\n", access.DisplayName(grant.UserID, grant.Username))
	if grant.ExpiresAt != nil {
		text += fmt.Sprintf("⏰ Доступ до: %s\n⏱ Осталось: %s\n\n",
			access.ExpiryDate(*grant.ExpiresAt), access.RemainingLabel(*grant.ExpiresAt, b.now()))
		if grant.Lapsed(b.now()) {
			text += "❌ <b>Доступ истек!</b>\n\n"
		}
	} else {
		text += "⏰ Время не установлено\n\n"
	}
	text += "Выберите действие:"

	b.edit(ctx, cb, text, timeKeyboard(targetID, cfg.TimeButtons))
	b.answer(ctx, cb.ID, "", false)
}

func (b *Bot) callbackAddTime(ctx context.Context, cfg *config.Config, cb *CallbackQuery, payload string) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		b.answer(ctx, cb.ID, "", false)
		return
	}
	targetID, idErr := parseUserID(parts[0])
	hours, hoursErr := strconv.ParseFloat(parts[1], 64)
	if idErr != nil || hoursErr != nil {
		b.answer(ctx, cb.ID, "", false)
		return
	}

	grant, err := b.access.Grant(targetID, hours, "")
	if err != nil {
		if errors.Is(err, access.ErrAlreadyVip) {
			b.answer(ctx, cb.ID, "Пользователь VIP — время не нужно.", true)
			return
		}
		b.logger.Error("failed to add time", "target_id", targetID, "error", err)
		b.answer(ctx, cb.ID, "Ошибка. Попробуйте снова.", true)
		return
	}

	b.notifyGranted(ctx, cfg, grant)

	header := fmt.Sprintf("✅ <b>Время обновлено!</b>\n\n➕ Добавлено: %s ч", formatHours(hours))
	b.edit(ctx, cb, b.grantSummary(grant, header), timeKeyboard(targetID, cfg.TimeButtons))
	b.answer(ctx, cb.ID, fmt.Sprintf("✅ Добавлено %s ч", formatHours(hours)), false)
}

func (b *Bot) callbackCustomTime(ctx context.Context, cb *CallbackQuery, rawID string) {
	targetID, err := parseUserID(rawID)
	if err != nil {
		b.answer(ctx, cb.ID, "", false)
		return
	}
	b.sessions.Reset(cb.From.ID)
	session, err := b.sessions.Get(cb.From.ID)
	if err != nil {
		b.logger.Error("session unavailable", "admin_id", cb.From.ID, "error", err)
		return
	}
	if err := session.Machine.Transition(flow.EventPromptHours); err != nil {
		b.logger.Error("custom hours transition failed", "error", err)
		return
	}
	session.Context.TargetID = targetID

	b.send(ctx, cb.Message.Chat.ID, promptCustomHours, nil)
	b.answer(ctx, cb.ID, "", false)
}

func (b *Bot) callbackRemoveUser(ctx context.Context, cb *CallbackQuery, rawID string) {
	targetID, err := parseUserID(rawID)
	if err != nil {
		b.answer(ctx, cb.ID, "Пользователь не найден!", true)
		return
	}
	grant := b.access.Grants().Get(targetID)
	if grant == nil {
		b.answer(ctx, cb.ID, "Пользователь не найден!", true)
		return
	}

	if err := b.access.Revoke(ctx, targetID); err != nil {
		b.logger.Error("manual revocation failed", "target_id", targetID, "error", err)
		b.answer(ctx, cb.ID, "Ошибка при удалении. Попробуйте снова.", true)
		return
	}

	b.edit(ctx, cb, fmt.Sprintf("✅ Пользователь %s удален из базы и канала.\n\nИспользуйте /users для просмотра списка.",
		access.DisplayName(grant.UserID, grant.Username)), nil)
	b.answer(ctx, cb.ID, "Удалено!", false)
}

func (b *Bot) callbackBackToList(ctx context.Context, cb *CallbackQuery) {
	roster := b.roster.Snapshot()
	if len(roster.Active) == 0 && len(roster.Expired) == 0 {
		b.edit(ctx, cb, "📭 Нет пользователей с ограниченным доступом.", nil)
		b.answer(ctx, cb.ID, "", false)
		return
	}
	b.edit(ctx, cb, b.rosterListText(roster), rosterKeyboard(roster))
	b.answer(ctx, cb.ID, "", false)
}

// startPrompt resets the admin's dialog and enters the given prompt state.
func (b *Bot) startPrompt(ctx context.Context, chatID, adminID int64, event, prompt string) {
	b.sessions.Reset(adminID)
	session, err := b.sessions.Get(adminID)
	if err != nil {
		b.logger.Error("session unavailable", "admin_id", adminID, "error", err)
		return
	}
	if err := session.Machine.Transition(event); err != nil {
		b.logger.Error("prompt transition failed", "event", event, "error", err)
		return
	}
	b.send(ctx, chatID, prompt, nil)
}

// endDialog finishes the current prompt and returns the session to idle.
func (b *Bot) endDialog(adminID int64, session *flow.Session) {
	if err := session.Machine.Transition(flow.EventSubmit); err != nil {
		// The machine is wedged; a fresh session is always idle.
		b.sessions.Reset(adminID)
	}
	session.Context.TargetID = 0
	session.Context.VipAction = ""
}

// notifyGranted tells the user about their new or extended grant.
func (b *Bot) notifyGranted(ctx context.Context, cfg *config.Config, grant *access.Grant) {
	if grant.ExpiresAt == nil {
		return
	}
	text := application.Render(cfg.Messages.UserGranted, map[string]string{
		"expires_date": access.ExpiryDate(*grant.ExpiresAt),
		"time_left":    access.RemainingLabel(*grant.ExpiresAt, b.now()),
		"channel_link": cfg.ChannelLink,
	})
	if err := b.api.SendMessage(ctx, grant.UserID, text, nil); err != nil {
		b.logger.Warn("grant notification failed", "user_id", grant.UserID, "error", err)
	}
}

func (b *Bot) grantSummary(grant *access.Grant, header string) string {
	return fmt.Sprintf("%s\n\n👤 %s\n⏰ Доступ до: %s\n⏱ Осталось: %s\n\n📨 Пользователю отправлено уведомление!",
		header,
		access.DisplayName(grant.UserID, grant.Username),
		access.ExpiryDate(*grant.ExpiresAt),
		access.RemainingLabel(*grant.ExpiresAt, b.now()))
}

func (b *Bot) vipListText() string {
	vips := b.roster.Vips()
	text := "<b>👑 VIP пользователи (бессрочный доступ):</b>\n\n"
	if len(vips) == 0 {
		text += "Нет VIP пользователей\n"
	} else {
		for _, vip := range vips {
			text += "• " + vip + "\n"
		}
	}
	text += fmt.Sprintf("\n<b>Всего:</b> %d", len(vips))
	return text
}

func (b *Bot) rosterListText(roster application.Roster) string {
	now := b.now()
	return rosterText(roster, len(b.access.Allowlist().All()), func(g access.Grant) string {
		return access.RemainingLabel(*g.ExpiresAt, now)
	})
}

func (b *Bot) reply(ctx context.Context, msg *Message, text string, keyboard *InlineKeyboardMarkup) {
	b.send(ctx, msg.Chat.ID, text, keyboard)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, keyboard *InlineKeyboardMarkup) {
	if err := b.api.SendMessage(ctx, chatID, text, keyboard); err != nil {
		b.logger.Warn("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(ctx context.Context, cb *CallbackQuery, text string, keyboard *InlineKeyboardMarkup) {
	if err := b.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard); err != nil {
		b.logger.Warn("edit failed", "chat_id", cb.Message.Chat.ID, "error", err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.api.AnswerCallbackQuery(ctx, callbackID, text, alert); err != nil {
		b.logger.Warn("callback answer failed", "error", err)
	}
}

// parseUserID accepts a bare numeric Telegram id.
func parseUserID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not a user id: %q", text)
	}
	return id, nil
}
