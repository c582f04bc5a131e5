package telegram

import (
	"fmt"
	"strconv"

	"github.com/doorman-bot/doorman/internal/infrastructure/config"
	"github.com/doorman-bot/doorman/pkg/application"
	"github.com/doorman-bot/doorman/pkg/domain/access"
)

// Callback data prefixes for the admin inline keyboards.
const (
	cbUserInfo   = "user_info:"
	cbAddTime    = "add_time:"
	cbCustomTime = "custom_time:"
	cbRemoveUser = "remove_user:"
	cbBackToList = "back_to_list"
	cbAddUser    = "add_new_user"
	cbAddVip     = "add_vip"
	cbRemoveVip  = "remove_vip"
)

// timeKeyboard is the per-user action panel: preset durations two per row,
// then custom duration, removal and back.
func timeKeyboard(userID int64, buttons []config.TimeButton) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		row := []InlineKeyboardButton{presetButton(userID, buttons[i])}
		if i+1 < len(buttons) {
			row = append(row, presetButton(userID, buttons[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows,
		[]InlineKeyboardButton{{Text: "⏱ Свое время", CallbackData: fmt.Sprintf("%s%d", cbCustomTime, userID)}},
		[]InlineKeyboardButton{{Text: "🗑 Удалить", CallbackData: fmt.Sprintf("%s%d", cbRemoveUser, userID)}},
		[]InlineKeyboardButton{{Text: "◀️ Назад", CallbackData: cbBackToList}},
	)
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func presetButton(userID int64, b config.TimeButton) InlineKeyboardButton {
	return InlineKeyboardButton{
		Text:         "➕ " + b.Label,
		CallbackData: fmt.Sprintf("%s%d:%s", cbAddTime, userID, formatHours(b.Hours)),
	}
}

// rosterKeyboard lists every known user as a button plus the add action.
func rosterKeyboard(roster application.Roster) *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for _, grant := range append(roster.Active, roster.Expired...) {
		label := grant.Username
		if label == "" {
			label = strconv.FormatInt(grant.UserID, 10)
		}
		rows = append(rows, []InlineKeyboardButton{{
			Text:         "👤 " + label,
			CallbackData: fmt.Sprintf("%s%d", cbUserInfo, grant.UserID),
		}})
	}
	rows = append(rows, []InlineKeyboardButton{{
		Text:         "➕ Добавить пользователя",
		CallbackData: cbAddUser,
	}})
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// vipKeyboard offers the two VIP mutations.
func vipKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "➕ Добавить VIP", CallbackData: cbAddVip}},
		{{Text: "➖ Удалить VIP", CallbackData: cbRemoveVip}},
	}}
}

// formatHours renders hours for callback data without a trailing ".0".
func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

// rosterText renders the /users listing: active sorted soonest first, then
// expired, then the VIP count.
func rosterText(roster application.Roster, vipCount int, remaining func(access.Grant) string) string {
	text := "<b>👥 Пользователи с доступом:</b>\n\n"
	if len(roster.Active) > 0 {
		text += "<b>✅ Активные:</b>\n"
		for _, grant := range roster.Active {
			text += fmt.Sprintf("• %s\n  ⏰ Осталось: %s\n\n",
				access.DisplayName(grant.UserID, grant.Username), remaining(grant))
		}
	}
	if len(roster.Expired) > 0 {
		text += "<b>⏰ Истекшие:</b>\n"
		for _, grant := range roster.Expired {
			text += fmt.Sprintf("• %s\n  ❌ Доступ истек\n\n",
				access.DisplayName(grant.UserID, grant.Username))
		}
	}
	text += fmt.Sprintf("\n<b>👑 VIP пользователей:</b> %d", vipCount)
	return text
}
