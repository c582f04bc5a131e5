package application

import "strings"

// Texts holds every user-facing message template. Placeholders use the
// {name} form and are substituted with Render. The zero value is unusable;
// start from DefaultTexts and overlay configured overrides.
type Texts struct {
	Start         string `yaml:"start"`
	UserStart     string `yaml:"user_start"`
	Help          string `yaml:"help"`
	UserKick      string `yaml:"user_kick"`
	AdminKick     string `yaml:"admin_kick"`
	UserWarning   string `yaml:"user_warning"`
	AdminWarning  string `yaml:"admin_warning"`
	UserGranted   string `yaml:"user_granted"`
	AdminApproved string `yaml:"admin_approved"`
	AdminVip      string `yaml:"admin_vip_approved"`
	AdminPending  string `yaml:"admin_pending"`
	StatusActive  string `yaml:"status_active"`
	StatusNone    string `yaml:"status_inactive"`
	StatusVip     string `yaml:"status_vip"`
}

// DefaultTexts mirrors the stock message set of the original deployment.
func DefaultTexts() Texts {
	return Texts{
		Start: "👋 Привет, админ!\n\n" +
			"Команды:\n" +
			"/users — список пользователей\n" +
			"/add — добавить пользователя\n" +
			"/vip — VIP пользователи\n" +
			"/help — справка",
		UserStart: "👋 Привет! Это бот доступа к закрытому каналу.\n" +
			"Проверить свою подписку: /status",
		Help: "📖 <b>Справка</b>\n\n" +
			"/users — список пользователей с доступом\n" +
			"/add — выдать доступ\n" +
			"/vip — управление VIP\n" +
			"/cancel — отменить текущую операцию\n\n" +
			"⚠️ Предупреждение об истечении приходит за {warning_hours} ч.",
		UserKick: "⏰ Ваш доступ к каналу истёк.\n" +
			"Для продления напишите: {contact}",
		AdminKick: "✅ Пользователь {display} (ID: {id}) удалён из канала.\n" +
			"Время доступа истекло.",
		UserWarning: "⚠️ Ваш доступ истекает через {time_left}.\n" +
			"Для продления напишите: {contact}",
		AdminWarning: "⚠️ Скоро истечёт доступ:\n" +
			"👤 {display} (ID: {id})\n" +
			"⏰ Осталось: {time_left}",
		UserGranted: "✅ Вам предоставлен доступ к каналу!\n\n" +
			"⏰ Доступ до: {expires_date}\n" +
			"⏱ Срок: {time_left}\n\n" +
			"🔗 Ссылка: {channel_link}",
		AdminApproved: "✅ <b>Заявка одобрена</b>\n\n" +
			"👤 {display}\n" +
			"⏰ Доступ до: {expires_date}\n" +
			"⏱ Осталось: {time_left}",
		AdminVip: "✅ <b>VIP одобрен автоматически</b>\n\n" +
			"👤 {display} (ID: {id})\n" +
			"👑 VIP статус",
		AdminPending: "❌ <b>Заявка без доступа</b>\n\n" +
			"👤 {display}\n\n" +
			"ℹ️ Заявка висит. Добавьте доступ командой:\n/add {id}",
		StatusActive: "✅ <b>Подписка активна</b>\n\n" +
			"⏰ Доступ до: {expires_date}\n" +
			"⏱ Осталось: {time_left}\n\n" +
			"Для продления напишите: {contact}",
		StatusNone: "❌ <b>Подписка неактивна</b>\n\n" +
			"Для получения доступа напишите: {contact}",
		StatusVip: "👑 <b>У вас VIP доступ</b>\n\nБез ограничений по времени.",
	}
}

// Render substitutes {name} placeholders. Unknown placeholders are left
// untouched so a template typo stays visible instead of vanishing.
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
