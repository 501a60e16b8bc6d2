package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/hifzbot/internal/juz"
	"github.com/example/hifzbot/internal/review"
	"github.com/example/hifzbot/internal/tracker"
	"github.com/example/hifzbot/pkg/models"
)

var prayerNames = map[review.Prayer]string{
	review.Fajr:    "Фаджр",
	review.Dhuhr:   "Зухр",
	review.Asr:     "Аср",
	review.Maghrib: "Магриб",
	review.Isha:    "Иша",
}

const (
	textMenuHint     = "Используйте кнопки меню для навигации."
	textGenericError = "❌ Произошла ошибка. Попробуйте позже."
	textUndoHint     = "↩️ Можно отменить действие."
	textNotUndoable  = "⚠️ Это действие не удастся отменить."
	textStatsFailed  = "⚠️ Статистика за сегодня не сохранилась."
	textPlanRebuilt  = "📅 *План на сегодня будет пересчитан.*"
)

// plural picks the Russian word form for n: one (1 джуз), few (2 джуза), many (5 джузов)
func plural(n int, one, few, many string) string {
	n %= 100
	if n < 0 {
		n = -n
	}
	if n >= 11 && n <= 14 {
		return many
	}
	switch n % 10 {
	case 1:
		return one
	case 2, 3, 4:
		return few
	}
	return many
}

func juzCount(n int) string {
	return fmt.Sprintf("%d %s", n, plural(n, "джуз", "джуза", "джузов"))
}

func joinInts(list []int) string {
	if len(list) == 0 {
		return "нет"
	}
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// mutationFooter appends the standard tail of a reply to an edit
func mutationFooter(b *strings.Builder, undoable bool, statsErr error) {
	b.WriteString("\n\n" + textPlanRebuilt)
	if statsErr != nil {
		b.WriteString("\n" + textStatsFailed)
	}
	if undoable {
		b.WriteString("\n\n" + textUndoHint)
	} else {
		b.WriteString("\n\n" + textNotUndoable)
	}
}

func renderWelcome(firstName string) string {
	return fmt.Sprintf(`👋 *Салам алейкум, %s!*

Я помогу вам систематизировать повторение Корана.

*🎯 Как это работает:*
1. Укажите сколько страниц вы выучили
2. Получайте ежедневный план повторения
3. Добавляйте новые страницы по мере изучения

*📅 Основные кнопки:*
• *План на сегодня* — ваш дневной маршрут
• *Добавить страницу* — +1 страница к вашему прогрессу
• *Дополнительно* — статистика и настройки

_Начните с кнопки "➕ Добавить страницу"!_`, firstName)
}

func renderHelp() string {
	return `*Команды:*
/start — приветствие
/menu — главное меню
/plan — план на сегодня
/undo — отменить последнее действие
/stats — статистика
/reminders on|off — ежедневные напоминания`
}

func renderPlan(out *tracker.PlanOutcome) string {
	var b strings.Builder
	pages := out.User.PagesMemorized

	labels := make([]string, 0, len(out.Plan.Sections))
	for _, s := range out.Plan.Sections {
		switch {
		case s.Priority:
			labels = append(labels, fmt.Sprintf("%d (доп.)", s.Number))
		case juz.IsFullyMemorized(s.Number, pages, false):
			labels = append(labels, fmt.Sprint(s.Number))
		default:
			labels = append(labels, fmt.Sprintf("%d (частично)", s.Number))
		}
	}

	b.WriteString("📅 *ПЛАН НА СЕГОДНЯ*\n\n")
	fmt.Fprintf(&b, "🎯 *Джузы для повторения:*\n%s\n\n", strings.Join(labels, ", "))
	fmt.Fprintf(&b, "📄 *Страницы:* %d\n\n", out.Plan.TotalPages)
	b.WriteString("🕌 *По намазам:*\n")
	for _, slot := range out.Plan.Slots {
		fmt.Fprintf(&b, "• %s: стр. %d–%d\n", prayerNames[slot.Prayer], slot.FromPage, slot.ToPage)
	}
	b.WriteString("\n📊 *Ваш прогресс:*\n")
	fmt.Fprintf(&b, "• Страниц: %d/%d\n", pages, juz.TotalPages)
	fmt.Fprintf(&b, "• Джузов: %d/%d\n", out.Overview.TotalJuz, juz.TotalJuz)
	fmt.Fprintf(&b, "• Джузов в день: %d\n\n", out.User.SectionsPerDay)
	b.WriteString("_План автоматически обновляется каждый день_")
	if out.StatsErr != nil {
		b.WriteString("\n\n" + textStatsFailed)
	}
	return b.String()
}

func renderNothingToReview(ov tracker.Overview) string {
	return fmt.Sprintf(`📅 *План на сегодня*

🎯 *Нет джузов для повторения*

📊 *Ваш прогресс:*
• Выучено страниц: *%d/%d*
• Всего джузов: *%d/%d*

👉 Нажмите "➕ Добавить страницу" чтобы продолжить`,
		ov.PagesMemorized, juz.TotalPages, ov.TotalJuz, juz.TotalJuz)
}

func renderPlanAlreadySent() string {
	return `📅 *Ваш план на сегодня уже готов!*

Если вы добавили новые страницы и хотите обновить план:
1. Нажмите "⚙️ Дополнительно"
2. Выберите "⚙️ Настройки" → "🔄 Обновить всё"`
}

func renderAllMemorized() string {
	return fmt.Sprintf("🎉 *МАШААЛЛАХ!* Вы выучили весь Коран!\n\nВсе %d страниц изучены.", juz.TotalPages)
}

func renderPageAdded(res *tracker.MutationResult) string {
	var b strings.Builder
	ov := tracker.OverviewOf(res.User)
	cur := ov.Current

	if cur.Complete() {
		if cur.Juz == juz.TotalJuz {
			b.WriteString("🎉 *МАШААЛЛАХ!* Вы завершили 30-й джуз и весь Коран!\n\n")
		} else {
			fmt.Fprintf(&b, "🎉 *МАШААЛЛАХ!* Вы завершили джуз %d!\n\n", cur.Juz)
		}
	}

	b.WriteString("✅ *Добавлена 1 страница*\n\n")
	b.WriteString("📊 *Прогресс:*\n")
	fmt.Fprintf(&b, "• Страниц: *%d/%d*\n", ov.PagesMemorized, juz.TotalPages)
	fmt.Fprintf(&b, "• Джузов: *%d/%d*\n\n", ov.TotalJuz, juz.TotalJuz)
	fmt.Fprintf(&b, "🎯 *Джуз %d:* %d/%d стр.", cur.Juz, cur.Pages, cur.Total)
	if cur.Complete() && cur.Juz < juz.TotalJuz {
		fmt.Fprintf(&b, "\n\n📖 *Следующий:* джуз %d", cur.Juz+1)
	}
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderPagesSet(res *tracker.MutationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Обновлено!*\n\nНовое количество страниц: *%d*", res.User.PagesMemorized)
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderSectionsPerDaySet(res *tracker.MutationResult) string {
	var b strings.Builder
	n := res.User.SectionsPerDay
	fmt.Fprintf(&b, "✅ *Обновлено!*\n\nТеперь вы будете повторять *%s* в день.\n\n", juzCount(n))
	fmt.Fprintf(&b, "Это примерно *%d* страниц ежедневно.", review.DailyBudget(n))
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderPriorityAdded(res *tracker.MutationResult) string {
	var b strings.Builder
	added := juz.Diff(res.User.PriorityList, res.Previous.PriorityList)
	fmt.Fprintf(&b, "✅ *Добавлено: %s*\n\n", juzCount(len(added)))
	fmt.Fprintf(&b, "Новые джузы: %s\n\n", joinInts(added))
	fmt.Fprintf(&b, "*Всего джузов:* %s", joinInts(res.User.PriorityList))
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderPriorityRemoved(res *tracker.MutationResult) string {
	var b strings.Builder
	removed := juz.Diff(res.Previous.PriorityList, res.User.PriorityList)
	fmt.Fprintf(&b, "✅ *Удалено: %s*", juzCount(len(removed)))
	if len(res.User.PriorityList) > 0 {
		fmt.Fprintf(&b, "\n\n*Остались:* %s", joinInts(res.User.PriorityList))
	} else {
		b.WriteString("\n\n*Список очищен*")
	}
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderPriorityCleared(res *tracker.MutationResult) string {
	var b strings.Builder
	b.WriteString("✅ *Все дополнительные джузы удалены*")
	mutationFooter(&b, res.Undoable, res.StatsErr)
	return b.String()
}

func renderUndo(u *tracker.UndoOutcome) string {
	var b strings.Builder
	rec := u.Action
	switch rec.ActionType {
	case models.ActionAddPage:
		fmt.Fprintf(&b, "✅ *Отменено добавление страницы*\n\nТекущее: %d стр.", u.User.PagesMemorized)
	case models.ActionSetPageCountManual:
		fmt.Fprintf(&b, "✅ *Отменено изменение страниц*\n\nБыло: %d стр.\nТекущее: %d стр.", rec.NewValue, u.User.PagesMemorized)
	case models.ActionSetSectionsPerDay:
		fmt.Fprintf(&b, "✅ *Отменено изменение джузов в день*\n\nТекущее: %s", juzCount(u.User.SectionsPerDay))
	case models.ActionAddPriority:
		fmt.Fprintf(&b, "✅ *Отменено добавление джузов*\n\nТекущие джузы: %s", joinInts(u.User.PriorityList))
	case models.ActionRemovePriority:
		fmt.Fprintf(&b, "✅ *Отменено удаление джузов*\n\nТекущие джузы: %s", joinInts(u.User.PriorityList))
	case models.ActionClearPriority:
		fmt.Fprintf(&b, "✅ *Отменено очищение списка*\n\nТекущие джузы: %s", joinInts(u.User.PriorityList))
	}
	b.WriteString("\n\n" + textPlanRebuilt)
	if u.StatsErr != nil {
		b.WriteString("\n" + textStatsFailed)
	}
	return b.String()
}

func actionDescription(rec models.ActionRecord) string {
	switch rec.ActionType {
	case models.ActionAddPage:
		return fmt.Sprintf("Добавлена страница: %d → %d", rec.PreviousValue, rec.NewValue)
	case models.ActionSetPageCountManual:
		return fmt.Sprintf("Изменены страницы: %d → %d", rec.PreviousValue, rec.NewValue)
	case models.ActionSetSectionsPerDay:
		return fmt.Sprintf("Джузов в день: %d → %d", rec.PreviousValue, rec.NewValue)
	case models.ActionAddPriority:
		return "Добавлены джузы: " + joinInts(juz.Diff(rec.NewPriorityList, rec.PreviousPriorityList))
	case models.ActionRemovePriority:
		return "Удалены джузы: " + joinInts(juz.Diff(rec.PreviousPriorityList, rec.NewPriorityList))
	case models.ActionClearPriority:
		return "Очищены все доп. джузы"
	}
	return "Неизвестное действие"
}

// timeAgo renders the age of t relative to now in Russian
func timeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "только что"
	case d < time.Hour:
		m := int(d / time.Minute)
		return fmt.Sprintf("%d %s назад", m, plural(m, "минуту", "минуты", "минут"))
	case d < 24*time.Hour:
		h := int(d / time.Hour)
		return fmt.Sprintf("%d %s назад", h, plural(h, "час", "часа", "часов"))
	}
	days := int(d / (24 * time.Hour))
	return fmt.Sprintf("%d %s назад", days, plural(days, "день", "дня", "дней"))
}

func renderHistory(recs []models.ActionRecord, now time.Time) string {
	if len(recs) == 0 {
		return "📋 *История действий пуста*\n\nВы еще не совершали изменений."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Последние действия (%d):*\n\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, actionDescription(rec), timeAgo(now, rec.CreatedAt))
	}
	b.WriteString("\n↩️ Вы можете отменить последнее действие.")
	return b.String()
}

func renderStats(ov tracker.Overview, week *tracker.WeeklySummary) string {
	var b strings.Builder
	b.WriteString("📊 *Ваша статистика*\n\n📈 *Прогресс:*\n")
	fmt.Fprintf(&b, "• Страниц: *%d/%d*\n", ov.PagesMemorized, juz.TotalPages)
	fmt.Fprintf(&b, "• Базовых джузов: *%d*\n", ov.BaseJuz)
	fmt.Fprintf(&b, "• Доп. джузов: *%d*\n", ov.PriorityJuz)
	fmt.Fprintf(&b, "• Всего джузов: *%d/%d*\n", ov.TotalJuz, juz.TotalJuz)
	fmt.Fprintf(&b, "• Джузов в день: *%d*\n\n", ov.SectionsPerDay)
	fmt.Fprintf(&b, "🎯 *Текущий джуз %d:*\n%d/%d стр.", ov.Current.Juz, ov.Current.Pages, ov.Current.Total)
	if week != nil && len(week.Days) > 0 {
		b.WriteString("\n\n📈 *За неделю:*\n")
		fmt.Fprintf(&b, "• Новых страниц: *+%d*\n", week.NewPages)
		fmt.Fprintf(&b, "• Повторено: *%d* стр.", week.PagesRepeated)
	}
	b.WriteString("\n\n_Данные обновляются автоматически_")
	return b.String()
}

func renderWeekly(week *tracker.WeeklySummary) string {
	if len(week.Days) == 0 {
		return "📊 *Пока нет данных за неделю*\n\nДобавьте несколько страниц для отслеживания прогресса."
	}
	var b strings.Builder
	b.WriteString("📈 *Прогресс за 7 дней*\n\n")
	for _, d := range week.Days {
		fmt.Fprintf(&b, "*%s:*\n", shortDate(d.Date))
		fmt.Fprintf(&b, "• Новых: %d стр.\n", d.DailyProgressPages)
		fmt.Fprintf(&b, "• Повторено: %d стр.\n", d.PagesRepeated)
		fmt.Fprintf(&b, "• Всего: %d стр.\n\n", d.PagesMemorized)
	}
	b.WriteString("*Итого за неделю:*\n")
	fmt.Fprintf(&b, "• Новых страниц: *+%d*\n", week.NewPages)
	fmt.Fprintf(&b, "• Повторено: *%d* стр.\n", week.PagesRepeated)
	fmt.Fprintf(&b, "• Среднее в день: *%d* стр.", week.AverageRepeated)
	return b.String()
}

// shortDate turns 2025-03-10 into 10.03
func shortDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02.01")
}

func renderExtraMenu() string {
	return `⚙️ *Дополнительные возможности*

Выберите раздел:

*📊 Статистика* — ваш прогресс и достижения
*⚙️ Настройки* — управление параметрами`
}

func renderStatsMenu() string {
	return `📊 *Статистика и аналитика*

*📊 Моя статистика* — общий прогресс
*📈 Прогресс за неделю* — динамика за 7 дней
*↩️ История действий* — просмотр и отмена изменений
*📤 Экспорт данных* — скачать историю в CSV и Excel`
}

func renderSettings(u models.UserProgress) string {
	return fmt.Sprintf(`⚙️ *Настройки*

Текущие параметры:
• Выучено страниц: *%d*
• Джузов в день: *%d*
• Доп. джузов: *%d*

Выберите параметр для изменения:`, u.PagesMemorized, u.SectionsPerDay, len(u.PriorityList))
}

func renderPagesMenu(u models.UserProgress) string {
	cur := juz.CurrentProgress(u.PagesMemorized)
	return fmt.Sprintf(`📝 *Управление страницами*

Текущий прогресс:
• Выучено: *%d* стр.
• Джуз %d: *%d/%d* стр.

Выберите действие:`, u.PagesMemorized, cur.Juz, cur.Pages, cur.Total)
}

func renderCurrentProgress(u models.UserProgress) string {
	ov := tracker.OverviewOf(u)
	var b strings.Builder
	b.WriteString("📊 *Текущий прогресс*\n\n*Основные показатели:*\n")
	fmt.Fprintf(&b, "• Выучено страниц: *%d/%d*\n", ov.PagesMemorized, juz.TotalPages)
	fmt.Fprintf(&b, "• Всего джузов: *%d/%d*\n", ov.TotalJuz, juz.TotalJuz)
	fmt.Fprintf(&b, "• Джузов в день: *%d*\n\n", ov.SectionsPerDay)
	fmt.Fprintf(&b, "*Текущий джуз %d:*\n%d/%d стр.\n\n", ov.Current.Juz, ov.Current.Pages, ov.Current.Total)
	b.WriteString("*Расчетные данные:*\n")
	fmt.Fprintf(&b, "• Базовых джузов: %d\n", ov.BaseJuz)
	fmt.Fprintf(&b, "• Доп. джузов: %d\n", ov.PriorityJuz)
	if len(u.PriorityList) > 0 {
		fmt.Fprintf(&b, "• Список доп. джузов: %s\n", joinInts(u.PriorityList))
	}
	b.WriteString("\n_Используйте \"✏️ Изменить вручную\" для корректировки_")
	return b.String()
}

func renderAskManualPages(u models.UserProgress) string {
	return fmt.Sprintf(`✏️ *Ручное обновление страниц*

Текущее значение: *%d* стр.

Введите новое количество выученных страниц (от 0 до %d):

_Например: 150_

Или нажмите "⚙️ Назад в настройки" для отмены`, u.PagesMemorized, juz.TotalPages)
}

func renderAskAutoCalc() string {
	return `📈 *Автоматический расчет*

Введите два числа через пробел:
1. сколько джузов выучено полностью
2. сколько страниц выучено в следующем джузе

*Пример:* 5 12
• Полных джузов: 5
• Страниц в 6-м джузе: 12
• Итого: 5×20 + 12 = 112 страниц

Или нажмите "⚙️ Назад в настройки" для отмены`
}

func renderJuzPerDayMenu(u models.UserProgress) string {
	return fmt.Sprintf(`🎯 *Джузов в день*

Текущее значение: *%s* в день

Это примерно *%d* страниц ежедневно.

*Рекомендации:*
• 1 джуз (20 стр.) — стандартный темп
• 2 джуза (40 стр.) — активное повторение
• 3+ джуза — для опытных хафизов

Выберите новое значение:`, juzCount(u.SectionsPerDay), review.DailyBudget(u.SectionsPerDay))
}

func renderPriorityMenu(list []int) string {
	var b strings.Builder
	b.WriteString("📚 *Дополнительные джузы*\n\n")
	if len(list) > 0 {
		fmt.Fprintf(&b, "*Текущие джузы:* %s\n\nВсего: %s\n\n", joinInts(list), juzCount(len(list)))
	} else {
		b.WriteString("*Дополнительных джузов пока нет*\n\n")
	}
	b.WriteString("Дополнительные джузы — это те, которые вы хотите повторять чаще других.\n\nВыберите действие:")
	return b.String()
}

func renderAskAddPriority(list []int) string {
	var b strings.Builder
	b.WriteString("➕ *Добавить джузы*\n\n")
	if len(list) > 0 {
		fmt.Fprintf(&b, "Текущие: %s\n\n", joinInts(list))
	}
	b.WriteString("Введите номера джузов (1-30):\n\n*Примеры:*\n• 5\n• 5, 10, 15\n• 1 2 3\n\n")
	b.WriteString(`_Используйте "⚙️ Назад в настройки" для отмены_`)
	return b.String()
}

func renderAskRemovePriority(list []int) string {
	return fmt.Sprintf(`🗑️ *Удалить джузы*

Текущие джузы: %s

Введите номера джузов для удаления:

*Пример:* 5, 10, 15

_Используйте "⚙️ Назад в настройки" для отмены_`, joinInts(list))
}

func renderPriorityList(list []int) string {
	if len(list) == 0 {
		return "📋 *Список пуст*\n\nДополнительных джузов пока нет."
	}
	var b strings.Builder
	b.WriteString("📋 *Ваши дополнительные джузы*\n\n")
	for _, n := range list {
		fmt.Fprintf(&b, "• Джуз %d\n", n)
	}
	fmt.Fprintf(&b, "\n*Всего:* %s\n\n", juzCount(len(list)))
	b.WriteString("Эти джузы будут включаться в план повторения наравне с выученными.")
	return b.String()
}

func renderResetPlan() string {
	return `🔄 *Все параметры обновлены*

Теперь вы можете получить новый план на сегодня с учетом всех изменений.

Нажмите "📅 План на сегодня" в главном меню.`
}

func renderReminder() string {
	return `🔔 *Время повторения!*

Вы еще не получили план на сегодня.
Нажмите "📅 План на сегодня", чтобы начать.`
}
