package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button texts. Incoming messages are matched against them verbatim.
const (
	btnPlan    = "📅 План на сегодня"
	btnAddPage = "➕ Добавить страницу"
	btnUndo    = "↩️ Отменить"
	btnExtra   = "⚙️ Дополнительно"
	btnHome    = "🏠 На главную"

	btnStats    = "📊 Статистика"
	btnSettings = "⚙️ Настройки"

	btnMyStats   = "📊 Моя статистика"
	btnWeekly    = "📈 Прогресс за неделю"
	btnHistory   = "↩️ История действий"
	btnExport    = "📤 Экспорт данных"
	btnUndoLast  = "↩️ Отменить последнее"
	btnHistory2  = "📋 История действий"
	btnBackStats = "⚙️ Назад в статистику"

	btnPages        = "📝 Мои страницы"
	btnJuzPerDay    = "🎯 Джузы в день"
	btnPriority     = "📚 Доп. джузы"
	btnResetPlan    = "🔄 Обновить всё"
	btnBackSettings = "⚙️ Назад в настройки"

	btnCurrentProgress = "📊 Текущий прогресс"
	btnManualPages     = "✏️ Изменить вручную"
	btnAutoCalc        = "📈 Автоматический расчёт"

	btnAddJuz    = "➕ Добавить джуз"
	btnRemoveJuz = "🗑️ Удалить джуз"
	btnListJuz   = "📋 Список джузов"
	btnClearJuz  = "❌ Очистить всё"
)

// createKeyboard creates a reply keyboard from rows of button texts
func createKeyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	var keyboard [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		var keyboardRow []tgbotapi.KeyboardButton
		for _, text := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewKeyboardButton(text))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewReplyKeyboard(keyboard...)
}

var (
	mainKeyboard = createKeyboard(
		[]string{btnPlan},
		[]string{btnAddPage},
		[]string{btnUndo, btnExtra},
	)
	extraKeyboard = createKeyboard(
		[]string{btnStats, btnSettings},
		[]string{btnHome},
	)
	statsKeyboard = createKeyboard(
		[]string{btnMyStats},
		[]string{btnWeekly},
		[]string{btnHistory, btnExport},
		[]string{btnHome},
	)
	historyKeyboard = createKeyboard(
		[]string{btnUndoLast},
		[]string{btnHistory2},
		[]string{btnBackStats},
	)
	settingsKeyboard = createKeyboard(
		[]string{btnPages, btnJuzPerDay},
		[]string{btnPriority, btnResetPlan},
		[]string{btnHome},
	)
	priorityKeyboard = createKeyboard(
		[]string{btnAddJuz, btnRemoveJuz},
		[]string{btnListJuz, btnClearJuz},
		[]string{btnBackSettings},
	)
	juzPerDayKeyboard = createKeyboard(
		[]string{"1", "2", "3"},
		[]string{"4", "5"},
		[]string{btnBackSettings},
	)
	pagesKeyboard = createKeyboard(
		[]string{btnCurrentProgress, btnManualPages},
		[]string{btnAutoCalc, btnBackSettings},
	)
	cancelKeyboard = createKeyboard(
		[]string{btnBackSettings},
	)
)
