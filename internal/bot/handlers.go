package bot

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"

	"github.com/example/hifzbot/internal/excel"
	"github.com/example/hifzbot/internal/tracker"
	"github.com/example/hifzbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID, userID := message.Chat.ID, message.From.ID
	switch message.Command() {
	case "start":
		name := tgbotapi.EscapeText(tgbotapi.ModeMarkdown, message.From.FirstName)
		b.reply(chatID, renderWelcome(name), mainKeyboard)
	case "menu":
		b.reply(chatID, textMenuHint, mainKeyboard)
	case "plan":
		b.handlePlan(ctx, chatID, userID)
	case "undo":
		b.handleUndo(ctx, chatID, userID, mainKeyboard)
	case "stats":
		b.handleMyStats(ctx, chatID, userID)
	case "reminders":
		b.handleReminders(ctx, chatID, userID, message.CommandArguments())
	case "help":
		b.reply(chatID, renderHelp(), mainKeyboard)
	default:
		b.reply(chatID, "Неизвестная команда. /help — список команд.", mainKeyboard)
	}
}

// handleText routes a plain message: menu buttons first, then a pending
// prompt, then the quota buttons "1".."5"
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID, userID := message.Chat.ID, message.From.ID
	text := strings.TrimSpace(message.Text)

	if b.handleButton(ctx, chatID, userID, text) {
		return
	}
	if s := b.state(userID); s != stateNone {
		b.handleInput(ctx, chatID, userID, s, text)
		return
	}
	if n, ok := parseSectionsPerDay(text); ok {
		b.applyMutation(ctx, chatID, userID, tracker.SetSectionsPerDay(n), settingsKeyboard, renderSectionsPerDaySet)
		return
	}
	b.reply(chatID, textMenuHint, mainKeyboard)
}

// handleButton reports whether text was a menu button. Every button drops a pending prompt.
func (b *Bot) handleButton(ctx context.Context, chatID, userID int64, text string) bool {
	switch text {
	case btnPlan, btnAddPage, btnUndo, btnExtra, btnHome,
		btnStats, btnSettings, btnMyStats, btnWeekly, btnHistory, btnExport,
		btnUndoLast, btnHistory2, btnBackStats,
		btnPages, btnJuzPerDay, btnPriority, btnResetPlan, btnBackSettings,
		btnCurrentProgress, btnManualPages, btnAutoCalc,
		btnAddJuz, btnRemoveJuz, btnListJuz, btnClearJuz:
		b.setState(userID, stateNone)
	default:
		return false
	}

	switch text {
	case btnPlan:
		b.handlePlan(ctx, chatID, userID)
	case btnAddPage:
		b.applyMutation(ctx, chatID, userID, tracker.AddPage(), mainKeyboard, renderPageAdded)
	case btnUndo:
		b.handleUndo(ctx, chatID, userID, mainKeyboard)
	case btnExtra:
		b.reply(chatID, renderExtraMenu(), extraKeyboard)
	case btnHome:
		b.reply(chatID, "🏠 *Главное меню*", mainKeyboard)

	case btnStats, btnBackStats:
		b.reply(chatID, renderStatsMenu(), statsKeyboard)
	case btnMyStats:
		b.handleMyStats(ctx, chatID, userID)
	case btnWeekly:
		b.handleWeekly(ctx, chatID, userID)
	case btnHistory, btnHistory2:
		b.handleHistory(ctx, chatID, userID)
	case btnUndoLast:
		b.handleUndo(ctx, chatID, userID, historyKeyboard)
	case btnExport:
		b.handleExport(ctx, chatID, userID)

	case btnSettings, btnBackSettings:
		b.withUser(ctx, chatID, userID, settingsKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderSettings(u), settingsKeyboard)
		})
	case btnPages:
		b.withUser(ctx, chatID, userID, settingsKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderPagesMenu(u), pagesKeyboard)
		})
	case btnCurrentProgress:
		b.withUser(ctx, chatID, userID, pagesKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderCurrentProgress(u), pagesKeyboard)
		})
	case btnManualPages:
		b.withUser(ctx, chatID, userID, pagesKeyboard, func(u models.UserProgress) {
			b.setState(userID, stateManualPages)
			b.reply(chatID, renderAskManualPages(u), cancelKeyboard)
		})
	case btnAutoCalc:
		b.setState(userID, stateAutoCalc)
		b.reply(chatID, renderAskAutoCalc(), cancelKeyboard)
	case btnJuzPerDay:
		b.withUser(ctx, chatID, userID, settingsKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderJuzPerDayMenu(u), juzPerDayKeyboard)
		})
	case btnResetPlan:
		if err := b.tracker.ResetPlan(ctx, userID); err != nil {
			b.replyError(chatID, err, settingsKeyboard)
			return true
		}
		b.reply(chatID, renderResetPlan(), mainKeyboard)

	case btnPriority:
		b.withUser(ctx, chatID, userID, settingsKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderPriorityMenu(u.PriorityList), priorityKeyboard)
		})
	case btnAddJuz:
		b.withUser(ctx, chatID, userID, priorityKeyboard, func(u models.UserProgress) {
			b.setState(userID, stateAddJuz)
			b.reply(chatID, renderAskAddPriority(u.PriorityList), cancelKeyboard)
		})
	case btnRemoveJuz:
		b.withUser(ctx, chatID, userID, priorityKeyboard, func(u models.UserProgress) {
			if len(u.PriorityList) == 0 {
				b.reply(chatID, "❌ *Нет джузов для удаления*", priorityKeyboard)
				return
			}
			b.setState(userID, stateRemoveJuz)
			b.reply(chatID, renderAskRemovePriority(u.PriorityList), cancelKeyboard)
		})
	case btnListJuz:
		b.withUser(ctx, chatID, userID, priorityKeyboard, func(u models.UserProgress) {
			b.reply(chatID, renderPriorityList(u.PriorityList), priorityKeyboard)
		})
	case btnClearJuz:
		b.applyMutation(ctx, chatID, userID, tracker.ClearPriority(), priorityKeyboard, renderPriorityCleared)
	}
	return true
}

// handleInput consumes the answer to a pending prompt. A malformed answer
// keeps the prompt open.
func (b *Bot) handleInput(ctx context.Context, chatID, userID int64, s inputState, text string) {
	var (
		m      tracker.Mutation
		render func(*tracker.MutationResult) string
		kb     = settingsKeyboard
	)

	switch s {
	case stateManualPages, stateAutoCalc:
		parse, hint := parsePageCount, "❌ Введите число от 0 до 604"
		if s == stateAutoCalc {
			parse, hint = parseAutoCalc, "❌ Введите два числа: полные джузы и страницы следующего джуза. Например: 5 12"
		}
		pages, err := parse(text)
		if err != nil {
			b.reply(chatID, hint, cancelKeyboard)
			return
		}
		m, render = tracker.SetPages(pages), renderPagesSet
	case stateAddJuz, stateRemoveJuz:
		list, err := parseJuzList(text)
		if err != nil {
			b.reply(chatID, "❌ Номера джузов должны быть от 1 до 30. Например: 5, 10, 15", cancelKeyboard)
			return
		}
		m, render, kb = tracker.AddPriority(list...), renderPriorityAdded, priorityKeyboard
		if s == stateRemoveJuz {
			m, render = tracker.RemovePriority(list...), renderPriorityRemoved
		}
	}

	b.setState(userID, stateNone)
	res, err := b.tracker.Apply(ctx, userID, m, b.now())
	if errors.Is(err, tracker.ErrNoChange) {
		b.reply(chatID, noChangeText(s), kb)
		return
	}
	if err != nil {
		b.replyError(chatID, err, kb)
		return
	}
	b.reply(chatID, render(res), kb)
}

func noChangeText(s inputState) string {
	switch s {
	case stateAddJuz:
		return "ℹ️ Эти джузы уже есть в списке."
	case stateRemoveJuz:
		return "ℹ️ Этих джузов нет в списке."
	}
	return "ℹ️ Количество страниц не изменилось."
}

func (b *Bot) withUser(ctx context.Context, chatID, userID int64, keyboard tgbotapi.ReplyKeyboardMarkup, fn func(models.UserProgress)) {
	user, err := b.tracker.GetUser(ctx, userID)
	if err != nil {
		b.replyError(chatID, err, keyboard)
		return
	}
	fn(*user)
}

func (b *Bot) applyMutation(ctx context.Context, chatID, userID int64, m tracker.Mutation, keyboard tgbotapi.ReplyKeyboardMarkup, render func(*tracker.MutationResult) string) {
	res, err := b.tracker.Apply(ctx, userID, m, b.now())
	if err != nil {
		b.replyError(chatID, err, keyboard)
		return
	}
	b.reply(chatID, render(res), keyboard)
}

// handlePlan sends today's plan. The plan is committed only after it was
// delivered, so a failed send leaves the rotation where it was.
func (b *Bot) handlePlan(ctx context.Context, chatID, userID int64) {
	out, err := b.tracker.ComputeTodayPlan(ctx, userID, b.now())
	if err != nil {
		b.replyError(chatID, err, mainKeyboard)
		return
	}

	var text string
	switch out.Status {
	case tracker.PlanAlreadySent:
		b.reply(chatID, renderPlanAlreadySent(), mainKeyboard)
		return
	case tracker.PlanNothingToReview:
		text = renderNothingToReview(out.Overview)
	case tracker.PlanReady:
		text = renderPlan(out)
	}

	sent, err := b.reply(chatID, text, mainKeyboard)
	if err != nil {
		return
	}
	if err := b.tracker.CommitPlan(ctx, out); err != nil {
		log.Printf("failed to commit plan for user %d: %v", userID, err)
	}
	if out.Status == tracker.PlanReady {
		b.pinPlan(ctx, chatID, userID, sent.MessageID)
	}
}

// pinPlan pins the new plan message and unpins the one it replaces. Failures are only logged.
func (b *Bot) pinPlan(ctx context.Context, chatID, userID int64, messageID int) {
	prev, err := b.tracker.RecordPlanMessage(ctx, userID, messageID)
	if err != nil {
		log.Printf("failed to remember plan message for user %d: %v", userID, err)
	} else if prev != 0 && prev != messageID {
		if _, err := b.out.Request(tgbotapi.UnpinChatMessageConfig{ChatID: chatID, MessageID: prev}); err != nil {
			log.Printf("failed to unpin message %d in chat %d: %v", prev, chatID, err)
		}
	}

	pin := tgbotapi.PinChatMessageConfig{ChatID: chatID, MessageID: messageID, DisableNotification: true}
	if _, err := b.out.Request(pin); err != nil {
		log.Printf("failed to pin message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) handleUndo(ctx context.Context, chatID, userID int64, keyboard tgbotapi.ReplyKeyboardMarkup) {
	out, err := b.tracker.UndoLast(ctx, userID, b.now())
	if err != nil {
		b.replyError(chatID, err, keyboard)
		return
	}
	b.reply(chatID, renderUndo(out), keyboard)
}

func (b *Bot) handleMyStats(ctx context.Context, chatID, userID int64) {
	user, err := b.tracker.GetUser(ctx, userID)
	if err != nil {
		b.replyError(chatID, err, statsKeyboard)
		return
	}
	week, err := b.tracker.WeeklySummary(ctx, userID, b.now())
	if err != nil {
		log.Printf("failed to get weekly summary for user %d: %v", userID, err)
	}
	b.reply(chatID, renderStats(tracker.OverviewOf(*user), week), statsKeyboard)
}

func (b *Bot) handleWeekly(ctx context.Context, chatID, userID int64) {
	week, err := b.tracker.WeeklySummary(ctx, userID, b.now())
	if err != nil {
		b.replyError(chatID, err, statsKeyboard)
		return
	}
	b.reply(chatID, renderWeekly(week), statsKeyboard)
}

func (b *Bot) handleHistory(ctx context.Context, chatID, userID int64) {
	recs, err := b.tracker.History(ctx, userID, b.opts.HistoryLimit)
	if err != nil {
		b.replyError(chatID, err, historyKeyboard)
		return
	}
	b.reply(chatID, renderHistory(recs, b.now()), historyKeyboard)
}

// handleExport sends all daily statistics as a CSV and an Excel document
func (b *Bot) handleExport(ctx context.Context, chatID, userID int64) {
	stats, err := b.tracker.AllStats(ctx, userID)
	if err != nil {
		b.replyError(chatID, err, statsKeyboard)
		return
	}
	if len(stats) == 0 {
		b.reply(chatID, "📊 *Нет данных для экспорта*\n\nСтатистика появится после первого плана.", statsKeyboard)
		return
	}

	today := b.now()
	var csvBuf bytes.Buffer
	if err := excel.WriteCSV(&csvBuf, stats); err != nil {
		b.replyError(chatID, err, statsKeyboard)
		return
	}
	xlsx, err := excel.WriteXLSX(stats)
	if err != nil {
		b.replyError(chatID, err, statsKeyboard)
		return
	}

	docs := []tgbotapi.FileBytes{
		{Name: excel.FileName(today, "csv"), Bytes: csvBuf.Bytes()},
		{Name: excel.FileName(today, "xlsx"), Bytes: xlsx.Bytes()},
	}
	for _, file := range docs {
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = "📤 Статистика повторения"
		if _, err := b.out.Send(doc); err != nil {
			log.Printf("failed to send %s to chat %d: %v", file.Name, chatID, err)
			b.reply(chatID, textGenericError, statsKeyboard)
			return
		}
	}
	b.reply(chatID, "✅ *Экспорт готов*", statsKeyboard)
}

func (b *Bot) handleReminders(ctx context.Context, chatID, userID int64, args string) {
	var enabled bool
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		b.reply(chatID, "Использование: /reminders on или /reminders off", mainKeyboard)
		return
	}
	if err := b.users.SetReminders(ctx, userID, enabled); err != nil {
		b.replyError(chatID, err, mainKeyboard)
		return
	}
	text := "🔕 Напоминания выключены."
	if enabled {
		text = "🔔 Напоминания включены."
	}
	b.reply(chatID, text, mainKeyboard)
}
