// Package bot is the Telegram front end: reply-keyboard menus, per-user
// input prompts and rendering of tracker results in Russian.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/hifzbot/internal/tracker"
	"github.com/example/hifzbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handlerTimeout bounds the processing of a single update
const handlerTimeout = 30 * time.Second

// sender is the part of *tgbotapi.BotAPI the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Service is the progress tracker the bot drives. *tracker.Tracker implements it.
type Service interface {
	GetUser(ctx context.Context, userID int64) (*models.UserProgress, error)
	ComputeTodayPlan(ctx context.Context, userID int64, today time.Time) (*tracker.PlanOutcome, error)
	CommitPlan(ctx context.Context, out *tracker.PlanOutcome) error
	Apply(ctx context.Context, userID int64, m tracker.Mutation, today time.Time) (*tracker.MutationResult, error)
	UndoLast(ctx context.Context, userID int64, today time.Time) (*tracker.UndoOutcome, error)
	ResetPlan(ctx context.Context, userID int64) error
	RecordPlanMessage(ctx context.Context, userID int64, messageID int) (int, error)
	History(ctx context.Context, userID int64, limit int) ([]models.ActionRecord, error)
	AllStats(ctx context.Context, userID int64) ([]models.DailyStat, error)
	WeeklySummary(ctx context.Context, userID int64, today time.Time) (*tracker.WeeklySummary, error)
}

// Profiles stores Telegram profile data and reminder preferences
type Profiles interface {
	UpsertProfile(ctx context.Context, user *models.User) error
	SetReminders(ctx context.Context, id int64, enabled bool) error
}

// inputState is what the bot expects from the user's next plain message
type inputState int

const (
	stateNone inputState = iota
	stateManualPages
	stateAutoCalc
	stateAddJuz
	stateRemoveJuz
)

// Bot represents the Telegram bot application
type Bot struct {
	api     *tgbotapi.BotAPI
	out     sender
	tracker Service
	users   Profiles
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	states map[int64]inputState

	wg sync.WaitGroup
}

// New connects to the Telegram API with token and creates the bot
func New(token string, svc Service, users Profiles, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = opts.Debug
	log.Printf("Authorized on account %s", api.Self.UserName)

	b := newBot(api, svc, users, opts)
	b.api = api
	return b, nil
}

func newBot(out sender, svc Service, users Profiles, opts Options) *Bot {
	opts = opts.withDefaults()
	return &Bot{
		out:     out,
		tracker: svc,
		users:   users,
		opts:    opts,
		now:     func() time.Time { return time.Now().In(opts.Location) },
		states:  make(map[int64]inputState),
	}
}

// Start receives updates until ctx is cancelled. Each update is handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot: Telegram API client is not initialized")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
				defer cancel()
				b.handleUpdate(hctx, update)
			}()
		}
	}
}

// Stop waits for in-flight updates to finish or for ctx to expire
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("Bot stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop bot: %w", ctx.Err())
	}
}

// SendReminder tells the user that today's plan has not been requested yet.
// Private chats share their id with the user.
func (b *Bot) SendReminder(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.reply(userID, renderReminder(), mainKeyboard)
	return err
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}
	b.rememberProfile(ctx, message.From)

	if message.IsCommand() {
		b.setState(message.From.ID, stateNone)
		b.handleCommand(ctx, message)
		return
	}
	b.handleText(ctx, message)
}

func (b *Bot) rememberProfile(ctx context.Context, from *tgbotapi.User) {
	user := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
	if err := b.users.UpsertProfile(ctx, user); err != nil {
		log.Printf("failed to save profile of user %d: %v", from.ID, err)
	}
}

func (b *Bot) state(userID int64) inputState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, s inputState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == stateNone {
		delete(b.states, userID)
		return
	}
	b.states[userID] = s
}

// reply sends a Markdown message with the given reply keyboard
func (b *Bot) reply(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	sent, err := b.out.Send(msg)
	if err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
	return sent, err
}

// replyError maps a tracker error to a user-facing message
func (b *Bot) replyError(chatID int64, err error, keyboard tgbotapi.ReplyKeyboardMarkup) {
	var text string
	switch {
	case errors.Is(err, tracker.ErrAllPagesMemorized):
		text = renderAllMemorized()
	case errors.Is(err, tracker.ErrNoActionToUndo):
		text = "❌ *Нет действий для отмены*"
	case errors.Is(err, tracker.ErrNoChange):
		text = "ℹ️ Ничего не изменилось."
	case errors.Is(err, tracker.ErrInvalidInput):
		text = "❌ Неверное значение."
	default:
		log.Printf("request in chat %d failed: %v", chatID, err)
		text = textGenericError
	}
	b.reply(chatID, text, keyboard)
}
