package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/hifzbot/pkg/models"
	"github.com/go-co-op/gocron"
)

// reminderTimeout bounds one reminder run
const reminderTimeout = 2 * time.Minute

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     Recipients
	loc       *time.Location
	hour      int
	now       func() time.Time
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, userID int64) error
}

// Recipients lists the users who still have to request today's plan
type Recipients interface {
	ListAwaitingPlan(ctx context.Context, date string) ([]models.User, error)
}

// New creates a scheduler that reminds users at hour:00 in loc
func New(users Recipients, notifier Notifier, loc *time.Location, hour int) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		notifier:  notifier,
		users:     users,
		loc:       loc,
		hour:      hour,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.remind); err != nil {
		return fmt.Errorf("failed to schedule reminders at %s: %w", at, err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	log.Printf("Daily reminders scheduled at %s %s", at, s.loc)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) remind() {
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	sent, err := s.RemindNow(ctx)
	if err != nil {
		log.Printf("Error sending reminders: %v", err)
		return
	}
	log.Printf("Sent %d reminders", sent)
}

// RemindNow sends a reminder to every user without a plan for today and
// returns how many were delivered. A failed send is logged and skipped.
func (s *Scheduler) RemindNow(ctx context.Context) (int, error) {
	today := s.now().In(s.loc).Format(models.DateLayout)
	users, err := s.users.ListAwaitingPlan(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to get users for reminders: %w", err)
	}

	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := s.notifier.SendReminder(ctx, user.ID); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
