package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/hifzbot/internal/bot"
	"github.com/example/hifzbot/internal/config"
	"github.com/example/hifzbot/internal/database"
	"github.com/example/hifzbot/internal/scheduler"
	"github.com/example/hifzbot/internal/tracker"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Channel for OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database
	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	users := database.NewUserRepository(db)
	svc := tracker.New(
		database.NewUserProgressRepository(db),
		database.NewDailyStatRepository(db),
		database.NewActionRepository(db),
		log.New(os.Stderr, "tracker: ", log.LstdFlags),
	)

	b, err := bot.New(cfg.TelegramToken, svc, users, bot.Options{
		HistoryLimit: cfg.HistoryLimit,
		Location:     cfg.Location(),
		Debug:        cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var reminders *scheduler.Scheduler
	if cfg.RemindersEnabled {
		reminders = scheduler.New(users, b, cfg.Location(), cfg.ReminderHour)
		if err := reminders.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// Closed once the bot has shut down
	done := make(chan struct{})

	// Signal handling goroutine
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()

		if reminders != nil {
			reminders.Stop()
		}

		// Give in-flight updates time to finish
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil {
		log.Printf("Bot error: %v", err)
		cancel()
		return
	}

	<-done
	log.Println("Bot stopped successfully")
}
