package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/scheduler"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
)

// resetHour is the UTC hour of the daily maintenance reset, the shift
// change when completed work rolls back to pending for the next crew.
const resetHour = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeClient := store.NewClient(cfg, log)
	eventBus := events.NewInMemoryBus(log)

	worker, err := scheduler.NewWorker(cfg, storeClient, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() {
		_ = client.Close()
	}()

	go enqueueLoop(ctx, client, cfg, log)

	worker.Run(ctx)
	log.Info("scheduler stopped")
}

// enqueueLoop schedules the daily reset and the periodic view refresh sweep.
func enqueueLoop(ctx context.Context, client *scheduler.Client, cfg config.SchedulerConfig, log *logger.Logger) {
	sweepInterval := cfg.GetRefreshSweepInterval()
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	resetAt := nextResetTime(time.Now().UTC())
	resetTimer := time.NewTimer(time.Until(resetAt))
	defer resetTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if err := client.EnqueueRefreshSweep(ctx); err != nil {
				log.Warn("failed to enqueue refresh sweep", "error", err)
			}
		case <-resetTimer.C:
			if err := client.ScheduleReset(ctx, "daily shift change", time.Now()); err != nil {
				log.Warn("failed to enqueue task reset", "error", err)
			}
			resetAt = nextResetTime(time.Now().UTC())
			resetTimer.Reset(time.Until(resetAt))
		}
	}
}

func nextResetTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), resetHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
