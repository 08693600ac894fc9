package scheduler

import (
	"context"
	"fmt"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// TaskResetter bulk-reverts completed tasks. Implemented by the store client.
type TaskResetter interface {
	ResetDoneTasks(ctx context.Context) (int, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	resetter TaskResetter
	bus      events.Bus
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, resetter TaskResetter, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		resetter: resetter,
		bus:      bus,
		log:      log,
	}

	mux.HandleFunc(TaskResetDoneTasks, w.handleResetDoneTasks)
	mux.HandleFunc(TaskRefreshSweep, w.handleRefreshSweep)

	return w, nil
}

func (w *Worker) handleResetDoneTasks(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseResetDoneTasksPayload(task)
	if err != nil {
		return err
	}

	count, err := w.resetter.ResetDoneTasks(ctx)
	if err != nil {
		return err
	}

	w.log.Info("completed tasks reset", "count", count, "reason", payload.Reason)

	// The bus reaches in-process subscribers only. The API process's views
	// see the reset on their next poll tick.
	if w.bus == nil {
		return nil
	}
	return w.bus.PublishSync(ctx, events.RefreshRequested{
		BaseEvent: events.NewBaseEvent(),
		Reason:    "scheduled reset",
	})
}

func (w *Worker) handleRefreshSweep(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	if _, err := ParseRefreshSweepPayload(task); err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.RefreshRequested{
		BaseEvent: events.NewBaseEvent(),
		Reason:    "refresh sweep",
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
