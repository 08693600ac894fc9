package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsdesk_backend/internal/agents"
	"opsdesk_backend/internal/command"
	"opsdesk_backend/internal/dispatch"
	"opsdesk_backend/internal/events"
	apphttp "opsdesk_backend/internal/http"
	"opsdesk_backend/internal/http/router"
	"opsdesk_backend/internal/http/sse"
	"opsdesk_backend/internal/interpreter"
	"opsdesk_backend/internal/notify"
	"opsdesk_backend/internal/ops"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/view"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
	"opsdesk_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	storeClient := store.NewClient(cfg, log)
	if err := withRetry(ctx, log, "task store connection", 5, 2*time.Second, func() error {
		return storeClient.Ping(ctx)
	}); err != nil {
		log.Warn("task store unreachable at startup, continuing", "error", err)
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	notifier := notify.NewClient(cfg, log)
	if notifier == nil {
		log.Warn("NOTIFY_GATEWAY_URL not configured; staff notifications disabled")
	}

	var interp interpreter.Interpreter
	gemini, err := interpreter.NewGemini(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize interpreter", "error", err)
		panic("failed to initialize interpreter: " + err.Error())
	}
	if gemini != nil {
		interp = gemini
		log.Info("interpreter initialized", "model", cfg.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not configured; commands rely on local routing only")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	resolver := staff.NewResolver(storeClient, cfg.GetStaffCacheTTL(), log)
	dispatchSvc := dispatch.New(storeClient, eventBus, notifier, log)

	registry := agents.NewRegistry()
	registry.Register(agents.NewOperationsExecutor(resolver, dispatchSvc, log))
	agents.RegisterOffloaded(registry)

	commandRouter := command.NewRouter(registry, interp, storeClient, resolver, eventBus, cfg.DefaultPropertyID, log)

	views := view.NewManager(storeClient, storeClient, cfg, eventBus, log)
	viewsDone := make(chan error, 1)
	go func() {
		viewsDone <- views.Start(ctx)
	}()

	stream := sse.New(log)
	stream.BindBus(eventBus)
	defer stream.Close()

	opsModule := ops.NewModule(commandRouter, views, storeClient, eventBus, stream, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   storeClient,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			opsModule,
		},
	}

	engine := router.New(app)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		<-viewsDone
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
