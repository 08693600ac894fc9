package view

import (
	"context"
	"sync"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Manager owns the long-running views: one board, one productivity report
// and a lazily created queue per staff member.
type Manager struct {
	lister  TaskLister
	patcher StatusPatcher
	cfg     config.ViewConfig
	bus     events.Bus
	log     *logger.Logger

	board        *BoardView
	productivity *ProductivityView

	runCtx  context.Context
	group   *errgroup.Group
	mu      sync.Mutex
	workers map[string]*WorkerQueueView
}

// NewManager wires the shared views. Poll loops start in Start.
func NewManager(lister TaskLister, patcher StatusPatcher, cfg config.ViewConfig, bus events.Bus, log *logger.Logger) *Manager {
	m := &Manager{
		lister:  lister,
		patcher: patcher,
		cfg:     cfg,
		bus:     bus,
		log:     log,
		workers: make(map[string]*WorkerQueueView),
	}
	m.board = NewBoardView(lister, patcher, bus, cfg.GetBoardPollInterval(), log)
	m.productivity = NewProductivityView(lister, patcher, bus, cfg.GetProductivityPollInterval(), log)
	return m
}

// Start launches the board and productivity poll loops and remembers the run
// context for worker views created later. Blocks until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	group, runCtx := errgroup.WithContext(ctx)
	m.mu.Lock()
	m.runCtx = runCtx
	m.group = group
	m.mu.Unlock()

	m.board.BindBus()
	m.productivity.BindBus()

	group.Go(func() error { return m.board.Run(runCtx) })
	group.Go(func() error { return m.productivity.Run(runCtx) })

	return group.Wait()
}

// Board returns the shared board view.
func (m *Manager) Board() *BoardView { return m.board }

// Productivity returns the shared productivity view.
func (m *Manager) Productivity() *ProductivityView { return m.productivity }

// Worker returns the queue view for one staff member, creating and starting
// it on first use. The first snapshot is polled synchronously so the caller
// never sees an empty queue for a staffed worker.
func (m *Manager) Worker(ctx context.Context, staffName string) *WorkerQueueView {
	m.mu.Lock()
	if v, ok := m.workers[staffName]; ok {
		m.mu.Unlock()
		return v
	}

	v := NewWorkerQueueView(staffName, m.lister, m.patcher, m.bus, m.cfg.GetWorkerPollInterval(), m.log)
	m.workers[staffName] = v
	group, runCtx := m.group, m.runCtx
	m.mu.Unlock()

	v.Poll(ctx)
	v.BindBus()
	if group != nil {
		group.Go(func() error { return v.Run(runCtx) })
	}
	m.log.Info("worker queue view started", "staff", staffName)
	return v
}
