// Package view keeps observer views of the task store consistent: each view
// polls on its own interval, applies optimistic status mutations locally and
// reconciles them against confirmed store state without ever letting a stale
// server response overwrite a pending local change.
package view

import (
	"context"
	"sync"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/logger"
)

// TaskLister fetches task records. Implemented by the store client.
type TaskLister interface {
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]task.Task, error)
}

// StatusPatcher writes a task status to the store. Last write wins.
type StatusPatcher interface {
	PatchTaskStatus(ctx context.Context, taskID, status string) (task.Task, error)
}

// Synchronizer owns one view's local copy of the task set.
type Synchronizer struct {
	name     string
	lister   TaskLister
	patcher  StatusPatcher
	filter   store.TaskFilter
	bus      events.Bus
	interval time.Duration
	log      *logger.Logger

	refreshCh chan struct{}

	mu      sync.Mutex
	tasks   map[string]task.Task
	order   []string
	pending map[string]string
	nextSeq uint64
	applied uint64
}

// NewSynchronizer creates a synchronizer for one view. The filter scopes
// which slice of the store this view watches.
func NewSynchronizer(name string, lister TaskLister, patcher StatusPatcher, filter store.TaskFilter, bus events.Bus, interval time.Duration, log *logger.Logger) *Synchronizer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Synchronizer{
		name:      name,
		lister:    lister,
		patcher:   patcher,
		filter:    filter,
		bus:       bus,
		interval:  interval,
		log:       log,
		refreshCh: make(chan struct{}, 1),
		tasks:     make(map[string]task.Task),
		pending:   make(map[string]string),
	}
}

// BindBus subscribes the synchronizer to the events that warrant an
// immediate out-of-cycle poll.
func (s *Synchronizer) BindBus() {
	handler := events.HandlerFunc(func(_ context.Context, _ events.Event) error {
		s.RequestRefresh()
		return nil
	})
	s.bus.Subscribe("tasks.created", handler)
	s.bus.Subscribe("tasks.status_changed", handler)
	s.bus.Subscribe("views.refresh", handler)
}

// Run drives the poll loop until ctx is cancelled. One immediate poll runs
// at startup so the view is populated before the first tick.
func (s *Synchronizer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		case <-s.refreshCh:
			s.Poll(ctx)
		}
	}
}

// RequestRefresh schedules an immediate poll. Coalesces when one is already
// queued.
func (s *Synchronizer) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Poll fetches the view's task slice once and applies it. Responses that
// arrive out of order are discarded; a task with a pending optimistic
// mutation keeps its local value until the store confirms it.
func (s *Synchronizer) Poll(ctx context.Context) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	tasks, err := s.lister.ListTasks(ctx, s.filter)
	if err != nil {
		s.log.Warn("view poll failed", "view", s.name, "error", err)
		return
	}

	s.Apply(seq, tasks)
}

// Apply merges one poll response identified by its sequence number.
func (s *Synchronizer) Apply(seq uint64, tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.log.Debug("discarding stale poll response", "view", s.name, "seq", seq, "applied", s.applied)
		return
	}
	s.applied = seq

	next := make(map[string]task.Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if optimistic, ok := s.pending[t.ID]; ok {
			if task.Classify(t.Status) == task.Classify(optimistic) {
				// Store caught up with the local mutation.
				delete(s.pending, t.ID)
			} else {
				// Defer the server value, never display it over a
				// pending local change.
				t.Status = optimistic
			}
		}
		next[t.ID] = t
		order = append(order, t.ID)
	}

	s.tasks = next
	s.order = order
}

// Snapshot returns the view's current tasks in store order.
func (s *Synchronizer) Snapshot() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out
}

// Mutate applies a status change optimistically, pushes it to the store and
// rolls back on failure. Mutating a task already in the target canonical
// status is a no-op, so double clicks cost nothing.
func (s *Synchronizer) Mutate(ctx context.Context, taskID, newStatus string) error {
	s.mu.Lock()
	current, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound("task not found in view")
	}
	if task.Classify(current.Status) == task.Classify(newStatus) {
		s.mu.Unlock()
		return nil
	}

	oldStatus := current.Status
	current.Status = newStatus
	s.tasks[taskID] = current
	s.pending[taskID] = newStatus
	s.mu.Unlock()

	confirmed, err := s.patcher.PatchTaskStatus(ctx, taskID, newStatus)
	if err != nil {
		s.mu.Lock()
		if t, ok := s.tasks[taskID]; ok {
			t.Status = oldStatus
			s.tasks[taskID] = t
		}
		delete(s.pending, taskID)
		s.mu.Unlock()
		return err
	}

	// The pending entry stays until a poll echoes the confirmed value back.
	// A poll whose response was listed before the patch may still land with
	// a newer sequence number; clearing here would let it revert the task.
	s.mu.Lock()
	s.tasks[taskID] = confirmed
	s.pending[taskID] = confirmed.Status
	s.mu.Unlock()

	s.bus.Publish(ctx, events.TaskStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    taskID,
		OldStatus: oldStatus,
		NewStatus: confirmed.Status,
		View:      s.name,
	})
	return nil
}
