package view

import (
	"context"
	"sort"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// WorkerQueueView shows one staff member their work as a focused queue: a
// single current task up front, the rest counted but hidden.
type WorkerQueueView struct {
	*Synchronizer
	staffName string
}

// QueueSnapshot is the worker-facing shape of the queue.
type QueueSnapshot struct {
	StaffName   string      `json:"staffName"`
	Current     *task.Task  `json:"current,omitempty"`
	Upcoming    []task.Task `json:"upcoming"`
	HiddenCount int         `json:"hiddenCount"`
}

// NewWorkerQueueView creates the queue view for one staff member.
func NewWorkerQueueView(staffName string, lister TaskLister, patcher StatusPatcher, bus events.Bus, interval time.Duration, log *logger.Logger) *WorkerQueueView {
	sync := NewSynchronizer("worker:"+staffName, lister, patcher,
		store.TaskFilter{WorkerName: staffName}, bus, interval, log)
	return &WorkerQueueView{Synchronizer: sync, staffName: staffName}
}

// Queue returns the ordered active queue. In-progress work sorts before
// pending work, ties break on oldest creation first, and everything after
// the head stays hidden behind a count.
func (v *WorkerQueueView) Queue() QueueSnapshot {
	active := OrderQueue(v.Snapshot())

	snapshot := QueueSnapshot{StaffName: v.staffName, Upcoming: []task.Task{}}
	if len(active) == 0 {
		return snapshot
	}

	head := active[0]
	snapshot.Current = &head
	snapshot.Upcoming = active[1:]
	snapshot.HiddenCount = len(active) - 1
	return snapshot
}

// CompleteCurrent marks the head task done. The next task is promoted from
// local state immediately, without waiting for a poll cycle.
func (v *WorkerQueueView) CompleteCurrent(ctx context.Context) (QueueSnapshot, error) {
	current := v.Queue().Current
	if current == nil {
		return v.Queue(), nil
	}

	if err := v.Mutate(ctx, current.ID, string(task.StatusDone)); err != nil {
		return v.Queue(), err
	}
	return v.Queue(), nil
}

// OrderQueue filters to the active tasks and orders them for queue display.
func OrderQueue(tasks []task.Task) []task.Task {
	active := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Canonical().IsActive() {
			active = append(active, t)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i].Canonical(), active[j].Canonical()
		if a != b {
			return a == task.StatusInProgress
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}
