package view

import (
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// BoardView shows every task bucketed by canonical status, the manager's
// whole-property overview.
type BoardView struct {
	*Synchronizer
}

// Board is the bucketed board snapshot.
type Board struct {
	Pending    []task.Task `json:"pending"`
	InProgress []task.Task `json:"inProgress"`
	Done       []task.Task `json:"done"`
}

// NewBoardView creates the unfiltered board view.
func NewBoardView(lister TaskLister, patcher StatusPatcher, bus events.Bus, interval time.Duration, log *logger.Logger) *BoardView {
	sync := NewSynchronizer("board", lister, patcher, store.TaskFilter{}, bus, interval, log)
	return &BoardView{Synchronizer: sync}
}

// Buckets groups the current snapshot by canonical status. Raw store
// variants like "assigned" or "completed" land in their canonical bucket.
func (v *BoardView) Buckets() Board {
	board := Board{
		Pending:    []task.Task{},
		InProgress: []task.Task{},
		Done:       []task.Task{},
	}

	for _, t := range v.Snapshot() {
		switch t.Canonical() {
		case task.StatusInProgress:
			board.InProgress = append(board.InProgress, t)
		case task.StatusDone:
			board.Done = append(board.Done, t)
		default:
			board.Pending = append(board.Pending, t)
		}
	}
	return board
}
