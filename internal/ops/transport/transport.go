// Package transport defines the request and response shapes of the
// operational API.
package transport

import (
	"opsdesk_backend/internal/command"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/internal/view"
)

// CommandRequest is one operator utterance.
type CommandRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// CommandResponse is the routed outcome of one utterance.
type CommandResponse struct {
	Outcome command.Outcome `json:"outcome"`
}

// UpdateStatusRequest patches one task's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,min=1,max=40"`
	View   string `json:"view,omitempty" validate:"omitempty,oneof=worker board productivity"`
}

// WorkerQueueResponse is the worker's focused queue.
type WorkerQueueResponse struct {
	Queue view.QueueSnapshot `json:"queue"`
}

// BoardResponse is the status-bucketed board.
type BoardResponse struct {
	Board view.Board `json:"board"`
}

// ProductivityResponse is the per-staff throughput report.
type ProductivityResponse struct {
	Stats []view.StaffStats `json:"stats"`
}

// ResetResponse reports how many tasks a maintenance reset reverted.
type ResetResponse struct {
	Reset int `json:"reset"`
}

// TaskResponse wraps one task record.
type TaskResponse struct {
	Task task.Task `json:"task"`
}
