// Package interpreter sends free-form operator text to the remote
// natural-language command service and returns its structured verdict.
package interpreter

import (
	"context"

	"opsdesk_backend/internal/task"
)

// Exchange is one prior turn of operator/assistant conversation, passed as
// bounded context to the interpreter.
type Exchange struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Result is the interpreter's structured verdict for one utterance.
type Result struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	TaskCreated bool       `json:"taskCreated,omitempty"`
	Task        *task.Task `json:"task,omitempty"`
}

// Interpreter turns operator text plus rolling history into a Result.
// Failures are typed apperr errors: KindRateLimited and KindUnavailable
// qualify for the router's local fallback path, everything else is surfaced.
type Interpreter interface {
	Interpret(ctx context.Context, text string, history []Exchange) (Result, error)
}
