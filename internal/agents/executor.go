// Package agents hosts the task executors the command router dispatches to.
// Each executor owns one capability; the operations executor is the only one
// that creates operational tasks.
package agents

import (
	"context"
	"fmt"
	"sync"

	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/task"
)

// TaskRequest is the resolved intent handed to an executor.
type TaskRequest struct {
	PropertyID   string
	PropertyName string
	Description  string
	Department   staff.Department
	Source       string
}

// Result is what an executor reports back to the operator. DisplayMessage is
// always safe to show verbatim in the chat surface.
type Result struct {
	DisplayMessage string
	TaskCreated    bool
	Task           *task.Task
}

// Executor handles one capability.
type Executor interface {
	Name() string
	Execute(ctx context.Context, req TaskRequest) (Result, error)
}

// Registry maps capability names to executors.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds an executor under its own name, replacing any previous one.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Name()] = e
}

// Get returns the executor registered under name.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("no executor registered for %q", name)
	}
	return e, nil
}

// Names lists the registered capability names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	return names
}
