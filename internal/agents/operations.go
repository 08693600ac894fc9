package agents

import (
	"context"
	"fmt"

	"opsdesk_backend/internal/dispatch"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// ExecutorOperations is the registry name of the operations dispatch executor.
const ExecutorOperations = "operations-dispatch"

// StaffResolver picks the staff member for a department and property.
type StaffResolver interface {
	Resolve(ctx context.Context, dept staff.Department, propertyID string) (*task.StaffMember, error)
}

// OperationsExecutor creates operational tasks: it resolves the responsible
// staff member, persists the task through the dispatch service and reports a
// confirmation the operator can read back to the guest.
type OperationsExecutor struct {
	resolver StaffResolver
	dispatch *dispatch.Service
	log      *logger.Logger
}

// NewOperationsExecutor wires the operations dispatch executor.
func NewOperationsExecutor(resolver StaffResolver, svc *dispatch.Service, log *logger.Logger) *OperationsExecutor {
	return &OperationsExecutor{resolver: resolver, dispatch: svc, log: log}
}

func (e *OperationsExecutor) Name() string { return ExecutorOperations }

// Execute resolves staff, creates the task and builds the operator-facing
// confirmation. Staff resolution failure downgrades to an unassigned task
// rather than failing the request; only persistence failure is an error.
func (e *OperationsExecutor) Execute(ctx context.Context, req TaskRequest) (Result, error) {
	member, err := e.resolver.Resolve(ctx, req.Department, req.PropertyID)
	if err != nil {
		e.log.Warn("staff resolution failed, creating unassigned task",
			"department", string(req.Department), "propertyId", req.PropertyID, "error", err)
		member = nil
	}

	created, err := e.dispatch.CreateTask(ctx, dispatch.CreateTaskParams{
		PropertyID:   req.PropertyID,
		PropertyName: req.PropertyName,
		Description:  req.Description,
		Status:       string(task.StatusPending),
		Department:   req.Department,
		Staff:        member,
		Source:       req.Source,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		DisplayMessage: confirmationMessage(member, created),
		TaskCreated:    true,
		Task:           &created,
	}, nil
}

func confirmationMessage(member *task.StaffMember, created task.Task) string {
	location := created.PropertyName
	if location == "" {
		location = created.PropertyID
	}

	switch {
	case member == nil:
		return fmt.Sprintf("Task created at %s: %s. No staff on file yet; notification pending.",
			location, created.DisplayDescription())
	case member.Phone == "":
		return fmt.Sprintf("Task created at %s and assigned to %s: %s. No phone on file; notification pending.",
			location, member.Name, created.DisplayDescription())
	default:
		return fmt.Sprintf("Task created at %s: %s. %s has been notified.",
			location, created.DisplayDescription(), member.Name)
	}
}
