package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opsdesk_backend/internal/dispatch"
	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

type fakeResolver struct {
	member *task.StaffMember
	err    error
}

func (f *fakeResolver) Resolve(_ context.Context, _ staff.Department, _ string) (*task.StaffMember, error) {
	return f.member, f.err
}

type fakeCreator struct {
	payload store.CreateTaskPayload
	err     error
}

func (f *fakeCreator) CreateTask(_ context.Context, payload store.CreateTaskPayload) (task.Task, error) {
	f.payload = payload
	if f.err != nil {
		return task.Task{}, f.err
	}
	return task.Task{
		ID:           "t-1",
		PropertyID:   payload.PropertyID,
		PropertyName: payload.PropertyName,
		Description:  payload.Description,
		Status:       payload.Status,
		CreatedAt:    time.Now(),
	}, nil
}

func newOperationsExecutor(resolver *fakeResolver, creator *fakeCreator) *OperationsExecutor {
	log := logger.New("development")
	svc := dispatch.New(creator, events.NewInMemoryBus(log), nil, log)
	return NewOperationsExecutor(resolver, svc, log)
}

func TestOperationsExecutorCreatesAssignedTask(t *testing.T) {
	resolver := &fakeResolver{member: &task.StaffMember{ID: "s-1", Name: "Maria", Phone: "+15125550101"}}
	creator := &fakeCreator{}
	exec := newOperationsExecutor(resolver, creator)

	result, err := exec.Execute(context.Background(), TaskRequest{
		PropertyID:  "102",
		Description: "need fresh towels",
		Department:  staff.DepartmentCleaning,
		Source:      "directive",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !result.TaskCreated || result.Task == nil {
		t.Fatalf("expected a created task, got %+v", result)
	}
	if creator.payload.AssignedStaffName != "Maria" {
		t.Fatalf("expected Maria assigned, got %q", creator.payload.AssignedStaffName)
	}
	if creator.payload.Status != string(task.StatusPending) {
		t.Fatalf("expected pending status, got %q", creator.payload.Status)
	}
	if !strings.Contains(result.DisplayMessage, "Maria has been notified") {
		t.Fatalf("unexpected confirmation: %q", result.DisplayMessage)
	}
}

func TestOperationsExecutorResolverFailureCreatesUnassignedTask(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("store down")}
	creator := &fakeCreator{}
	exec := newOperationsExecutor(resolver, creator)

	result, err := exec.Execute(context.Background(), TaskRequest{
		PropertyID:  "101",
		Description: "sink is leaking",
		Department:  staff.DepartmentMaintenance,
		Source:      "agent",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if creator.payload.AssignedStaffName != "" {
		t.Fatalf("expected unassigned task, got staff %q", creator.payload.AssignedStaffName)
	}
	if !strings.Contains(result.DisplayMessage, "notification pending") {
		t.Fatalf("expected pending-notification wording, got %q", result.DisplayMessage)
	}
}

func TestOperationsExecutorPersistenceFailureSurfaces(t *testing.T) {
	resolver := &fakeResolver{}
	creator := &fakeCreator{err: errors.New("store rejected task")}
	exec := newOperationsExecutor(resolver, creator)

	_, err := exec.Execute(context.Background(), TaskRequest{PropertyID: "101", Description: "x"})
	if err == nil {
		t.Fatal("expected persistence error to surface")
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	RegisterOffloaded(registry)

	if _, err := registry.Get(ExecutorLeadScan); err != nil {
		t.Fatalf("expected lead-scan stub registered: %v", err)
	}
	if _, err := registry.Get("no-such-capability"); err == nil {
		t.Fatal("expected error for unknown executor")
	}
	if len(registry.Names()) != 4 {
		t.Fatalf("expected 4 offloaded stubs, got %d", len(registry.Names()))
	}
}
