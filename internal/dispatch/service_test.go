package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

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
		ID:                "t-1",
		PropertyID:        payload.PropertyID,
		Description:       payload.Description,
		Status:            payload.Status,
		AssignedStaffName: payload.AssignedStaffName,
		CreatedAt:         time.Now(),
	}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeNotifier) SendMessage(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, phone+"|"+message)
	return f.err
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(_ string, _ events.Handler) {}

func TestCreateTaskPublishesEventAndNotifies(t *testing.T) {
	creator := &fakeCreator{}
	notifier := &fakeNotifier{}
	bus := &recordingBus{}
	svc := New(creator, bus, notifier, logger.New("development"))

	created, err := svc.CreateTask(context.Background(), CreateTaskParams{
		PropertyID:  "102",
		Description: "need fresh towels",
		Status:      "pending",
		Department:  staff.DepartmentCleaning,
		Staff:       &task.StaffMember{ID: "s-1", Name: "Maria", Phone: "+15125550101"},
		Source:      "directive",
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if created.ID != "t-1" {
		t.Fatalf("unexpected task: %+v", created)
	}

	if len(bus.events) != 1 || bus.events[0].EventName() != "tasks.created" {
		t.Fatalf("expected tasks.created publish, got %+v", bus.events)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "Maria") || !strings.Contains(notifier.messages[0], "Limpieza") {
		t.Fatalf("expected bilingual staff notification, got %q", notifier.messages[0])
	}
}

func TestCreateTaskNotificationFailureDoesNotFailCreation(t *testing.T) {
	creator := &fakeCreator{}
	notifier := &fakeNotifier{err: errors.New("gateway down")}
	svc := New(creator, &recordingBus{}, notifier, logger.New("development"))

	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		PropertyID: "101",
		Status:     "pending",
		Staff:      &task.StaffMember{Name: "Carlos", Phone: "+15125550102"},
	})
	if err != nil {
		t.Fatalf("notification failure must not fail creation: %v", err)
	}
}

func TestCreateTaskPersistenceFailureSurfacesWithoutRetry(t *testing.T) {
	creator := &fakeCreator{err: errors.New("store rejected")}
	notifier := &fakeNotifier{}
	bus := &recordingBus{}
	svc := New(creator, bus, notifier, logger.New("development"))

	if _, err := svc.CreateTask(context.Background(), CreateTaskParams{PropertyID: "101"}); err == nil {
		t.Fatal("expected persistence error")
	}
	if len(bus.events) != 0 {
		t.Fatalf("no event expected on failure, got %+v", bus.events)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("no notification expected on failure, got %v", notifier.messages)
	}
}

func TestBuildNotificationDegradedWithoutContact(t *testing.T) {
	message := BuildNotification(staff.DepartmentMaintenance, "", "204", "sink is leaking")
	if !strings.Contains(message, "no contact on file") || !strings.Contains(message, "sin contacto registrado") {
		t.Fatalf("expected degraded bilingual message, got %q", message)
	}
}
