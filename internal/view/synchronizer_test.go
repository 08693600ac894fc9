package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

type fakeStore struct {
	tasks    []task.Task
	listErr  error
	patchErr error
	patched  []string
}

func (f *fakeStore) ListTasks(_ context.Context, filter store.TaskFilter) ([]task.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if filter.WorkerName == "" {
		return f.tasks, nil
	}
	out := []task.Task{}
	for _, t := range f.tasks {
		if t.AssignedStaffName == filter.WorkerName {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) PatchTaskStatus(_ context.Context, taskID, status string) (task.Task, error) {
	if f.patchErr != nil {
		return task.Task{}, f.patchErr
	}
	f.patched = append(f.patched, taskID+":"+status)
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return task.Task{ID: taskID, Status: status}, nil
}

func newTestSync(fs *fakeStore) *Synchronizer {
	log := logger.New("development")
	return NewSynchronizer("test", fs, fs, store.TaskFilter{}, events.NewInMemoryBus(log), time.Minute, log)
}

func at(offset int) time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
}

func TestPollPopulatesSnapshot(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{
		{ID: "a", Status: "pending", CreatedAt: at(0)},
		{ID: "b", Status: "assigned", CreatedAt: at(1)},
	}}
	s := newTestSync(fs)

	s.Poll(context.Background())

	snapshot := s.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snapshot))
	}
}

func TestOutOfOrderResponseDiscarded(t *testing.T) {
	s := newTestSync(&fakeStore{})

	s.Apply(2, []task.Task{{ID: "new", Status: "pending"}})
	s.Apply(1, []task.Task{{ID: "old", Status: "pending"}})

	snapshot := s.Snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != "new" {
		t.Fatalf("expected the later response kept, got %+v", snapshot)
	}
}

func TestStaleServerValueNeverOverwritesPendingMutation(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{{ID: "a", Status: "pending", CreatedAt: at(0)}}}
	s := newTestSync(fs)
	s.Poll(context.Background())

	// Simulate an in-flight patch by registering the optimistic value
	// directly, then apply a poll that raced with it.
	s.mu.Lock()
	s.pending["a"] = string(task.StatusDone)
	tk := s.tasks["a"]
	tk.Status = string(task.StatusDone)
	s.tasks["a"] = tk
	s.mu.Unlock()

	s.Apply(10, []task.Task{{ID: "a", Status: "pending", CreatedAt: at(0)}})

	if got := s.Snapshot()[0].Status; task.Classify(got) != task.StatusDone {
		t.Fatalf("stale server value displayed over optimistic change: %q", got)
	}

	// Once the store reports the mutated value the pending entry clears.
	s.Apply(11, []task.Task{{ID: "a", Status: "completed", CreatedAt: at(0)}})
	s.mu.Lock()
	pendingLeft := len(s.pending)
	s.mu.Unlock()
	if pendingLeft != 0 {
		t.Fatalf("expected pending mutation reconciled, %d left", pendingLeft)
	}
}

func TestPollRacingConfirmedMutationDoesNotRevert(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{{ID: "a", Status: "pending", CreatedAt: at(0)}}}
	s := newTestSync(fs)
	s.Poll(context.Background())

	if err := s.Mutate(context.Background(), "a", string(task.StatusDone)); err != nil {
		t.Fatalf("Mutate returned error: %v", err)
	}

	// A poll listed before the patch can still land with a newer sequence
	// number. Its stale value must not win over the confirmed mutation.
	s.mu.Lock()
	seq := s.nextSeq + 1
	s.nextSeq = seq
	s.mu.Unlock()
	s.Apply(seq, []task.Task{{ID: "a", Status: "pending", CreatedAt: at(0)}})

	if got := s.Snapshot()[0].Status; task.Classify(got) != task.StatusDone {
		t.Fatalf("stale poll reverted a confirmed mutation: task displays %q", got)
	}

	// A later poll that echoes the confirmed value clears the pending entry.
	s.mu.Lock()
	seq = s.nextSeq + 1
	s.nextSeq = seq
	s.mu.Unlock()
	s.Apply(seq, []task.Task{{ID: "a", Status: "completed", CreatedAt: at(0)}})
	s.mu.Lock()
	pendingLeft := len(s.pending)
	s.mu.Unlock()
	if pendingLeft != 0 {
		t.Fatalf("expected pending mutation reconciled, %d left", pendingLeft)
	}
}

func TestStatusChangeEventTriggersRefresh(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	fs := &fakeStore{}
	s := NewSynchronizer("test", fs, fs, store.TaskFilter{}, bus, time.Minute, log)
	s.BindBus()

	err := bus.PublishSync(context.Background(), events.TaskStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    "a",
		OldStatus: "pending",
		NewStatus: "completed",
		View:      "board",
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	select {
	case <-s.refreshCh:
	default:
		t.Fatal("expected a status change to queue an out-of-cycle poll")
	}
}

func TestMutateRollsBackOnStoreFailure(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{{ID: "a", Status: "pending", CreatedAt: at(0)}}}
	s := newTestSync(fs)
	s.Poll(context.Background())

	fs.patchErr = errors.New("store rejected patch")
	if err := s.Mutate(context.Background(), "a", string(task.StatusDone)); err == nil {
		t.Fatal("expected patch failure to surface")
	}

	if got := s.Snapshot()[0].Status; task.Classify(got) != task.StatusPending {
		t.Fatalf("expected rollback to pending, got %q", got)
	}
}

func TestMutateSameCanonicalStatusIsNoOp(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{{ID: "a", Status: "completed", CreatedAt: at(0)}}}
	s := newTestSync(fs)
	s.Poll(context.Background())

	if err := s.Mutate(context.Background(), "a", "done"); err != nil {
		t.Fatalf("duplicate mutation returned error: %v", err)
	}
	if len(fs.patched) != 0 {
		t.Fatalf("expected no store call for duplicate mutation, got %v", fs.patched)
	}
}

func TestWorkerQueueOrdering(t *testing.T) {
	tasks := []task.Task{
		{ID: "p-old", Status: "pending", CreatedAt: at(0)},
		{ID: "done", Status: "completed", CreatedAt: at(1)},
		{ID: "ip-new", Status: "accepted", CreatedAt: at(3)},
		{ID: "ip-old", Status: "working", CreatedAt: at(2)},
		{ID: "p-new", Status: "open", CreatedAt: at(4)},
	}

	ordered := OrderQueue(tasks)

	want := []string{"ip-old", "ip-new", "p-old", "p-new"}
	if len(ordered) != len(want) {
		t.Fatalf("expected %d active tasks, got %d", len(want), len(ordered))
	}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (full: %+v)", i, id, ordered[i].ID, ordered)
		}
	}
}

func TestAcceptedTaskSortsBeforeOlderPending(t *testing.T) {
	tasks := []task.Task{
		{ID: "pending-first", Status: "pending", CreatedAt: at(0)},
		{ID: "accepted-later", Status: "accepted", CreatedAt: at(5)},
	}

	ordered := OrderQueue(tasks)
	if ordered[0].ID != "accepted-later" {
		t.Fatalf("expected accepted task at head, got %s", ordered[0].ID)
	}
}

func TestCompleteCurrentPromotesNextWithoutPoll(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{
		{ID: "first", Status: "working", AssignedStaffName: "Maria", CreatedAt: at(0)},
		{ID: "second", Status: "pending", AssignedStaffName: "Maria", CreatedAt: at(1)},
	}}
	log := logger.New("development")
	v := NewWorkerQueueView("Maria", fs, fs, events.NewInMemoryBus(log), time.Minute, log)
	v.Poll(context.Background())

	if current := v.Queue().Current; current == nil || current.ID != "first" {
		t.Fatalf("expected first at head, got %+v", current)
	}

	snapshot, err := v.CompleteCurrent(context.Background())
	if err != nil {
		t.Fatalf("CompleteCurrent returned error: %v", err)
	}
	if snapshot.Current == nil || snapshot.Current.ID != "second" {
		t.Fatalf("expected second promoted, got %+v", snapshot.Current)
	}
	if snapshot.HiddenCount != 0 {
		t.Fatalf("expected no hidden tasks, got %d", snapshot.HiddenCount)
	}
}

type fakeViewConfig struct{}

func (fakeViewConfig) GetWorkerPollInterval() time.Duration       { return time.Minute }
func (fakeViewConfig) GetBoardPollInterval() time.Duration        { return time.Minute }
func (fakeViewConfig) GetProductivityPollInterval() time.Duration { return time.Minute }
func (fakeViewConfig) GetStaffCacheTTL() time.Duration            { return time.Minute }

func TestManagerWorkerUsableBeforeStart(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{
		{ID: "a", Status: "working", AssignedStaffName: "Maria", CreatedAt: at(0)},
	}}
	log := logger.New("development")
	m := NewManager(fs, fs, fakeViewConfig{}, events.NewInMemoryBus(log), log)

	v := m.Worker(context.Background(), "Maria")
	if current := v.Queue().Current; current == nil || current.ID != "a" {
		t.Fatalf("expected synchronously polled queue, got %+v", current)
	}
	if again := m.Worker(context.Background(), "Maria"); again != v {
		t.Fatal("expected the same view instance on repeat lookup")
	}
}

func TestBoardBucketsByCanonicalStatus(t *testing.T) {
	fs := &fakeStore{tasks: []task.Task{
		{ID: "a", Status: "assigned", CreatedAt: at(0)},
		{ID: "b", Status: "completed", CreatedAt: at(1)},
		{ID: "c", Status: "something-unknown", CreatedAt: at(2)},
	}}
	log := logger.New("development")
	v := NewBoardView(fs, fs, events.NewInMemoryBus(log), time.Minute, log)
	v.Poll(context.Background())

	board := v.Buckets()
	if len(board.InProgress) != 1 || board.InProgress[0].ID != "a" {
		t.Fatalf("expected assigned in progress bucket, got %+v", board.InProgress)
	}
	if len(board.Done) != 1 || board.Done[0].ID != "b" {
		t.Fatalf("expected completed in done bucket, got %+v", board.Done)
	}
	if len(board.Pending) != 1 || board.Pending[0].ID != "c" {
		t.Fatalf("expected unknown status in pending bucket, got %+v", board.Pending)
	}
}

func TestProductivityStats(t *testing.T) {
	completed := at(10)
	fs := &fakeStore{tasks: []task.Task{
		{ID: "a", Status: "completed", AssignedStaffName: "Maria", CompletedAt: &completed, CreatedAt: at(0)},
		{ID: "b", Status: "done", AssignedStaffName: "Maria", CreatedAt: at(1)},
		{ID: "c", Status: "pending", AssignedStaffName: "Maria", CreatedAt: at(2)},
		{ID: "d", Status: "working", AssignedStaffName: "Carlos", CreatedAt: at(3)},
		{ID: "e", Status: "pending", CreatedAt: at(4)},
	}}
	log := logger.New("development")
	v := NewProductivityView(fs, fs, events.NewInMemoryBus(log), time.Minute, log)
	v.Poll(context.Background())

	rows := v.Stats()
	if len(rows) != 2 {
		t.Fatalf("expected 2 staff rows, got %d", len(rows))
	}
	maria := rows[0]
	if maria.StaffName != "Maria" || maria.DoneCount != 2 || maria.ActiveCount != 1 {
		t.Fatalf("unexpected Maria row: %+v", maria)
	}
	if maria.LastCompletedAt == nil || !maria.LastCompletedAt.Equal(completed) {
		t.Fatalf("unexpected last completion: %+v", maria.LastCompletedAt)
	}
	if rows[1].StaffName != "Carlos" || rows[1].ActiveCount != 1 {
		t.Fatalf("unexpected Carlos row: %+v", rows[1])
	}
}
