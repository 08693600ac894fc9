package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/logger"
)

type testStoreConfig struct {
	baseURL string
}

func (c testStoreConfig) GetStoreBaseURL() string        { return c.baseURL }
func (c testStoreConfig) GetStoreAPIKey() string         { return "test-key" }
func (c testStoreConfig) GetStoreTimeout() time.Duration { return 2 * time.Second }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(testStoreConfig{baseURL: server.URL}, logger.New("development"))
	return client, server
}

func TestCreateTask_DefaultsStatusToPending(t *testing.T) {
	var got CreateTaskPayload
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(task.Task{ID: "t-1", PropertyID: got.PropertyID, Status: got.Status})
	}))

	created, err := client.CreateTask(context.Background(), CreateTaskPayload{PropertyID: "102", Description: "need towels"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got.Status != "Pending" {
		t.Fatalf("expected payload status Pending, got %q", got.Status)
	}
	if created.ID != "t-1" {
		t.Fatalf("expected created task id t-1, got %q", created.ID)
	}
}

func TestListTasks_WorkerFilterIsForwarded(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if worker := r.URL.Query().Get("workerName"); worker != "Maria" {
			t.Fatalf("expected workerName=Maria, got %q", worker)
		}
		_ = json.NewEncoder(w).Encode([]task.Task{{ID: "t-1", Status: "accepted"}})
	}))

	tasks, err := client.ListTasks(context.Background(), TaskFilter{WorkerName: "Maria"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Canonical() != task.StatusInProgress {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestDo_MapsHTTPStatusToErrorKind(t *testing.T) {
	cases := []struct {
		code int
		kind apperr.Kind
	}{
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusTooManyRequests, apperr.KindRateLimited},
		{http.StatusInternalServerError, apperr.KindUnavailable},
		{http.StatusBadRequest, apperr.KindBadRequest},
	}

	for _, tc := range cases {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.code)
		}))
		_, err := client.ListTasks(context.Background(), TaskFilter{})
		if err == nil {
			t.Fatalf("status %d: expected error", tc.code)
		}
		if got := apperr.GetKind(err); got != tc.kind {
			t.Fatalf("status %d: expected kind %v, got %v", tc.code, tc.kind, got)
		}
	}
}

func TestDo_NetworkFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on

	client := NewClient(testStoreConfig{baseURL: server.URL}, logger.New("development"))
	_, err := client.ListTasks(context.Background(), TaskFilter{})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
	if !apperr.IsRetryable(err) {
		t.Fatal("expected network failure to be retryable")
	}
}

func TestResetDoneTasks_ReturnsCount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/reset" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"reset": 3}`))
	}))

	count, err := client.ResetDoneTasks(context.Background())
	if err != nil {
		t.Fatalf("ResetDoneTasks: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 reset tasks, got %d", count)
	}
}
