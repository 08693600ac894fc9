// Package store is the HTTP+JSON client for the remote task record store.
// The store is the single source of truth; this process only caches.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
)

// Client talks to the remote record store.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// TaskFilter narrows a task listing. Zero values mean "no filter".
type TaskFilter struct {
	WorkerName string
	Status     string
}

// CreateTaskPayload is the wire payload for task creation.
// Status defaults to Pending when empty.
type CreateTaskPayload struct {
	PropertyID         string `json:"propertyId"`
	PropertyName       string `json:"propertyName,omitempty"`
	Description        string `json:"description,omitempty"`
	Status             string `json:"status,omitempty"`
	AssignedStaffID    string `json:"assignedStaffId,omitempty"`
	AssignedStaffName  string `json:"assignedStaffName,omitempty"`
	AssignedStaffPhone string `json:"assignedStaffPhone,omitempty"`
}

// NewClient creates a store client from configuration.
func NewClient(cfg config.StoreConfig, log *logger.Logger) *Client {
	timeout := cfg.GetStoreTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetStoreBaseURL(), "/"),
		apiKey:  cfg.GetStoreAPIKey(),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ListTasks fetches the task set matching the filter.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]task.Task, error) {
	query := url.Values{}
	if filter.WorkerName != "" {
		query.Set("workerName", filter.WorkerName)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}

	path := "/tasks"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask persists one new task record.
func (c *Client) CreateTask(ctx context.Context, payload CreateTaskPayload) (task.Task, error) {
	if payload.Status == "" {
		payload.Status = string(task.StatusPending)
	}

	var created task.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", payload, &created); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// PatchTaskStatus assigns a new status to a task. The store treats the write
// as last-write-wins, so repeating the same patch is harmless.
func (c *Client) PatchTaskStatus(ctx context.Context, taskID, status string) (task.Task, error) {
	body := map[string]string{"status": status}

	var updated task.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(taskID)+"/status", body, &updated); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// ListStaff fetches the staff roster, optionally scoped to a property.
func (c *Client) ListStaff(ctx context.Context, propertyID string) ([]task.StaffMember, error) {
	path := "/staff"
	if propertyID != "" {
		path += "?propertyId=" + url.QueryEscape(propertyID)
	}

	var staff []task.StaffMember
	if err := c.do(ctx, http.MethodGet, path, nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// ResetDoneTasks bulk-reverts Done tasks back to Pending. Maintenance and
// recovery path only; returns the number of reverted tasks.
func (c *Client) ResetDoneTasks(ctx context.Context) (int, error) {
	var result struct {
		Reset int `json:"reset"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks/reset", nil, &result); err != nil {
		return 0, err
	}
	return result.Reset, nil
}

// Ping checks store reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal store payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.StoreError(method+" "+path, err)
		}
		return apperr.Wrap(apperr.KindUnavailable, "task store unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		message := strings.TrimSpace(string(data))
		if message == "" {
			message = resp.Status
		}
		return statusError(resp.StatusCode, message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "malformed store response", err)
	}
	return nil
}

func statusError(code int, message string) error {
	switch {
	case code == http.StatusNotFound:
		return apperr.NotFound(message)
	case code == http.StatusTooManyRequests:
		return apperr.RateLimited(message)
	case code == http.StatusConflict:
		return apperr.Conflict(message)
	case code >= http.StatusInternalServerError:
		return apperr.Unavailable(message)
	default:
		return apperr.BadRequest(message)
	}
}
