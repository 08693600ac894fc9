// Package repository persists task and staff records in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdesk_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskNotFoundMessage = "task not found"

// TaskRecord is one stored task row.
type TaskRecord struct {
	ID                 uuid.UUID  `json:"id"`
	PropertyID         string     `json:"propertyId"`
	PropertyName       string     `json:"propertyName,omitempty"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"`
	AssignedStaffID    *uuid.UUID `json:"assignedStaffId,omitempty"`
	AssignedStaffName  string     `json:"assignedStaffName,omitempty"`
	AssignedStaffPhone string     `json:"assignedStaffPhone,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// StaffRecord is one stored staff row.
type StaffRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	PropertyID string    `json:"propertyId,omitempty"`
}

// CreateTaskParams contains the fields accepted when creating a task.
type CreateTaskParams struct {
	PropertyID         string
	PropertyName       string
	Description        string
	Status             string
	AssignedStaffID    *uuid.UUID
	AssignedStaffName  string
	AssignedStaffPhone string
}

// ListFilter narrows task listings.
type ListFilter struct {
	WorkerName string
	Status     string
}

// Repo implements the record store with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates the record store repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const taskColumns = `id, property_id, property_name, description, status,
	assigned_staff_id, assigned_staff_name, assigned_staff_phone,
	created_at, updated_at, completed_at`

// ListTasks returns tasks matching the filter, oldest first.
func (r *Repo) ListTasks(ctx context.Context, filter ListFilter) ([]TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conditions []string
	var args []interface{}

	if filter.WorkerName != "" {
		args = append(args, filter.WorkerName)
		conditions = append(conditions, fmt.Sprintf("assigned_staff_name = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []TaskRecord{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts one task and returns the stored row.
func (r *Repo) CreateTask(ctx context.Context, params CreateTaskParams) (TaskRecord, error) {
	status := params.Status
	if status == "" {
		status = "pending"
	}

	query := `
		INSERT INTO tasks (property_id, property_name, description, status,
			assigned_staff_id, assigned_staff_name, assigned_staff_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		params.PropertyID, params.PropertyName, params.Description, status,
		params.AssignedStaffID, params.AssignedStaffName, params.AssignedStaffPhone)

	t, err := scanTask(row)
	if err != nil {
		return TaskRecord{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// UpdateTaskStatus writes a new status. Last write wins; completion stamps
// completed_at, any other status clears it.
func (r *Repo) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status string) (TaskRecord, error) {
	query := `
		UPDATE tasks
		SET status = $2,
			updated_at = now(),
			completed_at = CASE WHEN $3 THEN now() ELSE NULL END
		WHERE id = $1
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, id, status, isDoneStatus(status))

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaskRecord{}, apperr.NotFound(taskNotFoundMessage)
		}
		return TaskRecord{}, fmt.Errorf("update task status: %w", err)
	}
	return t, nil
}

// ResetDoneTasks reverts every completed task back to pending and reports
// how many rows changed.
func (r *Repo) ResetDoneTasks(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = 'pending', updated_at = now(), completed_at = NULL
		WHERE lower(status) IN ('done', 'completed', 'complete', 'closed', 'finished', 'resolved')`)
	if err != nil {
		return 0, fmt.Errorf("reset done tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListStaff returns staff, optionally scoped to one property.
func (r *Repo) ListStaff(ctx context.Context, propertyID string) ([]StaffRecord, error) {
	query := `SELECT id, name, role, phone, property_id FROM staff`
	var args []interface{}
	if propertyID != "" {
		query += ` WHERE property_id = $1`
		args = append(args, propertyID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	staff := []StaffRecord{}
	for rows.Next() {
		var s StaffRecord
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.Phone, &s.PropertyID); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTask(row pgx.Row) (TaskRecord, error) {
	var t TaskRecord
	err := row.Scan(
		&t.ID, &t.PropertyID, &t.PropertyName, &t.Description, &t.Status,
		&t.AssignedStaffID, &t.AssignedStaffName, &t.AssignedStaffPhone,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	return t, err
}

func isDoneStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "done", "completed", "complete", "closed", "finished", "resolved":
		return true
	default:
		return false
	}
}
