// Package dispatch creates task records against the remote store and fans
// the fact out to observers and staff notifications.
package dispatch

import (
	"context"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// TaskCreator persists task records. Implemented by the store client.
type TaskCreator interface {
	CreateTask(ctx context.Context, payload store.CreateTaskPayload) (task.Task, error)
}

// Notifier delivers a text message to a staff phone. Implemented by the
// notify gateway client; may be nil when the gateway is unconfigured.
type Notifier interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// CreateTaskParams carries the resolved context for one new task.
type CreateTaskParams struct {
	PropertyID   string
	PropertyName string
	Description  string
	Status       string
	Department   staff.Department
	Staff        *task.StaffMember
	Source       string
}

// Service is the task dispatch service.
type Service struct {
	creator  TaskCreator
	bus      events.Bus
	notifier Notifier
	log      *logger.Logger
}

// New creates a dispatch service. notifier may be nil.
func New(creator TaskCreator, bus events.Bus, notifier Notifier, log *logger.Logger) *Service {
	return &Service{creator: creator, bus: bus, notifier: notifier, log: log}
}

// CreateTask persists one task and publishes tasks.created. Persistence
// failure is returned to the caller untouched; this service never retries.
// The staff notification is best effort and cannot fail the creation.
func (s *Service) CreateTask(ctx context.Context, params CreateTaskParams) (task.Task, error) {
	payload := store.CreateTaskPayload{
		PropertyID:   params.PropertyID,
		PropertyName: params.PropertyName,
		Description:  params.Description,
		Status:       params.Status,
	}
	if params.Staff != nil {
		payload.AssignedStaffID = params.Staff.ID
		payload.AssignedStaffName = params.Staff.Name
		payload.AssignedStaffPhone = params.Staff.Phone
	}

	created, err := s.creator.CreateTask(ctx, payload)
	if err != nil {
		return task.Task{}, err
	}

	s.log.Info("task created",
		"taskId", created.ID, "propertyId", created.PropertyID, "source", params.Source)

	s.bus.Publish(ctx, events.TaskCreated{
		BaseEvent:   events.NewBaseEvent(),
		TaskID:      created.ID,
		PropertyID:  created.PropertyID,
		Description: created.Description,
		Status:      created.Status,
		StaffName:   payload.AssignedStaffName,
		Source:      params.Source,
	})

	s.notifyStaff(ctx, params, created)
	return created, nil
}

func (s *Service) notifyStaff(ctx context.Context, params CreateTaskParams, created task.Task) {
	if s.notifier == nil || params.Staff == nil || params.Staff.Phone == "" {
		return
	}

	property := params.PropertyName
	if property == "" {
		property = params.PropertyID
	}
	message := BuildNotification(params.Department, params.Staff.Name, property, created.DisplayDescription())

	if err := s.notifier.SendMessage(ctx, params.Staff.Phone, message); err != nil {
		s.log.Warn("staff notification failed",
			"taskId", created.ID, "staff", params.Staff.Name, "error", err)
	}
}
