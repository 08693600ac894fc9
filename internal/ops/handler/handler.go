// Package handler exposes the operational API over HTTP.
package handler

import (
	"net/http"

	"opsdesk_backend/internal/command"
	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/ops/transport"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/internal/view"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/httpkit"
	"opsdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the operational core.
type Handler struct {
	router *command.Router
	views  *view.Manager
	store  *store.Client
	bus    events.Bus
	val    *validator.Validator
}

// New creates the operational API handler.
func New(router *command.Router, views *view.Manager, storeClient *store.Client, bus events.Bus, val *validator.Validator) *Handler {
	return &Handler{router: router, views: views, store: storeClient, bus: bus, val: val}
}

// SubmitCommand handles POST /api/v1/commands
func (h *Handler) SubmitCommand(c *gin.Context) {
	var req transport.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	outcome, err := h.router.Handle(c.Request.Context(), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.CommandResponse{Outcome: outcome})
}

// WorkerQueue handles GET /api/v1/views/worker/:staff/queue
func (h *Handler) WorkerQueue(c *gin.Context) {
	staffName := c.Param("staff")
	if staffName == "" {
		httpkit.Error(c, http.StatusBadRequest, "staff name is required", nil)
		return
	}

	queue := h.views.Worker(c.Request.Context(), staffName).Queue()
	httpkit.OK(c, transport.WorkerQueueResponse{Queue: queue})
}

// Board handles GET /api/v1/views/board
func (h *Handler) Board(c *gin.Context) {
	httpkit.OK(c, transport.BoardResponse{Board: h.views.Board().Buckets()})
}

// Productivity handles GET /api/v1/views/productivity
func (h *Handler) Productivity(c *gin.Context) {
	httpkit.OK(c, transport.ProductivityResponse{Stats: h.views.Productivity().Stats()})
}

// UpdateTaskStatus handles POST /api/v1/tasks/:id/status. The mutation goes
// through the board view's optimistic path when the task is known there;
// tasks the board has not seen yet are patched against the store directly.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	ctx := c.Request.Context()
	err := h.views.Board().Mutate(ctx, taskID, req.Status)
	if err != nil && apperr.GetKind(err) == apperr.KindNotFound {
		var patched task.Task
		patched, err = h.store.PatchTaskStatus(ctx, taskID, req.Status)
		if err == nil {
			h.bus.Publish(ctx, events.TaskStatusChanged{
				BaseEvent: events.NewBaseEvent(),
				TaskID:    taskID,
				NewStatus: patched.Status,
				View:      req.View,
			})
		}
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"id": taskID, "status": task.Classify(req.Status)})
}

// ResetTasks handles POST /api/v1/admin/reset-tasks
func (h *Handler) ResetTasks(c *gin.Context) {
	count, err := h.store.ResetDoneTasks(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	h.bus.Publish(c.Request.Context(), events.RefreshRequested{
		BaseEvent: events.NewBaseEvent(),
		Reason:    "admin reset",
	})

	httpkit.OK(c, transport.ResetResponse{Reset: count})
}
