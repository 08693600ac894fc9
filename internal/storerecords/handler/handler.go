// Package handler exposes the record store's HTTP contract.
package handler

import (
	"net/http"

	"opsdesk_backend/internal/storerecords/repository"
	"opsdesk_backend/platform/httpkit"
	"opsdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for the record store.
type Handler struct {
	repo *repository.Repo
	val  *validator.Validator
}

// New creates the record store handler.
func New(repo *repository.Repo, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// RegisterRoutes mounts the store contract on the engine root.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/tasks", h.ListTasks)
	engine.POST("/tasks", h.CreateTask)
	engine.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	engine.POST("/tasks/reset", h.ResetTasks)
	engine.GET("/staff", h.ListStaff)
}

// CreateTaskRequest is the POST /tasks body.
type CreateTaskRequest struct {
	PropertyID         string `json:"propertyId" validate:"required,min=1,max=40"`
	PropertyName       string `json:"propertyName" validate:"max=200"`
	Description        string `json:"description" validate:"max=2000"`
	Status             string `json:"status" validate:"max=40"`
	AssignedStaffID    string `json:"assignedStaffId" validate:"omitempty,uuid"`
	AssignedStaffName  string `json:"assignedStaffName" validate:"max=200"`
	AssignedStaffPhone string `json:"assignedStaffPhone" validate:"max=40"`
}

// UpdateStatusRequest is the PATCH /tasks/:id/status body.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,min=1,max=40"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListTasks handles GET /tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.repo.ListTasks(c.Request.Context(), repository.ListFilter{
		WorkerName: c.Query("workerName"),
		Status:     c.Query("status"),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tasks)
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	params := repository.CreateTaskParams{
		PropertyID:         req.PropertyID,
		PropertyName:       req.PropertyName,
		Description:        req.Description,
		Status:             req.Status,
		AssignedStaffName:  req.AssignedStaffName,
		AssignedStaffPhone: req.AssignedStaffPhone,
	}
	if req.AssignedStaffID != "" {
		id, err := uuid.Parse(req.AssignedStaffID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid staff id", nil)
			return
		}
		params.AssignedStaffID = &id
	}

	created, err := h.repo.CreateTask(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, created)
}

// UpdateTaskStatus handles PATCH /tasks/:id/status
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task id", nil)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	updated, err := h.repo.UpdateTaskStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, updated)
}

// ResetTasks handles POST /tasks/reset
func (h *Handler) ResetTasks(c *gin.Context) {
	count, err := h.repo.ResetDoneTasks(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reset": count})
}

// ListStaff handles GET /staff
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.repo.ListStaff(c.Request.Context(), c.Query("propertyId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, staff)
}
