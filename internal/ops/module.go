// Package ops provides the operational coordination domain module: command
// routing, task views and the maintenance endpoints.
package ops

import (
	"opsdesk_backend/internal/command"
	"opsdesk_backend/internal/events"
	apphttp "opsdesk_backend/internal/http"
	"opsdesk_backend/internal/http/sse"
	"opsdesk_backend/internal/ops/handler"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/view"
	"opsdesk_backend/platform/validator"
)

// Module represents the operational coordination module.
type Module struct {
	handler *handler.Handler
	stream  *sse.Service
}

// NewModule wires the operational module from its already constructed parts.
func NewModule(router *command.Router, views *view.Manager, storeClient *store.Client, bus events.Bus, stream *sse.Service, val *validator.Validator) *Module {
	return &Module{
		handler: handler.New(router, views, storeClient, bus, val),
		stream:  stream,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "ops"
}

// RegisterRoutes registers the module's routes under /api/v1.
// The command endpoint carries the stricter per-IP rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/commands", ctx.CommandRateLimiter.RateLimit(), m.handler.SubmitCommand)
	ctx.V1.GET("/views/worker/:staff/queue", m.handler.WorkerQueue)
	ctx.V1.GET("/views/board", m.handler.Board)
	ctx.V1.GET("/views/productivity", m.handler.Productivity)
	ctx.V1.POST("/tasks/:id/status", m.handler.UpdateTaskStatus)
	ctx.V1.POST("/admin/reset-tasks", m.handler.ResetTasks)
	ctx.V1.GET("/events", m.stream.Handler())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
