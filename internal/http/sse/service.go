// Package sse streams task and view events to connected dashboards over
// Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"sync"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType identifies the SSE event kinds pushed to dashboards.
type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventStatusChanged EventType = "status_changed"
	EventRefresh       EventType = "refresh"
)

// Event is one SSE payload.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type client struct {
	id     uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting.
type Service struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

// New creates the SSE broadcast service.
func New(log *logger.Logger) *Service {
	return &Service{log: log, clients: make(map[uuid.UUID]*client)}
}

// BindBus re-broadcasts the task and view bus events to every connected
// dashboard.
func (s *Service) BindBus(bus events.Bus) {
	bus.Subscribe("tasks.created", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		s.Broadcast(Event{Type: EventTaskCreated, Data: e})
		return nil
	}))
	bus.Subscribe("tasks.status_changed", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		s.Broadcast(Event{Type: EventStatusChanged, Data: e})
		return nil
	}))
	bus.Subscribe("views.refresh", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		s.Broadcast(Event{Type: EventRefresh, Data: e})
		return nil
	}))
}

// Broadcast sends one event to every connected client. Slow clients drop
// events instead of blocking the publisher.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse event buffer full, dropping event", "client", c.id.String(), "type", string(event.Type))
		}
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.events)
	}
}

// ClientCount reports how many dashboards are connected.
func (s *Service) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Handler returns the Gin handler that holds one SSE connection open.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{id: uuid.New(), events: make(chan Event, 32)}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"clientId": cl.id})
		c.Writer.Flush()

		s.log.Info("sse client connected", "client", cl.id.String())

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Info("sse client disconnected", "client", cl.id.String())
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close shuts down the SSE service.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		close(c.events)
	}
	s.clients = make(map[uuid.UUID]*client)
}
