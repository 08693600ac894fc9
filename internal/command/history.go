package command

import (
	"sync"

	"opsdesk_backend/internal/interpreter"
)

// historyLimit bounds how many prior exchanges travel with each
// interpreter call. Older turns are dropped oldest first.
const historyLimit = 6

// History is a bounded rolling window of operator/assistant exchanges.
type History struct {
	mu      sync.Mutex
	entries []interpreter.Exchange
}

// NewHistory creates an empty exchange history.
func NewHistory() *History {
	return &History{}
}

// Record appends one exchange, evicting the oldest beyond the window.
func (h *History) Record(role, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, interpreter.Exchange{Role: role, Text: text})
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
}

// Recent returns a copy of the current window, oldest first.
func (h *History) Recent() []interpreter.Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]interpreter.Exchange, len(h.entries))
	copy(out, h.entries)
	return out
}
