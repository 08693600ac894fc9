// Package task defines the operational task model and the canonical
// status lattice shared by every observer view.
package task

import "strings"

// Status is the canonical task state. The wire format carries a larger,
// historically grown vocabulary; Classify folds it into this set.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// statusAliases maps known legacy wire statuses (lowercased) to canonical
// states. The table was audited against historical store data; anything
// missing here falls open into Pending so a task is never silently dropped.
var statusAliases = map[string]Status{
	"pending":     StatusPending,
	"open":        StatusPending,
	"new":         StatusPending,
	"todo":        StatusPending,
	"created":     StatusPending,
	"unassigned":  StatusPending,
	"assigned":    StatusInProgress,
	"queued":      StatusInProgress,
	"started":     StatusInProgress,
	"accepted":    StatusInProgress,
	"working":     StatusInProgress,
	"inprogress":  StatusInProgress,
	"in progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"done":        StatusDone,
	"completed":   StatusDone,
	"complete":    StatusDone,
	"closed":      StatusDone,
	"finished":    StatusDone,
	"resolved":    StatusDone,
}

// Classify maps a raw wire status onto the canonical lattice.
// It is pure and idempotent: unknown strings classify as Pending,
// the most actionable bucket.
func Classify(raw string) Status {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := statusAliases[normalized]; ok {
		return status
	}
	return StatusPending
}

// IsActive reports whether a canonical status still needs worker attention.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}
