package view

import (
	"sort"
	"time"

	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/store"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// ProductivityView aggregates per-staff throughput from the task set.
type ProductivityView struct {
	*Synchronizer
}

// StaffStats is one staff member's row in the productivity report.
type StaffStats struct {
	StaffName       string     `json:"staffName"`
	DoneCount       int        `json:"doneCount"`
	ActiveCount     int        `json:"activeCount"`
	LastCompletedAt *time.Time `json:"lastCompletedAt,omitempty"`
}

// NewProductivityView creates the productivity view.
func NewProductivityView(lister TaskLister, patcher StatusPatcher, bus events.Bus, interval time.Duration, log *logger.Logger) *ProductivityView {
	sync := NewSynchronizer("productivity", lister, patcher, store.TaskFilter{}, bus, interval, log)
	return &ProductivityView{Synchronizer: sync}
}

// Stats computes per-staff totals over the current snapshot. Tasks without
// an assignee are excluded; rows sort by done count descending, then name.
func (v *ProductivityView) Stats() []StaffStats {
	byName := make(map[string]*StaffStats)

	for _, t := range v.Snapshot() {
		if t.AssignedStaffName == "" {
			continue
		}
		row, ok := byName[t.AssignedStaffName]
		if !ok {
			row = &StaffStats{StaffName: t.AssignedStaffName}
			byName[t.AssignedStaffName] = row
		}

		switch t.Canonical() {
		case task.StatusDone:
			row.DoneCount++
			if completed := completionTime(t); completed != nil {
				if row.LastCompletedAt == nil || completed.After(*row.LastCompletedAt) {
					row.LastCompletedAt = completed
				}
			}
		default:
			row.ActiveCount++
		}
	}

	rows := make([]StaffStats, 0, len(byName))
	for _, row := range byName {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DoneCount != rows[j].DoneCount {
			return rows[i].DoneCount > rows[j].DoneCount
		}
		return rows[i].StaffName < rows[j].StaffName
	})
	return rows
}

func completionTime(t task.Task) *time.Time {
	if t.CompletedAt != nil {
		return t.CompletedAt
	}
	return t.UpdatedAt
}
