package task

import "time"

// Task is a unit of operational work as represented by the remote store.
// Status carries the raw wire string; use Canonical for bucket decisions.
type Task struct {
	ID                 string     `json:"id"`
	PropertyID         string     `json:"propertyId"`
	PropertyName       string     `json:"propertyName,omitempty"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"`
	AssignedStaffName  string     `json:"assignedStaffName,omitempty"`
	AssignedStaffPhone string     `json:"assignedStaffPhone,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// Canonical returns the canonical status bucket for this task.
func (t Task) Canonical() Status {
	return Classify(t.Status)
}

// DisplayDescription returns the free-text description, falling back to a
// generic task label when the store record carries none.
func (t Task) DisplayDescription() string {
	if t.Description != "" {
		return t.Description
	}
	return "Operational task"
}

// StaffMember is a person who can be assigned work.
type StaffMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
}
