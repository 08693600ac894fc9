package staff

import (
	"context"
	"strings"
	"sync"
	"time"

	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

// RosterSource lists staff records. Implemented by the store client.
type RosterSource interface {
	ListStaff(ctx context.Context, propertyID string) ([]task.StaffMember, error)
}

// Resolver selects the staff member to notify for a department and property.
// The roster is cached with a TTL so every task creation does not hit the
// store; resolution itself is deterministic over the cached snapshot.
type Resolver struct {
	source RosterSource
	ttl    time.Duration
	log    *logger.Logger

	mu        sync.Mutex
	roster    []task.StaffMember
	fetchedAt time.Time
}

// NewResolver creates a staff resolver backed by the given roster source.
func NewResolver(source RosterSource, ttl time.Duration, log *logger.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{source: source, ttl: ttl, log: log}
}

// Resolve walks the fallback ladder, first match wins:
// named defaults scoped to the property, role-pattern scoped, both again
// unscoped, then any staff member at all. A nil result with nil error means
// the directory is empty; callers proceed with a staff-less task.
func (r *Resolver) Resolve(ctx context.Context, dept Department, propertyID string) (*task.StaffMember, error) {
	roster, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, nil
	}

	if member := matchNamed(roster, dept, propertyID); member != nil {
		return member, nil
	}
	if member := matchRole(roster, dept, propertyID); member != nil {
		return member, nil
	}
	if propertyID != "" {
		if member := matchNamed(roster, dept, ""); member != nil {
			return member, nil
		}
		if member := matchRole(roster, dept, ""); member != nil {
			return member, nil
		}
	}

	// Someone is better than no one: task creation must not fail here.
	first := roster[0]
	if r.log != nil {
		r.log.Warn("staff resolution fell through to first roster entry",
			"department", string(dept), "propertyId", propertyID, "staff", first.Name)
	}
	return &first, nil
}

// Roster returns the cached staff directory, refreshing it when the TTL
// has lapsed. Callers must not mutate the returned slice.
func (r *Resolver) Roster(ctx context.Context) ([]task.StaffMember, error) {
	return r.snapshot(ctx)
}

// Invalidate drops the cached roster so the next Resolve refetches.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchedAt = time.Time{}
}

func (r *Resolver) snapshot(ctx context.Context) ([]task.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if time.Since(r.fetchedAt) < r.ttl && r.roster != nil {
		return r.roster, nil
	}

	roster, err := r.source.ListStaff(ctx, "")
	if err != nil {
		// A stale roster beats failing the whole task-creation flow.
		if r.roster != nil {
			if r.log != nil {
				r.log.Warn("staff roster refresh failed, serving stale cache", "error", err)
			}
			return r.roster, nil
		}
		return nil, err
	}

	r.roster = roster
	r.fetchedAt = time.Now()
	return r.roster, nil
}

func matchNamed(roster []task.StaffMember, dept Department, propertyID string) *task.StaffMember {
	for _, name := range dept.defaultNames() {
		for i := range roster {
			if !strings.EqualFold(roster[i].Name, name) {
				continue
			}
			if propertyID != "" && roster[i].PropertyID != propertyID {
				continue
			}
			member := roster[i]
			return &member
		}
	}
	return nil
}

func matchRole(roster []task.StaffMember, dept Department, propertyID string) *task.StaffMember {
	pattern := dept.rolePattern()
	for i := range roster {
		if propertyID != "" && roster[i].PropertyID != propertyID {
			continue
		}
		if pattern.MatchString(roster[i].Role) {
			member := roster[i]
			return &member
		}
	}
	return nil
}
