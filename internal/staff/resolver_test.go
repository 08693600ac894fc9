package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/logger"
)

type fakeRoster struct {
	staff []task.StaffMember
	err   error
	calls int
}

func (f *fakeRoster) ListStaff(_ context.Context, _ string) ([]task.StaffMember, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.staff, nil
}

func newResolver(source RosterSource) *Resolver {
	return NewResolver(source, time.Minute, logger.New("development"))
}

func TestResolve_NamedDefaultScopedToPropertyWinsFirst(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{
		{ID: "s1", Name: "Maria", Role: "random label", PropertyID: "201"},
		{ID: "s2", Name: "Somebody", Role: "Housekeeping", PropertyID: "101"},
		{ID: "s3", Name: "Maria", Role: "Housekeeping", PropertyID: "101"},
	}}

	member, err := newResolver(source).Resolve(context.Background(), DepartmentCleaning, "101")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if member == nil || member.ID != "s3" {
		t.Fatalf("expected scoped named default s3, got %+v", member)
	}
}

func TestResolve_RoleRegexUsedWhenNoNamedDefault(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{
		{ID: "s1", Name: "Jim", Role: "Pool attendant", PropertyID: "101"},
		{ID: "s2", Name: "Bob", Role: "Técnico de mantenimiento", PropertyID: "101"},
	}}

	member, err := newResolver(source).Resolve(context.Background(), DepartmentMaintenance, "101")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if member == nil || member.ID != "s2" {
		t.Fatalf("expected role match s2, got %+v", member)
	}
}

func TestResolve_FallsBackToUnscopedSearch(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{
		{ID: "s1", Name: "Jim", Role: "Pool attendant", PropertyID: "101"},
		{ID: "s2", Name: "Carlos", Role: "whatever", PropertyID: "999"},
	}}

	member, err := newResolver(source).Resolve(context.Background(), DepartmentMaintenance, "101")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if member == nil || member.ID != "s2" {
		t.Fatalf("expected unscoped named default s2, got %+v", member)
	}
}

func TestResolve_NeverNilWhenAnyStaffExist(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{
		{ID: "s1", Name: "Unrelated", Role: "gardener", PropertyID: "777"},
	}}

	member, err := newResolver(source).Resolve(context.Background(), DepartmentFrontDesk, "101")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if member == nil || member.ID != "s1" {
		t.Fatalf("expected first roster entry fallback, got %+v", member)
	}
}

func TestResolve_NilWithoutErrorWhenDirectoryEmpty(t *testing.T) {
	member, err := newResolver(&fakeRoster{}).Resolve(context.Background(), DepartmentCleaning, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if member != nil {
		t.Fatalf("expected nil member for empty directory, got %+v", member)
	}
}

func TestResolve_RosterIsCachedWithinTTL(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{{ID: "s1", Name: "Maria"}}}
	resolver := newResolver(source)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), DepartmentCleaning, ""); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 roster fetch, got %d", source.calls)
	}
}

func TestResolve_ServesStaleCacheWhenRefreshFails(t *testing.T) {
	source := &fakeRoster{staff: []task.StaffMember{{ID: "s1", Name: "Maria"}}}
	resolver := newResolver(source)

	if _, err := resolver.Resolve(context.Background(), DepartmentCleaning, ""); err != nil {
		t.Fatalf("warm-up Resolve: %v", err)
	}

	source.err = errors.New("store down")
	resolver.Invalidate()

	member, err := resolver.Resolve(context.Background(), DepartmentCleaning, "")
	if err != nil {
		t.Fatalf("expected stale cache, got error %v", err)
	}
	if member == nil || member.ID != "s1" {
		t.Fatalf("expected stale roster entry, got %+v", member)
	}
}
