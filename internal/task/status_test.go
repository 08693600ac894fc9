package task

import "testing"

func TestClassify_KnownAliasesMapToSingleBucket(t *testing.T) {
	cases := map[string]Status{
		"Pending":     StatusPending,
		"open":        StatusPending,
		"NEW":         StatusPending,
		"assigned":    StatusInProgress,
		"Queued":      StatusInProgress,
		"started":     StatusInProgress,
		"ACCEPTED":    StatusInProgress,
		"working":     StatusInProgress,
		"In Progress": StatusInProgress,
		"in_progress": StatusInProgress,
		"completed":   StatusDone,
		"Closed":      StatusDone,
		"done":        StatusDone,
		"finished":    StatusDone,
	}

	for raw, want := range cases {
		if got := Classify(raw); got != want {
			t.Fatalf("Classify(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestClassify_UnknownStringsFailOpenToPending(t *testing.T) {
	for _, raw := range []string{"", "   ", "weird-legacy-state", "archived", "on hold??"} {
		if got := Classify(raw); got != StatusPending {
			t.Fatalf("Classify(%q) = %q, want Pending", raw, got)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	for _, raw := range []string{"accepted", "completed", "garbage"} {
		first := Classify(raw)
		if second := Classify(string(first)); second != first {
			t.Fatalf("Classify not idempotent for %q: %q then %q", raw, first, second)
		}
	}
}

func TestStatus_IsActive(t *testing.T) {
	if !StatusPending.IsActive() || !StatusInProgress.IsActive() {
		t.Fatal("expected Pending and InProgress to be active")
	}
	if StatusDone.IsActive() {
		t.Fatal("expected Done to be inactive")
	}
}
