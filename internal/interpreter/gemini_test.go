package interpreter

import (
	"errors"
	"testing"

	"google.golang.org/genai"

	"opsdesk_backend/platform/apperr"
)

func TestClassifyError_QuotaIsRetryable(t *testing.T) {
	err := classifyError(genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"})
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("expected KindRateLimited, got %v", err)
	}
	if !apperr.IsRetryable(err) {
		t.Fatal("expected quota error to be retryable")
	}
}

func TestClassifyError_ServerErrorIsUnavailable(t *testing.T) {
	err := classifyError(genai.APIError{Code: 503, Status: "UNAVAILABLE"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestClassifyError_ClientErrorSurfaces(t *testing.T) {
	err := classifyError(genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"})
	if apperr.IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected KindInternal, got %v", err)
	}
}

func TestClassifyError_TransportFailureIsUnavailable(t *testing.T) {
	err := classifyError(errors.New("dial tcp: connection refused"))
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"{\"success\":true}":                      "{\"success\":true}",
		"```json\n{\"success\":true}\n```":        "{\"success\":true}",
		"```\n{\"success\":true}\n```":            "{\"success\":true}",
		"  {\"success\":true,\"message\":\"x\"} ": "{\"success\":true,\"message\":\"x\"}",
	}
	for in, want := range cases {
		if got := stripCodeFence(in); got != want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildContents_HistoryPrecedesUtterance(t *testing.T) {
	contents := buildContents("now", []Exchange{
		{Role: "user", Text: "before"},
		{Role: "assistant", Text: "reply"},
	})
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[1].Role != genai.RoleModel {
		t.Fatalf("expected assistant exchange to map to model role, got %q", contents[1].Role)
	}
	if contents[2].Parts[0].Text != "now" {
		t.Fatalf("expected utterance last, got %q", contents[2].Parts[0].Text)
	}
}
