package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/config"
	"opsdesk_backend/platform/logger"
)

const systemInstruction = `You are the operations assistant for a small hospitality property.
You receive one operator message plus up to six prior exchanges.
If the message asks for operational work (cleaning, maintenance, supplies, a reported fault),
respond with JSON: {"success": true, "message": "<short confirmation for the operator>",
"taskCreated": true, "task": {"propertyId": "<room or property number>", "description": "<what to do>",
"status": "Pending"}}.
For anything else respond with JSON: {"success": true, "message": "<helpful answer>", "taskCreated": false}.
Answer in the operator's language. Respond with JSON only.`

// GeminiInterpreter implements Interpreter against the Gemini API.
type GeminiInterpreter struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGemini creates the Gemini-backed interpreter. Returns nil when no API
// key is configured; the router treats a nil interpreter as unreachable.
func NewGemini(ctx context.Context, cfg config.InterpreterConfig, log *logger.Logger) (*GeminiInterpreter, error) {
	if !cfg.IsInterpreterEnabled() {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiInterpreter{
		client: client,
		model:  cfg.GetGeminiModel(),
		log:    log,
	}, nil
}

// Interpret sends the utterance plus bounded history and parses the JSON verdict.
func (g *GeminiInterpreter) Interpret(ctx context.Context, text string, history []Exchange) (Result, error) {
	contents := buildContents(text, history)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return Result{}, classifyError(err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Result{}, apperr.Internal("interpreter returned an empty response")
	}

	var result Result
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		if g.log != nil {
			g.log.Error("interpreter returned malformed JSON", "error", err, "raw", raw)
		}
		return Result{}, apperr.Wrap(apperr.KindInternal, "malformed interpreter response", err)
	}
	return result, nil
}

func buildContents(text string, history []Exchange) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, exchange := range history {
		role := genai.Role(genai.RoleUser)
		if exchange.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(exchange.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	return contents
}

// classifyError splits interpreter failures per the router's fallback policy:
// quota and transient server errors are retryable (local bypass), everything
// else is surfaced to the operator.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests,
			strings.Contains(apiErr.Status, "RESOURCE_EXHAUSTED"):
			return apperr.Wrap(apperr.KindRateLimited, "interpreter quota exhausted", err)
		case apiErr.Code >= http.StatusInternalServerError:
			return apperr.Wrap(apperr.KindUnavailable, "interpreter unavailable", err)
		default:
			return apperr.Wrap(apperr.KindInternal, "interpreter rejected the request", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindUnavailable, "interpreter timed out", err)
	}
	// Transport-level failure without an API status.
	return apperr.Wrap(apperr.KindUnavailable, "interpreter unreachable", err)
}

// stripCodeFence tolerates models wrapping JSON in markdown fences.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
