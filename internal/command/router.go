// Package command routes one operator utterance through an ordered pipeline:
// explicit directives, department-intent dispatch, the natural-language
// interpreter, then a local fallback answer. Each stage is strictly less
// specific than the one before it, and fallback policy lives only here.
package command

import (
	"context"
	"fmt"
	"strings"

	"opsdesk_backend/internal/agents"
	"opsdesk_backend/internal/events"
	"opsdesk_backend/internal/interpreter"
	"opsdesk_backend/internal/staff"
	"opsdesk_backend/internal/task"
	"opsdesk_backend/platform/apperr"
	"opsdesk_backend/platform/logger"
)

// Outcome sources, reported so callers can tell which stage answered.
const (
	SourceDirective   = "directive"
	SourceAgent       = "agent"
	SourceInterpreter = "interpreter"
	SourceLocal       = "local"
)

// Outcome is the terminal result of routing one utterance.
type Outcome struct {
	Reply       string     `json:"reply"`
	TaskCreated bool       `json:"taskCreated"`
	Task        *task.Task `json:"task,omitempty"`
	Source      string     `json:"source"`
}

// TaskResetter bulk-reverts completed tasks. Implemented by the store client.
type TaskResetter interface {
	ResetDoneTasks(ctx context.Context) (int, error)
}

// RosterReader exposes the cached staff directory. Implemented by the staff
// resolver; the local answer stage uses it so free-form questions about the
// team are answered without a remote call.
type RosterReader interface {
	Roster(ctx context.Context) ([]task.StaffMember, error)
}

// Router owns the command pipeline.
type Router struct {
	registry        *agents.Registry
	interp          interpreter.Interpreter
	resetter        TaskResetter
	roster          RosterReader
	bus             events.Bus
	history         *History
	defaultProperty string
	log             *logger.Logger
}

// NewRouter wires the command pipeline. interp may be nil when the
// interpreter is unconfigured; every local stage keeps working without it.
func NewRouter(registry *agents.Registry, interp interpreter.Interpreter, resetter TaskResetter, roster RosterReader, bus events.Bus, defaultProperty string, log *logger.Logger) *Router {
	if defaultProperty == "" {
		defaultProperty = "101"
	}
	return &Router{
		registry:        registry,
		interp:          interp,
		resetter:        resetter,
		roster:          roster,
		bus:             bus,
		history:         NewHistory(),
		defaultProperty: defaultProperty,
		log:             log,
	}
}

// Handle routes one utterance and returns the first terminal outcome.
func (r *Router) Handle(ctx context.Context, text string) (Outcome, error) {
	if d := parseDirective(text); d.kind != directiveNone {
		return r.handleDirective(ctx, d)
	}

	if dept, ok := detectIntent(text); ok {
		return r.handleIntent(ctx, text, dept)
	}

	if r.interp != nil {
		outcome, err := r.interpret(ctx, text)
		if err == nil {
			return outcome, nil
		}
		if !apperr.IsRetryable(err) {
			return Outcome{}, err
		}
		r.log.Warn("interpreter unavailable, answering locally", "error", err)
	}

	return r.answerLocally(ctx, text), nil
}

func (r *Router) handleDirective(ctx context.Context, d directive) (Outcome, error) {
	switch d.kind {
	case directiveHelp:
		return Outcome{Reply: helpText, Source: SourceDirective}, nil

	case directiveResetTasks:
		count, err := r.resetter.ResetDoneTasks(ctx)
		if err != nil {
			return Outcome{}, err
		}
		r.bus.Publish(ctx, events.RefreshRequested{
			BaseEvent: events.NewBaseEvent(),
			Reason:    "tasks reset",
		})
		return Outcome{
			Reply:  fmt.Sprintf("Reset %d completed tasks back to pending.", count),
			Source: SourceDirective,
		}, nil

	case directiveTestTask:
		dept, ok := detectIntent(d.description)
		if !ok {
			dept = staff.DepartmentGeneral
		}
		return r.dispatchTask(ctx, agents.TaskRequest{
			PropertyID:  d.propertyID,
			Description: d.description,
			Department:  dept,
			Source:      SourceDirective,
		})
	}

	return Outcome{}, fmt.Errorf("unhandled directive kind %d", d.kind)
}

// handleIntent runs the department-intent stage: the interpreter gets the
// first shot at precise extraction, and a retryable interpreter failure
// falls back to local extraction so operational requests never stall on a
// remote quota.
func (r *Router) handleIntent(ctx context.Context, text string, dept staff.Department) (Outcome, error) {
	if r.interp != nil {
		outcome, err := r.interpret(ctx, text)
		if err == nil {
			return outcome, nil
		}
		if !apperr.IsRetryable(err) {
			return Outcome{}, err
		}
		r.log.Warn("interpreter unavailable, using local extraction",
			"department", string(dept), "error", err)
	}

	return r.dispatchTask(ctx, agents.TaskRequest{
		PropertyID:  extractRoom(text, r.defaultProperty),
		Description: text,
		Department:  dept,
		Source:      SourceAgent,
	})
}

func (r *Router) dispatchTask(ctx context.Context, req agents.TaskRequest) (Outcome, error) {
	exec, err := r.registry.Get(agents.ExecutorOperations)
	if err != nil {
		return Outcome{}, err
	}

	result, err := exec.Execute(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	r.history.Record("user", req.Description)
	r.history.Record("assistant", result.DisplayMessage)

	return Outcome{
		Reply:       result.DisplayMessage,
		TaskCreated: result.TaskCreated,
		Task:        result.Task,
		Source:      req.Source,
	}, nil
}

func (r *Router) interpret(ctx context.Context, text string) (Outcome, error) {
	result, err := r.interp.Interpret(ctx, text, r.history.Recent())
	if err != nil {
		return Outcome{}, err
	}

	r.history.Record("user", text)
	r.history.Record("assistant", result.Message)

	if result.TaskCreated && result.Task != nil {
		r.bus.Publish(ctx, events.TaskCreated{
			BaseEvent:   events.NewBaseEvent(),
			TaskID:      result.Task.ID,
			PropertyID:  result.Task.PropertyID,
			Description: result.Task.Description,
			Status:      result.Task.Status,
			StaffName:   result.Task.AssignedStaffName,
			Source:      SourceInterpreter,
		})
		r.bus.Publish(ctx, events.RefreshRequested{
			BaseEvent: events.NewBaseEvent(),
			Reason:    "interpreter created task",
		})
	}

	return Outcome{
		Reply:       result.Message,
		TaskCreated: result.TaskCreated,
		Task:        result.Task,
		Source:      SourceInterpreter,
	}, nil
}

// answerLocally handles free-form text that triggered nothing. Questions
// about the team are answered from the cached staff directory; anything else
// gets pointed at what the system can actually do.
func (r *Router) answerLocally(ctx context.Context, text string) Outcome {
	r.history.Record("user", text)

	reply := ""
	if rosterQuestionPattern.MatchString(text) {
		reply = r.describeRoster(ctx)
	}
	if reply == "" {
		reply = "I can create and track operational tasks. Describe a problem with a room number, or send /help for the command list."
	}

	r.history.Record("assistant", reply)
	return Outcome{Reply: reply, Source: SourceLocal}
}

// describeRoster renders the cached directory as one line per staff member.
// An empty string means the directory is unavailable and the caller should
// fall through to the generic answer.
func (r *Router) describeRoster(ctx context.Context) string {
	if r.roster == nil {
		return ""
	}
	roster, err := r.roster.Roster(ctx)
	if err != nil || len(roster) == 0 {
		if err != nil {
			r.log.Warn("staff directory unavailable for local answer", "error", err)
		}
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current staff (%d):", len(roster))
	for _, member := range roster {
		b.WriteString("\n- ")
		b.WriteString(member.Name)
		if member.Role != "" {
			fmt.Fprintf(&b, " (%s)", member.Role)
		}
		if member.PropertyID != "" {
			fmt.Fprintf(&b, ", property %s", member.PropertyID)
		}
	}
	return b.String()
}
