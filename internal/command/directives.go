package command

import (
	"regexp"
	"strings"
)

// Directives are the explicit operator commands that must keep working with
// the interpreter offline. They are matched before any other stage.

type directiveKind int

const (
	directiveNone directiveKind = iota
	directiveTestTask
	directiveResetTasks
	directiveHelp
)

type directive struct {
	kind        directiveKind
	propertyID  string
	description string
}

var (
	slashTestTaskPattern = regexp.MustCompile(`^/test-task\s+(\S+)\s+(.+)$`)
	wordTestTaskPattern  = regexp.MustCompile(`(?i)^create\s+(?:a\s+)?test\s+task\s+at\s+room\s+(\S+)\s+(.+)$`)
)

// parseDirective recognizes the explicit command forms. Returns
// directiveNone when the text is not a directive at all.
func parseDirective(text string) directive {
	trimmed := strings.TrimSpace(text)

	switch strings.ToLower(trimmed) {
	case "/reset-tasks":
		return directive{kind: directiveResetTasks}
	case "/help":
		return directive{kind: directiveHelp}
	}

	if m := slashTestTaskPattern.FindStringSubmatch(trimmed); m != nil {
		return directive{kind: directiveTestTask, propertyID: m[1], description: strings.TrimSpace(m[2])}
	}
	if m := wordTestTaskPattern.FindStringSubmatch(trimmed); m != nil {
		return directive{kind: directiveTestTask, propertyID: m[1], description: strings.TrimSpace(m[2])}
	}

	return directive{kind: directiveNone}
}

const helpText = `Available commands:
/test-task <room> <description> - create a task for a room
/reset-tasks - move every completed task back to pending
/help - show this message
You can also describe a problem in plain English or Spanish, for example "the sink is broken in 301".`
