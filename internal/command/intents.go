package command

import (
	"regexp"

	"opsdesk_backend/internal/staff"
)

// Department intent triggers. The patterns are deliberately broad and
// bilingual; tighter extraction is the interpreter's job, these only decide
// whether an utterance is an operational request at all.
var intentPatterns = []struct {
	dept    staff.Department
	pattern *regexp.Regexp
}{
	{staff.DepartmentCleaning, regexp.MustCompile(`(?i)towel|toalla|clean|limpi|housekeep|sheet|sábana|sabana|trash|basura|amenit`)},
	{staff.DepartmentMaintenance, regexp.MustCompile(`(?i)broken|leak|sink|toilet|shower|repair|fix|roto|rota|fuga|gotea|no\s+funciona|descompuest|a/?c\b|air\s*condition|aire|light|luz|lock|cerradura`)},
	{staff.DepartmentFrontDesk, regexp.MustCompile(`(?i)check.?in|check.?out|front\s*desk|reception|recepci|key\s*card|llave|guest\s+waiting`)},
}

// detectIntent returns the department an utterance triggers, if any.
func detectIntent(text string) (staff.Department, bool) {
	for _, entry := range intentPatterns {
		if entry.pattern.MatchString(text) {
			return entry.dept, true
		}
	}
	return "", false
}

// Free-form questions about the team, answered from the cached staff
// directory instead of the interpreter.
var rosterQuestionPattern = regexp.MustCompile(`(?i)\bwho\b|\bstaff\b|\broster\b|\bteam\b|on\s+duty|qui[eé]n|\bpersonal\b|\bequipo\b|de\s+turno`)

var roomNumberPattern = regexp.MustCompile(`\b(\d{1,4})\b`)

// extractRoom pulls the first plausible room number from an utterance,
// falling back to the configured default property.
func extractRoom(text, fallback string) string {
	if m := roomNumberPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return fallback
}
