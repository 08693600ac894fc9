// Package staff resolves which staff member should be notified for a
// department, with deterministic fallbacks when no exact match exists.
package staff

import "regexp"

// Department is a coarse work category used to select staff and templates.
type Department string

const (
	DepartmentCleaning    Department = "cleaning"
	DepartmentMaintenance Department = "maintenance"
	DepartmentFrontDesk   Department = "frontDesk"
	DepartmentGeneral     Department = "general"
)

// rolePatterns matches free-text role labels against a department.
// Labels are historical and bilingual, so matching stays loose.
var rolePatterns = map[Department]*regexp.Regexp{
	DepartmentCleaning:    regexp.MustCompile(`(?i)clean|housekeep|limpieza|camarera|maid`),
	DepartmentMaintenance: regexp.MustCompile(`(?i)mainten|repair|técnic|tecnic|handyman|engineer`),
	DepartmentFrontDesk:   regexp.MustCompile(`(?i)front\s*desk|reception|recepci`),
	DepartmentGeneral:     regexp.MustCompile(`(?i)manager|supervisor|general|operations`),
}

// namedDefaults lists explicit per-department go-to people. Checked before
// any role matching so long-standing assignments keep working even when a
// roster record carries no usable role label.
var namedDefaults = map[Department][]string{
	DepartmentCleaning:    {"Maria", "Lupita"},
	DepartmentMaintenance: {"Carlos", "Pedro"},
	DepartmentFrontDesk:   {"Ana"},
	DepartmentGeneral:     {"Luis"},
}

// ParseDepartment maps a free-text label onto a Department, defaulting to
// general for anything unrecognized.
func ParseDepartment(raw string) Department {
	switch Department(raw) {
	case DepartmentCleaning, DepartmentMaintenance, DepartmentFrontDesk:
		return Department(raw)
	default:
		return DepartmentGeneral
	}
}

func (d Department) rolePattern() *regexp.Regexp {
	if pattern, ok := rolePatterns[d]; ok {
		return pattern
	}
	return rolePatterns[DepartmentGeneral]
}

func (d Department) defaultNames() []string {
	return namedDefaults[d]
}
