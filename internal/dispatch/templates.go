package dispatch

import (
	"fmt"

	"opsdesk_backend/internal/staff"
)

// departmentLabels holds the English and Spanish labels used in staff
// notifications. Staff read whichever language they prefer, so every
// message carries both.
var departmentLabels = map[staff.Department][2]string{
	staff.DepartmentCleaning:    {"Cleaning", "Limpieza"},
	staff.DepartmentMaintenance: {"Maintenance", "Mantenimiento"},
	staff.DepartmentFrontDesk:   {"Front desk", "Recepción"},
	staff.DepartmentGeneral:     {"Operations", "Operaciones"},
}

// BuildNotification renders the bilingual staff notification for a new task.
func BuildNotification(dept staff.Department, staffName, property, description string) string {
	labels, ok := departmentLabels[dept]
	if !ok {
		labels = departmentLabels[staff.DepartmentGeneral]
	}

	if staffName == "" {
		return fmt.Sprintf(
			"%s task at %s: %s. Notifying department; no contact on file.\n%s en %s: %s. Avisando al departamento; sin contacto registrado.",
			labels[0], property, description, labels[1], property, description)
	}

	return fmt.Sprintf(
		"%s: new %s task at %s: %s\n%s: nueva tarea de %s en %s: %s",
		staffName, labels[0], property, description,
		staffName, labels[1], property, description)
}
