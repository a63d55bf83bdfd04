package attendance

import "context"

type AttendanceRepository interface {
	// GetForEmployeeMonth returns the employee's records dated within the month, oldest first.
	GetForEmployeeMonth(ctx context.Context, employeeID string, month, year int) ([]Attendance, error)
}
