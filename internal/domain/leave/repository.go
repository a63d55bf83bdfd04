package leave

import "context"

type LeaveRequestRepository interface {
	// GetApprovedForMonth returns the employee's approved requests whose span
	// intersects the month.
	GetApprovedForMonth(ctx context.Context, employeeID string, month, year int) ([]LeaveRequest, error)
}
