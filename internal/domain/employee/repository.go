package employee

import "context"

// EmployeeRepository is the read-only employee directory consumed by payroll.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when no employee has the given ID.
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListPayrollEligible returns active and on-leave employees ordered by ID.
	ListPayrollEligible(ctx context.Context) ([]Employee, error)
}
