package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	GetShiftByID(ctx context.Context, id string) (Shift, error)
	// GetShiftForEmployeeOnDate resolves the dated assignment first, then the
	// employee's default shift. Returns ErrShiftNotFound when neither exists.
	GetShiftForEmployeeOnDate(ctx context.Context, employeeID string, date time.Time) (Shift, error)
}
