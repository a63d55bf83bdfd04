package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll records.
type PayrollRepository interface {
	// ReplacePeriodRecords removes every record of the period and inserts records
	// in one atomic step.
	ReplacePeriodRecords(ctx context.Context, month, year int, records []PayrollRecord) error
	GetRecordsForPeriod(ctx context.Context, month, year int) ([]PayrollRecord, error)
	GetRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	// UpdateRecordStatus moves a record to status. Returns ErrPayrollRecordNotFound
	// or ErrInvalidStatusTransition.
	UpdateRecordStatus(ctx context.Context, id string, status PayrollStatus, at time.Time) (PayrollRecord, error)
}
