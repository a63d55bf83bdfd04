package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrInvalidSalaryStructure   = errors.New("invalid salary structure")
	ErrArithmeticAnomaly        = errors.New("arithmetic anomaly")
	ErrDataUnavailable          = errors.New("payroll source data unavailable")
	ErrPayrollRecordNotFound    = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyPaid = errors.New("payroll record already paid, cannot modify")
	ErrInvalidStatusTransition  = errors.New("invalid payroll status transition")
	ErrInvalidPeriod            = errors.New("invalid payroll period")
	ErrPeriodLocked             = errors.New("payroll period is being processed")
)

// SalaryStructureError reports which employee and field failed validation.
type SalaryStructureError struct {
	EmployeeID string
	Field      string
	Reason     string
}

func (e *SalaryStructureError) Error() string {
	msg := ErrInvalidSalaryStructure.Error()
	if e.EmployeeID != "" {
		msg += " for employee " + e.EmployeeID
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %s", msg, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

func (e *SalaryStructureError) Unwrap() error {
	return ErrInvalidSalaryStructure
}

// ValidatePeriod checks month is 1-12 and year is plausible.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return nil
}

// CheckTransition returns nil when a record in status from may move to to.
func CheckTransition(from, to PayrollStatus) error {
	if from == PayrollStatusPaid {
		return ErrPayrollRecordAlreadyPaid
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}
