package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "draft"
	PayrollStatusProcessed PayrollStatus = "processed"
	PayrollStatusPaid      PayrollStatus = "paid"
)

// CanTransitionTo enforces draft -> processed -> paid. Re-processing a
// processed record is allowed; a paid record never changes.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	switch s {
	case PayrollStatusDraft:
		return next == PayrollStatusProcessed
	case PayrollStatusProcessed:
		return next == PayrollStatusProcessed || next == PayrollStatusPaid
	default:
		return false
	}
}

// WeeklyOvertime - One week-of-month bucket of the overtime breakdown
type WeeklyOvertime struct {
	Week     int             `json:"week"`
	RawHours decimal.Decimal `json:"raw_hours"`
	Hours    decimal.Decimal `json:"hours"`
	Pay      decimal.Decimal `json:"pay"`
}

// OvertimeSummary - Output of the overtime aggregator
type OvertimeSummary struct {
	TotalHours        decimal.Decimal
	TotalPay          decimal.Decimal
	NightDifferential decimal.Decimal
	ConsecutiveBonus  decimal.Decimal
	Weeks             []WeeklyOvertime
}

// LeaveDetails - Leave split for the period
type LeaveDetails struct {
	TotalLeaveDays  float64         `json:"total_leave_days"`
	PaidLeaveDays   float64         `json:"paid_leave_days"`
	UnpaidLeaveDays float64         `json:"unpaid_leave_days"`
	LeaveDeduction  decimal.Decimal `json:"leave_deduction"`
	LeaveEncashment decimal.Decimal `json:"leave_encashment"`
}

// Deductions - Amounts withheld from the adjusted gross.
// ESIEmployer is informational and not part of Total.
type Deductions struct {
	PF                   decimal.Decimal `json:"pf"`
	ESI                  decimal.Decimal `json:"esi"`
	ESIEmployer          decimal.Decimal `json:"esi_employer"`
	ProfessionalTax      decimal.Decimal `json:"professional_tax"`
	TDS                  decimal.Decimal `json:"tds"`
	LateDeduction        decimal.Decimal `json:"late_deduction"`
	AbsentDeduction      decimal.Decimal `json:"absent_deduction"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
}

func (d Deductions) Total() decimal.Decimal {
	return d.PF.
		Add(d.ESI).
		Add(d.ProfessionalTax).
		Add(d.TDS).
		Add(d.LateDeduction).
		Add(d.AbsentDeduction).
		Add(d.UnpaidLeaveDeduction)
}

// PayrollRecord - Payroll result for one employee and period
type PayrollRecord struct {
	ID                string
	EmployeeID        string
	PeriodMonth       int
	PeriodYear        int
	SalaryBreakdown   employee.SalaryStructure
	WorkingDays       int
	PresentDays       float64
	LateDays          int
	AbsentDays        float64
	OvertimeHours     decimal.Decimal
	OvertimePay       decimal.Decimal
	OvertimeBreakdown []WeeklyOvertime
	NightDifferential decimal.Decimal
	ShiftDifferential decimal.Decimal
	LeaveDetails      LeaveDetails
	Deductions        Deductions
	BaseSalary        decimal.Decimal // monthly gross of the salary structure
	GrossSalary       decimal.Decimal // base plus overtime, differentials and encashment
	TotalDeductions   decimal.Decimal
	NetSalary         decimal.Decimal
	Status            PayrollStatus
	Warnings          []string
	ProcessedAt       *time.Time
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// FailedEmployee - An employee skipped during period processing
type FailedEmployee struct {
	EmployeeID string
	Reason     string
}

// ProcessResult - Outcome of processing one period
type ProcessResult struct {
	PeriodMonth int
	PeriodYear  int
	Records     []PayrollRecord
	Failed      []FailedEmployee
	ProcessedAt time.Time
}
