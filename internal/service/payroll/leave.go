package payroll

import (
	"context"
	"math"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

// EncashmentPolicy credits unused leave for a period.
type EncashmentPolicy interface {
	Encashment(ctx context.Context, emp employee.Employee, month, year int, leaves []leave.LeaveRequest) (float64, error)
}

// NoEncashment is the default policy and never credits anything.
type NoEncashment struct{}

func (NoEncashment) Encashment(context.Context, employee.Employee, int, int, []leave.LeaveRequest) (float64, error) {
	return 0, nil
}

type LeaveInput struct {
	EmployeeID  string
	Month       int
	Year        int
	Leaves      []leave.LeaveRequest
	DailySalary float64
	PresentDays float64
	Encashment  float64
}

type LeaveAdjustment struct {
	Details    payroll.LeaveDetails
	AbsentDays float64
}

// LeaveAdjuster splits approved leave into paid and unpaid days and derives the
// unpaid-leave deduction and the absence count.
type LeaveAdjuster struct {
	workingDays int
}

func NewLeaveAdjuster(workingDays int) *LeaveAdjuster {
	return &LeaveAdjuster{workingDays: workingDays}
}

func (l *LeaveAdjuster) Adjust(in LeaveInput) LeaveAdjustment {
	var total, paid float64
	for _, r := range in.Leaves {
		if r.EmployeeID != in.EmployeeID || r.Status != leave.LeaveRequestStatusApproved {
			continue
		}
		if !r.OverlapsMonth(in.Month, in.Year) {
			continue
		}
		days := leaveDays(r)
		total += days
		if r.IsPaid {
			paid += days
		}
	}
	unpaid := total - paid

	dailySalary, _ := numeric.NonNegative(in.DailySalary)
	encashment, _ := numeric.NonNegative(in.Encashment)

	return LeaveAdjustment{
		Details: payroll.LeaveDetails{
			TotalLeaveDays:  total,
			PaidLeaveDays:   paid,
			UnpaidLeaveDays: unpaid,
			LeaveDeduction:  numeric.Currency(unpaid * dailySalary),
			LeaveEncashment: numeric.Currency(encashment),
		},
		AbsentDays: l.AbsentDays(in.PresentDays, total),
	}
}

// AbsentDays = max(0, workingDays - present - leave). Leave days never count
// as absence.
func (l *LeaveAdjuster) AbsentDays(presentDays, leaveDays float64) float64 {
	present, _ := numeric.NonNegative(presentDays)
	onLeave, _ := numeric.NonNegative(leaveDays)
	return math.Max(0, float64(l.workingDays)-present-onLeave)
}

// leaveDays uses the recorded day count, falling back to the inclusive span
// when the count is missing.
func leaveDays(r leave.LeaveRequest) float64 {
	if numeric.IsValid(r.Days) && r.Days > 0 {
		return r.Days
	}
	return float64(leave.InclusiveDays(r.StartDate, r.EndDate))
}
