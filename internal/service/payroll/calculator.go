package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recordNamespace seeds deterministic payroll record IDs.
var recordNamespace = uuid.MustParse("0b6f4f53-6d1c-4b8e-9a57-3f1c2a7d9e10")

// RecordID is stable for an employee and period, so recalculation yields the same ID.
func RecordID(employeeID string, month, year int) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s/%04d/%02d", employeeID, year, month))).String()
}

type CalculatorOption func(*Calculator)

func WithHolidayCalendar(holidays HolidayCalendar) CalculatorOption {
	return func(c *Calculator) { c.holidays = holidays }
}

func WithEncashmentPolicy(policy EncashmentPolicy) CalculatorOption {
	return func(c *Calculator) { c.encashment = policy }
}

func WithLogger(logger *slog.Logger) CalculatorOption {
	return func(c *Calculator) { c.logger = logger }
}

// Calculator composes the statutory, overtime and leave components into one
// payroll record. It only reads from its repositories.
type Calculator struct {
	rules          payroll.Rules
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	shiftRepo      schedule.ShiftRepository

	holidays   HolidayCalendar
	encashment EncashmentPolicy
	logger     *slog.Logger

	statutory *StatutoryCalculator
	overtime  *OvertimeAggregator
	leave     *LeaveAdjuster
}

func NewCalculator(
	rules payroll.Rules,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	shiftRepo schedule.ShiftRepository,
	opts ...CalculatorOption,
) *Calculator {
	c := &Calculator{
		rules:          rules,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		shiftRepo:      shiftRepo,
		encashment:     NoEncashment{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules.WorkingDays <= 0 {
		c.rules.WorkingDays = 26
	}
	if c.rules.HoursPerDay <= 0 {
		c.rules.HoursPerDay = 8
	}
	c.statutory = NewStatutoryCalculator(c.rules.Statutory)
	c.overtime = NewOvertimeAggregator(c.rules.Overtime, c.holidays)
	c.leave = NewLeaveAdjuster(c.rules.WorkingDays)
	return c
}

// Statutory exposes the statutory calculator configured with the same rules.
func (c *Calculator) Statutory() *StatutoryCalculator {
	return c.statutory
}

// Calculate builds the draft record for one employee and period.
func (c *Calculator) Calculate(ctx context.Context, employeeID string, month, year int) (payroll.PayrollRecord, error) {
	if err := payroll.ValidatePeriod(month, year); err != nil {
		return payroll.PayrollRecord{}, err
	}

	emp, err := c.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayrollRecord{}, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, employeeID)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("get employee %s: %w", employeeID, err)
	}

	return c.CalculateForEmployee(ctx, emp, month, year)
}

// CalculateForEmployee is Calculate for an employee already loaded from the directory.
func (c *Calculator) CalculateForEmployee(ctx context.Context, emp employee.Employee, month, year int) (payroll.PayrollRecord, error) {
	if err := payroll.ValidatePeriod(month, year); err != nil {
		return payroll.PayrollRecord{}, err
	}

	// (a) structure must exist and be well-formed
	if emp.Salary == nil {
		return payroll.PayrollRecord{}, &payroll.SalaryStructureError{EmployeeID: emp.ID, Reason: "salary structure is missing"}
	}
	if field, invalid := emp.Salary.InvalidField(); invalid {
		return payroll.PayrollRecord{}, &payroll.SalaryStructureError{EmployeeID: emp.ID, Field: field, Reason: "must be a non-negative number"}
	}
	structure := *emp.Salary

	var warnings []string

	// (b) gross, (c) daily and hourly rates
	gross := structure.Gross()
	dailySalary := gross / float64(c.rules.WorkingDays)
	hourlyRate := dailySalary / c.rules.HoursPerDay

	records, err := c.attendanceFor(ctx, emp.ID, month, year)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	attendanceUnavailable := records == nil
	if attendanceUnavailable {
		warnings = append(warnings, "attendance data unavailable")
	}
	records = monthRecords(records, emp.ID, month, year)
	shifts := c.resolveShifts(ctx, emp, records)

	// (d) overtime
	ot := c.overtime.Aggregate(OvertimeInput{
		EmployeeID: emp.ID,
		Month:      month,
		Year:       year,
		Records:    records,
		HourlyRate: hourlyRate,
		Shifts:     shifts,
	})

	// (e) shift differentials
	var weekendShiftHours float64
	for _, r := range records {
		if shift, ok := shifts[dateKey(r.Date)]; ok && shift.Type == schedule.ShiftTypeWeekend {
			regular, _ := numeric.NonNegative(r.RegularHours)
			weekendShiftHours += regular
		}
	}
	shiftDifferential := c.amount(emp.ID, "shift_differential", weekendShiftHours*hourlyRate*c.rules.Shift.WeekendPremiumRate)

	var presentDays float64
	var lateDays int
	for _, r := range records {
		presentDays += r.PresentWeight()
		if r.Status == attendance.StatusLate {
			lateDays++
		}
	}

	// (f) leave
	leaves, err := c.leavesFor(ctx, emp.ID, month, year)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if leaves == nil {
		warnings = append(warnings, "leave data unavailable")
	}
	encashment, err := c.encashment.Encashment(ctx, emp, month, year, leaves)
	if err != nil {
		c.logger.Warn("leave encashment failed, crediting zero", "employee_id", emp.ID, "error", err)
		encashment = 0
	}
	adj := c.leave.Adjust(LeaveInput{
		EmployeeID:  emp.ID,
		Month:       month,
		Year:        year,
		Leaves:      leaves,
		DailySalary: dailySalary,
		PresentDays: presentDays,
		Encashment:  encashment,
	})
	// Missing attendance contributes nothing, so no day counts as absent.
	if attendanceUnavailable {
		adj.AbsentDays = 0
	}

	// (g) statutory on the unadjusted structure
	statutory := c.statutory.Calculate(structure, emp.State, emp.Investments)

	// (h) attendance deductions
	lateDeduction := decimal.Zero
	if c.rules.Attendance.LateDeductionEnabled {
		lateDeduction = c.amount(emp.ID, "late_deduction", float64(lateDays)*c.rules.Attendance.LateDeductionFraction*dailySalary)
	}
	absentDeduction := decimal.Zero
	if c.rules.Attendance.AbsentDeductionEnabled {
		absentDeduction = c.amount(emp.ID, "absent_deduction", adj.AbsentDays*dailySalary)
	}

	deductions := payroll.Deductions{
		PF:                   statutory.PF,
		ESI:                  statutory.ESI.Employee,
		ESIEmployer:          statutory.ESI.Employer,
		ProfessionalTax:      statutory.ProfessionalTax,
		TDS:                  statutory.TDS,
		LateDeduction:        lateDeduction,
		AbsentDeduction:      absentDeduction,
		UnpaidLeaveDeduction: adj.Details.LeaveDeduction,
	}

	// (i) adjusted gross, (j) total deductions, (k) net
	baseSalary := numeric.Currency(gross)
	adjustedGross := numeric.Sum(baseSalary, ot.TotalPay, ot.NightDifferential, shiftDifferential, adj.Details.LeaveEncashment)
	totalDeductions := deductions.Total()
	net := adjustedGross.Sub(totalDeductions).Round(0)
	if net.IsNegative() {
		c.logger.Warn("arithmetic anomaly: net salary is negative",
			"employee_id", emp.ID, "month", month, "year", year, "net", net.String())
		warnings = append(warnings, "net salary is negative: deductions exceed earnings")
	}

	name := emp.FullName
	code := emp.EmployeeCode
	return payroll.PayrollRecord{
		ID:                RecordID(emp.ID, month, year),
		EmployeeID:        emp.ID,
		PeriodMonth:       month,
		PeriodYear:        year,
		SalaryBreakdown:   structure,
		WorkingDays:       c.rules.WorkingDays,
		PresentDays:       presentDays,
		LateDays:          lateDays,
		AbsentDays:        adj.AbsentDays,
		OvertimeHours:     ot.TotalHours,
		OvertimePay:       ot.TotalPay,
		OvertimeBreakdown: ot.Weeks,
		NightDifferential: ot.NightDifferential,
		ShiftDifferential: shiftDifferential,
		LeaveDetails:      adj.Details,
		Deductions:        deductions,
		BaseSalary:        baseSalary,
		GrossSalary:       adjustedGross,
		TotalDeductions:   totalDeductions,
		NetSalary:         net,
		Status:            payroll.PayrollStatusDraft,
		Warnings:          warnings,
		EmployeeName:      &name,
		EmployeeCode:      &code,
	}, nil
}

// attendanceFor returns a nil slice when the source reports ErrDataUnavailable.
// Records that carry no hours at all get them derived from check-in and check-out.
func (c *Calculator) attendanceFor(ctx context.Context, employeeID string, month, year int) ([]attendance.Attendance, error) {
	if c.attendanceRepo == nil {
		return nil, nil
	}
	records, err := c.attendanceRepo.GetForEmployeeMonth(ctx, employeeID, month, year)
	if err != nil {
		if errors.Is(err, payroll.ErrDataUnavailable) {
			c.logger.Warn("attendance unavailable, treating as empty", "employee_id", employeeID, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance for %s: %w", employeeID, err)
	}
	if records == nil {
		records = []attendance.Attendance{}
	}
	for i := range records {
		if !records[i].HasHours() {
			records[i].FillWorkingHours(c.rules.HoursPerDay)
		}
	}
	return records, nil
}

// leavesFor returns a nil slice when the source reports ErrDataUnavailable.
func (c *Calculator) leavesFor(ctx context.Context, employeeID string, month, year int) ([]leave.LeaveRequest, error) {
	if c.leaveRepo == nil {
		return nil, nil
	}
	leaves, err := c.leaveRepo.GetApprovedForMonth(ctx, employeeID, month, year)
	if err != nil {
		if errors.Is(err, payroll.ErrDataUnavailable) {
			c.logger.Warn("leave requests unavailable, treating as empty", "employee_id", employeeID, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("get leave requests for %s: %w", employeeID, err)
	}
	if leaves == nil {
		leaves = []leave.LeaveRequest{}
	}
	return leaves, nil
}

// resolveShifts maps each record date to its shift: the record's own shift
// first, then the employee's assignment for that date. Lookup failures leave
// the date without a shift.
func (c *Calculator) resolveShifts(ctx context.Context, emp employee.Employee, records []attendance.Attendance) map[string]schedule.Shift {
	shifts := make(map[string]schedule.Shift)
	if c.shiftRepo == nil {
		return shifts
	}

	for _, r := range records {
		var (
			shift schedule.Shift
			err   error
		)
		if r.ShiftID != nil && *r.ShiftID != "" {
			shift, err = c.shiftRepo.GetShiftByID(ctx, *r.ShiftID)
		} else {
			shift, err = c.shiftRepo.GetShiftForEmployeeOnDate(ctx, emp.ID, r.Date)
		}
		if err != nil {
			if !errors.Is(err, schedule.ErrShiftNotFound) {
				c.logger.Warn("shift lookup failed, skipping differential", "employee_id", emp.ID, "date", dateKey(r.Date), "error", err)
			}
			continue
		}
		shifts[dateKey(r.Date)] = shift
	}
	return shifts
}

// amount clamps a computed value to a finite non-negative whole amount and
// logs an arithmetic anomaly when clamping was needed.
func (c *Calculator) amount(employeeID, field string, v float64) decimal.Decimal {
	clean, changed := numeric.NonNegative(v)
	if changed {
		c.logger.Warn("arithmetic anomaly, clamped to zero",
			"employee_id", employeeID, "field", field, "value", v, "error", payroll.ErrArithmeticAnomaly)
	}
	return numeric.Currency(clean)
}
