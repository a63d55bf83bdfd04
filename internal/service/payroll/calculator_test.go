package payroll

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardEmployee(id string) employee.Employee {
	return employee.Employee{
		ID:               id,
		EmployeeCode:     "EMP-" + id,
		FullName:         "Employee " + id,
		State:            "Maharashtra",
		EmploymentStatus: employee.EmploymentStatusActive,
		Salary: &employee.SalaryStructure{
			Basic:               20000,
			HRA:                 8000,
			SpecialAllowance:    3000,
			MedicalAllowance:    1250,
			ConveyanceAllowance: 1600,
			OtherAllowances:     150,
			CTC:                 408000,
		},
	}
}

// attendedDays returns records for days 1..n of the month with the given status.
func attendedDays(employeeID string, year int, month time.Month, n int, status attendance.Status) []attendance.Attendance {
	records := make([]attendance.Attendance, 0, n)
	for d := 1; d <= n; d++ {
		day := date(year, month, d)
		records = append(records, attendance.Attendance{
			ID:           employeeID + "-" + day.Format("20060102"),
			EmployeeID:   employeeID,
			Date:         day,
			Status:       status,
			RegularHours: 8,
		})
	}
	return records
}

type calculatorFixture struct {
	employees  *memory.EmployeeRepository
	attendance *memory.AttendanceRepository
	leaves     *memory.LeaveRequestRepository
	shifts     *memory.ShiftRepository
}

func newCalculatorFixture(emps ...employee.Employee) calculatorFixture {
	return calculatorFixture{
		employees:  memory.NewEmployeeRepository(emps...),
		attendance: memory.NewAttendanceRepository(),
		leaves:     memory.NewLeaveRequestRepository(),
		shifts:     memory.NewShiftRepository(schedule.DefaultShifts()...),
	}
}

func (f calculatorFixture) calculator(opts ...CalculatorOption) *Calculator {
	return NewCalculator(payroll.DefaultRules(), f.employees, f.attendance, f.leaves, f.shifts, opts...)
}

func TestCalculator_FullAttendance(t *testing.T) {
	f := newCalculatorFixture(standardEmployee("emp-1"))
	f.attendance.Add(attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)...)

	rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)

	assert.Equal(t, RecordID("emp-1", 1, 2025), rec.ID)
	assert.Equal(t, payroll.PayrollStatusDraft, rec.Status)
	assert.Equal(t, 26, rec.WorkingDays)
	assert.Equal(t, 26.0, rec.PresentDays)
	assert.Equal(t, 0.0, rec.AbsentDays)
	assert.Equal(t, 0, rec.LateDays)

	assert.True(t, rec.BaseSalary.Equal(dec(34000)))
	assert.True(t, rec.GrossSalary.Equal(dec(34000)))
	assert.True(t, rec.Deductions.PF.Equal(dec(1800)))
	assert.True(t, rec.Deductions.ESI.IsZero())
	assert.True(t, rec.Deductions.ESIEmployer.IsZero())
	assert.True(t, rec.Deductions.ProfessionalTax.Equal(dec(200)))
	assert.True(t, rec.Deductions.TDS.Equal(dec(468)))
	assert.True(t, rec.TotalDeductions.Equal(dec(2468)))
	assert.True(t, rec.NetSalary.Equal(dec(31532)), "net %s", rec.NetSalary)
	assert.Empty(t, rec.Warnings)

	require.NotNil(t, rec.EmployeeName)
	assert.Equal(t, "Employee emp-1", *rec.EmployeeName)
}

func TestCalculator_UnpaidLeave(t *testing.T) {
	f := newCalculatorFixture(standardEmployee("emp-1"))
	f.attendance.Add(attendedDays("emp-1", 2025, time.January, 23, attendance.StatusPresent)...)
	f.leaves.Add(leave.LeaveRequest{
		ID:         "lr-1",
		EmployeeID: "emp-1",
		Type:       leave.LeaveTypeCasual,
		StartDate:  date(2025, time.January, 27),
		EndDate:    date(2025, time.January, 29),
		Days:       3,
		IsPaid:     false,
		Status:     leave.LeaveRequestStatusApproved,
	})

	rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)

	assert.Equal(t, 3.0, rec.LeaveDetails.UnpaidLeaveDays)
	assert.Equal(t, 0.0, rec.LeaveDetails.PaidLeaveDays)
	assert.True(t, rec.LeaveDetails.LeaveDeduction.Equal(dec(3923)))
	assert.True(t, rec.Deductions.UnpaidLeaveDeduction.Equal(dec(3923)))
	assert.Equal(t, 0.0, rec.AbsentDays)
	assert.True(t, rec.NetSalary.Equal(dec(27609)), "net %s", rec.NetSalary)
}

func TestCalculator_PaidLeaveIsNotDeducted(t *testing.T) {
	f := newCalculatorFixture(standardEmployee("emp-1"))
	f.attendance.Add(attendedDays("emp-1", 2025, time.January, 24, attendance.StatusPresent)...)
	f.leaves.Add(leave.LeaveRequest{
		ID:         "lr-1",
		EmployeeID: "emp-1",
		Type:       leave.LeaveTypeAnnual,
		StartDate:  date(2025, time.January, 27),
		EndDate:    date(2025, time.January, 28),
		Days:       2,
		IsPaid:     true,
		Status:     leave.LeaveRequestStatusApproved,
	})

	rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)

	assert.Equal(t, 2.0, rec.LeaveDetails.PaidLeaveDays)
	assert.True(t, rec.LeaveDetails.LeaveDeduction.IsZero())
	assert.Equal(t, 0.0, rec.AbsentDays)
	assert.True(t, rec.NetSalary.Equal(dec(31532)))
}

func TestCalculator_LateAndAbsentDeductions(t *testing.T) {
	t.Run("late days", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		records[0].Status = attendance.StatusLate
		records[1].Status = attendance.StatusLate
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		assert.Equal(t, 2, rec.LateDays)
		assert.Equal(t, 26.0, rec.PresentDays)
		// 2 x 10% x 34000/26
		assert.True(t, rec.Deductions.LateDeduction.Equal(dec(262)))
		assert.True(t, rec.NetSalary.Equal(dec(31270)))
	})

	t.Run("absent days", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		f.attendance.Add(attendedDays("emp-1", 2025, time.January, 20, attendance.StatusPresent)...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		assert.Equal(t, 6.0, rec.AbsentDays)
		assert.True(t, rec.Deductions.AbsentDeduction.Equal(dec(7846)))
	})

	t.Run("half days count half", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		records[5].Status = attendance.StatusHalfDay
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		assert.Equal(t, 25.5, rec.PresentDays)
		assert.Equal(t, 0.5, rec.AbsentDays)
		assert.True(t, rec.Deductions.AbsentDeduction.Equal(dec(654)))
	})

	t.Run("disabled by rules", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		f.attendance.Add(attendedDays("emp-1", 2025, time.January, 20, attendance.StatusLate)...)

		rules := payroll.DefaultRules()
		rules.Attendance.LateDeductionEnabled = false
		rules.Attendance.AbsentDeductionEnabled = false
		rec, err := NewCalculator(rules, f.employees, f.attendance, f.leaves, f.shifts).Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		assert.True(t, rec.Deductions.LateDeduction.IsZero())
		assert.True(t, rec.Deductions.AbsentDeduction.IsZero())
		assert.True(t, rec.NetSalary.Equal(dec(31532)))
	})
}

func TestCalculator_OvertimeAndShifts(t *testing.T) {
	t.Run("weekday overtime adds to gross only", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		records[1].OvertimeHours = 2 // Thursday
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		// 2h x 34000/26/8 x 1.5
		assert.True(t, rec.OvertimePay.Equal(dec(490)))
		assert.True(t, rec.OvertimeHours.Equal(dec(2)))
		assert.True(t, rec.GrossSalary.Equal(dec(34490)))
		assert.True(t, rec.Deductions.PF.Equal(dec(1800)), "statutory ignores variable pay")
		assert.True(t, rec.NetSalary.Equal(dec(32022)))
	})

	t.Run("weekend shift differential", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		f.attendance.Add(attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)...)
		f.shifts.SetDefault("emp-1", "day")
		f.shifts.Assign("emp-1", date(2025, time.January, 4), "weekend")

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		// 8h x 34000/26/8 x 0.25
		assert.True(t, rec.ShiftDifferential.Equal(dec(327)))
		assert.True(t, rec.GrossSalary.Equal(dec(34327)))
	})

	t.Run("night shift from record", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		night := "night"
		records[1].ShiftID = &night
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		// 8h x 34000/26/8 x 15%
		assert.True(t, rec.NightDifferential.Equal(dec(196)))
		assert.True(t, rec.ShiftDifferential.IsZero())
	})

	t.Run("hours derived from check-in and check-out", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		in := time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)
		out := time.Date(2025, time.January, 2, 19, 0, 0, 0, time.UTC)
		records[1].RegularHours = 0
		records[1].CheckIn = &in
		records[1].CheckOut = &out
		records[1].BreakMinutes = 60
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		// 9h worked, 1h beyond the standard day at 1.5x
		assert.True(t, rec.OvertimeHours.Equal(dec(1)))
		assert.True(t, rec.OvertimePay.Equal(dec(245)))
	})

	t.Run("supplied hours win over check-in and check-out", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		in := time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)
		out := time.Date(2025, time.January, 2, 17, 0, 0, 0, time.UTC)
		records[1].RegularHours = 8
		records[1].OvertimeHours = 3
		records[1].TotalWorkingHours = 0
		records[1].CheckIn = &in
		records[1].CheckOut = &out
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		// 3h at 1.5x of 34000/26/8
		assert.True(t, rec.OvertimeHours.Equal(dec(3)))
		assert.True(t, rec.OvertimePay.Equal(dec(736)))
	})

	t.Run("unknown shift is skipped", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
		ghost := "ghost"
		records[0].ShiftID = &ghost
		f.attendance.Add(records...)

		rec, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)
		assert.True(t, rec.NightDifferential.IsZero())
		assert.True(t, rec.NetSalary.Equal(dec(31532)))
	})
}

func TestCalculator_Deterministic(t *testing.T) {
	f := newCalculatorFixture(standardEmployee("emp-1"))
	records := attendedDays("emp-1", 2025, time.January, 24, attendance.StatusPresent)
	records[2].OvertimeHours = 3
	records[3].Status = attendance.StatusLate
	f.attendance.Add(records...)
	calc := f.calculator()

	first, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)
	second, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculator_Errors(t *testing.T) {
	t.Run("employee not found", func(t *testing.T) {
		f := newCalculatorFixture()
		_, err := f.calculator().Calculate(context.Background(), "nobody", 1, 2025)
		assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
	})

	t.Run("invalid period", func(t *testing.T) {
		f := newCalculatorFixture(standardEmployee("emp-1"))
		_, err := f.calculator().Calculate(context.Background(), "emp-1", 13, 2025)
		assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
	})

	t.Run("missing structure", func(t *testing.T) {
		emp := standardEmployee("emp-1")
		emp.Salary = nil
		f := newCalculatorFixture(emp)
		_, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		assert.ErrorIs(t, err, payroll.ErrInvalidSalaryStructure)
	})

	t.Run("non-finite component", func(t *testing.T) {
		emp := standardEmployee("emp-1")
		emp.Salary.Basic = math.NaN()
		f := newCalculatorFixture(emp)
		_, err := f.calculator().Calculate(context.Background(), "emp-1", 1, 2025)
		require.ErrorIs(t, err, payroll.ErrInvalidSalaryStructure)

		var structErr *payroll.SalaryStructureError
		require.True(t, errors.As(err, &structErr))
		assert.Equal(t, "basic", structErr.Field)
		assert.Equal(t, "emp-1", structErr.EmployeeID)
	})
}

type failingAttendance struct{ err error }

func (s failingAttendance) GetForEmployeeMonth(context.Context, string, int, int) ([]attendance.Attendance, error) {
	return nil, s.err
}

type failingLeaves struct{ err error }

func (s failingLeaves) GetApprovedForMonth(context.Context, string, int, int) ([]leave.LeaveRequest, error) {
	return nil, s.err
}

func TestCalculator_DataSources(t *testing.T) {
	employees := memory.NewEmployeeRepository(standardEmployee("emp-1"))

	t.Run("unavailable attendance degrades to empty", func(t *testing.T) {
		calc := NewCalculator(payroll.DefaultRules(), employees,
			failingAttendance{err: payroll.ErrDataUnavailable}, memory.NewLeaveRequestRepository(), nil)

		rec, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)

		assert.Equal(t, 0.0, rec.PresentDays)
		assert.Equal(t, 0.0, rec.AbsentDays)
		assert.True(t, rec.Deductions.AbsentDeduction.IsZero())
		assert.True(t, rec.Deductions.LateDeduction.IsZero())
		assert.True(t, rec.NetSalary.Equal(dec(31532)))
		assert.Equal(t, []string{"attendance data unavailable"}, rec.Warnings)
	})

	t.Run("unavailable leave degrades to empty", func(t *testing.T) {
		att := memory.NewAttendanceRepository(attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)...)
		calc := NewCalculator(payroll.DefaultRules(), employees, att,
			failingLeaves{err: payroll.ErrDataUnavailable}, nil)

		rec, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
		require.NoError(t, err)
		assert.True(t, rec.NetSalary.Equal(dec(31532)))
		assert.Equal(t, []string{"leave data unavailable"}, rec.Warnings)
	})

	t.Run("other repository errors propagate", func(t *testing.T) {
		boom := errors.New("connection reset")
		calc := NewCalculator(payroll.DefaultRules(), employees, failingAttendance{err: boom}, nil, nil)

		_, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
		assert.ErrorIs(t, err, boom)
	})
}

type fixedEncashment float64

func (f fixedEncashment) Encashment(context.Context, employee.Employee, int, int, []leave.LeaveRequest) (float64, error) {
	return float64(f), nil
}

func TestCalculator_Options(t *testing.T) {
	f := newCalculatorFixture(standardEmployee("emp-1"))
	records := attendedDays("emp-1", 2025, time.January, 26, attendance.StatusPresent)
	records[1].OvertimeHours = 2
	f.attendance.Add(records...)

	calc := f.calculator(
		WithHolidayCalendar(NewHolidaySet(date(2025, time.January, 2))),
		WithEncashmentPolicy(fixedEncashment(1000)),
	)
	rec, err := calc.Calculate(context.Background(), "emp-1", 1, 2025)
	require.NoError(t, err)

	// 2h x 34000/26/8 x 2.5 holiday
	assert.True(t, rec.OvertimePay.Equal(dec(817)))
	assert.True(t, rec.LeaveDetails.LeaveEncashment.Equal(dec(1000)))
	assert.True(t, rec.GrossSalary.Equal(dec(35817)))
}
