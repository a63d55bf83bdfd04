package postgresql_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmployee(t *testing.T, setup *TestDatabaseSetup, id, status string, withSalary bool) {
	t.Helper()
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employees (id, employee_code, full_name, state, employment_status, default_shift_id)
		VALUES ($1, $2, $3, 'Maharashtra', $4, 'day')
	`, id, "EMP-"+id, "Employee "+id, status)
	require.NoError(t, err)

	if withSalary {
		_, err = setup.DB.Exec(ctx, `
			INSERT INTO salary_structures (employee_id, basic, hra, special_allowance, medical_allowance,
				conveyance_allowance, other_allowances, ctc)
			VALUES ($1, 20000, 8000, 3000, 1250, 1600, 150, 408000)
		`, id)
		require.NoError(t, err)
	}
}

func TestEmployeeRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	seedEmployee(t, setup, "emp-2", "on_leave", true)
	seedEmployee(t, setup, "emp-1", "active", true)
	seedEmployee(t, setup, "emp-3", "terminated", false)
	seedEmployee(t, setup, "emp-4", "active", false)

	repo := postgresql.NewEmployeeRepository(setup.DB)
	ctx := context.Background()

	e, err := repo.GetByID(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, e.Salary)
	assert.Equal(t, 34000.0, e.Salary.Gross())
	assert.Equal(t, "Maharashtra", e.State)

	e, err = repo.GetByID(ctx, "emp-4")
	require.NoError(t, err)
	assert.Nil(t, e.Salary)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	list, err := repo.ListPayrollEligible(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "emp-1", list[0].ID)
	assert.Equal(t, "emp-2", list[1].ID)
	assert.Equal(t, "emp-4", list[2].ID)
}

func TestAttendanceLeaveAndShiftRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	seedEmployee(t, setup, "emp-1", "active", true)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO attendances (id, employee_id, date, status, regular_hours, overtime_hours, shift_id)
		VALUES ('a1', 'emp-1', '2025-01-02', 'present', 8, 2, NULL),
		       ('a2', 'emp-1', '2025-01-03', 'late', 8, 0, 'night'),
		       ('a3', 'emp-1', '2025-02-01', 'present', 8, 0, NULL)
	`)
	require.NoError(t, err)

	records, err := postgresql.NewAttendanceRepository(setup.DB).GetForEmployeeMonth(ctx, "emp-1", 1, 2025)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2.0, records[0].OvertimeHours)
	assert.Equal(t, attendance.StatusLate, records[1].Status)
	require.NotNil(t, records[1].ShiftID)
	assert.Equal(t, "night", *records[1].ShiftID)

	_, err = setup.DB.Exec(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, days, is_paid, status)
		VALUES ('l1', 'emp-1', 'casual', '2025-01-30', '2025-02-02', 4, false, 'approved'),
		       ('l2', 'emp-1', 'sick', '2025-01-10', '2025-01-10', 1, true, 'pending')
	`)
	require.NoError(t, err)

	leaves, err := postgresql.NewLeaveRequestRepository(setup.DB).GetApprovedForMonth(ctx, "emp-1", 1, 2025)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, "l1", leaves[0].ID)
	assert.Equal(t, leave.LeaveRequestStatusApproved, leaves[0].Status)
	assert.Equal(t, 4.0, leaves[0].Days)

	_, err = setup.DB.Exec(ctx, `
		INSERT INTO employee_shift_assignments (employee_id, work_date, shift_id)
		VALUES ('emp-1', '2025-01-04', 'weekend')
	`)
	require.NoError(t, err)

	shifts := postgresql.NewShiftRepository(setup.DB)
	s, err := shifts.GetShiftForEmployeeOnDate(ctx, "emp-1", time.Date(2025, time.January, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, schedule.ShiftTypeWeekend, s.Type)

	s, err = shifts.GetShiftForEmployeeOnDate(ctx, "emp-1", time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "day", s.ID)

	night, err := shifts.GetShiftByID(ctx, "night")
	require.NoError(t, err)
	assert.Equal(t, 15.0, night.NightDifferential)
	assert.Equal(t, 22, night.StartTime.Hour())

	_, err = shifts.GetShiftByID(ctx, "graveyard")
	assert.ErrorIs(t, err, schedule.ErrShiftNotFound)
}

func sampleRecord(employeeID string, net int64) payroll.PayrollRecord {
	name := "Employee " + employeeID
	processed := time.Date(2025, time.February, 1, 6, 0, 0, 0, time.UTC)
	return payroll.PayrollRecord{
		ID:              "rec-" + employeeID,
		EmployeeID:      employeeID,
		PeriodMonth:     1,
		PeriodYear:      2025,
		SalaryBreakdown: employee.SalaryStructure{Basic: 20000, HRA: 8000, CTC: 336000},
		WorkingDays:     26,
		PresentDays:     25.5,
		OvertimeHours:   decimal.RequireFromString("2.5"),
		OvertimePay:     decimal.NewFromInt(613),
		OvertimeBreakdown: []payroll.WeeklyOvertime{
			{Week: 1, RawHours: decimal.RequireFromString("2.5"), Hours: decimal.RequireFromString("2.5"), Pay: decimal.NewFromInt(613)},
		},
		NightDifferential: decimal.Zero,
		ShiftDifferential: decimal.Zero,
		LeaveDetails:      payroll.LeaveDetails{TotalLeaveDays: 1, UnpaidLeaveDays: 1, LeaveDeduction: decimal.NewFromInt(1077)},
		Deductions:        payroll.Deductions{PF: decimal.NewFromInt(1800), ProfessionalTax: decimal.NewFromInt(200)},
		BaseSalary:        decimal.NewFromInt(28000),
		GrossSalary:       decimal.NewFromInt(28613),
		TotalDeductions:   decimal.NewFromInt(3077),
		NetSalary:         decimal.NewFromInt(net),
		Status:            payroll.PayrollStatusProcessed,
		Warnings:          []string{"leave data unavailable"},
		ProcessedAt:       &processed,
		EmployeeName:      &name,
	}
}

func TestPayrollRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()

	require.NoError(t, repo.ReplacePeriodRecords(ctx, 1, 2025, []payroll.PayrollRecord{
		sampleRecord("emp-1", 25536),
		sampleRecord("emp-2", 25536),
	}))

	t.Run("round trip", func(t *testing.T) {
		rec, err := repo.GetRecordByID(ctx, "rec-emp-1")
		require.NoError(t, err)
		assert.True(t, rec.NetSalary.Equal(decimal.NewFromInt(25536)))
		assert.True(t, rec.OvertimeHours.Equal(decimal.RequireFromString("2.5")))
		assert.Equal(t, 25.5, rec.PresentDays)
		assert.Equal(t, 20000.0, rec.SalaryBreakdown.Basic)
		require.Len(t, rec.OvertimeBreakdown, 1)
		assert.True(t, rec.LeaveDetails.LeaveDeduction.Equal(decimal.NewFromInt(1077)))
		assert.True(t, rec.Deductions.PF.Equal(decimal.NewFromInt(1800)))
		assert.Equal(t, []string{"leave data unavailable"}, rec.Warnings)
		require.NotNil(t, rec.EmployeeName)
		assert.Equal(t, "Employee emp-1", *rec.EmployeeName)
	})

	t.Run("replace is not additive", func(t *testing.T) {
		require.NoError(t, repo.ReplacePeriodRecords(ctx, 1, 2025, []payroll.PayrollRecord{sampleRecord("emp-1", 26000)}))

		records, err := repo.GetRecordsForPeriod(ctx, 1, 2025)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].NetSalary.Equal(decimal.NewFromInt(26000)))
	})

	t.Run("status transitions", func(t *testing.T) {
		at := time.Date(2025, time.February, 5, 9, 0, 0, 0, time.UTC)
		rec, err := repo.UpdateRecordStatus(ctx, "rec-emp-1", payroll.PayrollStatusPaid, at)
		require.NoError(t, err)
		assert.Equal(t, payroll.PayrollStatusPaid, rec.Status)
		require.NotNil(t, rec.PaidAt)
		assert.True(t, at.Equal(*rec.PaidAt))

		_, err = repo.UpdateRecordStatus(ctx, "rec-emp-1", payroll.PayrollStatusPaid, at)
		assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)

		_, err = repo.UpdateRecordStatus(ctx, "missing", payroll.PayrollStatusPaid, at)
		assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
	})
}

func TestAuditSink(t *testing.T) {
	setup := NewTestDatabase(t)
	sink := postgresql.NewAuditSink(setup.DB)
	ctx := context.Background()

	err := sink.RecordChange(ctx, audit.RecordChange{
		ID:         "chg-1",
		Action:     audit.ActionPayrollPeriodProcessed,
		EntityType: "payroll_period",
		EntityID:   "2025-01",
		After:      json.RawMessage(`{"records":2}`),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	var after []byte
	var before []byte
	require.NoError(t, setup.DB.QueryRow(ctx, `SELECT before, after FROM audit_trails WHERE id = 'chg-1'`).Scan(&before, &after))
	assert.Nil(t, before)
	assert.JSONEq(t, `{"records":2}`, string(after))
}

func TestWithTransaction_NestedRollback(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	insert := `INSERT INTO audit_trails (id, action, entity_type, entity_id, occurred_at) VALUES ($1, 'test', 'test', 'x', now())`
	errInner := errors.New("inner failed")

	err := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insert, "outer"); err != nil {
			return err
		}
		innerErr := postgresql.WithTransaction(ctx, setup.DB, func(ctx context.Context, tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, insert, "inner"); err != nil {
				return err
			}
			return errInner
		})
		assert.ErrorIs(t, innerErr, errInner)
		return nil
	})
	require.NoError(t, err)

	var ids []string
	rows, err := setup.DB.Query(ctx, `SELECT id FROM audit_trails ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"outer"}, ids)
}
