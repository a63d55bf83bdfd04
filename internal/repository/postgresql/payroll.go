package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/lock"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `
	id, employee_id, period_month, period_year, salary_breakdown, working_days, present_days, late_days,
	absent_days, overtime_hours, overtime_pay, overtime_breakdown, night_differential, shift_differential,
	leave_details, deductions, base_salary, gross_salary, total_deductions, net_salary, status, warnings,
	employee_name, employee_code, processed_at, paid_at, created_at, updated_at
`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var (
		rec                                                 payroll.PayrollRecord
		breakdown, weeks, leaveDetails, deductions, warnings []byte
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &breakdown, &rec.WorkingDays, &rec.PresentDays, &rec.LateDays,
		&rec.AbsentDays, &rec.OvertimeHours, &rec.OvertimePay, &weeks, &rec.NightDifferential, &rec.ShiftDifferential,
		&leaveDetails, &deductions, &rec.BaseSalary, &rec.GrossSalary, &rec.TotalDeductions, &rec.NetSalary, &rec.Status, &warnings,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.ProcessedAt, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	snapshots := []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"salary_breakdown", breakdown, &rec.SalaryBreakdown},
		{"overtime_breakdown", weeks, &rec.OvertimeBreakdown},
		{"leave_details", leaveDetails, &rec.LeaveDetails},
		{"deductions", deductions, &rec.Deductions},
		{"warnings", warnings, &rec.Warnings},
	}
	for _, s := range snapshots {
		if len(s.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(s.raw, s.dst); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("decode %s: %w", s.name, err)
		}
	}
	if len(rec.Warnings) == 0 {
		rec.Warnings = nil
	}
	return rec, nil
}

// ========== PERIOD REPLACE ==========

// ReplacePeriodRecords implements payroll.PayrollRepository. The transaction
// takes an advisory lock on the period so concurrent replaces from other
// instances serialize even without a shared locker.
func (r *payrollRepository) ReplacePeriodRecords(ctx context.Context, month, year int, records []payroll.PayrollRecord) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lock.PeriodKey(month, year)); err != nil {
			return fmt.Errorf("failed to lock period: %w", err)
		}

		rows, err := tx.Query(ctx, `
			DELETE FROM payroll_records
			WHERE period_month = $1 AND period_year = $2
			RETURNING id, created_at
		`, month, year)
		if err != nil {
			return fmt.Errorf("failed to delete period records: %w", err)
		}
		createdAt := make(map[string]time.Time)
		for rows.Next() {
			var id string
			var at time.Time
			if err := rows.Scan(&id, &at); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan deleted record: %w", err)
			}
			createdAt[id] = at
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(records) == 0 {
			return nil
		}

		query := `
			INSERT INTO payroll_records (` + payrollRecordColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
					$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		`

		now := time.Now()
		batch := &pgx.Batch{}
		for _, rec := range records {
			args, err := insertArgs(rec)
			if err != nil {
				return err
			}
			created := now
			if at, ok := createdAt[rec.ID]; ok {
				created = at
			}
			batch.Queue(query, append(args, created, now)...)
		}

		results := tx.SendBatch(ctx, batch)
		for _, rec := range records {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert payroll record for %s: %w", rec.EmployeeID, err)
			}
		}
		return results.Close()
	})
}

// insertArgs returns every column value except created_at and updated_at.
func insertArgs(rec payroll.PayrollRecord) ([]interface{}, error) {
	encode := func(name string, v interface{}) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		return string(b), nil
	}

	weeks := rec.OvertimeBreakdown
	if weeks == nil {
		weeks = []payroll.WeeklyOvertime{}
	}
	warnings := rec.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	breakdownJSON, err := encode("salary_breakdown", rec.SalaryBreakdown)
	if err != nil {
		return nil, err
	}
	weeksJSON, err := encode("overtime_breakdown", weeks)
	if err != nil {
		return nil, err
	}
	leaveJSON, err := encode("leave_details", rec.LeaveDetails)
	if err != nil {
		return nil, err
	}
	deductionsJSON, err := encode("deductions", rec.Deductions)
	if err != nil {
		return nil, err
	}
	warningsJSON, err := encode("warnings", warnings)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		rec.ID, rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear, breakdownJSON, rec.WorkingDays, rec.PresentDays, rec.LateDays,
		rec.AbsentDays, rec.OvertimeHours, rec.OvertimePay, weeksJSON, rec.NightDifferential, rec.ShiftDifferential,
		leaveJSON, deductionsJSON, rec.BaseSalary, rec.GrossSalary, rec.TotalDeductions, rec.NetSalary, string(rec.Status), warningsJSON,
		rec.EmployeeName, rec.EmployeeCode, rec.ProcessedAt, rec.PaidAt,
	}, nil
}

// ========== RECORDS ==========

// GetRecordsForPeriod implements payroll.PayrollRepository.
func (r *payrollRepository) GetRecordsForPeriod(ctx context.Context, month, year int) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + `
		FROM payroll_records
		WHERE period_month = $1 AND period_year = $2
		ORDER BY employee_id ASC
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetRecordByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRecordColumns + ` FROM payroll_records WHERE id = $1`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

// UpdateRecordStatus implements payroll.PayrollRepository. The row is locked
// while the transition is checked so a concurrent payment cannot slip in.
func (r *payrollRepository) UpdateRecordStatus(ctx context.Context, id string, status payroll.PayrollStatus, at time.Time) (payroll.PayrollRecord, error) {
	var updated payroll.PayrollRecord

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var current payroll.PayrollStatus
		err := tx.QueryRow(ctx, `SELECT status FROM payroll_records WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return payroll.ErrPayrollRecordNotFound
			}
			return fmt.Errorf("failed to lock payroll record: %w", err)
		}
		if err := payroll.CheckTransition(current, status); err != nil {
			return err
		}

		query := `
			UPDATE payroll_records SET
				status = $2::text,
				processed_at = CASE WHEN $2::text = 'processed' THEN $3::timestamptz ELSE processed_at END,
				paid_at = CASE WHEN $2::text = 'paid' THEN $3::timestamptz ELSE paid_at END,
				updated_at = $3::timestamptz
			WHERE id = $1
			RETURNING ` + payrollRecordColumns

		updated, err = scanPayrollRecord(tx.QueryRow(ctx, query, id, string(status), at))
		if err != nil {
			return fmt.Errorf("failed to update payroll record status: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return updated, nil
}
