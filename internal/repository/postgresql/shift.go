package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

const shiftColumns = `
	s.id, s.name, s.type, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
	s.standard_hours, s.overtime_multiplier, s.night_differential
`

func scanShift(row pgx.Row) (schedule.Shift, error) {
	var (
		s          schedule.Shift
		start, end string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Type, &start, &end, &s.StandardHours, &s.OvertimeMultiplier, &s.NightDifferential); err != nil {
		return schedule.Shift{}, err
	}

	var err error
	if s.StartTime, err = time.Parse("15:04", start); err != nil {
		return schedule.Shift{}, fmt.Errorf("parse start_time %q: %w", start, err)
	}
	if s.EndTime, err = time.Parse("15:04", end); err != nil {
		return schedule.Shift{}, fmt.Errorf("parse end_time %q: %w", end, err)
	}
	return s, nil
}

// GetShiftByID implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) GetShiftByID(ctx context.Context, id string) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE s.id = $1`

	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to get shift %s: %w", id, err)
	}
	return s, nil
}

// GetShiftForEmployeeOnDate implements schedule.ShiftRepository.
func (r *shiftRepositoryImpl) GetShiftForEmployeeOnDate(ctx context.Context, employeeID string, date time.Time) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + `
		FROM shifts s
		WHERE s.id = COALESCE(
			(SELECT a.shift_id FROM employee_shift_assignments a WHERE a.employee_id = $1 AND a.work_date = $2),
			(SELECT e.default_shift_id FROM employees e WHERE e.id = $1)
		)
	`

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s, err := scanShift(q.QueryRow(ctx, query, employeeID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to resolve shift for %s: %w", employeeID, err)
	}
	return s, nil
}
