package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.full_name, e.state, e.employment_status, e.auto_calculate_salary,
	e.investments, e.default_shift_id,
	s.employee_id IS NOT NULL,
	COALESCE(s.basic, 0), COALESCE(s.hra, 0), COALESCE(s.da, 0), COALESCE(s.special_allowance, 0),
	COALESCE(s.medical_allowance, 0), COALESCE(s.conveyance_allowance, 0), COALESCE(s.other_allowances, 0),
	COALESCE(s.ctc, 0)
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e         employee.Employee
		hasSalary bool
		s         employee.SalaryStructure
	)
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.FullName, &e.State, &e.EmploymentStatus, &e.AutoCalculateSalary,
		&e.Investments, &e.DefaultShiftID,
		&hasSalary,
		&s.Basic, &s.HRA, &s.DA, &s.SpecialAllowance,
		&s.MedicalAllowance, &s.ConveyanceAllowance, &s.OtherAllowances,
		&s.CTC,
	)
	if err != nil {
		return employee.Employee{}, err
	}
	if hasSalary {
		e.Salary = &s
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN salary_structures s ON s.employee_id = e.id
		WHERE e.id = $1
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return e, nil
}

// ListPayrollEligible implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListPayrollEligible(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN salary_structures s ON s.employee_id = e.id
		WHERE e.employment_status IN ($1, $2)
		ORDER BY e.id
	`

	rows, err := q.Query(ctx, query, string(employee.EmploymentStatusActive), string(employee.EmploymentStatusOnLeave))
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll-eligible employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}
