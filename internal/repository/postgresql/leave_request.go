package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// GetApprovedForMonth implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetApprovedForMonth(ctx context.Context, employeeID string, month, year int) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// LEAST/GREATEST tolerate requests stored with reversed dates
	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, days, is_paid, status, reason, approved_at
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = $2
		  AND LEAST(start_date, end_date) < $4
		  AND GREATEST(start_date, end_date) >= $3
		ORDER BY start_date ASC
	`

	first, next := monthBounds(month, year)
	rows, err := q.Query(ctx, query, employeeID, string(leave.LeaveRequestStatusApproved), first, next)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved leave for %s: %w", employeeID, err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		var lr leave.LeaveRequest
		err := rows.Scan(
			&lr.ID, &lr.EmployeeID, &lr.Type, &lr.StartDate, &lr.EndDate, &lr.Days,
			&lr.IsPaid, &lr.Status, &lr.Reason, &lr.ApprovedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
