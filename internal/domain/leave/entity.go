package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeCasual    LeaveType = "casual"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeEmergency LeaveType = "emergency"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// LeaveRequest entity. Days counts both endpoints of the span.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Days       float64
	IsPaid     bool
	Status     LeaveRequestStatus
	Reason     string
	ApprovedAt *time.Time
}

// OverlapsMonth reports whether [StartDate, EndDate] intersects the calendar month.
func (r LeaveRequest) OverlapsMonth(month, year int) bool {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := dateOnly(r.StartDate)
	end := dateOnly(r.EndDate)
	if end.Before(start) {
		start, end = end, start
	}
	return !start.After(last) && !end.Before(first)
}

// InclusiveDays counts calendar days from StartDate to EndDate, both included.
func InclusiveDays(start, end time.Time) int {
	s, e := dateOnly(start), dateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
