package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

const (
	DefaultBreakMinutes  = 60
	DefaultStandardHours = 8.0
)

// Attendance is one employee's record for one calendar date.
type Attendance struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	CheckIn           *time.Time
	CheckOut          *time.Time
	Status            Status
	RegularHours      float64
	OvertimeHours     float64
	BreakMinutes      int
	TotalWorkingHours float64
	ShiftID           *string
	IsHoliday         bool
}

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusHalfDay),
	string(StatusOnLeave),
}

// PresentWeight is how much of a working day the record counts as attended.
func (a Attendance) PresentWeight() float64 {
	switch a.Status {
	case StatusPresent, StatusLate:
		return 1
	case StatusHalfDay:
		return 0.5
	default:
		return 0
	}
}

// InPeriod reports whether the record belongs to the given month and year.
func (a Attendance) InPeriod(month, year int) bool {
	return int(a.Date.Month()) == month && a.Date.Year() == year
}

// WorkingHours splits the time between check-in and check-out into regular and
// overtime hours. A check-out at or before the check-in is taken to be on the
// next day. Values are rounded to two decimals.
func WorkingHours(checkIn, checkOut time.Time, breakMinutes int, standardHours float64) (regular, overtime, total float64) {
	if !checkOut.After(checkIn) {
		checkOut = checkOut.Add(24 * time.Hour)
	}
	if breakMinutes < 0 {
		breakMinutes = 0
	}
	if standardHours <= 0 {
		standardHours = DefaultStandardHours
	}

	worked := checkOut.Sub(checkIn).Minutes() - float64(breakMinutes)
	if worked < 0 {
		worked = 0
	}
	total = worked / 60

	regular = total
	if regular > standardHours {
		regular = standardHours
	}
	overtime = total - standardHours
	if overtime < 0 {
		overtime = 0
	}

	return numeric.Round(regular, 2), numeric.Round(overtime, 2), numeric.Round(total, 2)
}

// HasHours reports whether any hour field was supplied with the record.
func (a Attendance) HasHours() bool {
	return a.RegularHours != 0 || a.OvertimeHours != 0 || a.TotalWorkingHours != 0
}

// FillWorkingHours derives the hour fields from CheckIn/CheckOut when both are set.
func (a *Attendance) FillWorkingHours(standardHours float64) {
	if a.CheckIn == nil || a.CheckOut == nil {
		return
	}
	a.RegularHours, a.OvertimeHours, a.TotalWorkingHours = WorkingHours(*a.CheckIn, *a.CheckOut, a.BreakMinutes, standardHours)
}
