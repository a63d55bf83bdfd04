package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// overtimeDay builds a present record with the given overtime for employee emp-1.
func overtimeDay(day time.Time, overtime float64) attendance.Attendance {
	return attendance.Attendance{
		ID:            "att-" + day.Format("20060102"),
		EmployeeID:    "emp-1",
		Date:          day,
		Status:        attendance.StatusPresent,
		RegularHours:  8,
		OvertimeHours: overtime,
	}
}

// presentMonth returns one present record per weekday of the month until
// count records exist, skipping weekends.
func presentMonth(employeeID string, year int, month time.Month, count int) []attendance.Attendance {
	var records []attendance.Attendance
	for d := date(year, month, 1); d.Month() == month && len(records) < count; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		records = append(records, attendance.Attendance{
			ID:           employeeID + "-" + d.Format("20060102"),
			EmployeeID:   employeeID,
			Date:         d,
			Status:       attendance.StatusPresent,
			RegularHours: 8,
		})
	}
	return records
}
