package payroll

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

const dateKeyLayout = "2006-01-02"

func dateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// HolidayCalendar flags dates paid at the holiday overtime multiplier.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// HolidaySet is a HolidayCalendar backed by a fixed list of dates.
type HolidaySet map[string]struct{}

func NewHolidaySet(dates ...time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[dateKey(d)] = struct{}{}
	}
	return set
}

func (h HolidaySet) IsHoliday(date time.Time) bool {
	_, ok := h[dateKey(date)]
	return ok
}

// OvertimeInput is everything the aggregator needs for one employee-month.
// Shifts is keyed by record date (YYYY-MM-DD).
type OvertimeInput struct {
	EmployeeID string
	Month      int
	Year       int
	Records    []attendance.Attendance
	HourlyRate float64
	Shifts     map[string]schedule.Shift
}

// OvertimeAggregator buckets a month of attendance by week-of-month and applies
// the daily cap, day-type multipliers, the weekly cap and the night differential.
type OvertimeAggregator struct {
	rules    payroll.OvertimeRules
	holidays HolidayCalendar
}

func NewOvertimeAggregator(rules payroll.OvertimeRules, holidays HolidayCalendar) *OvertimeAggregator {
	return &OvertimeAggregator{rules: rules, holidays: holidays}
}

type weekBucket struct {
	rawHours float64
	pay      float64
	bonus    float64
}

// WeekOfMonth returns ceil(day / 7), so days 1-7 are week 1 and 29-31 week 5.
func WeekOfMonth(date time.Time) int {
	return (date.Day() + 6) / 7
}

func (a *OvertimeAggregator) Aggregate(in OvertimeInput) payroll.OvertimeSummary {
	hourlyRate, _ := numeric.NonNegative(in.HourlyRate)
	records := monthRecords(in.Records, in.EmployeeID, in.Month, in.Year)

	weeks := make(map[int]*weekBucket)
	var nightDifferential float64
	var streak int
	var previous time.Time

	for _, r := range records {
		day := dateOnly(r.Date)
		if r.PresentWeight() > 0 {
			if streak > 0 && day.Sub(previous) == 24*time.Hour {
				streak++
			} else {
				streak = 1
			}
			previous = day
		} else {
			streak = 0
		}

		week := WeekOfMonth(r.Date)
		bucket, ok := weeks[week]
		if !ok {
			bucket = &weekBucket{}
			weeks[week] = bucket
		}

		shift, hasShift := in.Shifts[dateKey(r.Date)]

		overtime, _ := numeric.NonNegative(r.OvertimeHours)
		capped := overtime
		if a.rules.MaxDailyHours > 0 {
			capped = math.Min(overtime, a.rules.MaxDailyHours)
		}

		if capped > 0 {
			pay := capped * hourlyRate * a.multiplier(r, shift, hasShift)
			if a.rules.ConsecutiveDayBonus > 0 && a.rules.ConsecutiveDayThreshold > 0 && streak >= a.rules.ConsecutiveDayThreshold {
				bonus := pay * a.rules.ConsecutiveDayBonus
				bucket.bonus += bonus
				pay += bonus
			}
			bucket.rawHours += capped
			bucket.pay += pay
		}

		if hasShift && shift.Type == schedule.ShiftTypeNight {
			regular, _ := numeric.NonNegative(r.RegularHours)
			rate := shift.NightDifferentialRate(a.rules.NightDifferentialRate)
			nightDifferential += (regular + capped) * hourlyRate * numeric.Finite(rate)
		}
	}

	weekNumbers := make([]int, 0, len(weeks))
	for w := range weeks {
		weekNumbers = append(weekNumbers, w)
	}
	sort.Ints(weekNumbers)

	summary := payroll.OvertimeSummary{Weeks: make([]payroll.WeeklyOvertime, 0, len(weekNumbers))}
	var totalHours, totalPay, totalBonus float64

	for _, w := range weekNumbers {
		b := weeks[w]
		hours, pay, bonus := a.capWeek(b)

		totalHours += hours
		totalPay += pay
		totalBonus += bonus

		summary.Weeks = append(summary.Weeks, payroll.WeeklyOvertime{
			Week:     w,
			RawHours: numeric.Hours(b.rawHours),
			Hours:    numeric.Hours(hours),
			Pay:      numeric.Currency(pay),
		})
	}

	summary.TotalHours = numeric.Hours(totalHours)
	summary.TotalPay = numeric.Currency(totalPay)
	summary.NightDifferential = numeric.Currency(nightDifferential)
	summary.ConsecutiveBonus = numeric.Currency(totalBonus)
	return summary
}

// capWeek scales a week's pay by capped/raw when its hours exceed the weekly cap.
func (a *OvertimeAggregator) capWeek(b *weekBucket) (hours, pay, bonus float64) {
	if b.rawHours <= 0 {
		return 0, 0, 0
	}
	limit := a.rules.MaxWeeklyHours
	if limit <= 0 || b.rawHours <= limit {
		return b.rawHours, b.pay, b.bonus
	}
	ratio := limit / b.rawHours
	return limit, b.pay * ratio, b.bonus * ratio
}

// multiplier picks holiday, then weekend, then the shift's own multiplier
// when ShiftMultipliers is on, then the weekday default.
func (a *OvertimeAggregator) multiplier(r attendance.Attendance, shift schedule.Shift, hasShift bool) float64 {
	if r.IsHoliday || (a.holidays != nil && a.holidays.IsHoliday(r.Date)) {
		return a.rules.HolidayMultiplier
	}
	if wd := r.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return a.rules.WeekendMultiplier
	}
	if a.rules.ShiftMultipliers && hasShift && shift.OvertimeMultiplier > 0 {
		return shift.OvertimeMultiplier
	}
	return a.rules.WeekdayMultiplier
}

// monthRecords keeps the employee's records for the period, sorted by date.
func monthRecords(records []attendance.Attendance, employeeID string, month, year int) []attendance.Attendance {
	out := make([]attendance.Attendance, 0, len(records))
	for _, r := range records {
		if r.EmployeeID == employeeID && r.InPeriod(month, year) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
