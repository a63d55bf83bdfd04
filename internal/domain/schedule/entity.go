package schedule

import "time"

// Shift is static reference data for a working pattern. StartTime and EndTime
// are time-of-day values; NightDifferential is a percentage of the hourly rate.
type Shift struct {
	ID                 string
	Name               string
	Type               ShiftType
	StartTime          time.Time
	EndTime            time.Time
	StandardHours      float64
	OvertimeMultiplier float64
	NightDifferential  float64
}

type ShiftType string

const (
	ShiftTypeDay     ShiftType = "day"
	ShiftTypeNight   ShiftType = "night"
	ShiftTypeWeekend ShiftType = "weekend"
)

var ShiftTypeValues = []string{
	string(ShiftTypeDay),
	string(ShiftTypeNight),
	string(ShiftTypeWeekend),
}

// NightDifferentialRate converts the percentage to a fraction, falling back to
// the given rate when the shift carries none.
func (s Shift) NightDifferentialRate(fallback float64) float64 {
	if s.NightDifferential > 0 {
		return s.NightDifferential / 100
	}
	return fallback
}

func clockTime(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

// DefaultShifts is the catalogue seeded for a new installation.
func DefaultShifts() []Shift {
	return []Shift{
		{
			ID:                 "day",
			Name:               "Day Shift",
			Type:               ShiftTypeDay,
			StartTime:          clockTime(9, 0),
			EndTime:            clockTime(17, 0),
			StandardHours:      8,
			OvertimeMultiplier: 1.5,
		},
		{
			ID:                 "night",
			Name:               "Night Shift",
			Type:               ShiftTypeNight,
			StartTime:          clockTime(22, 0),
			EndTime:            clockTime(6, 0),
			StandardHours:      8,
			OvertimeMultiplier: 1.5,
			NightDifferential:  15,
		},
		{
			ID:                 "weekend",
			Name:               "Weekend Shift",
			Type:               ShiftTypeWeekend,
			StartTime:          clockTime(10, 0),
			EndTime:            clockTime(18, 0),
			StandardHours:      8,
			OvertimeMultiplier: 2.0,
		},
	}
}
