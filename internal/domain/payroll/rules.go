package payroll

import "github.com/shopspring/decimal"

// Rules is the complete set of tunables the engine computes with.
type Rules struct {
	WorkingDays int
	HoursPerDay float64
	Overtime    OvertimeRules
	Shift       ShiftRules
	Attendance  AttendanceRules
	Statutory   StatutoryRules
	Salary      SalaryPolicy
}

type OvertimeRules struct {
	WeekdayMultiplier     float64
	WeekendMultiplier     float64
	HolidayMultiplier     float64
	MaxDailyHours         float64
	MaxWeeklyHours        float64
	NightDifferentialRate float64
	// ConsecutiveDayBonus is a fraction of a record's overtime pay granted once
	// the employee has attended ConsecutiveDayThreshold days in a row. Zero disables it.
	ConsecutiveDayBonus     float64
	ConsecutiveDayThreshold int
	// ShiftMultipliers lets a shift's own OvertimeMultiplier replace the
	// weekday multiplier. Holiday and weekend multipliers still take precedence.
	ShiftMultipliers bool
}

type ShiftRules struct {
	// WeekendPremiumRate is paid on regular hours worked on a weekend-type shift.
	WeekendPremiumRate float64
}

type AttendanceRules struct {
	LateDeductionEnabled   bool
	LateDeductionFraction  float64 // of the daily salary, per late day
	AbsentDeductionEnabled bool
}

// TaxSlab is one band of the annual progressive income-tax table.
type TaxSlab struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

type StatutoryRules struct {
	PFEnabled  bool
	ESIEnabled bool
	PTEnabled  bool
	TDSEnabled bool

	PFRate    float64
	PFCeiling float64

	ESIEmployeeRate float64
	ESIEmployerRate float64
	ESICeiling      float64

	PTThreshold   float64
	PTDefaultRate float64
	PTStateRates  map[string]float64

	TaxSlabs []TaxSlab
	CessRate float64
}

type SalaryPolicy struct {
	BasicRate           float64 // of monthly compensation
	HRARate             float64 // of basic
	DARate              float64 // of basic
	SpecialRate         float64 // of monthly compensation
	MedicalAllowance    float64
	ConveyanceAllowance float64
}

// unboundedSlab caps the top tax band.
var unboundedSlab = decimal.NewFromInt(999_999_999_999)

// DefaultTaxSlabs returns the annual slab table (amounts in rupees).
func DefaultTaxSlabs() []TaxSlab {
	return []TaxSlab{
		{Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(300_000), Rate: decimal.Zero},
		{Min: decimal.NewFromInt(300_000), Max: decimal.NewFromInt(600_000), Rate: decimal.NewFromFloat(0.05)},
		{Min: decimal.NewFromInt(600_000), Max: decimal.NewFromInt(900_000), Rate: decimal.NewFromFloat(0.10)},
		{Min: decimal.NewFromInt(900_000), Max: decimal.NewFromInt(1_200_000), Rate: decimal.NewFromFloat(0.15)},
		{Min: decimal.NewFromInt(1_200_000), Max: decimal.NewFromInt(1_500_000), Rate: decimal.NewFromFloat(0.20)},
		{Min: decimal.NewFromInt(1_500_000), Max: unboundedSlab, Rate: decimal.NewFromFloat(0.30)},
	}
}

// DefaultPTStateRates returns the monthly Professional Tax per state.
func DefaultPTStateRates() map[string]float64 {
	return map[string]float64{
		"Maharashtra":    200,
		"Karnataka":      200,
		"West Bengal":    110,
		"Tamil Nadu":     100,
		"Andhra Pradesh": 150,
		"Telangana":      150,
		"Gujarat":        150,
		"Madhya Pradesh": 60,
	}
}

func DefaultRules() Rules {
	return Rules{
		WorkingDays: 26,
		HoursPerDay: 8,
		Overtime: OvertimeRules{
			WeekdayMultiplier:       1.5,
			WeekendMultiplier:       2.0,
			HolidayMultiplier:       2.5,
			MaxDailyHours:           4,
			MaxWeeklyHours:          20,
			NightDifferentialRate:   0.15,
			ConsecutiveDayBonus:     0,
			ConsecutiveDayThreshold: 6,
			ShiftMultipliers:        false,
		},
		Shift: ShiftRules{
			WeekendPremiumRate: 0.25,
		},
		Attendance: AttendanceRules{
			LateDeductionEnabled:   true,
			LateDeductionFraction:  0.10,
			AbsentDeductionEnabled: true,
		},
		Statutory: StatutoryRules{
			PFEnabled:       true,
			ESIEnabled:      true,
			PTEnabled:       true,
			TDSEnabled:      true,
			PFRate:          0.12,
			PFCeiling:       15000,
			ESIEmployeeRate: 0.0075,
			ESIEmployerRate: 0.0325,
			ESICeiling:      21000,
			PTThreshold:     15000,
			PTDefaultRate:   200,
			PTStateRates:    DefaultPTStateRates(),
			TaxSlabs:        DefaultTaxSlabs(),
			CessRate:        0.04,
		},
		Salary: SalaryPolicy{
			BasicRate:           0.50,
			HRARate:             0.40,
			DARate:              0.12,
			SpecialRate:         0.15,
			MedicalAllowance:    1250,
			ConveyanceAllowance: 1600,
		},
	}
}
