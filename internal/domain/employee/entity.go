package employee

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

type Employee struct {
	ID                  string
	EmployeeCode        string
	FullName            string
	State               string // Indian state, drives Professional Tax
	EmploymentStatus    EmploymentStatus
	AutoCalculateSalary bool
	Investments         float64 // declared annual tax-saving investments
	DefaultShiftID      *string
	Salary              *SalaryStructure
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusOnLeave    EmploymentStatus = "on_leave"
	EmploymentStatusInactive   EmploymentStatus = "inactive"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsPayrollEligible reports whether the employee takes part in period processing.
func (e Employee) IsPayrollEligible() bool {
	return e.EmploymentStatus == EmploymentStatusActive || e.EmploymentStatus == EmploymentStatusOnLeave
}

// SalaryStructure - Monthly component breakdown owned by the employee.
// CTC is the annual cost to company cached alongside the components.
type SalaryStructure struct {
	Basic               float64 `json:"basic"`
	HRA                 float64 `json:"hra"`
	DA                  float64 `json:"da"`
	SpecialAllowance    float64 `json:"special_allowance"`
	MedicalAllowance    float64 `json:"medical_allowance"`
	ConveyanceAllowance float64 `json:"conveyance_allowance"`
	OtherAllowances     float64 `json:"other_allowances"`
	CTC                 float64 `json:"ctc"`
}

// Component is a named monthly amount of a SalaryStructure.
type Component struct {
	Name   string
	Amount float64
}

// Components lists the monthly components in payslip order.
func (s SalaryStructure) Components() []Component {
	return []Component{
		{Name: "basic", Amount: s.Basic},
		{Name: "hra", Amount: s.HRA},
		{Name: "da", Amount: s.DA},
		{Name: "special_allowance", Amount: s.SpecialAllowance},
		{Name: "medical_allowance", Amount: s.MedicalAllowance},
		{Name: "conveyance_allowance", Amount: s.ConveyanceAllowance},
		{Name: "other_allowances", Amount: s.OtherAllowances},
	}
}

// Gross is the monthly sum of all components. Non-finite components count as zero.
func (s SalaryStructure) Gross() float64 {
	var total float64
	for _, c := range s.Components() {
		total += numeric.Finite(c.Amount)
	}
	return total
}

// InvalidField returns the first component (or ctc) that is negative or not a
// finite number.
func (s SalaryStructure) InvalidField() (string, bool) {
	for _, c := range s.Components() {
		if !numeric.IsValid(c.Amount) {
			return c.Name, true
		}
	}
	if !numeric.IsValid(s.CTC) {
		return "ctc", true
	}
	return "", false
}

// Normalized returns a copy with every field coerced to a finite, non-negative value.
func (s SalaryStructure) Normalized() SalaryStructure {
	clean := func(v float64) float64 {
		f, _ := numeric.NonNegative(v)
		return f
	}
	return SalaryStructure{
		Basic:               clean(s.Basic),
		HRA:                 clean(s.HRA),
		DA:                  clean(s.DA),
		SpecialAllowance:    clean(s.SpecialAllowance),
		MedicalAllowance:    clean(s.MedicalAllowance),
		ConveyanceAllowance: clean(s.ConveyanceAllowance),
		OtherAllowances:     clean(s.OtherAllowances),
		CTC:                 clean(s.CTC),
	}
}
