package payroll

import (
	"math"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

// SalaryStructureDeriver splits a compensation figure into components under
// the configured percentage policy.
type SalaryStructureDeriver struct {
	policy payroll.SalaryPolicy
}

func NewSalaryStructureDeriver(policy payroll.SalaryPolicy) *SalaryStructureDeriver {
	return &SalaryStructureDeriver{policy: policy}
}

// FromMonthly derives a structure from total monthly compensation.
func (d *SalaryStructureDeriver) FromMonthly(monthly float64) employee.SalaryStructure {
	m, _ := numeric.NonNegative(monthly)
	return d.FromAnnualCTC(m * 12)
}

// FromAnnualCTC derives the monthly components of an annual CTC. Components
// always sum to round(ctc/12): other allowances absorb the rounding, and the
// fixed allowances shrink when the month is too small to hold them.
func (d *SalaryStructureDeriver) FromAnnualCTC(ctc float64) employee.SalaryStructure {
	annual, _ := numeric.NonNegative(ctc)
	monthly := numeric.Round(annual/12, 0)

	basic := numeric.Round(monthly*positive(d.policy.BasicRate), 0)
	hra := numeric.Round(basic*positive(d.policy.HRARate), 0)
	da := numeric.Round(basic*positive(d.policy.DARate), 0)
	special := numeric.Round(monthly*positive(d.policy.SpecialRate), 0)

	// Trim the proportional components, last first, if rounding or an
	// aggressive policy pushed them past the monthly figure.
	over := basic + hra + da + special - monthly
	for _, c := range []*float64{&special, &da, &hra, &basic} {
		if over <= 0 {
			break
		}
		cut := math.Min(*c, over)
		*c -= cut
		over -= cut
	}

	remaining := monthly - basic - hra - da - special
	medical := math.Min(positive(d.policy.MedicalAllowance), math.Max(0, remaining))
	remaining -= medical
	conveyance := math.Min(positive(d.policy.ConveyanceAllowance), math.Max(0, remaining))
	remaining -= conveyance

	return employee.SalaryStructure{
		Basic:               basic,
		HRA:                 hra,
		DA:                  da,
		SpecialAllowance:    special,
		MedicalAllowance:    medical,
		ConveyanceAllowance: conveyance,
		OtherAllowances:     math.Max(0, remaining),
		CTC:                 annual,
	}
}

// FromComponents accepts a manually entered breakdown. It is only checked for
// non-negative finite amounts; CTC becomes the monthly total times twelve.
func (d *SalaryStructureDeriver) FromComponents(components employee.SalaryStructure) (employee.SalaryStructure, error) {
	components.CTC = 0
	if field, invalid := components.InvalidField(); invalid {
		return employee.SalaryStructure{}, &payroll.SalaryStructureError{
			Field:  field,
			Reason: "must be a non-negative number",
		}
	}
	components.CTC = components.Gross() * 12
	return components, nil
}

// Derive dispatches on auto: policy-driven from monthly compensation, or the
// manual components as given.
func (d *SalaryStructureDeriver) Derive(auto bool, monthly float64, components employee.SalaryStructure) (employee.SalaryStructure, error) {
	if auto {
		if !numeric.IsValid(monthly) {
			return employee.SalaryStructure{}, &payroll.SalaryStructureError{
				Field:  "monthly_compensation",
				Reason: "must be a non-negative number",
			}
		}
		return d.FromMonthly(monthly), nil
	}
	return d.FromComponents(components)
}
