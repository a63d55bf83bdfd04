package payroll

import (
	"math"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
	"github.com/shopspring/decimal"
)

// ESIContribution splits Employee State Insurance between both parties.
type ESIContribution struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
}

// StatutoryDeductions bundles the four statutory amounts for one month.
type StatutoryDeductions struct {
	PF              decimal.Decimal
	ESI             ESIContribution
	ProfessionalTax decimal.Decimal
	TDS             decimal.Decimal
}

// StatutoryCalculator computes PF, ESI, Professional Tax and TDS. Every
// method is pure and returns a finite, non-negative, whole-rupee amount.
type StatutoryCalculator struct {
	rules payroll.StatutoryRules
}

func NewStatutoryCalculator(rules payroll.StatutoryRules) *StatutoryCalculator {
	return &StatutoryCalculator{rules: rules}
}

// CalculatePF returns the employee Provident Fund share on basic + DA,
// with the wage base capped at the PF ceiling.
func (c *StatutoryCalculator) CalculatePF(structure employee.SalaryStructure) decimal.Decimal {
	s := structure.Normalized()
	base := math.Min(s.Basic+s.DA, positive(c.rules.PFCeiling))
	return numeric.Currency(base * positive(c.rules.PFRate))
}

// CalculateESI returns zero for both parties when the monthly gross exceeds
// the ESI ceiling. A gross equal to the ceiling is still covered.
func (c *StatutoryCalculator) CalculateESI(structure employee.SalaryStructure) ESIContribution {
	gross := structure.Normalized().Gross()
	if gross > c.rules.ESICeiling {
		return ESIContribution{Employee: decimal.Zero, Employer: decimal.Zero}
	}
	return ESIContribution{
		Employee: numeric.Currency(gross * positive(c.rules.ESIEmployeeRate)),
		Employer: numeric.Currency(gross * positive(c.rules.ESIEmployerRate)),
	}
}

// CalculateProfessionalTax looks up the state's flat monthly rate. Unknown
// states use the default rate; grosses at or below the threshold pay nothing.
func (c *StatutoryCalculator) CalculateProfessionalTax(state string, grossSalary float64) decimal.Decimal {
	gross := positive(grossSalary)
	if gross <= c.rules.PTThreshold {
		return decimal.Zero
	}
	return numeric.Currency(positive(c.stateRate(state)))
}

func (c *StatutoryCalculator) stateRate(state string) float64 {
	state = strings.TrimSpace(state)
	if rate, ok := c.rules.PTStateRates[state]; ok {
		return rate
	}
	for name, rate := range c.rules.PTStateRates {
		if strings.EqualFold(name, state) {
			return rate
		}
	}
	return c.rules.PTDefaultRate
}

// CalculateTDS applies the slab table to the annual taxable income
// (annualCTC - investments), adds cess and spreads the result over 12 months.
func (c *StatutoryCalculator) CalculateTDS(annualCTC, investments float64) decimal.Decimal {
	taxable := decimal.NewFromFloat(positive(annualCTC)).Sub(decimal.NewFromFloat(positive(investments)))
	if !taxable.IsPositive() {
		return decimal.Zero
	}

	tax := decimal.Zero
	for _, slab := range c.rules.TaxSlabs {
		if taxable.LessThanOrEqual(slab.Min) {
			continue
		}
		inSlab := decimal.Min(taxable, slab.Max).Sub(slab.Min)
		if inSlab.IsPositive() && slab.Rate.IsPositive() {
			tax = tax.Add(inSlab.Mul(slab.Rate))
		}
	}

	cess := decimal.NewFromFloat(1 + positive(c.rules.CessRate))
	monthly := tax.Mul(cess).Div(decimal.NewFromInt(12)).Round(0)
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return monthly
}

// Calculate runs every enabled statutory rule for one month. annualCTC falls
// back to twelve times the monthly gross when the structure carries none.
func (c *StatutoryCalculator) Calculate(structure employee.SalaryStructure, state string, investments float64) StatutoryDeductions {
	s := structure.Normalized()
	gross := s.Gross()

	annualCTC := s.CTC
	if annualCTC <= 0 {
		annualCTC = gross * 12
	}

	out := StatutoryDeductions{
		PF:              decimal.Zero,
		ESI:             ESIContribution{Employee: decimal.Zero, Employer: decimal.Zero},
		ProfessionalTax: decimal.Zero,
		TDS:             decimal.Zero,
	}
	if c.rules.PFEnabled {
		out.PF = c.CalculatePF(s)
	}
	if c.rules.ESIEnabled {
		out.ESI = c.CalculateESI(s)
	}
	if c.rules.PTEnabled {
		out.ProfessionalTax = c.CalculateProfessionalTax(state, gross)
	}
	if c.rules.TDSEnabled {
		out.TDS = c.CalculateTDS(annualCTC, investments)
	}
	return out
}

func positive(v float64) float64 {
	f, _ := numeric.NonNegative(v)
	return f
}
