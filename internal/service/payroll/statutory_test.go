package payroll

import (
	"math"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
)

func newTestStatutory() *StatutoryCalculator {
	return NewStatutoryCalculator(payroll.DefaultRules().Statutory)
}

func TestCalculatePF(t *testing.T) {
	calc := newTestStatutory()

	tests := []struct {
		name  string
		basic float64
		da    float64
		want  string
	}{
		{"below ceiling", 10000, 1000, "1320"},
		{"exactly at ceiling", 12000, 3000, "1800"},
		{"capped above ceiling", 20000, 0, "1800"},
		{"far above ceiling", 150000, 18000, "1800"},
		{"zero", 0, 0, "0"},
		{"rounds to whole rupee", 10004, 0, "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.CalculatePF(employee.SalaryStructure{Basic: tt.basic, DA: tt.da})
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCalculatePF_CoercesNonNumeric(t *testing.T) {
	calc := newTestStatutory()

	got := calc.CalculatePF(employee.SalaryStructure{Basic: math.NaN(), DA: math.Inf(1)})
	assert.Equal(t, "0", got.String())

	got = calc.CalculatePF(employee.SalaryStructure{Basic: -5000, DA: 1000})
	assert.Equal(t, "120", got.String())
}

func TestCalculateESI_Ceiling(t *testing.T) {
	calc := newTestStatutory()

	t.Run("gross exactly at ceiling applies", func(t *testing.T) {
		esi := calc.CalculateESI(employee.SalaryStructure{Basic: 21000})
		assert.Equal(t, "158", esi.Employee.String()) // 157.5
		assert.Equal(t, "683", esi.Employer.String()) // 682.5
	})

	t.Run("gross above ceiling is exempt", func(t *testing.T) {
		esi := calc.CalculateESI(employee.SalaryStructure{Basic: 20000, HRA: 1001})
		assert.True(t, esi.Employee.IsZero())
		assert.True(t, esi.Employer.IsZero())
	})

	t.Run("sums every component", func(t *testing.T) {
		esi := calc.CalculateESI(employee.SalaryStructure{
			Basic:               8000,
			HRA:                 3200,
			DA:                  960,
			SpecialAllowance:    2000,
			MedicalAllowance:    1250,
			ConveyanceAllowance: 1600,
			OtherAllowances:     990,
		})
		assert.Equal(t, "135", esi.Employee.String()) // 18000 * 0.75%
		assert.Equal(t, "585", esi.Employer.String()) // 18000 * 3.25%
	})
}

func TestCalculateProfessionalTax(t *testing.T) {
	calc := newTestStatutory()

	tests := []struct {
		name  string
		state string
		gross float64
		want  string
	}{
		{"maharashtra", "Maharashtra", 34000, "200"},
		{"west bengal", "West Bengal", 34000, "110"},
		{"tamil nadu", "Tamil Nadu", 16000, "100"},
		{"madhya pradesh", "Madhya Pradesh", 50000, "60"},
		{"case insensitive", "gujarat", 50000, "150"},
		{"unknown state uses default", "Atlantis", 34000, "200"},
		{"empty state uses default", "", 34000, "200"},
		{"at threshold", "Karnataka", 15000, "0"},
		{"below threshold", "Karnataka", 9000, "0"},
		{"nan gross", "Karnataka", math.NaN(), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.CalculateProfessionalTax(tt.state, tt.gross).String())
		})
	}
}

func TestCalculateTDS(t *testing.T) {
	calc := newTestStatutory()

	tests := []struct {
		name        string
		annualCTC   float64
		investments float64
		want        string
	}{
		{"below first slab", 300000, 0, "0"},
		{"second slab", 408000, 0, "468"},
		{"investments reduce taxable", 458000, 50000, "468"},
		{"third slab", 720000, 0, "2340"},
		{"top slab", 2000000, 0, "26000"},
		{"investments exceed ctc", 200000, 500000, "0"},
		{"nan ctc", math.NaN(), 0, "0"},
		{"negative investments ignored", 408000, -100000, "468"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.CalculateTDS(tt.annualCTC, tt.investments).String())
		})
	}
}

func TestCalculateTDS_TableDriven(t *testing.T) {
	rules := payroll.DefaultRules().Statutory
	rules.TaxSlabs = []payroll.TaxSlab{
		{Min: dec(0), Max: dec(100000), Rate: dec(0)},
		{Min: dec(100000), Max: dec(1000000000), Rate: decFloat(0.10)},
	}
	rules.CessRate = 0
	calc := NewStatutoryCalculator(rules)

	assert.Equal(t, "1000", calc.CalculateTDS(220000, 0).String()) // 12000 / 12
}

func TestStatutoryCalculate_Toggles(t *testing.T) {
	structure := employee.SalaryStructure{Basic: 10000, HRA: 4000, DA: 1200}

	all := newTestStatutory().Calculate(structure, "Maharashtra", 0)
	assert.Equal(t, "1344", all.PF.String())
	assert.Equal(t, "114", all.ESI.Employee.String())
	assert.Equal(t, "200", all.ProfessionalTax.String())
	assert.Equal(t, "0", all.TDS.String())

	rules := payroll.DefaultRules().Statutory
	rules.PFEnabled = false
	rules.ESIEnabled = false
	rules.PTEnabled = false
	none := NewStatutoryCalculator(rules).Calculate(structure, "Maharashtra", 0)
	assert.True(t, none.PF.IsZero())
	assert.True(t, none.ESI.Employee.IsZero())
	assert.True(t, none.ESI.Employer.IsZero())
	assert.True(t, none.ProfessionalTax.IsZero())
}

func TestStatutoryCalculate_UsesCTCWhenPresent(t *testing.T) {
	structure := employee.SalaryStructure{Basic: 20000, CTC: 720000}

	got := newTestStatutory().Calculate(structure, "Karnataka", 0)

	assert.Equal(t, "2340", got.TDS.String())
}
