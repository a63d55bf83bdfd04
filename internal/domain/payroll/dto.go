package payroll

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculatePayrollRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodMonth int    `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int    `json:"period_year" validate:"gte=2000,lte=2100"`
}

func (r *CalculatePayrollRequest) Validate() error {
	return validator.Struct(r)
}

type ProcessPayrollRequest struct {
	PeriodMonth int `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int `json:"period_year" validate:"gte=2000,lte=2100"`
}

func (r *ProcessPayrollRequest) Validate() error {
	return validator.Struct(r)
}

type ListPayrollRecordsRequest struct {
	Month  int     `json:"month" validate:"min=1,max=12"`
	Year   int     `json:"year" validate:"gte=2000,lte=2100"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=draft processed paid"`
}

func (r *ListPayrollRecordsRequest) Validate() error {
	return validator.Struct(r)
}

// ========== SALARY STRUCTURE DTOs ==========

// DeriveSalaryStructureRequest derives a structure either from a compensation
// figure (auto_calculate) or from manually entered components.
type DeriveSalaryStructureRequest struct {
	AutoCalculate       bool                      `json:"auto_calculate"`
	MonthlyCompensation *float64                  `json:"monthly_compensation,omitempty" validate:"omitempty,gte=0"`
	AnnualCTC           *float64                  `json:"annual_ctc,omitempty" validate:"omitempty,gte=0"`
	Components          *employee.SalaryStructure `json:"components,omitempty"`
}

func (r *DeriveSalaryStructureRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if r.AutoCalculate {
		if r.MonthlyCompensation == nil && r.AnnualCTC == nil {
			errs = append(errs, validator.ValidationError{Field: "monthly_compensation", Message: "monthly_compensation or annual_ctc is required"})
		}
		if r.MonthlyCompensation != nil && r.AnnualCTC != nil {
			errs = append(errs, validator.ValidationError{Field: "annual_ctc", Message: "cannot be combined with monthly_compensation"})
		}
	} else if r.Components == nil {
		errs = append(errs, validator.ValidationError{Field: "components", Message: "is required when auto_calculate is false"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryStructureResponse struct {
	Basic               decimal.Decimal `json:"basic"`
	HRA                 decimal.Decimal `json:"hra"`
	DA                  decimal.Decimal `json:"da"`
	SpecialAllowance    decimal.Decimal `json:"special_allowance"`
	MedicalAllowance    decimal.Decimal `json:"medical_allowance"`
	ConveyanceAllowance decimal.Decimal `json:"conveyance_allowance"`
	OtherAllowances     decimal.Decimal `json:"other_allowances"`
	Gross               decimal.Decimal `json:"gross"`
	CTC                 decimal.Decimal `json:"ctc"`
}

// ========== STATUTORY DTOs ==========

type StatutoryPreviewRequest struct {
	SalaryStructure employee.SalaryStructure `json:"salary_structure"`
	State           string                   `json:"state"`
	Investments     float64                  `json:"investments" validate:"gte=0"`
}

func (r *StatutoryPreviewRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if field, invalid := r.SalaryStructure.InvalidField(); invalid {
		return validator.ValidationErrors{{Field: "salary_structure." + field, Message: "must be a non-negative number"}}
	}
	return nil
}

type StatutoryPreviewResponse struct {
	PF              decimal.Decimal `json:"pf"`
	ESIEmployee     decimal.Decimal `json:"esi_employee"`
	ESIEmployer     decimal.Decimal `json:"esi_employer"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	TDS             decimal.Decimal `json:"tds"`
	Total           decimal.Decimal `json:"total"`
}

// ========== PAYROLL RECORD DTOs ==========

type WeeklyOvertimeResponse struct {
	Week     int             `json:"week"`
	RawHours decimal.Decimal `json:"raw_hours"`
	Hours    decimal.Decimal `json:"hours"`
	Pay      decimal.Decimal `json:"pay"`
}

type LeaveDetailsResponse struct {
	TotalLeaveDays  float64         `json:"total_leave_days"`
	PaidLeaveDays   float64         `json:"paid_leave_days"`
	UnpaidLeaveDays float64         `json:"unpaid_leave_days"`
	LeaveDeduction  decimal.Decimal `json:"leave_deduction"`
	LeaveEncashment decimal.Decimal `json:"leave_encashment"`
}

type DeductionsResponse struct {
	PF                   decimal.Decimal `json:"pf"`
	ESI                  decimal.Decimal `json:"esi"`
	ESIEmployer          decimal.Decimal `json:"esi_employer"`
	ProfessionalTax      decimal.Decimal `json:"professional_tax"`
	TDS                  decimal.Decimal `json:"tds"`
	LateDeduction        decimal.Decimal `json:"late_deduction"`
	AbsentDeduction      decimal.Decimal `json:"absent_deduction"`
	UnpaidLeaveDeduction decimal.Decimal `json:"unpaid_leave_deduction"`
}

type PayrollRecordResponse struct {
	ID                string                   `json:"id"`
	EmployeeID        string                   `json:"employee_id"`
	EmployeeName      string                   `json:"employee_name,omitempty"`
	EmployeeCode      string                   `json:"employee_code,omitempty"`
	PeriodMonth       int                      `json:"period_month"`
	PeriodYear        int                      `json:"period_year"`
	SalaryBreakdown   SalaryStructureResponse  `json:"salary_breakdown"`
	WorkingDays       int                      `json:"working_days"`
	PresentDays       float64                  `json:"present_days"`
	LateDays          int                      `json:"late_days"`
	AbsentDays        float64                  `json:"absent_days"`
	OvertimeHours     decimal.Decimal          `json:"overtime_hours"`
	OvertimePay       decimal.Decimal          `json:"overtime_pay"`
	OvertimeBreakdown []WeeklyOvertimeResponse `json:"overtime_breakdown"`
	NightDifferential decimal.Decimal          `json:"night_differential"`
	ShiftDifferential decimal.Decimal          `json:"shift_differential"`
	LeaveDetails      LeaveDetailsResponse     `json:"leave_details"`
	Deductions        DeductionsResponse       `json:"deductions"`
	BaseSalary        decimal.Decimal          `json:"base_salary"`
	GrossSalary       decimal.Decimal          `json:"gross_salary"`
	TotalDeductions   decimal.Decimal          `json:"total_deductions"`
	NetSalary         decimal.Decimal          `json:"net_salary"`
	Status            string                   `json:"status"`
	Warnings          []string                 `json:"warnings,omitempty"`
	ProcessedAt       *string                  `json:"processed_at,omitempty"`
	PaidAt            *string                  `json:"paid_at,omitempty"`
}

type FailedEmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type ProcessPayrollResponse struct {
	PeriodMonth int                      `json:"period_month"`
	PeriodYear  int                      `json:"period_year"`
	ProcessedAt string                   `json:"processed_at"`
	Records     []PayrollRecordResponse  `json:"records"`
	Failed      []FailedEmployeeResponse `json:"failed"`
}

type PayrollSummaryResponse struct {
	TotalEmployees   int             `json:"total_employees"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	DraftCount       int             `json:"draft_count"`
	ProcessedCount   int             `json:"processed_count"`
	PaidCount        int             `json:"paid_count"`
}

type ListPayrollRecordResponse struct {
	PeriodMonth int                     `json:"period_month"`
	PeriodYear  int                     `json:"period_year"`
	Data        []PayrollRecordResponse `json:"data"`
	TotalCount  int                     `json:"total_count"`
	Summary     PayrollSummaryResponse  `json:"summary"`
}
