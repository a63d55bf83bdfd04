package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numeric"
)

func toSalaryStructureResponse(s employee.SalaryStructure) payroll.SalaryStructureResponse {
	return payroll.SalaryStructureResponse{
		Basic:               numeric.Currency(s.Basic),
		HRA:                 numeric.Currency(s.HRA),
		DA:                  numeric.Currency(s.DA),
		SpecialAllowance:    numeric.Currency(s.SpecialAllowance),
		MedicalAllowance:    numeric.Currency(s.MedicalAllowance),
		ConveyanceAllowance: numeric.Currency(s.ConveyanceAllowance),
		OtherAllowances:     numeric.Currency(s.OtherAllowances),
		Gross:               numeric.Currency(s.Gross()),
		CTC:                 numeric.Currency(s.CTC),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func toRecordResponse(rec payroll.PayrollRecord) payroll.PayrollRecordResponse {
	weeks := make([]payroll.WeeklyOvertimeResponse, 0, len(rec.OvertimeBreakdown))
	for _, w := range rec.OvertimeBreakdown {
		weeks = append(weeks, payroll.WeeklyOvertimeResponse{
			Week:     w.Week,
			RawHours: w.RawHours,
			Hours:    w.Hours,
			Pay:      w.Pay,
		})
	}

	resp := payroll.PayrollRecordResponse{
		ID:                rec.ID,
		EmployeeID:        rec.EmployeeID,
		PeriodMonth:       rec.PeriodMonth,
		PeriodYear:        rec.PeriodYear,
		SalaryBreakdown:   toSalaryStructureResponse(rec.SalaryBreakdown),
		WorkingDays:       rec.WorkingDays,
		PresentDays:       rec.PresentDays,
		LateDays:          rec.LateDays,
		AbsentDays:        rec.AbsentDays,
		OvertimeHours:     rec.OvertimeHours,
		OvertimePay:       rec.OvertimePay,
		OvertimeBreakdown: weeks,
		NightDifferential: rec.NightDifferential,
		ShiftDifferential: rec.ShiftDifferential,
		LeaveDetails: payroll.LeaveDetailsResponse{
			TotalLeaveDays:  rec.LeaveDetails.TotalLeaveDays,
			PaidLeaveDays:   rec.LeaveDetails.PaidLeaveDays,
			UnpaidLeaveDays: rec.LeaveDetails.UnpaidLeaveDays,
			LeaveDeduction:  rec.LeaveDetails.LeaveDeduction,
			LeaveEncashment: rec.LeaveDetails.LeaveEncashment,
		},
		Deductions: payroll.DeductionsResponse{
			PF:                   rec.Deductions.PF,
			ESI:                  rec.Deductions.ESI,
			ESIEmployer:          rec.Deductions.ESIEmployer,
			ProfessionalTax:      rec.Deductions.ProfessionalTax,
			TDS:                  rec.Deductions.TDS,
			LateDeduction:        rec.Deductions.LateDeduction,
			AbsentDeduction:      rec.Deductions.AbsentDeduction,
			UnpaidLeaveDeduction: rec.Deductions.UnpaidLeaveDeduction,
		},
		BaseSalary:      rec.BaseSalary,
		GrossSalary:     rec.GrossSalary,
		TotalDeductions: rec.TotalDeductions,
		NetSalary:       rec.NetSalary,
		Status:          string(rec.Status),
		Warnings:        rec.Warnings,
		ProcessedAt:     formatTime(rec.ProcessedAt),
		PaidAt:          formatTime(rec.PaidAt),
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	if rec.EmployeeCode != nil {
		resp.EmployeeCode = *rec.EmployeeCode
	}
	return resp
}

func toProcessResponse(result payroll.ProcessResult) payroll.ProcessPayrollResponse {
	records := make([]payroll.PayrollRecordResponse, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, toRecordResponse(rec))
	}
	failed := make([]payroll.FailedEmployeeResponse, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, payroll.FailedEmployeeResponse{EmployeeID: f.EmployeeID, Reason: f.Reason})
	}
	return payroll.ProcessPayrollResponse{
		PeriodMonth: result.PeriodMonth,
		PeriodYear:  result.PeriodYear,
		ProcessedAt: result.ProcessedAt.UTC().Format(time.RFC3339),
		Records:     records,
		Failed:      failed,
	}
}

func summarize(records []payroll.PayrollRecord) payroll.PayrollSummaryResponse {
	summary := payroll.PayrollSummaryResponse{TotalEmployees: len(records)}
	for _, rec := range records {
		summary.TotalGrossSalary = summary.TotalGrossSalary.Add(rec.GrossSalary)
		summary.TotalDeductions = summary.TotalDeductions.Add(rec.TotalDeductions)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(rec.NetSalary)
		switch rec.Status {
		case payroll.PayrollStatusDraft:
			summary.DraftCount++
		case payroll.PayrollStatusProcessed:
			summary.ProcessedCount++
		case payroll.PayrollStatusPaid:
			summary.PaidCount++
		}
	}
	return summary
}
