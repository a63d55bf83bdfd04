package payroll

import "context"

type PayrollService interface {
	// Calculate previews one employee's Draft record without persisting it.
	Calculate(ctx context.Context, req CalculatePayrollRequest) (PayrollRecordResponse, error)
	ProcessPeriod(ctx context.Context, req ProcessPayrollRequest) (ProcessPayrollResponse, error)
	ListRecords(ctx context.Context, req ListPayrollRecordsRequest) (ListPayrollRecordResponse, error)
	GetRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	// MarkPaid moves a Processed record to Paid.
	MarkPaid(ctx context.Context, id string) (PayrollRecordResponse, error)

	DeriveSalaryStructure(ctx context.Context, req DeriveSalaryStructureRequest) (SalaryStructureResponse, error)
	PreviewStatutory(ctx context.Context, req StatutoryPreviewRequest) (StatutoryPreviewResponse, error)
}
