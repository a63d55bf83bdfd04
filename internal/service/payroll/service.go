package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type PayrollServiceImpl struct {
	calculator  *Calculator
	processor   *Processor
	deriver     *SalaryStructureDeriver
	payrollRepo payroll.PayrollRepository
	audit       audit.Sink
	now         func() time.Time
}

func NewPayrollService(
	calculator *Calculator,
	processor *Processor,
	deriver *SalaryStructureDeriver,
	payrollRepo payroll.PayrollRepository,
	auditSink audit.Sink,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		calculator:  calculator,
		processor:   processor,
		deriver:     deriver,
		payrollRepo: payrollRepo,
		audit:       auditSink,
		now:         time.Now,
	}
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	rec, err := s.calculator.Calculate(ctx, req.EmployeeID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) ProcessPeriod(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.ProcessPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessPayrollResponse{}, err
	}

	result, err := s.processor.Process(ctx, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.ProcessPayrollResponse{}, fmt.Errorf("process payroll %04d-%02d: %w", req.PeriodYear, req.PeriodMonth, err)
	}
	return toProcessResponse(result), nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, req payroll.ListPayrollRecordsRequest) (payroll.ListPayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, err := s.payrollRepo.GetRecordsForPeriod(ctx, req.Month, req.Year)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("list payroll records: %w", err)
	}

	if req.Status != nil {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.Status) == *req.Status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toRecordResponse(rec))
	}

	return payroll.ListPayrollRecordResponse{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		Data:        data,
		TotalCount:  len(data),
		Summary:     summarize(records),
	}, nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

type statusSnapshot struct {
	Status payroll.PayrollStatus `json:"status"`
	PaidAt *time.Time            `json:"paid_at,omitempty"`
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	current, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := payroll.CheckTransition(current.Status, payroll.PayrollStatusPaid); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	updated, err := s.payrollRepo.UpdateRecordStatus(ctx, id, payroll.PayrollStatusPaid, s.now())
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	s.recordStatusChange(ctx, current, updated)
	return toRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) recordStatusChange(ctx context.Context, before, after payroll.PayrollRecord) {
	if s.audit == nil {
		return
	}

	beforeJSON, err := json.Marshal(statusSnapshot{Status: before.Status, PaidAt: before.PaidAt})
	if err != nil {
		slog.Warn("failed to encode audit snapshot", "entity_id", before.ID, "error", err)
		return
	}
	afterJSON, err := json.Marshal(statusSnapshot{Status: after.Status, PaidAt: after.PaidAt})
	if err != nil {
		slog.Warn("failed to encode audit snapshot", "entity_id", after.ID, "error", err)
		return
	}
	change := audit.RecordChange{
		ID:         uuid.NewString(),
		Action:     audit.ActionPayrollRecordPaid,
		EntityType: "payroll_record",
		EntityID:   after.ID,
		Before:     beforeJSON,
		After:      afterJSON,
		OccurredAt: after.UpdatedAt,
	}
	if err := s.audit.RecordChange(ctx, change); err != nil {
		slog.Warn("failed to record audit change", "action", change.Action, "entity_id", change.EntityID, "error", err)
	}
}

// ========== STRUCTURE & STATUTORY ==========

func (s *PayrollServiceImpl) DeriveSalaryStructure(ctx context.Context, req payroll.DeriveSalaryStructureRequest) (payroll.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	if req.AutoCalculate && req.AnnualCTC != nil {
		return toSalaryStructureResponse(s.deriver.FromAnnualCTC(*req.AnnualCTC)), nil
	}

	var monthly float64
	if req.MonthlyCompensation != nil {
		monthly = *req.MonthlyCompensation
	}
	var components employee.SalaryStructure
	if req.Components != nil {
		components = *req.Components
	}
	structure, err := s.deriver.Derive(req.AutoCalculate, monthly, components)
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}
	return toSalaryStructureResponse(structure), nil
}

func (s *PayrollServiceImpl) PreviewStatutory(ctx context.Context, req payroll.StatutoryPreviewRequest) (payroll.StatutoryPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.StatutoryPreviewResponse{}, err
	}

	d := s.calculator.Statutory().Calculate(req.SalaryStructure, req.State, req.Investments)
	return payroll.StatutoryPreviewResponse{
		PF:              d.PF,
		ESIEmployee:     d.ESI.Employee,
		ESIEmployer:     d.ESI.Employer,
		ProfessionalTax: d.ProfessionalTax,
		TDS:             d.TDS,
		Total:           d.PF.Add(d.ESI.Employee).Add(d.ProfessionalTax).Add(d.TDS),
	}, nil
}
