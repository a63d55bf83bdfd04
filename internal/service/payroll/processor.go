package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/lock"
	"github.com/google/uuid"
)

type ProcessorOption func(*Processor)

// WithReuseExisting re-stamps Draft and Processed records instead of recomputing them.
func WithReuseExisting(reuse bool) ProcessorOption {
	return func(p *Processor) { p.reuseExisting = reuse }
}

func WithAuditSink(sink audit.Sink) ProcessorOption {
	return func(p *Processor) { p.audit = sink }
}

func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = logger }
}

// Processor runs the calculator over every payroll-eligible employee of a
// period and commits the result set in one replace.
type Processor struct {
	calculator    *Calculator
	employeeRepo  employee.EmployeeRepository
	payrollRepo   payroll.PayrollRepository
	locker        lock.PeriodLocker
	audit         audit.Sink
	reuseExisting bool
	now           func() time.Time
	logger        *slog.Logger
}

func NewProcessor(
	calculator *Calculator,
	employeeRepo employee.EmployeeRepository,
	payrollRepo payroll.PayrollRepository,
	locker lock.PeriodLocker,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		calculator:   calculator,
		employeeRepo: employeeRepo,
		payrollRepo:  payrollRepo,
		locker:       locker,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.locker == nil {
		p.locker = lock.NewMemoryLocker()
	}
	return p
}

// Process computes and commits the period. Running it again replaces the
// period's records rather than appending. Paid records are never touched.
func (p *Processor) Process(ctx context.Context, month, year int) (payroll.ProcessResult, error) {
	if err := payroll.ValidatePeriod(month, year); err != nil {
		return payroll.ProcessResult{}, err
	}

	release, err := p.locker.Lock(ctx, lock.PeriodKey(month, year))
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return payroll.ProcessResult{}, fmt.Errorf("%w: %v", payroll.ErrPeriodLocked, err)
		}
		return payroll.ProcessResult{}, fmt.Errorf("lock period: %w", err)
	}
	defer release()

	existing, err := p.payrollRepo.GetRecordsForPeriod(ctx, month, year)
	if err != nil {
		return payroll.ProcessResult{}, fmt.Errorf("get existing records: %w", err)
	}
	previous := make(map[string]payroll.PayrollRecord, len(existing))
	for _, rec := range existing {
		previous[rec.EmployeeID] = rec
	}

	employees, err := p.employeeRepo.ListPayrollEligible(ctx)
	if err != nil {
		return payroll.ProcessResult{}, fmt.Errorf("list employees: %w", err)
	}

	processedAt := p.now()
	result := payroll.ProcessResult{
		PeriodMonth: month,
		PeriodYear:  year,
		Records:     make([]payroll.PayrollRecord, 0, len(employees)),
		Failed:      []payroll.FailedEmployee{},
		ProcessedAt: processedAt,
	}

	seen := make(map[string]bool, len(employees))
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return payroll.ProcessResult{}, err
		}
		seen[emp.ID] = true

		prev, hasPrev := previous[emp.ID]
		if hasPrev && prev.Status == payroll.PayrollStatusPaid {
			result.Records = append(result.Records, prev)
			continue
		}
		if hasPrev && p.reuseExisting {
			result.Records = append(result.Records, stampProcessed(prev, processedAt))
			continue
		}

		rec, err := p.calculator.CalculateForEmployee(ctx, emp, month, year)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return payroll.ProcessResult{}, ctxErr
			}
			p.logger.Warn("payroll calculation failed, skipping employee",
				"employee_id", emp.ID, "month", month, "year", year, "error", err)
			result.Failed = append(result.Failed, payroll.FailedEmployee{EmployeeID: emp.ID, Reason: err.Error()})
			continue
		}
		result.Records = append(result.Records, stampProcessed(rec, processedAt))
	}

	// paid history of employees who left the eligible set stays in the period
	for _, rec := range existing {
		if !seen[rec.EmployeeID] && rec.Status == payroll.PayrollStatusPaid {
			result.Records = append(result.Records, rec)
		}
	}

	sort.Slice(result.Records, func(i, j int) bool {
		return result.Records[i].EmployeeID < result.Records[j].EmployeeID
	})

	if err := p.payrollRepo.ReplacePeriodRecords(ctx, month, year, result.Records); err != nil {
		return payroll.ProcessResult{}, fmt.Errorf("replace period records: %w", err)
	}

	p.logger.Info("payroll period processed",
		"month", month, "year", year,
		"records", len(result.Records), "failed", len(result.Failed))
	p.recordAudit(ctx, result, len(existing))

	return result, nil
}

func stampProcessed(rec payroll.PayrollRecord, at time.Time) payroll.PayrollRecord {
	stamp := at
	rec.Status = payroll.PayrollStatusProcessed
	rec.ProcessedAt = &stamp
	return rec
}

type periodSnapshot struct {
	Month    int      `json:"month"`
	Year     int      `json:"year"`
	Records  int      `json:"records"`
	Failed   []string `json:"failed,omitempty"`
	Replaced int      `json:"replaced,omitempty"`
}

func (p *Processor) recordAudit(ctx context.Context, result payroll.ProcessResult, replaced int) {
	if p.audit == nil {
		return
	}

	failed := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, f.EmployeeID)
	}
	after, err := json.Marshal(periodSnapshot{
		Month:    result.PeriodMonth,
		Year:     result.PeriodYear,
		Records:  len(result.Records),
		Failed:   failed,
		Replaced: replaced,
	})
	if err != nil {
		p.logger.Warn("failed to encode audit snapshot", "error", err)
		return
	}

	change := audit.RecordChange{
		ID:         uuid.NewString(),
		Action:     audit.ActionPayrollPeriodProcessed,
		EntityType: "payroll_period",
		EntityID:   fmt.Sprintf("%04d-%02d", result.PeriodYear, result.PeriodMonth),
		After:      after,
		OccurredAt: result.ProcessedAt,
	}
	if err := p.audit.RecordChange(ctx, change); err != nil {
		p.logger.Warn("failed to record audit change", "action", change.Action, "entity_id", change.EntityID, "error", err)
	}
}
