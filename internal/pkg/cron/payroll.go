package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

// PeriodProcessor runs payroll for one period.
type PeriodProcessor interface {
	Process(ctx context.Context, month, year int) (payroll.ProcessResult, error)
}

// PayrollJobs closes the previous month's payroll on the configured day.
type PayrollJobs struct {
	processor     PeriodProcessor
	payrollRepo   payroll.PayrollRepository
	processingDay int
	now           func() time.Time
	logger        *slog.Logger
}

func NewPayrollJobs(processor PeriodProcessor, payrollRepo payroll.PayrollRepository, processingDay int, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		processor:     processor,
		payrollRepo:   payrollRepo,
		processingDay: processingDay,
		now:           time.Now,
		logger:        logger,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("process_previous_month_payroll", interval, j.ProcessPreviousMonth)
}

// ProcessPreviousMonth processes last month once its records are missing.
// Periods that already have records are left for manual reprocessing.
func (j *PayrollJobs) ProcessPreviousMonth(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != j.processingDay {
		return nil
	}

	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	month, year := int(prev.Month()), prev.Year()

	existing, err := j.payrollRepo.GetRecordsForPeriod(ctx, month, year)
	if err != nil {
		return fmt.Errorf("failed to check payroll period %04d-%02d: %w", year, month, err)
	}
	if len(existing) > 0 {
		j.logger.Debug("cron: payroll period already processed", "period_month", month, "period_year", year)
		return nil
	}

	result, err := j.processor.Process(ctx, month, year)
	if errors.Is(err, payroll.ErrPeriodLocked) {
		j.logger.Info("cron: payroll period locked by another run", "period_month", month, "period_year", year)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to process payroll %04d-%02d: %w", year, month, err)
	}

	j.logger.Info("cron: payroll processed",
		"period_month", month,
		"period_year", year,
		"records", len(result.Records),
		"failed", len(result.Failed),
	)
	for _, f := range result.Failed {
		j.logger.Warn("cron: employee payroll failed", "employee_id", f.EmployeeID, "reason", f.Reason)
	}
	return nil
}
