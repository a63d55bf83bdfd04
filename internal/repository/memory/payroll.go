package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
)

type PayrollRepository struct {
	mu      sync.RWMutex
	records map[string]payroll.PayrollRecord
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{records: make(map[string]payroll.PayrollRecord)}
}

// ReplacePeriodRecords implements payroll.PayrollRepository.
func (r *PayrollRepository) ReplacePeriodRecords(ctx context.Context, month, year int, records []payroll.PayrollRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]payroll.PayrollRecord)
	for id, rec := range r.records {
		if rec.PeriodMonth == month && rec.PeriodYear == year {
			existing[id] = rec
			delete(r.records, id)
		}
	}

	now := time.Now()
	for _, rec := range records {
		rec.CreatedAt = now
		if prev, ok := existing[rec.ID]; ok {
			rec.CreatedAt = prev.CreatedAt
		}
		rec.UpdatedAt = now
		r.records[rec.ID] = cloneRecord(rec)
	}
	return nil
}

// GetRecordsForPeriod implements payroll.PayrollRepository.
func (r *PayrollRepository) GetRecordsForPeriod(ctx context.Context, month, year int) ([]payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []payroll.PayrollRecord{}
	for _, rec := range r.records {
		if rec.PeriodMonth == month && rec.PeriodYear == year {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// GetRecordByID implements payroll.PayrollRepository.
func (r *PayrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return cloneRecord(rec), nil
}

// UpdateRecordStatus implements payroll.PayrollRepository.
func (r *PayrollRepository) UpdateRecordStatus(ctx context.Context, id string, status payroll.PayrollStatus, at time.Time) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if err := payroll.CheckTransition(rec.Status, status); err != nil {
		return payroll.PayrollRecord{}, err
	}

	stamp := at
	rec.Status = status
	switch status {
	case payroll.PayrollStatusProcessed:
		rec.ProcessedAt = &stamp
	case payroll.PayrollStatusPaid:
		rec.PaidAt = &stamp
	}
	rec.UpdatedAt = at
	r.records[id] = rec
	return cloneRecord(rec), nil
}

// cloneRecord copies the slice and pointer fields so callers cannot mutate stored state.
func cloneRecord(rec payroll.PayrollRecord) payroll.PayrollRecord {
	if rec.OvertimeBreakdown != nil {
		rec.OvertimeBreakdown = append([]payroll.WeeklyOvertime(nil), rec.OvertimeBreakdown...)
	}
	if rec.Warnings != nil {
		rec.Warnings = append([]string(nil), rec.Warnings...)
	}
	rec.ProcessedAt = cloneTime(rec.ProcessedAt)
	rec.PaidAt = cloneTime(rec.PaidAt)
	return rec
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
