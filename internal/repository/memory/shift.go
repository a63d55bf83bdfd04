package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
)

type ShiftRepository struct {
	mu          sync.RWMutex
	shifts      map[string]schedule.Shift
	defaults    map[string]string            // employee ID -> shift ID
	assignments map[string]map[string]string // employee ID -> date -> shift ID
}

// NewShiftRepository seeds the catalog with shifts; pass schedule.DefaultShifts()
// for the standard day, night and weekend shifts.
func NewShiftRepository(shifts ...schedule.Shift) *ShiftRepository {
	r := &ShiftRepository{
		shifts:      make(map[string]schedule.Shift),
		defaults:    make(map[string]string),
		assignments: make(map[string]map[string]string),
	}
	for _, s := range shifts {
		r.shifts[s.ID] = s
	}
	return r
}

func (r *ShiftRepository) PutShift(s schedule.Shift) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts[s.ID] = s
}

// SetDefault assigns shiftID to the employee for every date without a dated assignment.
func (r *ShiftRepository) SetDefault(employeeID, shiftID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[employeeID] = shiftID
}

func (r *ShiftRepository) Assign(employeeID string, date time.Time, shiftID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assignments[employeeID] == nil {
		r.assignments[employeeID] = make(map[string]string)
	}
	r.assignments[employeeID][date.Format("2006-01-02")] = shiftID
}

// GetShiftByID implements schedule.ShiftRepository.
func (r *ShiftRepository) GetShiftByID(ctx context.Context, id string) (schedule.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shifts[id]
	if !ok {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, nil
}

// GetShiftForEmployeeOnDate implements schedule.ShiftRepository.
func (r *ShiftRepository) GetShiftForEmployeeOnDate(ctx context.Context, employeeID string, date time.Time) (schedule.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shiftID, ok := r.assignments[employeeID][date.Format("2006-01-02")]
	if !ok {
		shiftID, ok = r.defaults[employeeID]
	}
	if !ok {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	s, ok := r.shifts[shiftID]
	if !ok {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, nil
}
