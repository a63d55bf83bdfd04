package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
)

type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string][]attendance.Attendance // by employee ID
}

func NewAttendanceRepository(records ...attendance.Attendance) *AttendanceRepository {
	r := &AttendanceRepository{records: make(map[string][]attendance.Attendance)}
	r.Add(records...)
	return r
}

func (r *AttendanceRepository) Add(records ...attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range records {
		r.records[a.EmployeeID] = append(r.records[a.EmployeeID], a)
	}
}

// GetForEmployeeMonth implements attendance.AttendanceRepository.
func (r *AttendanceRepository) GetForEmployeeMonth(ctx context.Context, employeeID string, month, year int) ([]attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []attendance.Attendance{}
	for _, a := range r.records[employeeID] {
		if a.InPeriod(month, year) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
