package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
)

type LeaveRequestRepository struct {
	mu       sync.RWMutex
	requests map[string][]leave.LeaveRequest // by employee ID
}

func NewLeaveRequestRepository(requests ...leave.LeaveRequest) *LeaveRequestRepository {
	r := &LeaveRequestRepository{requests: make(map[string][]leave.LeaveRequest)}
	r.Add(requests...)
	return r
}

func (r *LeaveRequestRepository) Add(requests ...leave.LeaveRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lr := range requests {
		r.requests[lr.EmployeeID] = append(r.requests[lr.EmployeeID], lr)
	}
}

// GetApprovedForMonth implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) GetApprovedForMonth(ctx context.Context, employeeID string, month, year int) ([]leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []leave.LeaveRequest{}
	for _, lr := range r.requests[employeeID] {
		if lr.Status == leave.LeaveRequestStatusApproved && lr.OverlapsMonth(month, year) {
			out = append(out, lr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
