// Package fixtures provides a small demo dataset for running the engine
// against the in-memory store.
package fixtures

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

// ==========================================
// DATASET
// ==========================================

// Dataset is the source data for one demo period.
type Dataset struct {
	Employees  []employee.Employee
	Attendance []attendance.Attendance
	Leaves     []leave.LeaveRequest
	Shifts     []schedule.Shift
}

// Demo builds four employees with a month of attendance for the period.
// Sundays are days off; every other day is a working day.
func Demo(month, year int) Dataset {
	d := Dataset{
		Employees: demoEmployees(),
		Shifts:    schedule.DefaultShifts(),
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	leaveStart := first.AddDate(0, 0, 9)
	leaveEnd := leaveStart.AddDate(0, 0, 4)
	approvedAt := first.AddDate(0, 0, -3)

	d.Leaves = []leave.LeaveRequest{
		{
			ID:         "leave-emp-004",
			EmployeeID: "emp-004",
			Type:       leave.LeaveTypeAnnual,
			StartDate:  leaveStart,
			EndDate:    leaveEnd,
			Days:       5,
			IsPaid:     true,
			Status:     leave.LeaveRequestStatusApproved,
			ApprovedAt: &approvedAt,
		},
	}

	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Sunday {
			continue
		}
		for _, e := range d.Employees {
			rec := attendance.Attendance{
				ID:           fmt.Sprintf("%s-%s", e.ID, day.Format("20060102")),
				EmployeeID:   e.ID,
				Date:         day,
				Status:       attendance.StatusPresent,
				RegularHours: attendance.DefaultStandardHours,
				BreakMinutes: attendance.DefaultBreakMinutes,
			}

			switch {
			case e.ID == "emp-001" && day.Weekday() == time.Friday:
				rec.OvertimeHours = 2
			case e.ID == "emp-002" && day.Day() == 3:
				rec.Status = attendance.StatusLate
			case e.ID == "emp-004" && !day.Before(leaveStart) && !day.After(leaveEnd):
				rec.Status = attendance.StatusOnLeave
				rec.RegularHours = 0
			}
			rec.TotalWorkingHours = rec.RegularHours + rec.OvertimeHours
			d.Attendance = append(d.Attendance, rec)
		}
	}

	return d
}

// Load writes the dataset into the in-memory repositories.
func (d Dataset) Load(
	employees *memory.EmployeeRepository,
	attendances *memory.AttendanceRepository,
	leaves *memory.LeaveRequestRepository,
	shifts *memory.ShiftRepository,
) {
	for _, s := range d.Shifts {
		shifts.PutShift(s)
	}
	for _, e := range d.Employees {
		employees.Put(e)
		if e.DefaultShiftID != nil {
			shifts.SetDefault(e.ID, *e.DefaultShiftID)
		}
	}
	attendances.Add(d.Attendance...)
	leaves.Add(d.Leaves...)
}

// ==========================================
// EMPLOYEES
// ==========================================

func demoEmployees() []employee.Employee {
	return []employee.Employee{
		{
			ID:               "emp-001",
			EmployeeCode:     "CML-001",
			FullName:         "Aarav Sharma",
			State:            "Maharashtra",
			EmploymentStatus: employee.EmploymentStatusActive,
			DefaultShiftID:   strPtr("day"),
			Salary: &employee.SalaryStructure{
				Basic:               20000,
				HRA:                 8000,
				SpecialAllowance:    3000,
				MedicalAllowance:    1250,
				ConveyanceAllowance: 1600,
				OtherAllowances:     150,
				CTC:                 408000,
			},
		},
		{
			ID:               "emp-002",
			EmployeeCode:     "CML-002",
			FullName:         "Diya Iyer",
			State:            "Karnataka",
			EmploymentStatus: employee.EmploymentStatusActive,
			DefaultShiftID:   strPtr("day"),
			Salary: &employee.SalaryStructure{
				Basic:               8000,
				HRA:                 3200,
				SpecialAllowance:    2000,
				MedicalAllowance:    1250,
				ConveyanceAllowance: 1600,
				CTC:                 192600,
			},
		},
		{
			ID:               "emp-003",
			EmployeeCode:     "CML-003",
			FullName:         "Kabir Nair",
			State:            "Tamil Nadu",
			EmploymentStatus: employee.EmploymentStatusActive,
			DefaultShiftID:   strPtr("night"),
			Investments:      150000,
			Salary: &employee.SalaryStructure{
				Basic:               25000,
				HRA:                 10000,
				DA:                  3000,
				SpecialAllowance:    6000,
				MedicalAllowance:    1250,
				ConveyanceAllowance: 1600,
				CTC:                 562200,
			},
		},
		{
			ID:               "emp-004",
			EmployeeCode:     "CML-004",
			FullName:         "Meera Das",
			State:            "West Bengal",
			EmploymentStatus: employee.EmploymentStatusOnLeave,
			DefaultShiftID:   strPtr("day"),
			Salary: &employee.SalaryStructure{
				Basic:               15000,
				HRA:                 6000,
				SpecialAllowance:    2500,
				MedicalAllowance:    1250,
				ConveyanceAllowance: 1600,
				CTC:                 316200,
			},
		},
		{
			ID:               "emp-005",
			EmployeeCode:     "CML-005",
			FullName:         "Rohan Gupta",
			State:            "Gujarat",
			EmploymentStatus: employee.EmploymentStatusTerminated,
		},
	}
}
