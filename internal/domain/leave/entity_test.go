package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsMonth(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"inside month", day(2025, 3, 10), day(2025, 3, 12), true},
		{"starts previous month", day(2025, 2, 27), day(2025, 3, 2), true},
		{"ends next month", day(2025, 3, 30), day(2025, 4, 2), true},
		{"spans whole month", day(2025, 2, 1), day(2025, 4, 30), true},
		{"previous month only", day(2025, 2, 10), day(2025, 2, 28), false},
		{"next month only", day(2025, 4, 1), day(2025, 4, 3), false},
		{"reversed dates", day(2025, 3, 12), day(2025, 3, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := LeaveRequest{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, r.OverlapsMonth(3, 2025))
		})
	}
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(day(2025, 3, 10), day(2025, 3, 10)))
	assert.Equal(t, 3, InclusiveDays(day(2025, 3, 10), day(2025, 3, 12)))
	assert.Equal(t, 0, InclusiveDays(day(2025, 3, 12), day(2025, 3, 10)))
}
