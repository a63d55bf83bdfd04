package audit

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionPayrollPeriodProcessed Action = "payroll.period.processed"
	ActionPayrollRecordPaid      Action = "payroll.record.paid"
)

// RecordChange describes one state change of a payroll entity.
type RecordChange struct {
	ID         string
	Action     Action
	EntityType string
	EntityID   string
	Before     json.RawMessage
	After      json.RawMessage
	OccurredAt time.Time
}
