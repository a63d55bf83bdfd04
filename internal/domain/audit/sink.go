package audit

import "context"

// Sink receives record changes. It is write-only; payroll never reads the trail back.
type Sink interface {
	RecordChange(ctx context.Context, change RecordChange) error
}
