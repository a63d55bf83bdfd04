package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
)

type AuditSink struct {
	mu      sync.RWMutex
	changes []audit.RecordChange
}

func NewAuditSink() *AuditSink {
	return &AuditSink{}
}

// RecordChange implements audit.Sink.
func (s *AuditSink) RecordChange(ctx context.Context, change audit.RecordChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, change)
	return nil
}

// Changes returns a copy of everything recorded so far.
func (s *AuditSink) Changes() []audit.RecordChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.RecordChange(nil), s.changes...)
}
