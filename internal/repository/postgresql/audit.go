package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

// NewAuditSink stores record changes in audit_trails.
func NewAuditSink(db *database.DB) audit.Sink {
	return &auditRepositoryImpl{db: db}
}

// RecordChange implements audit.Sink.
func (r *auditRepositoryImpl) RecordChange(ctx context.Context, change audit.RecordChange) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_trails (id, action, entity_type, entity_id, before, after, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		change.ID, string(change.Action), change.EntityType, change.EntityID,
		nullableJSON(change.Before), nullableJSON(change.After), change.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit trail: %w", err)
	}
	return nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
