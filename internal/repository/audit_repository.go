package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
)

type auditRepository struct {
	db querier
}

func NewAudit(pool *pgxpool.Pool) port.AuditSink {
	return &auditRepository{db: pool}
}

// Record appends one row to audit_logs. Call after successful mutations.
func (r *auditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if entry.Details == nil {
		details = []byte(`{}`)
	}

	if _, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action, entity_type, entity_id, details)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID, details); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}
