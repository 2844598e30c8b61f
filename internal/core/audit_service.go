package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AuditService records and lists the append-only trail of mutating actions.
// Recording is best-effort: a failed insert is logged, never surfaced, so an
// audit outage cannot fail the action it describes.
type AuditService interface {
	Log(ctx context.Context, tenantID int, userID *int, action, entity string, entityID *int, details string)
	List(ctx context.Context, tenantID int) ([]AuditLogEntry, error)
}

type auditService struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

func NewAuditService(pool *pgxpool.Pool, log *zap.SugaredLogger) AuditService {
	return &auditService{pool: pool, log: log}
}

func (s *auditService) Log(ctx context.Context, tenantID int, userID *int, action, entity string, entityID *int, details string) {
	var d *string
	if details != "" {
		d = &details
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (tenant_id, user_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tenantID, userID, action, entity, entityID, d,
	)
	if err != nil {
		s.log.Warnw("audit log insert failed", "tenant_id", tenantID, "action", action, "entity", entity, "error", err)
	}
}

func (s *auditService) List(ctx context.Context, tenantID int) ([]AuditLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.tenant_id, a.user_id, u.name, a.action, a.entity, a.entity_id, a.details, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.tenant_id = $1
		ORDER BY a.created_at DESC
		LIMIT 100
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := []AuditLogEntry{}
	for rows.Next() {
		var e AuditLogEntry
		err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.UserName,
			&e.Action, &e.Entity, &e.EntityID, &e.Details, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
