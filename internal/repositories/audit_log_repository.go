package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
)

type auditLogRepo struct {
	db DB
}

func NewAuditLogRepository(db DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	q := `
        INSERT INTO lifecycle_audit_logs (
            id, entity_type, entity_id, action, actor, is_cascade, row_version, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, q,
		entry.ID,
		string(entry.EntityType),
		entry.EntityID,
		string(entry.Action),
		entry.Actor,
		entry.Cascade,
		entry.RowVersion,
		entry.Details,
		entry.CreatedAt,
	)
	return ClassifyError("insert audit log", err)
}

func (r *auditLogRepo) ListByEntity(ctx context.Context, entityType models.EntityType, id uuid.UUID) ([]*models.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, entity_type, entity_id, action, actor, is_cascade, row_version, details, created_at
        FROM lifecycle_audit_logs
        WHERE entity_type=$1 AND entity_id=$2
        ORDER BY created_at, id
    `, string(entityType), id)
	if err != nil {
		return nil, ClassifyError("list audit logs", err)
	}
	defer rows.Close()

	var out []*models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Actor, &e.Cascade, &e.RowVersion, &e.Details, &e.CreatedAt); err != nil {
			return nil, ClassifyError("scan audit log", err)
		}
		out = append(out, &e)
	}
	return out, ClassifyError("list audit logs", rows.Err())
}
