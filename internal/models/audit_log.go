// internal/models/audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditUpdate     AuditAction = "UPDATE"
	AuditSoftDelete AuditAction = "SOFT_DELETE"
	AuditRestore    AuditAction = "RESTORE"
	AuditHardDelete AuditAction = "HARD_DELETE"
)

// AuditLog is one lifecycle transition. Rows survive a hard delete of their target.
type AuditLog struct {
	ID         uuid.UUID        `json:"id"`
	EntityType EntityType       `json:"entity_type"`
	EntityID   uuid.UUID        `json:"entity_id"`
	Action     AuditAction      `json:"action"`
	Actor      string           `json:"actor"`
	Cascade    bool             `json:"cascade"`
	RowVersion int64            `json:"row_version"`
	Details    *json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
