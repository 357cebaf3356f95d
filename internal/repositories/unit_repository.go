package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
)

type unitRepo struct {
	*pgEntityRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	return &unitRepo{pgEntityRepo: newPgEntityRepo(db, unitTable), db: db}
}

func (r *unitRepo) ClearAssociation(ctx context.Context, assoc models.EntityType, id uuid.UUID, actor string, at time.Time) (int64, error) {
	col, err := associationColumn(assoc)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE units SET %[1]s=NULL, updated_at=$2, updated_by=$3, row_version=row_version+1
		WHERE %[1]s=$1`, col), id, at, actor)
	if err != nil {
		return 0, ClassifyError("clear unit "+col, err)
	}
	return tag.RowsAffected(), nil
}

func associationColumn(assoc models.EntityType) (string, error) {
	switch assoc {
	case models.EntityOwner:
		return "owner_id", nil
	case models.EntityTenant:
		return "tenant_id", nil
	}
	return "", fmt.Errorf("units have no %s association", assoc)
}
