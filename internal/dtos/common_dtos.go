package dtos

import (
	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
)

type HealthCheckResponse struct {
	Status string `json:"status"`
}

type CSRFTokenResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// ListQuery is decoded from the query string of collection GETs.
type ListQuery struct {
	IncludeDeleted bool       `json:"includeDeleted"`
	OnlyDeleted    bool       `json:"onlyDeleted"`
	ParentID       *uuid.UUID `json:"parentId"`
	Skip           int        `json:"skip" validate:"gte=0"`
	Limit          int        `json:"limit" validate:"gte=1,lte=500"`
}

// HardDeleteResponse confirms a permanent delete. Deleted lists the removed
// records, the requested one last.
type HardDeleteResponse struct {
	Message       string             `json:"message"`
	ID            uuid.UUID          `json:"id"`
	Deleted       []models.EntityRef `json:"deleted"`
	DetachedUnits int64              `json:"detached_units,omitempty"`
}

// versioned is embedded by update requests. RowVersion, when sent, must
// match the stored version.
type versioned struct {
	RowVersion *int64 `json:"row_version,omitempty" validate:"omitempty,gte=1"`
}

func (v versioned) ExpectedVersion() *int64 { return v.RowVersion }

func setIf[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}

func setPtrIf[V any](dst **V, src *V) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
