package controllers

import (
	"context"
	"net/http"

	"github.com/fastapi1403/building-management/internal/dtos"
	"github.com/fastapi1403/building-management/internal/utils"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

// NewHealthController takes a nil db when the memory store is in use.
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if c.db != nil {
		if err := c.db.Ping(r.Context()); err != nil {
			utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeTransient, "Database unreachable", nil, err)
			return
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
