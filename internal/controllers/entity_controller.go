package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fastapi1403/building-management/internal/dtos"
	"github.com/fastapi1403/building-management/internal/middleware"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/services"
	"github.com/fastapi1403/building-management/internal/utils"
)

type CreateRequest[T any] interface {
	ToModel() T
}

type UpdateRequest[T any] interface {
	ApplyTo(T)
	ExpectedVersion() *int64
}

// EntityController serves the lifecycle endpoints of one entity type.
type EntityController[T repositories.Record, C CreateRequest[T], U UpdateRequest[T]] struct {
	service  *services.EntityService[T]
	validate *validator.Validate
}

func NewEntityController[T repositories.Record, C CreateRequest[T], U UpdateRequest[T]](s *services.EntityService[T]) *EntityController[T, C, U] {
	return &EntityController[T, C, U]{service: s, validate: services.NewValidator()}
}

func NewBuildingController(s *services.EntityService[*models.Building]) *EntityController[*models.Building, dtos.CreateBuildingRequest, dtos.UpdateBuildingRequest] {
	return NewEntityController[*models.Building, dtos.CreateBuildingRequest, dtos.UpdateBuildingRequest](s)
}

func NewFloorController(s *services.EntityService[*models.Floor]) *EntityController[*models.Floor, dtos.CreateFloorRequest, dtos.UpdateFloorRequest] {
	return NewEntityController[*models.Floor, dtos.CreateFloorRequest, dtos.UpdateFloorRequest](s)
}

func NewUnitController(s *services.EntityService[*models.Unit]) *EntityController[*models.Unit, dtos.CreateUnitRequest, dtos.UpdateUnitRequest] {
	return NewEntityController[*models.Unit, dtos.CreateUnitRequest, dtos.UpdateUnitRequest](s)
}

func NewOwnerController(s *services.EntityService[*models.Owner]) *EntityController[*models.Owner, dtos.CreateOwnerRequest, dtos.UpdateOwnerRequest] {
	return NewEntityController[*models.Owner, dtos.CreateOwnerRequest, dtos.UpdateOwnerRequest](s)
}

func NewTenantController(s *services.EntityService[*models.Tenant]) *EntityController[*models.Tenant, dtos.CreateTenantRequest, dtos.UpdateTenantRequest] {
	return NewEntityController[*models.Tenant, dtos.CreateTenantRequest, dtos.UpdateTenantRequest](s)
}

func (c *EntityController[T, C, U]) EntityType() models.EntityType { return c.service.EntityType() }

// POST /api/v1/{entity}s
func (c *EntityController[T, C, U]) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req C
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.HandleAppError(w, services.ToValidationError(err))
		return
	}

	created, err := c.service.Create(r.Context(), actor, req.ToModel())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/{entity}s/{id}
func (c *EntityController[T, C, U]) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := c.service.Get(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, e)
}

// GET /api/v1/{entity}s?includeDeleted=&onlyDeleted=&parentId=&skip=&limit=
func (c *EntityController[T, C, U]) ListHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	c.list(w, r, q)
}

// GET /api/v1/{entity}s/deleted?parentId=&skip=&limit=
func (c *EntityController[T, C, U]) DeletedListHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	q.OnlyDeleted = true
	c.list(w, r, q)
}

func (c *EntityController[T, C, U]) list(w http.ResponseWriter, r *http.Request, q dtos.ListQuery) {
	if err := c.validate.Struct(q); err != nil {
		utils.HandleAppError(w, services.ToValidationError(err))
		return
	}

	rows, err := c.service.List(r.Context(), repositories.ListFilter{
		IncludeDeleted: q.IncludeDeleted,
		OnlyDeleted:    q.OnlyDeleted,
		ParentID:       q.ParentID,
		Offset:         q.Skip,
		Limit:          q.Limit,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}

// PUT /api/v1/{entity}s/{id}
func (c *EntityController[T, C, U]) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req U
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.HandleAppError(w, services.ToValidationError(err))
		return
	}

	updated, err := c.service.Update(r.Context(), actor, id, req.ExpectedVersion(), func(e T) error {
		req.ApplyTo(e)
		return nil
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/{entity}s/{id}
func (c *EntityController[T, C, U]) SoftDeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := c.service.SoftDelete(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, e)
}

// POST /api/v1/{entity}s/{id}/restore
func (c *EntityController[T, C, U]) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := c.service.Restore(r.Context(), actor, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, e)
}

// DELETE /api/v1/{entity}s/{id}/permanent?cascade=true
func (c *EntityController[T, C, U]) HardDeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		var err error
		if cascade, err = strconv.ParseBool(raw); err != nil {
			utils.HandleAppError(w, &utils.ValidationError{Field: "cascade", Reason: "must be a boolean"})
			return
		}
	}

	res, err := c.service.HardDelete(r.Context(), actor, id, cascade)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HardDeleteResponse{
		Message:       fmt.Sprintf("%s permanently deleted", c.EntityType()),
		ID:            res.ID,
		Deleted:       res.Deleted,
		DetachedUnits: res.DetachedUnits,
	})
}

// GET /api/v1/{entity}s/{id}/history
func (c *EntityController[T, C, U]) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entries, err := c.service.History(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil)
	}
	return actor, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, &utils.ValidationError{Field: "id", Reason: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseListQuery(r *http.Request) (dtos.ListQuery, error) {
	values := r.URL.Query()
	q := dtos.ListQuery{Limit: services.DefaultListLimit}

	for _, f := range []struct {
		name string
		dst  *bool
	}{{"includeDeleted", &q.IncludeDeleted}, {"onlyDeleted", &q.OnlyDeleted}} {
		raw := values.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, &utils.ValidationError{Field: f.name, Reason: "must be a boolean"}
		}
		*f.dst = v
	}
	if raw := values.Get("parentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, &utils.ValidationError{Field: "parentId", Reason: "must be a UUID"}
		}
		q.ParentID = &id
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{{"skip", &q.Skip}, {"limit", &q.Limit}} {
		raw := values.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, &utils.ValidationError{Field: f.name, Reason: "must be an integer"}
		}
		*f.dst = v
	}
	return q, nil
}
