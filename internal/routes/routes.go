package routes

import "github.com/fastapi1403/building-management/internal/models"

const (
	Health    = "/health"
	Metrics   = "/metrics"
	APIBase   = "/api/v1"
	CSRFToken = APIBase + "/csrf-token"
)

// Collection is /api/v1/{entity}s.
func Collection(t models.EntityType) string { return APIBase + "/" + t.Plural() }

// Deleted lists soft-deleted records only. Registered before Item.
func Deleted(t models.EntityType) string { return Collection(t) + "/deleted" }

func Item(t models.EntityType) string { return Collection(t) + "/{id}" }

func Restore(t models.EntityType) string { return Item(t) + "/restore" }

func Permanent(t models.EntityType) string { return Item(t) + "/permanent" }

func History(t models.EntityType) string { return Item(t) + "/history" }
