package app

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/fastapi1403/building-management/internal/config"
	"github.com/fastapi1403/building-management/internal/controllers"
	"github.com/fastapi1403/building-management/internal/metrics"
	"github.com/fastapi1403/building-management/internal/middleware"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/routes"
	"github.com/fastapi1403/building-management/internal/utils"
)

const corsLowSecurityAllowedOriginLocalhost = "http://localhost:3000"

type lifecycleController interface {
	EntityType() models.EntityType
	CreateHandler(http.ResponseWriter, *http.Request)
	GetHandler(http.ResponseWriter, *http.Request)
	ListHandler(http.ResponseWriter, *http.Request)
	DeletedListHandler(http.ResponseWriter, *http.Request)
	UpdateHandler(http.ResponseWriter, *http.Request)
	SoftDeleteHandler(http.ResponseWriter, *http.Request)
	RestoreHandler(http.ResponseWriter, *http.Request)
	HardDeleteHandler(http.ResponseWriter, *http.Request)
	HistoryHandler(http.ResponseWriter, *http.Request)
}

// NewRouter builds the HTTP handler. db may be nil.
func NewRouter(cfg *config.Config, svcs *Services, db controllers.Pinger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Controllers
	healthController := controllers.NewHealthController(db)
	csrfController := controllers.NewCSRFController(strings.HasPrefix(cfg.AppUrl, "https://"))
	entityControllers := []lifecycleController{
		controllers.NewBuildingController(svcs.Buildings),
		controllers.NewFloorController(svcs.Floors),
		controllers.NewUnitController(svcs.Units),
		controllers.NewOwnerController(svcs.Owners),
		controllers.NewTenantController(svcs.Tenants),
	}

	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware)

	// Public Routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc(routes.CSRFToken, csrfController.TokenHandler).Methods(http.MethodGet)

	// Secured routes
	secured := router.NewRoute().Subrouter()
	if cfg.RSAPublicKey != nil {
		secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey, cfg.TokenIssuer))
	} else {
		utils.Logger.Warnf("Token auth disabled; attributing requests to %q", cfg.DefaultActor)
		secured.Use(middleware.StaticActorMiddleware(cfg.DefaultActor))
	}
	if cfg.CSRFEnabled {
		secured.Use(middleware.CSRFMiddleware)
	}
	for _, c := range entityControllers {
		registerLifecycleRoutes(secured, c)
	}

	var allowedOrigins []string
	if cfg.AppUrl != "" {
		allowedOrigins = append(allowedOrigins, cfg.AppUrl)
	}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, corsLowSecurityAllowedOriginLocalhost)
	}
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.CSRFHeaderName},
		AllowCredentials: true,
	})
	return co.Handler(router), nil
}

func registerLifecycleRoutes(r *mux.Router, c lifecycleController) {
	t := c.EntityType()
	r.HandleFunc(routes.Collection(t), c.CreateHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.Collection(t), c.ListHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.Deleted(t), c.DeletedListHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.Item(t), c.GetHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.Item(t), c.UpdateHandler).Methods(http.MethodPut)
	r.HandleFunc(routes.Item(t), c.SoftDeleteHandler).Methods(http.MethodDelete)
	r.HandleFunc(routes.Restore(t), c.RestoreHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.Permanent(t), c.HardDeleteHandler).Methods(http.MethodDelete)
	r.HandleFunc(routes.History(t), c.HistoryHandler).Methods(http.MethodGet)
}
