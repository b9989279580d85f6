package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

const APIPrefix = "/api/v1"

// RouterConfig collects what NewRouter needs besides the handler.
type RouterConfig struct {
	Middleware *MiddlewareConfig
	Validator  TokenValidator
	Metrics    *Metrics
	Gatherer   prometheus.Gatherer
	DB         Pinger

	// RateLimiter is optional; nil leaves the API unthrottled.
	RateLimiter *RateLimiter

	// Swagger serves the UI; nil disables the route.
	Swagger http.Handler
}

// DefaultSwaggerHandler serves the UI for the registered swag document.
func DefaultSwaggerHandler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
}

// NewRouter assembles the full HTTP surface: middleware, health, metrics,
// swagger and the authenticated API.
func NewRouter(h *InventoryHandler, cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	RegisterMiddlewares(router, cfg.Middleware)
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}

	h.RegisterHealthCheck(router, cfg.DB)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	if cfg.Swagger != nil {
		RegisterSwaggerDocs(router, cfg.Swagger)
	}

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.Use(AuthMiddleware(cfg.Validator))
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware)
	}
	h.RegisterRoutes(api)

	logger.Logger.Info().
		Str("api_prefix", APIPrefix).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP routes registered")

	return SetupCORS(cfg.Middleware)(router)
}
