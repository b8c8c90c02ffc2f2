package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/larderhq/larder-backend/api/controllers"
	"github.com/larderhq/larder-backend/api/middleware"
	"github.com/larderhq/larder-backend/internal/reports"
	"github.com/larderhq/larder-backend/internal/stockledger"
	"github.com/larderhq/larder-backend/pkg/config"
	"github.com/larderhq/larder-backend/pkg/db"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ledgerService *stockledger.Service,
	reportService *reports.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/stock", func(r chi.Router) {
			r.Post("/delivery", controllers.StockDelivery(ledgerService, logg))
			r.Post("/waste", controllers.StockWaste(ledgerService, logg))
		})

		r.Post("/menu/{menuID}/sell", controllers.MenuSell(ledgerService, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/inventory", controllers.InventoryReport(reportService, logg))
			r.Get("/financial-summary", controllers.FinancialSummary(reportService, logg))
		})
	})

	return r
}
