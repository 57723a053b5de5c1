package handler

import (
	"net/http"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"
	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Auth          *service.AuthService
	Transactions  *service.TransactionService
	Categories    *service.CategoryService
	Budgets       *service.BudgetService
	Goals         *service.GoalService
	Notifications *service.NotificationService
	Users         *service.UserService
	Dashboard     *service.DashboardService
	CSV           *service.CSVService
	Rates         port.RateFetcher
	Store         port.Store
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
				r.Put("/password", authChangePasswordHandler(svcs.Auth, logger))
			})
		})

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Post("/transactions", createTransactionHandler(svcs.Transactions, logger))
			r.Get("/transactions/export", exportTransactionsHandler(svcs.CSV, logger))
			r.Post("/transactions/import", importTransactionsHandler(svcs.CSV, logger))
			r.Get("/transactions/{id}", getTransactionHandler(svcs.Transactions, logger))
			r.Put("/transactions/{id}", updateTransactionHandler(svcs.Transactions, logger))
			r.Delete("/transactions/{id}", deleteTransactionHandler(svcs.Transactions, logger))

			// Categories
			r.Get("/categories", listCategoriesHandler(svcs.Categories, logger))
			r.Post("/categories", createCategoryHandler(svcs.Categories, logger))
			r.Put("/categories/{id}", updateCategoryHandler(svcs.Categories, logger))
			r.Delete("/categories/{id}", deleteCategoryHandler(svcs.Categories, logger))

			// Budgets & shares
			r.Get("/budgets", listBudgetsHandler(svcs.Budgets, logger))
			r.Post("/budgets", createBudgetHandler(svcs.Budgets, logger))
			r.Get("/budgets/{id}", getBudgetHandler(svcs.Budgets, logger))
			r.Put("/budgets/{id}", updateBudgetHandler(svcs.Budgets, logger))
			r.Delete("/budgets/{id}", deleteBudgetHandler(svcs.Budgets, logger))
			r.Get("/budgets/{id}/shares", listSharesHandler(svcs.Budgets, logger))
			r.Post("/budgets/{id}/shares", createShareHandler(svcs.Budgets, logger))
			r.Put("/budgets/{id}/shares/{shareId}", updateShareHandler(svcs.Budgets, logger))
			r.Delete("/budgets/{id}/shares/{shareId}", deleteShareHandler(svcs.Budgets, logger))

			// Goals
			r.Get("/goals", listGoalsHandler(svcs.Goals, logger))
			r.Post("/goals", createGoalHandler(svcs.Goals, logger))
			r.Get("/goals/{id}", getGoalHandler(svcs.Goals, logger))
			r.Put("/goals/{id}", updateGoalHandler(svcs.Goals, logger))
			r.Post("/goals/{id}/contribute", contributeGoalHandler(svcs.Goals, logger))
			r.Delete("/goals/{id}", deleteGoalHandler(svcs.Goals, logger))

			// Notifications
			r.Get("/notifications", listNotificationsHandler(svcs.Notifications, logger))
			r.Put("/notifications/{id}/read", markNotificationReadHandler(svcs.Notifications, logger))
			r.Delete("/notifications/{id}", deleteNotificationHandler(svcs.Notifications, logger))

			// User search (for sharing)
			r.Get("/users/search", searchUsersHandler(svcs.Users, logger))

			// Dashboard
			r.Get("/dashboard", dashboardHandler(svcs.Dashboard, logger))

			// Exchange rates
			r.Get("/rates/{currency}", getRateHandler(svcs.Rates, logger))

			// Metrics summary
			r.Get("/metrics/summary", metricsSummaryHandler(metrics))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store port.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "foxfund-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		status := "healthy"
		if err := store.Ping(ctx); err != nil {
			status = "unhealthy"
			logger.Warn("healthz: database ping failed", zap.Error(err))
		}
		services = append(services, domain.ServiceHealth{
			Name: "postgres", Status: status,
			LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
		})

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
