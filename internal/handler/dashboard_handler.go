package handler

import (
	"net/http"

	"github.com/foxfund/foxfund-go/internal/port"
	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		month, year := parseMonthYear(r)
		dashboard, err := svc.Get(ctx, UserIDFromContext(ctx), month, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboard)
	}
}

// ============================================================
// User search
// ============================================================

func searchUsersHandler(svc *service.UserService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users/search")
		defer span.End()

		users, err := svc.Search(ctx, UserIDFromContext(ctx), r.URL.Query().Get("q"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, users)
	}
}

// ============================================================
// Exchange rates
// ============================================================

func getRateHandler(rates port.RateFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/rates/{currency}")
		defer span.End()

		rate, err := rates.GetRate(ctx, chi.URLParam(r, "currency"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, rate)
	}
}
