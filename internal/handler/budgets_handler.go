package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Budgets
// ============================================================

func listBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
		defer span.End()

		budgets, err := svc.List(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, budgets)
	}
}

func createBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets")
		defer span.End()

		var in service.BudgetInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		budget, err := svc.Create(ctx, UserIDFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, budget)
	}
}

func getBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets/{id}")
		defer span.End()

		budget, err := svc.Get(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, budget)
	}
}

func updateBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{id}")
		defer span.End()

		var in service.BudgetInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		budget, err := svc.Update(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, budget)
	}
}

func deleteBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/budgets/{id}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Budget shares
// ============================================================

func listSharesHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets/{id}/shares")
		defer span.End()

		shares, err := svc.ListShares(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, shares)
	}
}

func createShareHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets/{id}/shares")
		defer span.End()

		var in service.ShareInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		share, err := svc.Share(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, share)
	}
}

func updateShareHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{id}/shares/{shareId}")
		defer span.End()

		var in service.ShareInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		share, err := svc.UpdateShare(ctx, UserIDFromContext(ctx),
			chi.URLParam(r, "id"), chi.URLParam(r, "shareId"), in.CanEdit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, share)
	}
}

func deleteShareHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/budgets/{id}/shares/{shareId}")
		defer span.End()

		err := svc.RemoveShare(ctx, UserIDFromContext(ctx),
			chi.URLParam(r, "id"), chi.URLParam(r, "shareId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
