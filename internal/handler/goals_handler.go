package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Goals
// ============================================================

func listGoalsHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals")
		defer span.End()

		// Absent month/year list all goals.
		month, _ := strconv.Atoi(r.URL.Query().Get("month"))
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))

		goals, err := svc.List(ctx, UserIDFromContext(ctx), month, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, goals)
	}
}

func createGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		var in service.GoalInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		goal, err := svc.Create(ctx, UserIDFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, goal)
	}
}

func getGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals/{id}")
		defer span.End()

		goal, err := svc.Get(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, goal)
	}
}

func updateGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/goals/{id}")
		defer span.End()

		var in service.GoalInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		goal, err := svc.Update(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, goal)
	}
}

func contributeGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals/{id}/contribute")
		defer span.End()

		var in service.ContributeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		goal, err := svc.Contribute(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, goal)
	}
}

func deleteGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/goals/{id}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
