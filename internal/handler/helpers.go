package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseMonthYear reads month/year query params, defaulting to the current
// calendar month.
func parseMonthYear(r *http.Request) (month, year int) {
	now := time.Now().UTC()
	month = int(now.Month())
	year = now.Year()
	if v := r.URL.Query().Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	return
}

// parseTransactionFilter reads startDate/endDate/categoryId query params.
// endDate is inclusive: the filter window extends to the end of that day.
func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "startDate", Message: "use YYYY-MM-DD"}
		}
		filter.From = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, &domain.ErrValidation{Field: "endDate", Message: "use YYYY-MM-DD"}
		}
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}
	if v := r.URL.Query().Get("categoryId"); v != "" {
		filter.CategoryID = &v
	}
	return filter, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var unsupportedCurrency *domain.ErrUnsupportedCurrency
	var duplicate *domain.ErrDuplicate
	var selfShare *domain.ErrSelfShare
	var forbidden *domain.ErrForbidden
	var conflict *domain.ErrConflict
	var unauthorized *domain.ErrUnauthorized
	var circuitOpen *domain.ErrCircuitOpen
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unsupportedCurrency):
		logger.Debug("unsupported currency", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &duplicate):
		logger.Debug("duplicate resource", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &selfShare):
		logger.Debug("self share rejected")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &external):
		logger.Error("external service error", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
