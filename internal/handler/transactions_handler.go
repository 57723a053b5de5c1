package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxImportSize caps CSV uploads at 5 MB.
const maxImportSize = 5 << 20

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		filter, err := parseTransactionFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		txns, err := svc.List(ctx, UserIDFromContext(ctx), filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, txns)
	}
}

func createTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var in service.TransactionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.Create(ctx, UserIDFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, tx)
	}
}

func getTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/{id}")
		defer span.End()

		tx, err := svc.Get(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tx)
	}
}

func updateTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/transactions/{id}")
		defer span.End()

		var in service.TransactionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.Update(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// CSV export / import
// ============================================================

func exportTransactionsHandler(svc *service.CSVService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions/export")
		defer span.End()

		filter, err := parseTransactionFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		filename := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := svc.Export(ctx, w, UserIDFromContext(ctx), filter); err != nil {
			logger.Error("csv export failed", zap.Error(err))
		}
	}
}

func importTransactionsHandler(svc *service.CSVService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions/import")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, http.StatusBadRequest, "file size must be less than 5MB")
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file provided")
			return
		}
		defer file.Close()

		result, err := svc.Import(ctx, file, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
