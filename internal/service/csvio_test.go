package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/memstore"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/service"

	"go.uber.org/zap"
)

func newCSVService(store *memstore.Store) *service.CSVService {
	return service.NewCSVService(store, observability.NewMetrics(), zap.NewNop())
}

func TestImport_CreatesMissingCategories(t *testing.T) {
	store := memstore.New()
	svc := newCSVService(store)
	ctx := context.Background()

	input := strings.Join([]string{
		"Date,Description,Merchant,Category,Type,Amount,Currency",
		"2026-08-01,Coffee,Beanery,Dining,expense,3.50,GBP",
		"2026-08-02,Salary,,Income,income,2000.00,GBP",
	}, "\n")

	result, err := svc.Import(ctx, strings.NewReader(input), "user-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 || result.Total != 2 {
		t.Fatalf("expected 2/2 imported, got %d/%d", result.Imported, result.Total)
	}
	if result.Message != "Successfully imported 2 transactions" {
		t.Errorf("unexpected message: %q", result.Message)
	}

	cat, err := store.GetCategoryByName(ctx, "user-1", "Dining")
	if err != nil {
		t.Fatalf("expected Dining category to be created: %v", err)
	}
	if cat.Color != domain.DefaultCategoryColor {
		t.Errorf("expected default color %s, got %s", domain.DefaultCategoryColor, cat.Color)
	}

	txns, _ := store.ListTransactions(ctx, "user-1", domain.TransactionFilter{})
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	for _, tx := range txns {
		if tx.Type == domain.TypeExpense && tx.Amount != -3.50 {
			t.Errorf("expected expense -3.50, got %v", tx.Amount)
		}
	}
}

func TestImport_SkipsBadRowsAndDuplicates(t *testing.T) {
	store := memstore.New()
	svc := newCSVService(store)
	ctx := context.Background()

	input := strings.Join([]string{
		"Date,Description,Type,Amount",
		"2026-08-01,Coffee,expense,3.50",
		"2026-08-01,Coffee,expense,3.50",
		"not-a-date,Broken,expense,1.00",
		"2026-08-03,Negative,expense,-5.00",
		"2026-08-04,BadType,transfer,5.00",
	}, "\n")

	result, err := svc.Import(ctx, strings.NewReader(input), "user-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 || result.Total != 5 {
		t.Fatalf("expected 1/5 imported, got %d/%d", result.Imported, result.Total)
	}
	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Message != "Imported 1 of 5 transactions with 4 errors" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	// Row numbers are file line numbers, header included.
	if !strings.HasPrefix(result.Errors[0], "Row 3:") {
		t.Errorf("expected first error on row 3, got %q", result.Errors[0])
	}
}

func TestImport_MissingRequiredColumn(t *testing.T) {
	svc := newCSVService(memstore.New())

	_, err := svc.Import(context.Background(), strings.NewReader("Date,Description\n2026-08-01,x\n"), "user-1")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	store := memstore.New()
	svc := newCSVService(store)
	ctx := context.Background()

	input := "Date,Description,Merchant,Category,Type,Amount\n" +
		"2026-08-10,Weekly shop,Grocer,Groceries,expense,42.50\n"
	if _, err := svc.Import(ctx, strings.NewReader(input), "user-1"); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, "user-1", domain.TransactionFilter{}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "Date,Description,Merchant,Category,Type,Amount,Currency" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2026-08-10,Weekly shop,Grocer,Groceries,expense,42.50,GBP" {
		t.Errorf("unexpected row: %q", lines[1])
	}
}
