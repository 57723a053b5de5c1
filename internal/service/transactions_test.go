package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/memstore"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/service"

	"go.uber.org/zap"
)

func newTransactionService(store *memstore.Store) *service.TransactionService {
	return service.NewTransactionService(store, observability.NewMetrics(), zap.NewNop())
}

func TestTransactionCreate_SignsAmountByType(t *testing.T) {
	svc := newTransactionService(memstore.New())
	ctx := context.Background()

	expense, err := svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 25.99, Type: "expense", Date: "2026-08-15", Description: "Lunch",
	})
	if err != nil {
		t.Fatal(err)
	}
	if expense.Amount != -25.99 {
		t.Errorf("expected -25.99, got %v", expense.Amount)
	}

	income, err := svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 100, Type: "income", Date: "2026-08-15",
	})
	if err != nil {
		t.Fatal(err)
	}
	if income.Amount != 100 {
		t.Errorf("expected 100, got %v", income.Amount)
	}
	if income.Currency != domain.DefaultCurrency {
		t.Errorf("expected default currency, got %s", income.Currency)
	}
}

func TestTransactionCreate_Rejections(t *testing.T) {
	svc := newTransactionService(memstore.New())
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 10, Type: "transfer", Date: "2026-08-15",
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	_, err = svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 10, Type: "expense", Date: "2026-08-15", Currency: "XYZ",
	})
	var curr *domain.ErrUnsupportedCurrency
	if !errors.As(err, &curr) {
		t.Fatalf("expected unsupported currency error, got %v", err)
	}

	_, err = svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 10, Type: "expense", Date: "15/08/2026",
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for bad date, got %v", err)
	}
}

func TestTransactionCreate_ForeignCategoryRejected(t *testing.T) {
	store := memstore.New()
	svc := newTransactionService(store)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, &domain.Category{UserID: "other-user", Name: "Theirs"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 10, Type: "expense", Date: "2026-08-15", CategoryID: &cat.ID,
	})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found for foreign category, got %v", err)
	}
}

func TestCategoryDelete_BlockedWhileInUse(t *testing.T) {
	store := memstore.New()
	txSvc := newTransactionService(store)
	catSvc := service.NewCategoryService(store, observability.NewMetrics(), zap.NewNop())
	ctx := context.Background()

	cat, err := catSvc.Create(ctx, "user-1", &service.CategoryInput{Name: "Groceries"})
	if err != nil {
		t.Fatal(err)
	}
	if cat.Color != domain.DefaultCategoryColor {
		t.Errorf("expected default color, got %s", cat.Color)
	}

	tx, err := txSvc.Create(ctx, "user-1", &service.TransactionInput{
		Amount: 10, Type: "expense", Date: "2026-08-15", CategoryID: &cat.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = catSvc.Delete(ctx, "user-1", cat.ID)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict deleting category in use, got %v", err)
	}

	if err := txSvc.Delete(ctx, "user-1", tx.ID); err != nil {
		t.Fatal(err)
	}
	if err := catSvc.Delete(ctx, "user-1", cat.ID); err != nil {
		t.Fatalf("expected delete to succeed once empty: %v", err)
	}
}
