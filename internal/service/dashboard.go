package service

import (
	"context"
	"fmt"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashTracer = otel.Tracer("service/dashboard")

// DashboardService assembles the aggregated dashboard in a single call.
type DashboardService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, metrics: metrics, logger: logger}
}

// Get builds the dashboard for the given calendar month. The four source
// datasets are fetched concurrently; the aggregation itself is pure.
func (s *DashboardService) Get(ctx context.Context, userID string, month, year int) (*domain.Dashboard, error) {
	ctx, span := dashTracer.Start(ctx, "DashboardService.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("month", month),
		attribute.Int("year", year),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	if month < 1 || month > 12 {
		return nil, &domain.ErrValidation{Field: "month", Message: "month must be between 1 and 12"}
	}
	if year < 1970 {
		return nil, &domain.ErrValidation{Field: "year", Message: "year is out of range"}
	}

	// The trend needs transactions back to the start of the window, so the
	// fetch spans the whole trailing period, not just the target month.
	windowStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	trendStart := windowStart.AddDate(0, -(domain.TrendMonths - 1), 0)
	windowEnd := windowStart.AddDate(0, 1, 0)

	var (
		txns       []domain.Transaction
		categories []domain.Category
		owned      []domain.Budget
		shared     []domain.SharedBudget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, userID, domain.TransactionFilter{
			From: &trendStart,
			To:   &windowEnd,
		})
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx, userID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		owned, err = s.store.ListBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		shared, err = s.store.ListSharedBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("list shared budgets: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrStoreError("dashboard")
		return nil, err
	}

	return domain.BuildDashboard(domain.DashboardInput{
		UserID:       userID,
		Month:        month,
		Year:         year,
		Transactions: txns,
		Categories:   categories,
		Owned:        owned,
		Shared:       shared,
	}), nil
}
