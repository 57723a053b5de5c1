package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var catTracer = otel.Tracer("service/categories")

// CategoryInput carries the client-supplied fields for create and update.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryService handles category CRUD. A category with transactions
// cannot be deleted.
type CategoryService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, metrics: metrics, logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, userID string, in *CategoryInput) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoryService.Create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	created, err := s.store.CreateCategory(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("category created",
		zap.String("user_id", userID),
		zap.String("category_id", created.ID),
	)
	return created, nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoryService.List")
	defer span.End()

	return s.store.ListCategories(ctx, userID)
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in *CategoryInput) (*domain.Category, error) {
	ctx, span := catTracer.Start(ctx, "CategoryService.Update")
	defer span.End()

	existing, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if color := strings.TrimSpace(in.Color); color != "" {
		existing.Color = color
	}

	updated, err := s.store.UpdateCategory(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category unless transactions still reference it.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := catTracer.Start(ctx, "CategoryService.Delete")
	defer span.End()

	if _, err := s.store.GetCategory(ctx, userID, id); err != nil {
		return err
	}

	count, err := s.store.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		return &domain.ErrConflict{Message: fmt.Sprintf("category has %d transactions; reassign them first", count)}
	}

	return s.store.DeleteCategory(ctx, userID, id)
}
