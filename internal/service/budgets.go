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
)

var budgetTracer = otel.Tracer("service/budgets")

// BudgetInput carries the client-supplied fields for create and update.
type BudgetInput struct {
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
}

// ShareInput carries the fields for sharing a budget.
type ShareInput struct {
	UserID  string `json:"userId"`
	CanEdit bool   `json:"canEdit"`
}

// BudgetWithProgress is a budget view with its progress attached.
type BudgetWithProgress struct {
	domain.BudgetView
	Progress domain.BudgetProgress `json:"progress"`
}

// BudgetService handles budget CRUD, sharing, and progress reporting.
// Every access decision goes through the domain authorizer so that
// inaccessible budgets are indistinguishable from missing ones.
type BudgetService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBudgetService creates a new budget service.
func NewBudgetService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *BudgetService {
	return &BudgetService{store: store, metrics: metrics, logger: logger}
}

func (s *BudgetService) Create(ctx context.Context, userID string, in *BudgetInput) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateBudgetInput(in); err != nil {
		return nil, err
	}

	// The category must exist and belong to the user.
	if _, err := s.store.GetCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}

	// One budget per (user, category, month, year); the unique constraint
	// in storage is the authoritative guard.
	created, err := s.store.CreateBudget(ctx, &domain.Budget{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Month:      in.Month,
		Year:       in.Year,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		zap.String("user_id", userID),
		zap.String("budget_id", created.ID),
		zap.Int("month", created.Month),
		zap.Int("year", created.Year),
	)
	return created, nil
}

// List returns owned and shared budgets merged into a single view,
// each with progress computed over the budget period's expenses.
func (s *BudgetService) List(ctx context.Context, userID string) ([]BudgetWithProgress, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	owned, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	shared, err := s.store.ListSharedBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared budgets: %w", err)
	}

	views := domain.MergeBudgetViews(owned, shared)
	out := make([]BudgetWithProgress, 0, len(views))
	for _, v := range views {
		progress, err := s.progressFor(ctx, &v.Budget)
		if err != nil {
			return nil, err
		}
		out = append(out, BudgetWithProgress{BudgetView: v, Progress: progress})
	}
	return out, nil
}

func (s *BudgetService) Get(ctx context.Context, actorID, budgetID string) (*BudgetWithProgress, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Get")
	defer span.End()

	budget, err := s.authorizedBudget(ctx, actorID, budgetID, domain.AuthorizeView)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressFor(ctx, budget)
	if err != nil {
		return nil, err
	}

	view := domain.BudgetView{Budget: *budget, CanEdit: true}
	if budget.UserID != actorID {
		role := domain.ClassifyRole(budget, actorID)
		view.IsShared = true
		view.CanEdit = role.CanEdit()
		view.SharedBy = budget.Owner
		for _, sh := range budget.Shares {
			if sh.UserID == actorID {
				view.ShareID = sh.ID
			}
		}
	}

	return &BudgetWithProgress{BudgetView: view, Progress: progress}, nil
}

func (s *BudgetService) Update(ctx context.Context, actorID, budgetID string, in *BudgetInput) (*domain.Budget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Update")
	defer span.End()

	budget, err := s.authorizedBudget(ctx, actorID, budgetID, domain.AuthorizeEdit)
	if err != nil {
		return nil, err
	}

	if in.Amount > 0 {
		budget.Amount = in.Amount
	}
	if in.Month != 0 || in.Year != 0 || in.CategoryID != "" {
		if in.Month != 0 {
			budget.Month = in.Month
		}
		if in.Year != 0 {
			budget.Year = in.Year
		}
		if in.CategoryID != "" {
			// Category changes must stay within the owner's categories.
			if _, err := s.store.GetCategory(ctx, budget.UserID, in.CategoryID); err != nil {
				return nil, err
			}
			budget.CategoryID = in.CategoryID
		}
		if err := validateBudgetInput(&BudgetInput{
			CategoryID: budget.CategoryID,
			Amount:     budget.Amount,
			Month:      budget.Month,
			Year:       budget.Year,
		}); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateBudget(ctx, budget)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, actorID, budgetID string) error {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Delete")
	defer span.End()

	if _, err := s.authorizedBudget(ctx, actorID, budgetID, domain.AuthorizeDelete); err != nil {
		return err
	}

	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		return err
	}

	s.logger.Info("budget deleted",
		zap.String("user_id", actorID),
		zap.String("budget_id", budgetID),
	)
	return nil
}

// ============================================================
// Shares
// ============================================================

// Share grants another user access to a budget and notifies them.
func (s *BudgetService) Share(ctx context.Context, actorID, budgetID string, in *ShareInput) (*domain.BudgetShare, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Share")
	defer span.End()

	budget, err := s.loadBudget(ctx, actorID, budgetID)
	if err != nil {
		return nil, err
	}

	if err := domain.AuthorizeShareCreate(budget, actorID, in.UserID); err != nil {
		return nil, err
	}

	grantee, err := s.store.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	share, err := s.store.CreateBudgetShare(ctx, &domain.BudgetShare{
		BudgetID: budgetID,
		UserID:   grantee.ID,
		CanEdit:  in.CanEdit,
	})
	if err != nil {
		return nil, err
	}

	s.notifyShared(ctx, budget, grantee.ID, in.CanEdit)

	s.logger.Info("budget shared",
		zap.String("budget_id", budgetID),
		zap.String("owner_id", actorID),
		zap.String("grantee_id", grantee.ID),
		zap.Bool("can_edit", in.CanEdit),
	)
	return share, nil
}

// ListShares returns a budget's shares; only users with access may look.
func (s *BudgetService) ListShares(ctx context.Context, actorID, budgetID string) ([]domain.BudgetShare, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.ListShares")
	defer span.End()

	if _, err := s.authorizedBudget(ctx, actorID, budgetID, domain.AuthorizeView); err != nil {
		return nil, err
	}
	return s.store.ListBudgetShares(ctx, budgetID)
}

// UpdateShare changes a share's edit permission. Owner only.
func (s *BudgetService) UpdateShare(ctx context.Context, actorID, budgetID, shareID string, canEdit bool) (*domain.BudgetShare, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.UpdateShare")
	defer span.End()

	budget, err := s.loadBudget(ctx, actorID, budgetID)
	if err != nil {
		return nil, err
	}
	if !domain.ClassifyRole(budget, actorID).CanManageShares() {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: budgetID}
	}

	share, err := s.store.GetBudgetShare(ctx, budgetID, shareID)
	if err != nil {
		return nil, err
	}
	share.CanEdit = canEdit

	return s.store.UpdateBudgetShare(ctx, share)
}

// RemoveShare revokes a share. The owner may remove any share; a grantee
// may remove only their own (leaving the budget).
func (s *BudgetService) RemoveShare(ctx context.Context, actorID, budgetID, shareID string) error {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.RemoveShare")
	defer span.End()

	budget, err := s.loadBudget(ctx, actorID, budgetID)
	if err != nil {
		return err
	}

	share, err := s.store.GetBudgetShare(ctx, budgetID, shareID)
	if err != nil {
		return err
	}

	if err := domain.AuthorizeShareRemoval(budget, share, actorID); err != nil {
		return err
	}

	if err := s.store.DeleteBudgetShare(ctx, shareID); err != nil {
		return err
	}

	s.logger.Info("budget share removed",
		zap.String("budget_id", budgetID),
		zap.String("share_id", shareID),
		zap.String("actor_id", actorID),
	)
	return nil
}

// ============================================================
// Internals
// ============================================================

// loadBudget fetches the budget, masking its existence from users with no
// relationship to it at all. Callers still run the relevant authorizer.
func (s *BudgetService) loadBudget(ctx context.Context, actorID, budgetID string) (*domain.Budget, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *BudgetService) authorizedBudget(ctx context.Context, actorID, budgetID string, authorize func(*domain.Budget, string) error) (*domain.Budget, error) {
	budget, err := s.loadBudget(ctx, actorID, budgetID)
	if err != nil {
		return nil, err
	}
	if err := authorize(budget, actorID); err != nil {
		return nil, err
	}
	return budget, nil
}

// progressFor computes spend progress over the budget's calendar month,
// restricted to the budget's category.
func (s *BudgetService) progressFor(ctx context.Context, budget *domain.Budget) (domain.BudgetProgress, error) {
	from := time.Date(budget.Year, time.Month(budget.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	txns, err := s.store.ListTransactions(ctx, budget.UserID, domain.TransactionFilter{
		From:       &from,
		To:         &to,
		CategoryID: &budget.CategoryID,
	})
	if err != nil {
		return domain.BudgetProgress{}, fmt.Errorf("list transactions: %w", err)
	}
	return domain.CalculateBudgetProgress(budget, txns), nil
}

func (s *BudgetService) notifyShared(ctx context.Context, budget *domain.Budget, granteeID string, canEdit bool) {
	ownerName := ""
	if budget.Owner != nil {
		ownerName = budget.Owner.DisplayName()
	}
	categoryName := ""
	if budget.Category != nil {
		categoryName = budget.Category.Name
	}

	message := fmt.Sprintf("%s shared the %q budget with you (view only).", ownerName, categoryName)
	if canEdit {
		message = fmt.Sprintf("%s shared the %q budget with you with edit permissions.", ownerName, categoryName)
	}

	// Notification failure never fails the share itself.
	_, err := s.store.CreateNotification(ctx, &domain.Notification{
		UserID:  granteeID,
		Type:    domain.NotificationBudgetShared,
		Title:   "Budget Shared With You",
		Message: message,
		Data: map[string]any{
			"budgetId":   budget.ID,
			"categoryId": budget.CategoryID,
			"canEdit":    canEdit,
		},
	})
	if err != nil {
		s.logger.Warn("share notification failed",
			zap.String("budget_id", budget.ID),
			zap.String("grantee_id", granteeID),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncrNotification(domain.NotificationBudgetShared)
}

func validateBudgetInput(in *BudgetInput) error {
	if in.CategoryID == "" {
		return &domain.ErrValidation{Field: "categoryId", Message: "categoryId is required"}
	}
	if in.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	if in.Month < 1 || in.Month > 12 {
		return &domain.ErrValidation{Field: "month", Message: "month must be between 1 and 12"}
	}
	if in.Year < 1970 {
		return &domain.ErrValidation{Field: "year", Message: "year is out of range"}
	}
	return nil
}
