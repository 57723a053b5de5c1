// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
)

// UserStore manages account records.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	SearchUsers(ctx context.Context, query, excludeUserID string, limit int) ([]domain.UserRef, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// AuthStore manages refresh tokens (stored hashed, rotated on use).
type AuthStore interface {
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// TransactionStore manages transaction records. All reads are scoped to the
// owning user; filters narrow by date window and category.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
}

// CategoryStore manages category records.
type CategoryStore interface {
	CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, userID, id string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}

// BudgetStore manages budgets and their shares. Budget reads return the
// record with category, owner and shares joined; authorization against the
// acting user happens in the service layer, not here. The unique constraints
// on (user, category, month, year) and (budget, grantee) are enforced by the
// storage engine and surface as domain.ErrDuplicate.
type BudgetStore interface {
	CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	GetBudget(ctx context.Context, id string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	ListBudgetsForPeriod(ctx context.Context, userID string, month, year int) ([]domain.Budget, error)
	ListSharedBudgets(ctx context.Context, granteeID string) ([]domain.SharedBudget, error)
	UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	CreateBudgetShare(ctx context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error)
	GetBudgetShare(ctx context.Context, budgetID, shareID string) (*domain.BudgetShare, error)
	ListBudgetShares(ctx context.Context, budgetID string) ([]domain.BudgetShare, error)
	UpdateBudgetShare(ctx context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error)
	DeleteBudgetShare(ctx context.Context, shareID string) error
}

// GoalStore manages savings goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error)
	GetGoal(ctx context.Context, userID, id string) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID string, month, year int) ([]domain.Goal, error)
	UpdateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, userID, id string) error
}

// NotificationStore manages notification records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetNotification(ctx context.Context, userID, id string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string, read bool) (*domain.Notification, error)
	DeleteNotification(ctx context.Context, userID, id string) error
}

// Store is the full persistence surface, implemented by the Postgres adapter
// (or an in-memory store in tests).
type Store interface {
	UserStore
	AuthStore
	TransactionStore
	CategoryStore
	BudgetStore
	GoalStore
	NotificationStore

	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// RateFetcher retrieves exchange rates for currency conversion.
type RateFetcher interface {
	GetRate(ctx context.Context, currency string) (*domain.ExchangeRate, error)
}
