// Package domain defines the core business entities for FoxFund.
// These models are independent of the persistence layer and represent the
// canonical data structures used throughout the API.
package domain

import "time"

// ============================================================
// Users
// ============================================================

// User represents a registered account holder.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt"`
}

// UserRef is the public subset of a user embedded in shared resources.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the public reference for a user.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// DisplayName returns the name shown in notifications, falling back to email.
func (u *UserRef) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ============================================================
// Transactions
// ============================================================

// TransactionType is either "income" or "expense".
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two recognized transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record.
// Amount is signed: negative iff Type == "expense", positive iff "income".
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Currency    string          `json:"currency"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	CategoryID  *string         `json:"categoryId"`
	Category    *Category       `json:"category,omitempty"` // joined, may be nil
	CreatedAt   time.Time       `json:"createdAt"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *string
}

// ============================================================
// Categories
// ============================================================

// DefaultCategoryColor is assigned when a category is created without a color,
// and is also the fixed color of the synthetic "Uncategorized" bucket.
const DefaultCategoryColor = "#6B7280"

// Category is a user-owned transaction label.
type Category struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	Color            string    `json:"color"`
	TransactionCount int       `json:"transactionCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CategoryRef identifies the category bucket a spend total belongs to.
// A nil ID marks the synthetic "Uncategorized" bucket, which is computed
// during aggregation and never persisted.
type CategoryRef struct {
	ID    *string `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
}

// Uncategorized returns the synthetic bucket for transactions with no category.
func Uncategorized() CategoryRef {
	return CategoryRef{Name: "Uncategorized", Color: DefaultCategoryColor}
}

// ============================================================
// Budgets & Shares
// ============================================================

// Budget is a per-user, per-category, per-month spending cap.
// At most one budget may exist per (owner, category, month, year).
type Budget struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	CategoryID string        `json:"categoryId"`
	Amount     float64       `json:"amount"`
	Month      int           `json:"month"` // 1-12
	Year       int           `json:"year"`
	Category   *Category     `json:"category,omitempty"` // joined
	Owner      *UserRef      `json:"user,omitempty"`     // joined
	Shares     []BudgetShare `json:"sharedWith,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// BudgetShare grants another user view (and optionally edit) access to a budget.
// A share never grants delete rights, regardless of CanEdit.
type BudgetShare struct {
	ID        string    `json:"id"`
	BudgetID  string    `json:"budgetId"`
	UserID    string    `json:"userId"`
	CanEdit   bool      `json:"canEdit"`
	User      *UserRef  `json:"user,omitempty"` // joined grantee
	CreatedAt time.Time `json:"createdAt"`
}

// SharedBudget pairs a share with the budget it grants access to,
// as returned when listing budgets shared with a user.
type SharedBudget struct {
	Share  BudgetShare
	Budget Budget
}

// BudgetView is a budget tagged with the caller's access, as listed by the API.
type BudgetView struct {
	Budget
	IsShared bool     `json:"isShared"`
	CanEdit  bool     `json:"canEdit"`
	SharedBy *UserRef `json:"sharedBy,omitempty"`
	ShareID  string   `json:"shareId,omitempty"`
}

// ============================================================
// Goals
// ============================================================

// Goal is a savings target tracked per month, contributed to manually.
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ============================================================
// Notifications
// ============================================================

// Notification types emitted by the core.
const (
	NotificationBudgetShared = "budget_shared"
	NotificationGoalAchieved = "goal_achieved"
)

// Notification is an informational message for a user. It is a side effect
// of sharing a budget or completing a goal, never part of financial state.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ============================================================
// Exchange rates
// ============================================================

// ExchangeRate is a conversion rate from the base currency.
type ExchangeRate struct {
	Base      string    `json:"base"`
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// ============================================================
// Operational responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// MetricsSnapshot is returned by GET /v1/metrics/summary.
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	ErrorRate         float64 `json:"errorRate"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	NotificationsSent int64   `json:"notificationsSent"`
	Period            string  `json:"period"`
}

// SuccessResponse wraps a successful mutation with no entity body.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
