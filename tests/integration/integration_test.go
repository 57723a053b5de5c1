package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/handler"
	"github.com/foxfund/foxfund-go/internal/infra/memstore"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/service"

	"go.uber.org/zap"
)

type staticRates struct{}

func (staticRates) GetRate(_ context.Context, currency string) (*domain.ExchangeRate, error) {
	return &domain.ExchangeRate{Base: "GBP", Currency: currency, Rate: 1.27, FetchedAt: time.Now()}, nil
}

func newTestRouter() http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memstore.New()

	authSvc := service.NewAuthService(store, "integration-test-secret", 15*time.Minute, 7*24*time.Hour, metrics, logger)
	svcs := handler.Services{
		Auth:          authSvc,
		Transactions:  service.NewTransactionService(store, metrics, logger),
		Categories:    service.NewCategoryService(store, metrics, logger),
		Budgets:       service.NewBudgetService(store, metrics, logger),
		Goals:         service.NewGoalService(store, metrics, logger),
		Notifications: service.NewNotificationService(store, metrics, logger),
		Users:         service.NewUserService(store, logger),
		Dashboard:     service.NewDashboardService(store, metrics, logger),
		CSV:           service.NewCSVService(store, metrics, logger),
		Rates:         staticRates{},
		Store:         store,
	}
	return handler.NewRouter(svcs, metrics, logger)
}

// doJSON executes a request against the router and decodes the response into out.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s %s: %v (body: %s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func registerUser(t *testing.T, router http.Handler, email, name string) *domain.LoginResponse {
	t.Helper()

	var resp domain.LoginResponse
	code := doJSON(t, router, http.MethodPost, "/v1/auth/register", "",
		domain.RegisterRequest{Email: email, Password: "password123", Name: name}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, code)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("register %s: missing tokens", email)
	}
	return &resp
}

func TestTransactionLifecycle(t *testing.T) {
	router := newTestRouter()
	auth := registerUser(t, router, "alice@example.com", "Alice")
	token := auth.AccessToken

	// Unauthenticated requests are rejected.
	if code := doJSON(t, router, http.MethodGet, "/v1/transactions", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	var cat domain.Category
	code := doJSON(t, router, http.MethodPost, "/v1/categories", token,
		service.CategoryInput{Name: "Groceries", Color: "#10B981"}, &cat)
	if code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", code)
	}

	var tx domain.Transaction
	code = doJSON(t, router, http.MethodPost, "/v1/transactions", token,
		service.TransactionInput{
			Amount:      42.50,
			Type:        "expense",
			Date:        "2026-08-10",
			Description: "Weekly shop",
			CategoryID:  &cat.ID,
		}, &tx)
	if code != http.StatusCreated {
		t.Fatalf("create transaction: expected 201, got %d", code)
	}
	if tx.Amount != -42.50 {
		t.Errorf("expected expense to be stored as -42.50, got %v", tx.Amount)
	}
	if tx.Currency != domain.DefaultCurrency {
		t.Errorf("expected default currency %s, got %s", domain.DefaultCurrency, tx.Currency)
	}
	if tx.Category == nil || tx.Category.Name != "Groceries" {
		t.Errorf("expected joined category Groceries, got %+v", tx.Category)
	}

	var listed []domain.Transaction
	code = doJSON(t, router, http.MethodGet, "/v1/transactions?startDate=2026-08-01&endDate=2026-08-31", token, nil, &listed)
	if code != http.StatusOK {
		t.Fatalf("list transactions: expected 200, got %d", code)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(listed))
	}

	// A category with transactions cannot be deleted.
	if code := doJSON(t, router, http.MethodDelete, "/v1/categories/"+cat.ID, token, nil, nil); code != http.StatusConflict {
		t.Errorf("expected 409 deleting category in use, got %d", code)
	}

	if code := doJSON(t, router, http.MethodDelete, "/v1/transactions/"+tx.ID, token, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete transaction: expected 204, got %d", code)
	}
	if code := doJSON(t, router, http.MethodDelete, "/v1/categories/"+cat.ID, token, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete empty category: expected 204, got %d", code)
	}
}

func TestBudgetSharingFlow(t *testing.T) {
	router := newTestRouter()
	owner := registerUser(t, router, "owner@example.com", "Olivia")
	friend := registerUser(t, router, "friend@example.com", "Finn")

	var cat domain.Category
	doJSON(t, router, http.MethodPost, "/v1/categories", owner.AccessToken,
		service.CategoryInput{Name: "Dining"}, &cat)

	var budget domain.Budget
	code := doJSON(t, router, http.MethodPost, "/v1/budgets", owner.AccessToken,
		service.BudgetInput{CategoryID: cat.ID, Amount: 300, Month: 8, Year: 2026}, &budget)
	if code != http.StatusCreated {
		t.Fatalf("create budget: expected 201, got %d", code)
	}

	// A second budget for the same category and period is rejected.
	code = doJSON(t, router, http.MethodPost, "/v1/budgets", owner.AccessToken,
		service.BudgetInput{CategoryID: cat.ID, Amount: 500, Month: 8, Year: 2026}, nil)
	if code != http.StatusConflict {
		t.Fatalf("duplicate budget: expected 409, got %d", code)
	}

	// Before sharing, the friend cannot even see it.
	code = doJSON(t, router, http.MethodGet, "/v1/budgets/"+budget.ID, friend.AccessToken, nil, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unshared budget: expected 404 for non-member, got %d", code)
	}

	var share domain.BudgetShare
	code = doJSON(t, router, http.MethodPost, "/v1/budgets/"+budget.ID+"/shares", owner.AccessToken,
		service.ShareInput{UserID: friend.User.ID, CanEdit: false}, &share)
	if code != http.StatusCreated {
		t.Fatalf("create share: expected 201, got %d", code)
	}

	// Sharing notifies the grantee.
	var notifications []domain.Notification
	doJSON(t, router, http.MethodGet, "/v1/notifications", friend.AccessToken, nil, &notifications)
	if len(notifications) != 1 || notifications[0].Type != domain.NotificationBudgetShared {
		t.Fatalf("expected one budget_shared notification, got %+v", notifications)
	}

	// The friend now sees it, flagged as shared.
	var friendBudgets []service.BudgetWithProgress
	doJSON(t, router, http.MethodGet, "/v1/budgets", friend.AccessToken, nil, &friendBudgets)
	if len(friendBudgets) != 1 {
		t.Fatalf("expected 1 shared budget, got %d", len(friendBudgets))
	}
	if !friendBudgets[0].IsShared || friendBudgets[0].CanEdit {
		t.Errorf("expected view-only shared budget, got isShared=%v canEdit=%v",
			friendBudgets[0].IsShared, friendBudgets[0].CanEdit)
	}

	// View-only access does not permit edits or deletion.
	code = doJSON(t, router, http.MethodPut, "/v1/budgets/"+budget.ID, friend.AccessToken,
		service.BudgetInput{CategoryID: cat.ID, Amount: 999, Month: 8, Year: 2026}, nil)
	if code != http.StatusForbidden {
		t.Fatalf("viewer edit: expected 403, got %d", code)
	}
	code = doJSON(t, router, http.MethodDelete, "/v1/budgets/"+budget.ID, friend.AccessToken, nil, nil)
	if code != http.StatusForbidden {
		t.Fatalf("viewer delete: expected 403, got %d", code)
	}

	// Owner upgrades the share, after which the friend can edit but still not delete.
	code = doJSON(t, router, http.MethodPut, "/v1/budgets/"+budget.ID+"/shares/"+share.ID, owner.AccessToken,
		service.ShareInput{CanEdit: true}, nil)
	if code != http.StatusOK {
		t.Fatalf("update share: expected 200, got %d", code)
	}
	code = doJSON(t, router, http.MethodPut, "/v1/budgets/"+budget.ID, friend.AccessToken,
		service.BudgetInput{CategoryID: cat.ID, Amount: 350, Month: 8, Year: 2026}, nil)
	if code != http.StatusOK {
		t.Fatalf("editor edit: expected 200, got %d", code)
	}
	code = doJSON(t, router, http.MethodDelete, "/v1/budgets/"+budget.ID, friend.AccessToken, nil, nil)
	if code != http.StatusForbidden {
		t.Fatalf("editor delete: expected 403, got %d", code)
	}

	// The grantee can leave the share themselves.
	code = doJSON(t, router, http.MethodDelete, "/v1/budgets/"+budget.ID+"/shares/"+share.ID, friend.AccessToken, nil, nil)
	if code != http.StatusNoContent {
		t.Fatalf("leave share: expected 204, got %d", code)
	}
	doJSON(t, router, http.MethodGet, "/v1/budgets", friend.AccessToken, nil, &friendBudgets)
	if len(friendBudgets) != 0 {
		t.Errorf("expected no budgets after leaving share, got %d", len(friendBudgets))
	}
}

func TestGoalAchievement(t *testing.T) {
	router := newTestRouter()
	auth := registerUser(t, router, "saver@example.com", "Sam")
	token := auth.AccessToken

	var goal domain.Goal
	code := doJSON(t, router, http.MethodPost, "/v1/goals", token,
		service.GoalInput{Title: "Holiday fund", TargetAmount: 100, Month: 8, Year: 2026}, &goal)
	if code != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d", code)
	}

	doJSON(t, router, http.MethodPost, "/v1/goals/"+goal.ID+"/contribute", token,
		service.ContributeInput{Amount: 60}, &goal)
	if goal.Completed {
		t.Fatal("goal should not be completed at 60/100")
	}

	// Overshooting clamps to the target and completes the goal.
	doJSON(t, router, http.MethodPost, "/v1/goals/"+goal.ID+"/contribute", token,
		service.ContributeInput{Amount: 55}, &goal)
	if !goal.Completed || goal.CurrentAmount != 100 {
		t.Fatalf("expected completed goal at 100, got completed=%v current=%v",
			goal.Completed, goal.CurrentAmount)
	}
	if goal.CompletedAt == nil {
		t.Error("expected completedAt to be set")
	}

	var notifications []domain.Notification
	doJSON(t, router, http.MethodGet, "/v1/notifications", token, nil, &notifications)
	achieved := 0
	for _, n := range notifications {
		if n.Type == domain.NotificationGoalAchieved {
			achieved++
		}
	}
	if achieved != 1 {
		t.Fatalf("expected exactly one goal_achieved notification, got %d", achieved)
	}

	// Further contributions to a completed goal do not notify again.
	doJSON(t, router, http.MethodPost, "/v1/goals/"+goal.ID+"/contribute", token,
		service.ContributeInput{Amount: 10}, &goal)
	doJSON(t, router, http.MethodGet, "/v1/notifications", token, nil, &notifications)
	achieved = 0
	for _, n := range notifications {
		if n.Type == domain.NotificationGoalAchieved {
			achieved++
		}
	}
	if achieved != 1 {
		t.Fatalf("expected still one goal_achieved notification, got %d", achieved)
	}
}

func TestDashboardAggregation(t *testing.T) {
	router := newTestRouter()
	auth := registerUser(t, router, "dash@example.com", "Dana")
	token := auth.AccessToken

	var cat domain.Category
	doJSON(t, router, http.MethodPost, "/v1/categories", token,
		service.CategoryInput{Name: "Transport", Color: "#3B82F6"}, &cat)

	for i, in := range []service.TransactionInput{
		{Amount: 2000, Type: "income", Date: "2026-08-01", Description: "Salary"},
		{Amount: 120, Type: "expense", Date: "2026-08-05", Description: "Train pass", CategoryID: &cat.ID},
		{Amount: 35, Type: "expense", Date: "2026-08-12", Description: "Taxi"},
		{Amount: 80, Type: "expense", Date: "2026-07-20", Description: "Last month"},
	} {
		if code := doJSON(t, router, http.MethodPost, "/v1/transactions", token, in, nil); code != http.StatusCreated {
			t.Fatalf("seed transaction %d: expected 201, got %d", i, code)
		}
	}

	var dash domain.Dashboard
	code := doJSON(t, router, http.MethodGet, "/v1/dashboard?month=8&year=2026", token, nil, &dash)
	if code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", code)
	}
	if dash.Summary.Income != 2000 {
		t.Errorf("expected income 2000, got %v", dash.Summary.Income)
	}
	if dash.Summary.Expenses != 155 {
		t.Errorf("expected expenses 155, got %v", dash.Summary.Expenses)
	}
	if dash.Summary.Balance != 1845 {
		t.Errorf("expected balance 1845, got %v", dash.Summary.Balance)
	}
	if len(dash.MonthlyTrend) != domain.TrendMonths {
		t.Errorf("expected %d trend points, got %d", domain.TrendMonths, len(dash.MonthlyTrend))
	}

	// Uncategorized spending gets its own synthetic bucket.
	foundUncategorized := false
	for _, b := range dash.SpendingByCategory {
		if b.Category.ID == nil {
			foundUncategorized = true
			if b.Category.Color != domain.DefaultCategoryColor {
				t.Errorf("expected uncategorized color %s, got %s", domain.DefaultCategoryColor, b.Category.Color)
			}
		}
	}
	if !foundUncategorized {
		t.Error("expected an uncategorized spending bucket")
	}
}

func TestAuthRefreshRotation(t *testing.T) {
	router := newTestRouter()
	auth := registerUser(t, router, "rotate@example.com", "Riley")

	var first domain.LoginResponse
	code := doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
		domain.RefreshRequest{RefreshToken: auth.RefreshToken}, &first)
	if code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", code)
	}
	if first.RefreshToken == auth.RefreshToken {
		t.Error("expected refresh token to rotate")
	}

	// The old token was revoked by the rotation.
	code = doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
		domain.RefreshRequest{RefreshToken: auth.RefreshToken}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh: expected 401, got %d", code)
	}
}

func TestHealthAndRates(t *testing.T) {
	router := newTestRouter()
	auth := registerUser(t, router, "ops@example.com", "Opal")

	var health domain.HealthStatus
	if code := doJSON(t, router, http.MethodGet, "/healthz", "", nil, &health); code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", code)
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}

	var rate domain.ExchangeRate
	if code := doJSON(t, router, http.MethodGet, "/v1/rates/USD", auth.AccessToken, nil, &rate); code != http.StatusOK {
		t.Fatalf("rates: expected 200, got %d", code)
	}
	if rate.Currency != "USD" {
		t.Errorf("expected USD rate, got %s", rate.Currency)
	}

	fmt.Println("health:", health.Status)
}
