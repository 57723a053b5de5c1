package domain_test

import (
	"testing"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func tx(amount float64, txType domain.TransactionType, categoryID *string, date time.Time) domain.Transaction {
	return domain.Transaction{Amount: amount, Type: txType, CategoryID: categoryID, Date: date}
}

func strptr(s string) *string { return &s }

func TestBuildDashboard_Summary(t *testing.T) {
	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025,
		Transactions: []domain.Transaction{
			tx(2800, domain.TypeIncome, nil, june),
			tx(-450.50, domain.TypeExpense, nil, june),
			tx(-100, domain.TypeExpense, nil, june.AddDate(0, 0, 5)),
			// outside the target month, must not count toward the summary
			tx(-999, domain.TypeExpense, nil, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)),
		},
	})

	if dash.Summary.Income != 2800 {
		t.Errorf("expected income 2800, got %v", dash.Summary.Income)
	}
	if dash.Summary.Expenses != 550.50 {
		t.Errorf("expected expenses 550.50, got %v", dash.Summary.Expenses)
	}
	if dash.Summary.Balance != 2249.50 {
		t.Errorf("expected balance 2249.50, got %v", dash.Summary.Balance)
	}
}

func TestBuildDashboard_SpendingByCategory(t *testing.T) {
	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025,
		Categories: []domain.Category{
			{ID: "cat-food", Name: "Food & Dining", Color: "#8B4513"},
			{ID: "cat-transport", Name: "Transport", Color: "#D4AF37"},
		},
		Transactions: []domain.Transaction{
			tx(-45.50, domain.TypeExpense, strptr("cat-food"), june),
			tx(-28.75, domain.TypeExpense, strptr("cat-food"), june),
			tx(-12.00, domain.TypeExpense, strptr("cat-transport"), june),
			tx(-5.00, domain.TypeExpense, nil, june), // uncategorized
		},
	})

	if len(dash.SpendingByCategory) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(dash.SpendingByCategory))
	}
	food := dash.SpendingByCategory[0]
	if food.Category.Name != "Food & Dining" || food.Total != 74.25 {
		t.Errorf("unexpected food bucket: %+v", food)
	}
	uncat := dash.SpendingByCategory[2]
	if uncat.Category.ID != nil {
		t.Error("uncategorized bucket must carry a nil category id")
	}
	if uncat.Category.Name != "Uncategorized" || uncat.Category.Color != domain.DefaultCategoryColor {
		t.Errorf("unexpected uncategorized bucket: %+v", uncat.Category)
	}
	if uncat.Total != 5.00 {
		t.Errorf("expected uncategorized total 5.00, got %v", uncat.Total)
	}
}

// The synthetic bucket is appended only when it actually has spend.
func TestBuildDashboard_NoEmptyUncategorizedBucket(t *testing.T) {
	june := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025,
		Categories: []domain.Category{{ID: "c1", Name: "Food", Color: "#8B4513"}},
		Transactions: []domain.Transaction{
			tx(-10, domain.TypeExpense, strptr("c1"), june),
		},
	})

	for _, bucket := range dash.SpendingByCategory {
		if bucket.Category.ID == nil {
			t.Fatal("uncategorized bucket must be omitted when empty")
		}
	}
}

// Trend buckets group by calendar month, not by exact date: two transactions
// in the same month on different days share one bucket, and months without
// activity are zero-filled.
func TestBuildDashboard_MonthlyTrend(t *testing.T) {
	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025,
		Transactions: []domain.Transaction{
			tx(1000, domain.TypeIncome, nil, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
			tx(-200, domain.TypeExpense, nil, time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)),
			tx(-300, domain.TypeExpense, nil, time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC)),
			tx(-50, domain.TypeExpense, nil, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
			// older than the trailing window, must be excluded
			tx(-9999, domain.TypeExpense, nil, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
		},
	})

	if len(dash.MonthlyTrend) != domain.TrendMonths {
		t.Fatalf("expected %d buckets, got %d", domain.TrendMonths, len(dash.MonthlyTrend))
	}
	if dash.MonthlyTrend[0].Month != "2025-01" || dash.MonthlyTrend[5].Month != "2025-06" {
		t.Errorf("unexpected trend range: %s .. %s", dash.MonthlyTrend[0].Month, dash.MonthlyTrend[5].Month)
	}

	april := dash.MonthlyTrend[3]
	if april.Month != "2025-04" {
		t.Fatalf("expected 2025-04 at index 3, got %s", april.Month)
	}
	if april.Income != 1000 || april.Expenses != 500 || april.Balance != 500 {
		t.Errorf("unexpected april bucket: %+v", april)
	}

	// Months with no activity are present and zeroed.
	may := dash.MonthlyTrend[4]
	if may.Income != 0 || may.Expenses != 0 {
		t.Errorf("expected zero-filled may bucket, got %+v", may)
	}
}

func TestBuildDashboard_BudgetProgress(t *testing.T) {
	june := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025,
		Categories: []domain.Category{{ID: "cat-food", Name: "Food", Color: "#8B4513"}},
		Owned: []domain.Budget{
			{ID: "b1", UserID: "u1", CategoryID: "cat-food", Amount: 300, Month: 6, Year: 2025},
			// other period, not part of this dashboard
			{ID: "b2", UserID: "u1", CategoryID: "cat-food", Amount: 300, Month: 5, Year: 2025},
		},
		Transactions: []domain.Transaction{
			tx(-45.50, domain.TypeExpense, strptr("cat-food"), june),
			tx(-28.75, domain.TypeExpense, strptr("cat-food"), june),
			tx(-10.00, domain.TypeExpense, strptr("cat-food"), june),
			// same category, previous month — excluded from this period's spend
			tx(-500, domain.TypeExpense, strptr("cat-food"), time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)),
		},
	})

	if len(dash.BudgetProgress) != 1 {
		t.Fatalf("expected 1 progress entry, got %d", len(dash.BudgetProgress))
	}
	entry := dash.BudgetProgress[0]
	if entry.BudgetID != "b1" {
		t.Errorf("expected budget b1, got %s", entry.BudgetID)
	}
	if entry.Spent != 84.25 || entry.Remaining != 215.75 || entry.Percentage != 28.08 {
		t.Errorf("unexpected progress: %+v", entry.BudgetProgress)
	}
	if entry.Status != domain.StatusGood {
		t.Errorf("expected status good, got %s", entry.Status)
	}
	if entry.Category.Name != "Food" {
		t.Errorf("expected category join, got %+v", entry.Category)
	}
}

func TestMergeBudgetViews(t *testing.T) {
	owner := &domain.UserRef{ID: "owner", Name: "Demo User"}
	views := domain.MergeBudgetViews(
		[]domain.Budget{
			{ID: "b-old", UserID: "u1", Month: 1, Year: 2024},
			{ID: "b-new", UserID: "u1", Month: 6, Year: 2025},
		},
		[]domain.SharedBudget{
			{
				Share:  domain.BudgetShare{ID: "s1", BudgetID: "b-shared", UserID: "u1", CanEdit: true},
				Budget: domain.Budget{ID: "b-shared", UserID: "owner", Owner: owner, Month: 3, Year: 2025},
			},
		},
	)

	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	// Sorted by (year desc, month desc).
	if views[0].ID != "b-new" || views[1].ID != "b-shared" || views[2].ID != "b-old" {
		t.Errorf("unexpected order: %s, %s, %s", views[0].ID, views[1].ID, views[2].ID)
	}

	shared := views[1]
	if !shared.IsShared || !shared.CanEdit || shared.ShareID != "s1" {
		t.Errorf("unexpected share tagging: %+v", shared)
	}
	if shared.SharedBy == nil || shared.SharedBy.ID != "owner" {
		t.Errorf("expected sharedBy owner, got %+v", shared.SharedBy)
	}

	if views[0].IsShared || !views[0].CanEdit {
		t.Errorf("owned budgets are editable and not tagged shared: %+v", views[0])
	}
}

func TestBuildDashboard_RecentTransactions(t *testing.T) {
	var txns []domain.Transaction
	for day := 1; day <= 8; day++ {
		txns = append(txns, tx(-float64(day), domain.TypeExpense, nil,
			time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)))
	}

	dash := domain.BuildDashboard(domain.DashboardInput{
		UserID: "u1", Month: 6, Year: 2025, Transactions: txns,
	})

	if len(dash.RecentTransactions) != domain.RecentTransactionCount {
		t.Fatalf("expected %d recent transactions, got %d", domain.RecentTransactionCount, len(dash.RecentTransactions))
	}
	if !dash.RecentTransactions[0].Date.After(dash.RecentTransactions[1].Date) {
		t.Error("recent transactions must be ordered newest first")
	}
}
