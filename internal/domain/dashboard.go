package domain

import (
	"math"
	"sort"
	"time"
)

// ============================================================
// Dashboard aggregation
// ============================================================

// TrendMonths is the length of the monthly trend series, including the
// target month itself.
const TrendMonths = 6

// RecentTransactionCount is the size of the recent-activity list.
const RecentTransactionCount = 5

// DashboardSummary is the income/expense/balance triple for the target month.
type DashboardSummary struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// CategorySpend is one slice of the spending breakdown.
type CategorySpend struct {
	Category CategoryRef `json:"category"`
	Total    float64     `json:"total"`
}

// MonthPoint is one bucket of the monthly trend series.
type MonthPoint struct {
	Month    string  `json:"month"` // "2006-01"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// BudgetProgressEntry pairs a budget with its computed progress and the
// category it caps.
type BudgetProgressEntry struct {
	BudgetID string      `json:"budgetId"`
	Category CategoryRef `json:"category"`
	Amount   float64     `json:"amount"`
	BudgetProgress
}

// Dashboard is the read-only view model consumed by the presentation layer.
type Dashboard struct {
	Summary            DashboardSummary      `json:"summary"`
	SpendingByCategory []CategorySpend       `json:"spendingByCategory"`
	MonthlyTrend       []MonthPoint          `json:"monthlyTrend"`
	BudgetProgress     []BudgetProgressEntry `json:"budgetProgress"`
	Budgets            []BudgetView          `json:"budgets"`
	RecentTransactions []Transaction         `json:"recentTransactions"`
}

// DashboardInput carries the already-fetched records the aggregator works on.
// Transactions must cover at least the trailing TrendMonths window ending at
// the target month.
type DashboardInput struct {
	UserID       string
	Month        int
	Year         int
	Transactions []Transaction
	Categories   []Category
	Owned        []Budget
	Shared       []SharedBudget
}

// BuildDashboard groups transactions by category and by calendar month,
// merges them with category metadata, runs the budget progress calculation
// for every budget in the target period, and merges owned and shared budgets
// into one tagged list. It never mutates the underlying records.
func BuildDashboard(in DashboardInput) *Dashboard {
	windowStart := time.Date(in.Year, time.Month(in.Month), 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 1, 0)
	trendStart := windowStart.AddDate(0, -(TrendMonths - 1), 0)

	categoriesByID := make(map[string]Category, len(in.Categories))
	for _, c := range in.Categories {
		categoriesByID[c.ID] = c
	}

	// Summary + per-category totals for the target month, and trend buckets
	// keyed by calendar month. Grouping is strictly by (year, month) so a
	// month with activity on many distinct days still yields one bucket.
	var income, expenses float64
	categoryTotals := make(map[string]float64)
	uncategorizedTotal := 0.0
	trendIncome := make(map[string]float64)
	trendExpenses := make(map[string]float64)

	for _, t := range in.Transactions {
		if t.Date.Before(trendStart) || !t.Date.Before(windowEnd) {
			continue
		}

		monthKey := t.Date.Format("2006-01")
		switch t.Type {
		case TypeIncome:
			trendIncome[monthKey] += t.Amount
		case TypeExpense:
			trendExpenses[monthKey] += math.Abs(t.Amount)
		}

		if t.Date.Before(windowStart) {
			continue
		}
		switch t.Type {
		case TypeIncome:
			income += t.Amount
		case TypeExpense:
			abs := math.Abs(t.Amount)
			expenses += abs
			if t.CategoryID != nil {
				categoryTotals[*t.CategoryID] += abs
			} else {
				uncategorizedTotal += abs
			}
		}
	}

	income = Round2(income)
	expenses = Round2(expenses)

	// Spending breakdown in stable category order; the synthetic
	// "Uncategorized" bucket is appended only when it has spend.
	spending := make([]CategorySpend, 0, len(categoryTotals)+1)
	for _, c := range in.Categories {
		total, ok := categoryTotals[c.ID]
		if !ok {
			continue
		}
		id := c.ID
		spending = append(spending, CategorySpend{
			Category: CategoryRef{ID: &id, Name: c.Name, Color: c.Color},
			Total:    Round2(total),
		})
	}
	if uncategorizedTotal > 0 {
		spending = append(spending, CategorySpend{
			Category: Uncategorized(),
			Total:    Round2(uncategorizedTotal),
		})
	}

	// Trend series in chronological order with zero-filled gaps.
	trend := make([]MonthPoint, 0, TrendMonths)
	for m := trendStart; m.Before(windowEnd); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		inc := Round2(trendIncome[key])
		exp := Round2(trendExpenses[key])
		trend = append(trend, MonthPoint{
			Month:    key,
			Income:   inc,
			Expenses: exp,
			Balance:  Round2(inc - exp),
		})
	}

	// Budget progress for every owned budget in the target period.
	progress := make([]BudgetProgressEntry, 0, len(in.Owned))
	for i := range in.Owned {
		b := in.Owned[i]
		if b.Month != in.Month || b.Year != in.Year {
			continue
		}
		var txns []Transaction
		for _, t := range in.Transactions {
			if t.Type != TypeExpense || t.CategoryID == nil || *t.CategoryID != b.CategoryID {
				continue
			}
			if t.Date.Before(windowStart) || !t.Date.Before(windowEnd) {
				continue
			}
			txns = append(txns, t)
		}
		progress = append(progress, BudgetProgressEntry{
			BudgetID: b.ID,
			Category: budgetCategoryRef(&b, categoriesByID),
			Amount:   b.Amount,
			BudgetProgress: CalculateBudgetProgress(&b, txns),
		})
	}

	return &Dashboard{
		Summary:            DashboardSummary{Income: income, Expenses: expenses, Balance: Round2(income - expenses)},
		SpendingByCategory: spending,
		MonthlyTrend:       trend,
		BudgetProgress:     progress,
		Budgets:            MergeBudgetViews(in.Owned, in.Shared),
		RecentTransactions: recentTransactions(in.Transactions),
	}
}

// MergeBudgetViews merges owned and shared budgets into one list tagged
// with the caller's access, sorted by (year desc, month desc).
func MergeBudgetViews(owned []Budget, shared []SharedBudget) []BudgetView {
	views := make([]BudgetView, 0, len(owned)+len(shared))
	for _, b := range owned {
		views = append(views, BudgetView{Budget: b, IsShared: false, CanEdit: true})
	}
	for _, s := range shared {
		views = append(views, BudgetView{
			Budget:   s.Budget,
			IsShared: true,
			CanEdit:  s.Share.CanEdit,
			SharedBy: s.Budget.Owner,
			ShareID:  s.Share.ID,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Year != views[j].Year {
			return views[i].Year > views[j].Year
		}
		return views[i].Month > views[j].Month
	})
	return views
}

func budgetCategoryRef(b *Budget, categories map[string]Category) CategoryRef {
	if b.Category != nil {
		id := b.Category.ID
		return CategoryRef{ID: &id, Name: b.Category.Name, Color: b.Category.Color}
	}
	if c, ok := categories[b.CategoryID]; ok {
		id := c.ID
		return CategoryRef{ID: &id, Name: c.Name, Color: c.Color}
	}
	return Uncategorized()
}

func recentTransactions(txns []Transaction) []Transaction {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > RecentTransactionCount {
		sorted = sorted[:RecentTransactionCount]
	}
	return sorted
}
