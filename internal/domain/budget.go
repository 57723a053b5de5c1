package domain

import "math"

// ============================================================
// Budget progress
// ============================================================

// BudgetStatus is the spend tier derived from percentage against the cap.
type BudgetStatus string

const (
	StatusGood    BudgetStatus = "good"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// Tier thresholds, inclusive at the lower bound of each tier.
const (
	warningThresholdPct = 80
	overThresholdPct    = 100
)

// BudgetProgress is the derived spend-vs-cap state of one budget.
// Percentage is unclamped ("how far over"); ClampedPercentage is capped at
// 100 for progress-bar rendering.
type BudgetProgress struct {
	Spent             float64      `json:"spent"`
	Remaining         float64      `json:"remaining"`
	Percentage        float64      `json:"percentage"`
	ClampedPercentage float64      `json:"clampedPercentage"`
	Status            BudgetStatus `json:"status"`
}

// CalculateBudgetProgress computes spent, remaining, percentage and status
// for a budget against the transactions of its user/category/period.
// Non-expense rows are ignored so callers may pass an unfiltered slice.
// Pure function: no I/O, no mutation of inputs.
func CalculateBudgetProgress(budget *Budget, transactions []Transaction) BudgetProgress {
	var sum float64
	for _, t := range transactions {
		if t.Type != TypeExpense {
			continue
		}
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		sum += t.Amount
	}

	spent := Round2(math.Abs(sum))
	remaining := Round2(math.Max(0, budget.Amount-spent))

	// Explicit zero-division guard: a zero-amount budget reports 0%, "good".
	percentage := 0.0
	if budget.Amount > 0 {
		percentage = Round2(spent / budget.Amount * 100)
	}

	status := StatusGood
	switch {
	case percentage >= overThresholdPct:
		status = StatusOver
	case percentage >= warningThresholdPct:
		status = StatusWarning
	}

	return BudgetProgress{
		Spent:             spent,
		Remaining:         remaining,
		Percentage:        percentage,
		ClampedPercentage: math.Min(100, percentage),
		Status:            status,
	}
}
