package domain

import (
	"math"
	"time"
)

// ============================================================
// Goal progress
// ============================================================

// GoalProgress is the derived completion state of one goal.
type GoalProgress struct {
	CurrentAmount     float64 `json:"currentAmount"`
	Completed         bool    `json:"completed"`
	Percentage        float64 `json:"percentage"`
	ClampedPercentage float64 `json:"clampedPercentage"`
}

// ApplyContribution applies a delta (positive contribution or negative
// correction) to a goal and returns the updated goal plus whether the goal
// was achieved by this contribution. The current amount is clamped to
// [0, targetAmount]; completion is detected when the clamped amount reaches
// the target. achieved is true exactly when Completed flips false→true, so
// the caller emits at most one goal-achieved notification per crossing.
//
// An explicit un-completion (delta pushing current back below target) clears
// CompletedAt but does not retract any notification already sent.
func ApplyContribution(goal Goal, delta float64, now time.Time) (Goal, bool) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return goal, false
	}

	goal.CurrentAmount = math.Max(0, math.Min(goal.TargetAmount, goal.CurrentAmount+delta))
	completed := goal.CurrentAmount >= goal.TargetAmount && goal.TargetAmount > 0

	achieved := completed && !goal.Completed
	if achieved {
		t := now
		goal.CompletedAt = &t
	}
	if !completed && goal.Completed {
		goal.CompletedAt = nil
	}
	goal.Completed = completed

	return goal, achieved
}

// Progress computes the goal's completion percentage, unclamped for
// reporting and clamped to 100 for progress-bar rendering.
func (g *Goal) Progress() GoalProgress {
	percentage := 0.0
	if g.TargetAmount > 0 {
		percentage = Round2(g.CurrentAmount / g.TargetAmount * 100)
	}
	return GoalProgress{
		CurrentAmount:     g.CurrentAmount,
		Completed:         g.Completed,
		Percentage:        percentage,
		ClampedPercentage: math.Min(100, percentage),
	}
}
