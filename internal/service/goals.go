package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var goalTracer = otel.Tracer("service/goals")

// GoalInput carries the client-supplied fields for create and update.
type GoalInput struct {
	Title         string   `json:"title"`
	TargetAmount  float64  `json:"targetAmount"`
	CurrentAmount *float64 `json:"currentAmount"`
	Month         int      `json:"month"`
	Year          int      `json:"year"`
}

// ContributeInput is the body for POST /v1/goals/{id}/contribute.
type ContributeInput struct {
	Amount float64 `json:"amount"`
}

// GoalService handles savings goal CRUD and contributions. Crossing the
// target emits a goal_achieved notification exactly once per crossing.
type GoalService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *GoalService {
	return &GoalService{store: store, metrics: metrics, logger: logger}
}

func (s *GoalService) Create(ctx context.Context, userID string, in *GoalInput) (*domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Create")
	defer span.End()

	if err := validateGoalInput(in); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	existing, err := s.store.ListGoals(ctx, userID, in.Month, in.Year)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	for _, g := range existing {
		if strings.EqualFold(g.Title, title) {
			return nil, &domain.ErrConflict{Message: "a goal with this title already exists for this month"}
		}
	}

	goal := domain.Goal{
		UserID:       userID,
		Title:        title,
		TargetAmount: in.TargetAmount,
		Month:        in.Month,
		Year:         in.Year,
	}
	if in.CurrentAmount != nil {
		// Route the starting balance through the contribution rules so a
		// goal created already at target is marked complete.
		updated, achieved := domain.ApplyContribution(goal, *in.CurrentAmount, time.Now().UTC())
		goal = updated
		_ = achieved // no notification for the initial balance
	}

	created, err := s.store.CreateGoal(ctx, &goal)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.logger.Info("goal created",
		zap.String("user_id", userID),
		zap.String("goal_id", created.ID),
	)
	return created, nil
}

func (s *GoalService) Get(ctx context.Context, userID, id string) (*domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Get")
	defer span.End()

	return s.store.GetGoal(ctx, userID, id)
}

func (s *GoalService) List(ctx context.Context, userID string, month, year int) ([]domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.List")
	defer span.End()

	return s.store.ListGoals(ctx, userID, month, year)
}

// Update edits goal fields. Changing amounts re-evaluates completion and
// may emit the achievement notification when the goal newly crosses its target.
func (s *GoalService) Update(ctx context.Context, userID, id string, in *GoalInput) (*domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Update")
	defer span.End()

	existing, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		existing.Title = title
	}
	if in.TargetAmount > 0 {
		existing.TargetAmount = in.TargetAmount
	}
	if in.Month != 0 {
		existing.Month = in.Month
	}
	if in.Year != 0 {
		existing.Year = in.Year
	}

	// Re-apply with a zero delta (or the delta to the new current amount)
	// so completion state tracks the edited numbers.
	delta := 0.0
	if in.CurrentAmount != nil {
		delta = *in.CurrentAmount - existing.CurrentAmount
	}
	updated, achieved := domain.ApplyContribution(*existing, delta, time.Now().UTC())

	saved, err := s.store.UpdateGoal(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}

	if achieved {
		s.notifyAchieved(ctx, saved)
	}
	return saved, nil
}

// Contribute adds (or with a negative amount, withdraws) funds.
func (s *GoalService) Contribute(ctx context.Context, userID, id string, in *ContributeInput) (*domain.Goal, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Contribute")
	defer span.End()

	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be a finite number"}
	}

	existing, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, achieved := domain.ApplyContribution(*existing, in.Amount, time.Now().UTC())

	saved, err := s.store.UpdateGoal(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}

	if achieved {
		s.notifyAchieved(ctx, saved)
	}

	s.logger.Info("goal contribution",
		zap.String("user_id", userID),
		zap.String("goal_id", id),
		zap.Float64("amount", in.Amount),
		zap.Bool("achieved", achieved),
	)
	return saved, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := goalTracer.Start(ctx, "GoalService.Delete")
	defer span.End()

	return s.store.DeleteGoal(ctx, userID, id)
}

func (s *GoalService) notifyAchieved(ctx context.Context, goal *domain.Goal) {
	_, err := s.store.CreateNotification(ctx, &domain.Notification{
		UserID:  goal.UserID,
		Type:    domain.NotificationGoalAchieved,
		Title:   "Goal Achieved! 🎉",
		Message: fmt.Sprintf("You've reached your goal: %s", goal.Title),
		Data: map[string]any{
			"goalId":       goal.ID,
			"targetAmount": goal.TargetAmount,
		},
	})
	if err != nil {
		s.logger.Warn("achievement notification failed",
			zap.String("goal_id", goal.ID),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncrNotification(domain.NotificationGoalAchieved)
}

func validateGoalInput(in *GoalInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &domain.ErrValidation{Field: "title", Message: "title is required"}
	}
	if in.TargetAmount <= 0 || math.IsNaN(in.TargetAmount) || math.IsInf(in.TargetAmount, 0) {
		return &domain.ErrValidation{Field: "targetAmount", Message: "targetAmount must be positive"}
	}
	if in.Month < 1 || in.Month > 12 {
		return &domain.ErrValidation{Field: "month", Message: "month must be between 1 and 12"}
	}
	if in.Year < 1970 {
		return &domain.ErrValidation{Field: "year", Message: "year is out of range"}
	}
	return nil
}
