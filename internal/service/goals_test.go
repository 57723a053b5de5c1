package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/memstore"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/service"

	"go.uber.org/zap"
)

func newGoalService(store *memstore.Store) *service.GoalService {
	return service.NewGoalService(store, observability.NewMetrics(), zap.NewNop())
}

func countAchievedNotifications(t *testing.T, store *memstore.Store, userID string) int {
	t.Helper()
	notifications, err := store.ListNotifications(context.Background(), userID, 50)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, n := range notifications {
		if n.Type == domain.NotificationGoalAchieved {
			count++
		}
	}
	return count
}

func TestGoalContribute_NotifiesExactlyOnce(t *testing.T) {
	store := memstore.New()
	svc := newGoalService(store)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "user-1", &service.GoalInput{
		Title: "Emergency fund", TargetAmount: 500, Month: 8, Year: 2026,
	})
	if err != nil {
		t.Fatal(err)
	}

	goal, err = svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: 300})
	if err != nil {
		t.Fatal(err)
	}
	if goal.Completed {
		t.Fatal("goal should not be completed at 300/500")
	}
	if n := countAchievedNotifications(t, store, "user-1"); n != 0 {
		t.Fatalf("expected no notifications yet, got %d", n)
	}

	goal, err = svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: 250})
	if err != nil {
		t.Fatal(err)
	}
	if !goal.Completed || goal.CurrentAmount != 500 {
		t.Fatalf("expected clamped completion at 500, got completed=%v current=%v",
			goal.Completed, goal.CurrentAmount)
	}
	if goal.CompletedAt == nil {
		t.Error("expected completedAt to be set")
	}
	if n := countAchievedNotifications(t, store, "user-1"); n != 1 {
		t.Fatalf("expected 1 notification, got %d", n)
	}

	// Contributing to an already-complete goal does not notify again.
	if _, err := svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: 50}); err != nil {
		t.Fatal(err)
	}
	if n := countAchievedNotifications(t, store, "user-1"); n != 1 {
		t.Fatalf("expected still 1 notification, got %d", n)
	}
}

func TestGoalContribute_WithdrawalReopensGoal(t *testing.T) {
	store := memstore.New()
	svc := newGoalService(store)
	ctx := context.Background()

	goal, err := svc.Create(ctx, "user-1", &service.GoalInput{
		Title: "Bike", TargetAmount: 200, Month: 8, Year: 2026,
	})
	if err != nil {
		t.Fatal(err)
	}

	goal, _ = svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: 200})
	if !goal.Completed {
		t.Fatal("expected completed goal")
	}

	goal, err = svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: -50})
	if err != nil {
		t.Fatal(err)
	}
	if goal.Completed || goal.CompletedAt != nil {
		t.Errorf("expected reopened goal, got completed=%v completedAt=%v", goal.Completed, goal.CompletedAt)
	}
	if goal.CurrentAmount != 150 {
		t.Errorf("expected 150 after withdrawal, got %v", goal.CurrentAmount)
	}

	// Crossing the target a second time notifies again.
	goal, _ = svc.Contribute(ctx, "user-1", goal.ID, &service.ContributeInput{Amount: 100})
	if !goal.Completed {
		t.Fatal("expected re-completed goal")
	}
	if n := countAchievedNotifications(t, store, "user-1"); n != 2 {
		t.Fatalf("expected 2 notifications after re-crossing, got %d", n)
	}
}

func TestGoalCreate_InitialBalanceAtTarget(t *testing.T) {
	store := memstore.New()
	svc := newGoalService(store)

	initial := 1000.0
	goal, err := svc.Create(context.Background(), "user-1", &service.GoalInput{
		Title: "Already there", TargetAmount: 800, CurrentAmount: &initial, Month: 8, Year: 2026,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !goal.Completed || goal.CurrentAmount != 800 {
		t.Errorf("expected completed at clamped 800, got completed=%v current=%v",
			goal.Completed, goal.CurrentAmount)
	}
	// The starting balance never triggers a notification.
	if n := countAchievedNotifications(t, store, "user-1"); n != 0 {
		t.Errorf("expected no notifications for initial balance, got %d", n)
	}
}

func TestGoalCreate_DuplicateTitleSamePeriod(t *testing.T) {
	svc := newGoalService(memstore.New())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", &service.GoalInput{
		Title: "Holiday", TargetAmount: 100, Month: 8, Year: 2026,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, "user-1", &service.GoalInput{
		Title: "holiday", TargetAmount: 200, Month: 8, Year: 2026,
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for duplicate title in period, got %v", err)
	}

	// Same title in a different month is fine.
	if _, err := svc.Create(ctx, "user-1", &service.GoalInput{
		Title: "Holiday", TargetAmount: 100, Month: 9, Year: 2026,
	}); err != nil {
		t.Fatalf("expected different period to be allowed, got %v", err)
	}
}

func TestGoalCreate_Validation(t *testing.T) {
	svc := newGoalService(memstore.New())
	ctx := context.Background()

	cases := []struct {
		name string
		in   service.GoalInput
	}{
		{"empty title", service.GoalInput{TargetAmount: 100, Month: 8, Year: 2026}},
		{"zero target", service.GoalInput{Title: "x", TargetAmount: 0, Month: 8, Year: 2026}},
		{"bad month", service.GoalInput{Title: "x", TargetAmount: 100, Month: 13, Year: 2026}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user-1", &tc.in)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
