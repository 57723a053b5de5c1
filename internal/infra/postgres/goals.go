package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func (s *Store) CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateGoal")
	defer span.End()

	g := *goal
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO goals (id, user_id, title, target_amount, current_amount, month, year, completed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		g.ID, g.UserID, g.Title, g.TargetAmount, g.CurrentAmount, g.Month, g.Year, g.Completed, g.CompletedAt,
	).Scan(&g.CreatedAt)
	if err != nil {
		return nil, mapError(err, "goal", g.ID)
	}
	return &g, nil
}

func (s *Store) GetGoal(ctx context.Context, userID, id string) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetGoal")
	defer span.End()

	var g domain.Goal
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, month, year, completed, completed_at, created_at
		 FROM goals WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Month, &g.Year, &g.Completed, &g.CompletedAt, &g.CreatedAt)
	if err != nil {
		return nil, mapError(err, "goal", id)
	}
	return &g, nil
}

// ListGoals returns the user's goals for a period. Zero month/year list all.
func (s *Store) ListGoals(ctx context.Context, userID string, month, year int) ([]domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListGoals")
	defer span.End()

	query := `SELECT id, user_id, title, target_amount, current_amount, month, year, completed, completed_at, created_at
	          FROM goals WHERE user_id = $1`
	args := []any{userID}
	if month > 0 && year > 0 {
		query += ` AND month = $2 AND year = $3`
		args = append(args, month, year)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.Month, &g.Year, &g.Completed, &g.CompletedAt, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateGoal")
	defer span.End()

	g := *goal
	err := s.pool.QueryRow(ctx,
		`UPDATE goals
		 SET title = $3, target_amount = $4, current_amount = $5, month = $6, year = $7,
		     completed = $8, completed_at = $9
		 WHERE user_id = $1 AND id = $2
		 RETURNING created_at`,
		g.UserID, g.ID, g.Title, g.TargetAmount, g.CurrentAmount, g.Month, g.Year, g.Completed, g.CompletedAt,
	).Scan(&g.CreatedAt)
	if err != nil {
		return nil, mapError(err, "goal", g.ID)
	}
	return &g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteGoal")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM goals WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "goal", ID: id}
	}
	return nil
}
