package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateCategory")
	defer span.End()

	c := *cat
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = domain.DefaultCategoryColor
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (id, user_id, name, color)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		c.ID, c.UserID, c.Name, c.Color,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "category", c.Name)
	}
	return &c, nil
}

func (s *Store) GetCategory(ctx context.Context, userID, id string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetCategory")
	defer span.End()

	var c domain.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, color, created_at FROM categories
		 WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "category", id)
	}
	return &c, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetCategoryByName")
	defer span.End()

	var c domain.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, color, created_at FROM categories
		 WHERE user_id = $1 AND name = $2`,
		userID, name,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "category", name)
	}
	return &c, nil
}

// ListCategories returns the user's categories with their transaction counts,
// ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListCategories")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.user_id, c.name, c.color, c.created_at,
		        COUNT(t.id) AS transaction_count
		 FROM categories c
		 LEFT JOIN transactions t ON t.category_id = c.id
		 WHERE c.user_id = $1
		 GROUP BY c.id
		 ORDER BY c.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt, &c.TransactionCount); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateCategory")
	defer span.End()

	c := *cat
	err := s.pool.QueryRow(ctx,
		`UPDATE categories SET name = $3, color = $4
		 WHERE user_id = $1 AND id = $2
		 RETURNING created_at`,
		c.UserID, c.ID, c.Name, c.Color,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, mapError(err, "category", c.ID)
	}
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteCategory")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM categories WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "category", ID: id}
	}
	return nil
}
