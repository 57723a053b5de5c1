package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateUser")
	defer span.End()

	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Email, u.Name, u.Password,
	).Scan(&u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "user", u.Email)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetUserByID")
	defer span.End()

	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetUserByEmail")
	defer span.End()

	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "user", email)
	}
	return &u, nil
}

// SearchUsers matches name or email case-insensitively, excluding the
// searching user.
func (s *Store) SearchUsers(ctx context.Context, query, excludeUserID string, limit int) ([]domain.UserRef, error) {
	ctx, span := tracer.Start(ctx, "Postgres.SearchUsers")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email FROM users
		 WHERE id <> $1 AND (name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		 ORDER BY name ASC
		 LIMIT $3`,
		excludeUserID, query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.UserRef
	for rows.Next() {
		var u domain.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	ctx, span := tracer.Start(ctx, "Postgres.UpdatePassword")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password = $2 WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return nil
}
