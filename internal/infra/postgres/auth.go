package postgres

import (
	"context"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func (s *Store) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Postgres.StoreRefreshToken")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		tokenHash, userID, expiresAt,
	)
	return mapError(err, "refresh token", userID)
}

func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetRefreshToken")
	defer span.End()

	var rt domain.RefreshToken
	err := s.pool.QueryRow(ctx,
		`SELECT token_hash, user_id, expires_at FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&rt.TokenHash, &rt.UserID, &rt.ExpiresAt)
	if err != nil {
		return nil, mapError(err, "refresh token", "")
	}
	return &rt, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Postgres.RevokeRefreshToken")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Postgres.RevokeAllRefreshTokens")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
