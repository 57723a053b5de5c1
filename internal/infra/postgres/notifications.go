package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateNotification")
	defer span.End()

	out := *n
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	var data []byte
	if out.Data != nil {
		var err error
		data, err = json.Marshal(out.Data)
		if err != nil {
			return nil, err
		}
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, data, read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		out.ID, out.UserID, out.Type, out.Title, out.Message, data, out.Read,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, mapError(err, "notification", out.ID)
	}
	return &out, nil
}

func (s *Store) GetNotification(ctx context.Context, userID, id string) (*domain.Notification, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetNotification")
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, title, message, data, read, created_at
		 FROM notifications WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	n, err := scanNotification(row)
	if err != nil {
		return nil, mapError(err, "notification", id)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListNotifications")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, title, message, data, read, created_at
		 FROM notifications WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string, read bool) (*domain.Notification, error) {
	ctx, span := tracer.Start(ctx, "Postgres.MarkNotificationRead")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, read,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	return s.GetNotification(ctx, userID, id)
}

func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteNotification")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	return nil
}

func scanNotification(row interface{ Scan(dest ...any) error }) (*domain.Notification, error) {
	var n domain.Notification
	var data []byte
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}
