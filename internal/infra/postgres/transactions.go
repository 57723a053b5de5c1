package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

const transactionColumns = `
	t.id, t.user_id, t.amount, t.type, t.currency, t.date,
	t.description, t.merchant, t.category_id, t.created_at,
	c.id, c.user_id, c.name, c.color, c.created_at`

const transactionJoin = `FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

// scanTransaction reads a transaction row with its (possibly absent) category.
func scanTransaction(row interface{ Scan(dest ...any) error }) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		catID     *string
		catUserID *string
		catName   *string
		catColor  *string
		catAt     *time.Time
	)
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Currency, &tx.Date,
		&tx.Description, &tx.Merchant, &tx.CategoryID, &tx.CreatedAt,
		&catID, &catUserID, &catName, &catColor, &catAt,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		tx.Category = &domain.Category{
			ID:     *catID,
			UserID: *catUserID,
			Name:   *catName,
			Color:  *catColor,
		}
		if catAt != nil {
			tx.Category.CreatedAt = *catAt
		}
	}
	return &tx, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateTransaction")
	defer span.End()

	t := *tx
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, amount, type, currency, date, description, merchant, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		t.ID, t.UserID, t.Amount, t.Type, t.Currency, t.Date, t.Description, t.Merchant, t.CategoryID,
	).Scan(&t.CreatedAt)
	if err != nil {
		return nil, mapError(err, "transaction", t.ID)
	}
	return s.GetTransaction(ctx, t.UserID, t.ID)
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetTransaction")
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` `+transactionJoin+`
		 WHERE t.user_id = $1 AND t.id = $2`,
		userID, id,
	)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, mapError(err, "transaction", id)
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListTransactions")
	defer span.End()

	query := `SELECT ` + transactionColumns + ` ` + transactionJoin + ` WHERE t.user_id = $1`
	args := []any{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND t.date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND t.date < $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += ` AND t.category_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY t.date DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateTransaction")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE transactions
		 SET amount = $3, type = $4, currency = $5, date = $6,
		     description = $7, merchant = $8, category_id = $9
		 WHERE user_id = $1 AND id = $2`,
		tx.UserID, tx.ID, tx.Amount, tx.Type, tx.Currency, tx.Date,
		tx.Description, tx.Merchant, tx.CategoryID,
	)
	if err != nil {
		return nil, mapError(err, "transaction", tx.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}
	return s.GetTransaction(ctx, tx.UserID, tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteTransaction")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	return nil
}

func (s *Store) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CountTransactionsByCategory")
	defer span.End()

	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`,
		categoryID,
	).Scan(&count)
	return count, err
}
