package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

const budgetColumns = `
	b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.created_at,
	c.id, c.user_id, c.name, c.color, c.created_at,
	u.id, u.name, u.email`

const budgetJoin = `
	FROM budgets b
	JOIN categories c ON c.id = b.category_id
	JOIN users u ON u.id = b.user_id`

func scanBudget(row interface{ Scan(dest ...any) error }) (*domain.Budget, error) {
	var (
		b     domain.Budget
		cat   domain.Category
		owner domain.UserRef
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt,
		&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.CreatedAt,
		&owner.ID, &owner.Name, &owner.Email,
	)
	if err != nil {
		return nil, err
	}
	b.Category = &cat
	b.Owner = &owner
	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateBudget")
	defer span.End()

	b := *budget
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO budgets (id, user_id, category_id, amount, month, year)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		b.ID, b.UserID, b.CategoryID, b.Amount, b.Month, b.Year,
	).Scan(&b.CreatedAt)
	if err != nil {
		return nil, mapError(err, "budget", b.ID)
	}
	return s.GetBudget(ctx, b.ID)
}

// GetBudget loads a budget by id regardless of caller. Access checks are the
// service layer's job; returning the row here lets it distinguish "missing"
// from "not yours".
func (s *Store) GetBudget(ctx context.Context, id string) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetBudget")
	defer span.End()

	row := s.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` `+budgetJoin+` WHERE b.id = $1`, id)
	b, err := scanBudget(row)
	if err != nil {
		return nil, mapError(err, "budget", id)
	}
	if err := s.attachShares(ctx, []*domain.Budget{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListBudgets")
	defer span.End()

	return s.listBudgets(ctx,
		`SELECT `+budgetColumns+` `+budgetJoin+`
		 WHERE b.user_id = $1
		 ORDER BY b.year DESC, b.month DESC, c.name ASC`,
		userID)
}

func (s *Store) ListBudgetsForPeriod(ctx context.Context, userID string, month, year int) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListBudgetsForPeriod")
	defer span.End()

	return s.listBudgets(ctx,
		`SELECT `+budgetColumns+` `+budgetJoin+`
		 WHERE b.user_id = $1 AND b.month = $2 AND b.year = $3
		 ORDER BY c.name ASC`,
		userID, month, year)
}

func (s *Store) listBudgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ptrs []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachShares(ctx, ptrs); err != nil {
		return nil, err
	}

	budgets := make([]domain.Budget, len(ptrs))
	for i, b := range ptrs {
		budgets[i] = *b
	}
	return budgets, nil
}

// ListSharedBudgets returns budgets shared with the grantee, newest share first.
func (s *Store) ListSharedBudgets(ctx context.Context, granteeID string) ([]domain.SharedBudget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListSharedBudgets")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT sh.id, sh.budget_id, sh.user_id, sh.can_edit, sh.created_at,
		        `+budgetColumns+`
		 FROM budget_shares sh
		 JOIN budgets b ON b.id = sh.budget_id
		 JOIN categories c ON c.id = b.category_id
		 JOIN users u ON u.id = b.user_id
		 WHERE sh.user_id = $1
		 ORDER BY sh.created_at DESC`,
		granteeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shared []domain.SharedBudget
	for rows.Next() {
		var (
			sh    domain.BudgetShare
			b     domain.Budget
			cat   domain.Category
			owner domain.UserRef
		)
		err := rows.Scan(
			&sh.ID, &sh.BudgetID, &sh.UserID, &sh.CanEdit, &sh.CreatedAt,
			&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Month, &b.Year, &b.CreatedAt,
			&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.CreatedAt,
			&owner.ID, &owner.Name, &owner.Email,
		)
		if err != nil {
			return nil, err
		}
		b.Category = &cat
		b.Owner = &owner
		shared = append(shared, domain.SharedBudget{Share: sh, Budget: b})
	}
	return shared, rows.Err()
}

func (s *Store) UpdateBudget(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateBudget")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE budgets SET category_id = $2, amount = $3, month = $4, year = $5
		 WHERE id = $1`,
		budget.ID, budget.CategoryID, budget.Amount, budget.Month, budget.Year,
	)
	if err != nil {
		return nil, mapError(err, "budget", budget.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	return s.GetBudget(ctx, budget.ID)
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteBudget")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "budget", ID: id}
	}
	return nil
}

// attachShares loads shares (with grantee refs) for the given budgets.
func (s *Store) attachShares(ctx context.Context, budgets []*domain.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	ids := make([]string, len(budgets))
	byID := make(map[string]*domain.Budget, len(budgets))
	for i, b := range budgets {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	rows, err := s.pool.Query(ctx,
		`SELECT sh.id, sh.budget_id, sh.user_id, sh.can_edit, sh.created_at,
		        gu.id, gu.name, gu.email
		 FROM budget_shares sh
		 JOIN users gu ON gu.id = sh.user_id
		 WHERE sh.budget_id = ANY($1)
		 ORDER BY sh.created_at ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sh      domain.BudgetShare
			grantee domain.UserRef
		)
		if err := rows.Scan(&sh.ID, &sh.BudgetID, &sh.UserID, &sh.CanEdit, &sh.CreatedAt,
			&grantee.ID, &grantee.Name, &grantee.Email); err != nil {
			return err
		}
		sh.User = &grantee
		if b, ok := byID[sh.BudgetID]; ok {
			b.Shares = append(b.Shares, sh)
		}
	}
	return rows.Err()
}

// ============================================================
// Shares
// ============================================================

func (s *Store) CreateBudgetShare(ctx context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateBudgetShare")
	defer span.End()

	sh := *share
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO budget_shares (id, budget_id, user_id, can_edit)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		sh.ID, sh.BudgetID, sh.UserID, sh.CanEdit,
	).Scan(&sh.CreatedAt)
	if err != nil {
		return nil, mapError(err, "budget share", sh.ID)
	}

	var grantee domain.UserRef
	err = s.pool.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, sh.UserID,
	).Scan(&grantee.ID, &grantee.Name, &grantee.Email)
	if err != nil {
		return nil, mapError(err, "user", sh.UserID)
	}
	sh.User = &grantee
	return &sh, nil
}

func (s *Store) GetBudgetShare(ctx context.Context, budgetID, shareID string) (*domain.BudgetShare, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetBudgetShare")
	defer span.End()

	var sh domain.BudgetShare
	var grantee domain.UserRef
	err := s.pool.QueryRow(ctx,
		`SELECT sh.id, sh.budget_id, sh.user_id, sh.can_edit, sh.created_at,
		        gu.id, gu.name, gu.email
		 FROM budget_shares sh
		 JOIN users gu ON gu.id = sh.user_id
		 WHERE sh.budget_id = $1 AND sh.id = $2`,
		budgetID, shareID,
	).Scan(&sh.ID, &sh.BudgetID, &sh.UserID, &sh.CanEdit, &sh.CreatedAt,
		&grantee.ID, &grantee.Name, &grantee.Email)
	if err != nil {
		return nil, mapError(err, "budget share", shareID)
	}
	sh.User = &grantee
	return &sh, nil
}

func (s *Store) ListBudgetShares(ctx context.Context, budgetID string) ([]domain.BudgetShare, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListBudgetShares")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT sh.id, sh.budget_id, sh.user_id, sh.can_edit, sh.created_at,
		        gu.id, gu.name, gu.email
		 FROM budget_shares sh
		 JOIN users gu ON gu.id = sh.user_id
		 WHERE sh.budget_id = $1
		 ORDER BY sh.created_at ASC`,
		budgetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domain.BudgetShare
	for rows.Next() {
		var sh domain.BudgetShare
		var grantee domain.UserRef
		if err := rows.Scan(&sh.ID, &sh.BudgetID, &sh.UserID, &sh.CanEdit, &sh.CreatedAt,
			&grantee.ID, &grantee.Name, &grantee.Email); err != nil {
			return nil, err
		}
		sh.User = &grantee
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func (s *Store) UpdateBudgetShare(ctx context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateBudgetShare")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE budget_shares SET can_edit = $2 WHERE id = $1`,
		share.ID, share.CanEdit,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "budget share", ID: share.ID}
	}
	return s.GetBudgetShare(ctx, share.BudgetID, share.ID)
}

func (s *Store) DeleteBudgetShare(ctx context.Context, shareID string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteBudgetShare")
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM budget_shares WHERE id = $1`, shareID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "budget share", ID: shareID}
	}
	return nil
}
