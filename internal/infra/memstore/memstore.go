// Package memstore provides an in-memory implementation of port.Store.
// It enforces the same uniqueness constraints as the Postgres adapter and is
// used by service and integration tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxfund/foxfund-go/internal/domain"
)

// Store holds all records in maps guarded by a single mutex.
type Store struct {
	mu sync.RWMutex

	users         map[string]*domain.User
	refreshTokens map[string]*domain.RefreshToken
	transactions  map[string]*domain.Transaction
	categories    map[string]*domain.Category
	budgets       map[string]*domain.Budget
	shares        map[string]*domain.BudgetShare
	goals         map[string]*domain.Goal
	notifications map[string]*domain.Notification
}

func New() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		refreshTokens: make(map[string]*domain.RefreshToken),
		transactions:  make(map[string]*domain.Transaction),
		categories:    make(map[string]*domain.Category),
		budgets:       make(map[string]*domain.Budget),
		shares:        make(map[string]*domain.BudgetShare),
		goals:         make(map[string]*domain.Goal),
		notifications: make(map[string]*domain.Notification),
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

// ============================================================
// Users
// ============================================================

func (s *Store) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, &domain.ErrDuplicate{Resource: "user", Key: user.Email}
		}
	}
	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	s.users[u.ID] = &u
	out := u
	return &out, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (s *Store) SearchUsers(_ context.Context, query, excludeUserID string, limit int) ([]domain.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var refs []domain.UserRef
	for _, u := range s.users {
		if u.ID == excludeUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			refs = append(refs, *u.Ref())
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	u.Password = passwordHash
	return nil
}

// ============================================================
// Refresh tokens
// ============================================================

func (s *Store) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[tokenHash] = &domain.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (s *Store) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.refreshTokens[tokenHash]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh token", ID: tokenHash}
	}
	out := *rt
	return &out, nil
}

func (s *Store) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshTokens, tokenHash)
	return nil
}

func (s *Store) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, rt := range s.refreshTokens {
		if rt.UserID == userID {
			delete(s.refreshTokens, hash)
		}
	}
	return nil
}

// ============================================================
// Transactions
// ============================================================

func (s *Store) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := *tx
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	s.transactions[t.ID] = &t
	return s.joinTransaction(&t), nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	return s.joinTransaction(t), nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []domain.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !t.Date.Before(*filter.To) {
			continue
		}
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		txs = append(txs, *s.joinTransaction(t))
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: tx.ID}
	}
	t := *tx
	t.CreatedAt = existing.CreatedAt
	s.transactions[t.ID] = &t
	return s.joinTransaction(&t), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CountTransactionsByCategory(_ context.Context, categoryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *Store) joinTransaction(t *domain.Transaction) *domain.Transaction {
	out := *t
	out.Category = nil
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; ok {
			cat := *c
			out.Category = &cat
		}
	}
	return &out
}

// ============================================================
// Categories
// ============================================================

func (s *Store) CreateCategory(_ context.Context, cat *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.UserID == cat.UserID && c.Name == cat.Name {
			return nil, &domain.ErrDuplicate{Resource: "category", Key: cat.Name}
		}
	}
	c := *cat
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	s.categories[c.ID] = &c
	out := c
	return &out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "category", ID: id}
	}
	out := *c
	return &out, nil
}

func (s *Store) GetCategoryByName(_ context.Context, userID, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.UserID == userID && c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: name}
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cats []domain.Category
	for _, c := range s.categories {
		if c.UserID != userID {
			continue
		}
		out := *c
		for _, t := range s.transactions {
			if t.CategoryID != nil && *t.CategoryID == c.ID {
				out.TransactionCount++
			}
		}
		cats = append(cats, out)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (s *Store) UpdateCategory(_ context.Context, cat *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[cat.ID]
	if !ok || existing.UserID != cat.UserID {
		return nil, &domain.ErrNotFound{Resource: "category", ID: cat.ID}
	}
	for _, c := range s.categories {
		if c.ID != cat.ID && c.UserID == cat.UserID && c.Name == cat.Name {
			return nil, &domain.ErrDuplicate{Resource: "category", Key: cat.Name}
		}
	}
	c := *cat
	c.CreatedAt = existing.CreatedAt
	s.categories[c.ID] = &c
	out := c
	return &out, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return &domain.ErrNotFound{Resource: "category", ID: id}
	}
	delete(s.categories, id)
	for _, t := range s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	return nil
}

// ============================================================
// Budgets & shares
// ============================================================

func (s *Store) CreateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.budgets {
		if b.UserID == budget.UserID && b.CategoryID == budget.CategoryID &&
			b.Month == budget.Month && b.Year == budget.Year {
			return nil, &domain.ErrDuplicate{Resource: "budget", Key: budget.CategoryID}
		}
	}
	b := *budget
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	s.budgets[b.ID] = &b
	return s.joinBudget(&b), nil
}

func (s *Store) GetBudget(_ context.Context, id string) (*domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: id}
	}
	return s.joinBudget(b), nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, *s.joinBudget(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListBudgetsForPeriod(_ context.Context, userID string, month, year int) ([]domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, *s.joinBudget(b))
		}
	}
	return out, nil
}

func (s *Store) ListSharedBudgets(_ context.Context, granteeID string) ([]domain.SharedBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SharedBudget
	for _, sh := range s.shares {
		if sh.UserID != granteeID {
			continue
		}
		b, ok := s.budgets[sh.BudgetID]
		if !ok {
			continue
		}
		out = append(out, domain.SharedBudget{
			Share:  *s.joinShare(sh),
			Budget: *s.joinBudget(b),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Share.CreatedAt.After(out[j].Share.CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.budgets[budget.ID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "budget", ID: budget.ID}
	}
	for _, b := range s.budgets {
		if b.ID != budget.ID && b.UserID == existing.UserID && b.CategoryID == budget.CategoryID &&
			b.Month == budget.Month && b.Year == budget.Year {
			return nil, &domain.ErrDuplicate{Resource: "budget", Key: budget.CategoryID}
		}
	}
	b := *budget
	b.UserID = existing.UserID
	b.CreatedAt = existing.CreatedAt
	s.budgets[b.ID] = &b
	return s.joinBudget(&b), nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.budgets[id]; !ok {
		return &domain.ErrNotFound{Resource: "budget", ID: id}
	}
	delete(s.budgets, id)
	for shareID, sh := range s.shares {
		if sh.BudgetID == id {
			delete(s.shares, shareID)
		}
	}
	return nil
}

func (s *Store) CreateBudgetShare(_ context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sh := range s.shares {
		if sh.BudgetID == share.BudgetID && sh.UserID == share.UserID {
			return nil, &domain.ErrDuplicate{Resource: "budget share", Key: share.UserID}
		}
	}
	sh := *share
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	sh.CreatedAt = time.Now()
	s.shares[sh.ID] = &sh
	return s.joinShare(&sh), nil
}

func (s *Store) GetBudgetShare(_ context.Context, budgetID, shareID string) (*domain.BudgetShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shares[shareID]
	if !ok || sh.BudgetID != budgetID {
		return nil, &domain.ErrNotFound{Resource: "budget share", ID: shareID}
	}
	return s.joinShare(sh), nil
}

func (s *Store) ListBudgetShares(_ context.Context, budgetID string) ([]domain.BudgetShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.BudgetShare
	for _, sh := range s.shares {
		if sh.BudgetID == budgetID {
			out = append(out, *s.joinShare(sh))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateBudgetShare(_ context.Context, share *domain.BudgetShare) (*domain.BudgetShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.shares[share.ID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "budget share", ID: share.ID}
	}
	existing.CanEdit = share.CanEdit
	return s.joinShare(existing), nil
}

func (s *Store) DeleteBudgetShare(_ context.Context, shareID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shares[shareID]; !ok {
		return &domain.ErrNotFound{Resource: "budget share", ID: shareID}
	}
	delete(s.shares, shareID)
	return nil
}

func (s *Store) joinBudget(b *domain.Budget) *domain.Budget {
	out := *b
	if c, ok := s.categories[b.CategoryID]; ok {
		cat := *c
		out.Category = &cat
	}
	if u, ok := s.users[b.UserID]; ok {
		out.Owner = u.Ref()
	}
	out.Shares = nil
	for _, sh := range s.shares {
		if sh.BudgetID == b.ID {
			out.Shares = append(out.Shares, *s.joinShare(sh))
		}
	}
	sort.Slice(out.Shares, func(i, j int) bool {
		return out.Shares[i].CreatedAt.Before(out.Shares[j].CreatedAt)
	})
	return &out
}

func (s *Store) joinShare(sh *domain.BudgetShare) *domain.BudgetShare {
	out := *sh
	if u, ok := s.users[sh.UserID]; ok {
		out.User = u.Ref()
	}
	return &out
}

// ============================================================
// Goals
// ============================================================

func (s *Store) CreateGoal(_ context.Context, goal *domain.Goal) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := *goal
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = time.Now()
	s.goals[g.ID] = &g
	out := g
	return &out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (*domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: id}
	}
	out := *g
	return &out, nil
}

func (s *Store) ListGoals(_ context.Context, userID string, month, year int) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Goal
	for _, g := range s.goals {
		if g.UserID != userID {
			continue
		}
		if month > 0 && year > 0 && (g.Month != month || g.Year != year) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, goal *domain.Goal) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return nil, &domain.ErrNotFound{Resource: "goal", ID: goal.ID}
	}
	g := *goal
	g.CreatedAt = existing.CreatedAt
	s.goals[g.ID] = &g
	out := g
	return &out, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return &domain.ErrNotFound{Resource: "goal", ID: id}
	}
	delete(s.goals, id)
	return nil
}

// ============================================================
// Notifications
// ============================================================

func (s *Store) CreateNotification(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nn := *n
	if nn.ID == "" {
		nn.ID = uuid.NewString()
	}
	nn.CreatedAt = time.Now()
	s.notifications[nn.ID] = &nn
	out := nn
	return &out, nil
}

func (s *Store) GetNotification(_ context.Context, userID, id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	out := *n
	return &out, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, userID, id string, read bool) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	n.Read = read
	out := *n
	return &out, nil
}

func (s *Store) DeleteNotification(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return &domain.ErrNotFound{Resource: "notification", ID: id}
	}
	delete(s.notifications, id)
	return nil
}
