package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var txTracer = otel.Tracer("service/transactions")

// TransactionInput carries the client-supplied fields for create and update.
// Amount arrives as a magnitude; the sign is derived from Type.
type TransactionInput struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
	CategoryID  *string `json:"categoryId"`
}

// TransactionService handles transaction CRUD with amount normalization.
type TransactionService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{store: store, metrics: metrics, logger: logger}
}

func (s *TransactionService) Create(ctx context.Context, userID string, in *TransactionInput) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	tx, err := s.buildTransaction(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("transaction created",
		zap.String("user_id", userID),
		zap.String("transaction_id", created.ID),
		zap.String("type", string(created.Type)),
	)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Get")
	defer span.End()

	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.store.ListTransactions(ctx, userID, filter)
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, in *TransactionInput) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Update")
	defer span.End()

	// Fetch first so the user scope is enforced before any write.
	if _, err := s.store.GetTransaction(ctx, userID, id); err != nil {
		return nil, err
	}

	tx, err := s.buildTransaction(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	ctx, span := txTracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	return s.store.DeleteTransaction(ctx, userID, id)
}

// buildTransaction validates the input and normalizes the signed amount.
func (s *TransactionService) buildTransaction(ctx context.Context, userID string, in *TransactionInput) (*domain.Transaction, error) {
	txType := domain.TransactionType(strings.ToLower(strings.TrimSpace(in.Type)))

	amount, err := domain.SignedAmount(in.Amount, txType)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if !domain.SupportedCurrency(currency) {
		return nil, &domain.ErrUnsupportedCurrency{Code: currency}
	}

	date := time.Now().UTC()
	if in.Date != "" {
		parsed, err := parseDate(in.Date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "date", Message: "date must be RFC 3339 or YYYY-MM-DD"}
		}
		date = parsed
	}

	// A referenced category must exist and belong to the user.
	if in.CategoryID != nil && *in.CategoryID != "" {
		if _, err := s.store.GetCategory(ctx, userID, *in.CategoryID); err != nil {
			return nil, err
		}
	} else {
		in.CategoryID = nil
	}

	return &domain.Transaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Currency:    currency,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Merchant:    strings.TrimSpace(in.Merchant),
		CategoryID:  in.CategoryID,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
