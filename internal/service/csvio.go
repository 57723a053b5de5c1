package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var csvTracer = otel.Tracer("service/csv")

// csvExportHeader is the column layout for exports, mirrored by imports.
var csvExportHeader = []string{"Date", "Description", "Merchant", "Category", "Type", "Amount", "Currency"}

// ImportResult summarizes a CSV import. Row numbers in Errors are
// 1-based file line numbers (the header is line 1).
type ImportResult struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
	Message  string   `json:"message"`
}

// CSVService imports and exports transactions as CSV.
type CSVService struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCSVService creates a new CSV service.
func NewCSVService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *CSVService {
	return &CSVService{store: store, metrics: metrics, logger: logger}
}

// Export writes the user's transactions to w, newest first. Amounts are
// exported as magnitudes; the Type column carries the direction.
func (s *CSVService) Export(ctx context.Context, w io.Writer, userID string, filter domain.TransactionFilter) error {
	ctx, span := csvTracer.Start(ctx, "CSVService.Export")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvExportHeader); err != nil {
		return err
	}

	for _, tx := range txns {
		category := "Uncategorized"
		if tx.Category != nil {
			category = tx.Category.Name
		}
		amount := tx.Amount
		if amount < 0 {
			amount = -amount
		}
		record := []string{
			tx.Date.UTC().Format("2006-01-02"),
			tx.Description,
			tx.Merchant,
			category,
			string(tx.Type),
			fmt.Sprintf("%.2f", amount),
			tx.Currency,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Import reads transactions from r. Rows with problems are skipped and
// reported; the rest are imported. Duplicate rows (same date, signed
// amount and description as an existing transaction) are skipped too.
func (s *CSVService) Import(ctx context.Context, r io.Reader, userID string) (*ImportResult, error) {
	ctx, span := csvTracer.Start(ctx, "CSVService.Import")
	defer span.End()

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &domain.ErrValidation{Field: "file", Message: "invalid CSV format"}
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid CSV row", line))
			result.Total++
			continue
		}
		result.Total++

		if err := s.importRow(ctx, userID, cols, record); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", line, err.Error()))
			continue
		}
		result.Imported++
	}

	if result.Total == 0 {
		return nil, &domain.ErrValidation{Field: "file", Message: "CSV file is empty"}
	}

	if len(result.Errors) > 0 {
		result.Message = fmt.Sprintf("Imported %d of %d transactions with %d errors", result.Imported, result.Total, len(result.Errors))
	} else {
		result.Message = fmt.Sprintf("Successfully imported %d transactions", result.Imported)
	}

	s.logger.Info("csv import finished",
		zap.String("user_id", userID),
		zap.Int("imported", result.Imported),
		zap.Int("total", result.Total),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// columnIndexes maps the required and optional CSV columns to positions.
type columnIndexes struct {
	date        int
	amount      int
	txType      int
	description int
	merchant    int
	category    int
}

func mapColumns(header []string) (*columnIndexes, error) {
	cols := &columnIndexes{date: -1, amount: -1, txType: -1, description: -1, merchant: -1, category: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "amount":
			cols.amount = i
		case "type":
			cols.txType = i
		case "description":
			cols.description = i
		case "merchant":
			cols.merchant = i
		case "category":
			cols.category = i
		}
	}
	for name, idx := range map[string]int{"date": cols.date, "amount": cols.amount, "type": cols.txType} {
		if idx < 0 {
			return nil, &domain.ErrValidation{Field: "file", Message: "missing required column: " + name}
		}
	}
	return cols, nil
}

func (s *CSVService) importRow(ctx context.Context, userID string, cols *columnIndexes, record []string) error {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rawDate := field(cols.date)
	rawAmount := field(cols.amount)
	rawType := field(cols.txType)
	if rawDate == "" || rawAmount == "" || rawType == "" {
		return fmt.Errorf("missing required fields")
	}

	date, err := parseDate(rawDate)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}

	amount, err := domain.ParseAmount(rawAmount)
	if err != nil || amount <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}

	txType := domain.TransactionType(strings.ToLower(rawType))
	if !txType.Valid() {
		return fmt.Errorf(`type must be "income" or "expense"`)
	}

	signed, err := domain.SignedAmount(amount, txType)
	if err != nil {
		return err
	}

	var categoryID *string
	if name := field(cols.category); name != "" {
		id, err := s.resolveCategory(ctx, userID, name)
		if err != nil {
			return fmt.Errorf("category lookup failed")
		}
		categoryID = &id
	}

	description := field(cols.description)

	dup, err := s.isDuplicate(ctx, userID, date, signed, description)
	if err != nil {
		return fmt.Errorf("duplicate check failed")
	}
	if dup {
		return fmt.Errorf("duplicate transaction skipped")
	}

	_, err = s.store.CreateTransaction(ctx, &domain.Transaction{
		UserID:      userID,
		Amount:      signed,
		Type:        txType,
		Currency:    domain.DefaultCurrency,
		Date:        date,
		Description: description,
		Merchant:    field(cols.merchant),
		CategoryID:  categoryID,
	})
	if err != nil {
		return fmt.Errorf("create failed")
	}
	return nil
}

// resolveCategory finds a category by name, creating it with the default
// color when missing.
func (s *CSVService) resolveCategory(ctx context.Context, userID, name string) (string, error) {
	existing, err := s.store.GetCategoryByName(ctx, userID, name)
	if err == nil {
		return existing.ID, nil
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		return "", err
	}

	created, err := s.store.CreateCategory(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Color:  domain.DefaultCategoryColor,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *CSVService) isDuplicate(ctx context.Context, userID string, date time.Time, signed float64, description string) (bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	existing, err := s.store.ListTransactions(ctx, userID, domain.TransactionFilter{
		From: &dayStart,
		To:   &dayEnd,
	})
	if err != nil {
		return false, err
	}
	for _, tx := range existing {
		if tx.Amount == signed && tx.Description == description {
			return true, nil
		}
	}
	return false, nil
}
