package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/foxfund/foxfund-go/internal/domain"
)

func TestSignedAmount(t *testing.T) {
	got, err := domain.SignedAmount(45.50, domain.TypeExpense)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != -45.50 {
		t.Errorf("expected -45.50, got %v", got)
	}

	got, err = domain.SignedAmount(2800, domain.TypeIncome)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 2800 {
		t.Errorf("expected 2800, got %v", got)
	}

	// Sign supplied by the caller is ignored; the type decides.
	got, _ = domain.SignedAmount(-10, domain.TypeIncome)
	if got != 10 {
		t.Errorf("expected 10, got %v", got)
	}

	got, _ = domain.SignedAmount(0, domain.TypeExpense)
	if got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestSignedAmount_InvalidType(t *testing.T) {
	_, err := domain.SignedAmount(10, "transfer")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSignedAmount_NonNumeric(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := domain.SignedAmount(v, domain.TypeExpense); err == nil {
			t.Errorf("expected error for %v, got nil", v)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{25.5, "GBP", "£25.50"},
		{1000, "GBP", "£1,000.00"},
		{-50.25, "GBP", "-£50.25"},
		{1000, "USD", "US$1,000.00"},
		{-100, "USD", "-US$100.00"},
		{500, "EUR", "€500.00"},
		{0, "GBP", "£0.00"},
		{0, "USD", "US$0.00"},
		{1234567.89, "GBP", "£1,234,567.89"},
	}
	for _, tc := range cases {
		got, err := domain.FormatCurrency(tc.amount, tc.currency)
		if err != nil {
			t.Fatalf("FormatCurrency(%v, %s): unexpected error %v", tc.amount, tc.currency, err)
		}
		if got != tc.want {
			t.Errorf("FormatCurrency(%v, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestFormatCurrency_Unsupported(t *testing.T) {
	_, err := domain.FormatCurrency(10, "JPY")
	var unsupported *domain.ErrUnsupportedCurrency
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

// Formatting then parsing then re-signing recovers the original signed amount,
// including boundary values where rounding is in play.
func TestAmountRoundTrip(t *testing.T) {
	cases := []struct {
		raw    float64
		txType domain.TransactionType
		want   float64
	}{
		{0.01, domain.TypeExpense, -0.01},
		{1000000.00, domain.TypeIncome, 1000000.00},
		{0.005, domain.TypeExpense, -0.01}, // half away from zero
		{84.25, domain.TypeExpense, -84.25},
	}
	for _, tc := range cases {
		formatted, err := domain.FormatCurrency(tc.raw, "GBP")
		if err != nil {
			t.Fatalf("format %v: %v", tc.raw, err)
		}
		parsed, err := domain.ParseAmount(formatted)
		if err != nil {
			t.Fatalf("parse %q: %v", formatted, err)
		}
		signed, err := domain.SignedAmount(parsed, tc.txType)
		if err != nil {
			t.Fatalf("sign %v: %v", parsed, err)
		}
		if signed != tc.want {
			t.Errorf("round trip %v (%s): got %v, want %v", tc.raw, tc.txType, signed, tc.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	if _, err := domain.ParseAmount("not a number"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{28.083333, 28.08},
		{103.333333, 103.33},
		{0.005, 0.01}, // half away from zero, not banker's rounding
		{-0.005, -0.01},
	}
	for _, tc := range cases {
		if got := domain.Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
