package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Amount normalization & currency formatting
// ============================================================

// currencySymbols holds the supported display currencies and their en-GB
// symbols, matching the reference formatter output (Intl, en-GB locale).
var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "US$",
	"EUR": "€",
}

// DefaultCurrency is assigned to transactions created without one.
const DefaultCurrency = "GBP"

// SupportedCurrency reports whether code can be formatted.
func SupportedCurrency(code string) bool {
	_, ok := currencySymbols[code]
	return ok
}

// SignedAmount canonicalizes a raw amount for storage: expenses are stored
// negative, income positive, regardless of the sign the caller supplied.
func SignedAmount(raw float64, txType TransactionType) (float64, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, &ErrValidation{Field: "amount", Message: "must be a finite number"}
	}
	switch txType {
	case TypeExpense:
		return -math.Abs(raw), nil
	case TypeIncome:
		return math.Abs(raw), nil
	default:
		return 0, &ErrValidation{Field: "type", Message: fmt.Sprintf("must be %q or %q", TypeIncome, TypeExpense)}
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatCurrency renders an amount as a locale-correct currency string with
// thousands separators and exactly 2 fraction digits, preserving sign
// (e.g. "-£50.25", "US$1,000.00"). Unknown codes are rejected.
func FormatCurrency(amount float64, currency string) (string, error) {
	symbol, ok := currencySymbols[currency]
	if !ok {
		return "", &ErrUnsupportedCurrency{Code: currency}
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", &ErrValidation{Field: "amount", Message: "must be a finite number"}
	}

	abs := math.Abs(Round2(amount))
	whole := int64(abs)
	frac := int64(math.Round((abs - float64(whole)) * 100))
	if frac >= 100 { // float drift at the rounding boundary
		whole++
		frac -= 100
	}

	s := symbol + groupThousands(whole) + "." + fmt.Sprintf("%02d", frac)
	if amount < 0 {
		s = "-" + s
	}
	return s, nil
}

// ParseAmount is the inverse of FormatCurrency: it strips any currency
// symbol and separators and returns the signed numeric value.
func ParseAmount(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, &ErrValidation{Field: "amount", Message: fmt.Sprintf("not a numeric amount: %q", s)}
	}
	return v, nil
}

// groupThousands formats a non-negative integer with comma separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
