package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedAmount is returned for input that does not parse as a number.
	ErrMalformedAmount = errors.New("malformed monetary amount")
	// ErrNonPositiveAmount is returned for zero or negative input.
	ErrNonPositiveAmount = errors.New("amount must be strictly positive")
)

// ParseAmount parses a monetary amount from user input. Amounts are stored in
// Ariary with two decimal places; anything non-numeric or not strictly positive
// is rejected here instead of being coerced downstream.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	// tolerate thousand separators pasted from spreadsheets
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return amount.Round(2), nil
}

// FormatAriary renders an amount with thousand separators for display,
// e.g. "50 000 Ar".
func FormatAriary(amount decimal.Decimal) string {
	whole := amount.Truncate(0).String()
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(whole[i : i+3])
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " Ar"
}
