package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "plain integer", input: "50000", expected: "50000"},
		{name: "decimal", input: "1250.50", expected: "1250.5"},
		{name: "spaces as thousand separators", input: "1 250 000", expected: "1250000"},
		{name: "commas as thousand separators", input: "1,250,000", expected: "1250000"},
		{name: "rounds beyond two decimals", input: "10.005", expected: "10.01"},
		{name: "empty", input: "", err: ErrMalformedAmount},
		{name: "not a number", input: "cinquante", err: ErrMalformedAmount},
		{name: "negative", input: "-500", err: ErrNonPositiveAmount},
		{name: "zero", input: "0", err: ErrNonPositiveAmount},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.input)
			if tc.err != nil {
				if err != tc.err {
					t.Fatalf("expected error %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want, _ := decimal.NewFromString(tc.expected)
			if !got.Equal(want) {
				t.Fatalf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestFormatAriary(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"50000", "50 000 Ar"},
		{"1250000", "1 250 000 Ar"},
		{"999", "999 Ar"},
		{"0", "0 Ar"},
		{"-15000", "-15 000 Ar"},
	}

	for _, tc := range tests {
		amount, _ := decimal.NewFromString(tc.input)
		if got := FormatAriary(amount); got != tc.expected {
			t.Fatalf("FormatAriary(%s): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}
