package models

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"pending to validated", PaymentPending, PaymentValidated, true},
		{"pending to cancelled", PaymentPending, PaymentCancelled, true},
		{"pending to refunded", PaymentPending, PaymentRefunded, false},
		{"validated to cancelled", PaymentValidated, PaymentCancelled, true},
		{"validated to refunded", PaymentValidated, PaymentRefunded, true},
		{"revalidate validated", PaymentValidated, PaymentValidated, true},
		{"cancelled stays cancelled", PaymentCancelled, PaymentValidated, false},
		{"refunded stays refunded", PaymentRefunded, PaymentValidated, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
				t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
			}
		})
	}
}

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{"pending to accepted", ApplicationPending, ApplicationAccepted, true},
		{"pending to rejected", ApplicationPending, ApplicationRejected, true},
		{"pending to cancelled", ApplicationPending, ApplicationCancelled, true},
		{"pending straight to confirmed", ApplicationPending, ApplicationConfirmed, false},
		{"accepted to confirmed", ApplicationAccepted, ApplicationConfirmed, true},
		{"accepted to cancelled", ApplicationAccepted, ApplicationCancelled, true},
		{"accepted back to pending", ApplicationAccepted, ApplicationPending, false},
		{"confirmed is terminal", ApplicationConfirmed, ApplicationCancelled, false},
		{"rejected is terminal", ApplicationRejected, ApplicationAccepted, false},
		{"cancelled is terminal", ApplicationCancelled, ApplicationPending, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
				t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
			}
		})
	}
}

func TestDisplayStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		isPaid   bool
		temporal TemporalStatus
		expected DisplayStatus
	}{
		{"unpaid past month is due", false, MonthPast, DisplayDue},
		{"unpaid current month is due", false, MonthCurrent, DisplayDue},
		{"unpaid future month is upcoming", false, MonthFuture, DisplayUpcoming},
		{"paid past month", true, MonthPast, DisplayPaid},
		// advance payment: paid wins over upcoming
		{"paid future month", true, MonthFuture, DisplayPaid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayStatusFor(tc.isPaid, tc.temporal); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(9); got != "Septembre" {
		t.Fatalf("expected Septembre, got %s", got)
	}
	if got := MonthLabel(0); got != "" {
		t.Fatalf("expected empty label for 0, got %s", got)
	}
	if got := MonthLabel(13); got != "" {
		t.Fatalf("expected empty label for 13, got %s", got)
	}
}
