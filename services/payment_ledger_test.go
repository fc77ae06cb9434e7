package services

import (
	"testing"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func monthPtr(m int) *int { return &m }

func TestRecordRejectsBadInputBeforeTouchingStorage(t *testing.T) {
	ledger := &PaymentLedgerService{clock: SystemClock}

	tests := []struct {
		name     string
		input    RecordPaymentInput
		expected error
	}{
		{
			"zero amount",
			RecordPaymentInput{Amount: decimal.Zero, Method: models.MethodCash},
			ErrInvalidAmount,
		},
		{
			"negative amount",
			RecordPaymentInput{Amount: decimal.NewFromInt(-100), Method: models.MethodCash},
			ErrInvalidAmount,
		},
		{
			"cancelled is not an entry status",
			RecordPaymentInput{Amount: decimal.NewFromInt(100), Status: models.PaymentCancelled, Method: models.MethodCash},
			ErrInvalidStatus,
		},
		{
			"refunded is not an entry status",
			RecordPaymentInput{Amount: decimal.NewFromInt(100), Status: models.PaymentRefunded, Method: models.MethodCash},
			ErrInvalidStatus,
		},
		{
			"unknown method",
			RecordPaymentInput{Amount: decimal.NewFromInt(100), Method: models.PaymentMethod("BARTER")},
			ErrInvalidStatus,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Record(tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestValidateMonthTag(t *testing.T) {
	tests := []struct {
		name       string
		month      *int
		recurrence models.Recurrence
		expected   error
	}{
		{"no tag on one-time fee", nil, models.RecurrenceOneTime, nil},
		{"no tag on monthly fee", nil, models.RecurrenceMonthly, nil},
		{"valid tag on monthly fee", monthPtr(9), models.RecurrenceMonthly, nil},
		{"december tag", monthPtr(12), models.RecurrenceMonthly, nil},
		{"january tag", monthPtr(1), models.RecurrenceMonthly, nil},
		{"tag below range", monthPtr(0), models.RecurrenceMonthly, ErrInvalidMonth},
		{"tag above range", monthPtr(13), models.RecurrenceMonthly, ErrInvalidMonth},
		{"tag on one-time fee", monthPtr(9), models.RecurrenceOneTime, ErrInvalidMonth},
		{"tag on yearly fee", monthPtr(9), models.RecurrenceYearly, ErrInvalidMonth},
		{"tag on termly fee", monthPtr(9), models.RecurrenceTermly, ErrInvalidMonth},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, validateMonthTag(tc.month, tc.recurrence))
		})
	}
}
