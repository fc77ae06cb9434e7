package services

import (
	"testing"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsFullyPaid(t *testing.T) {
	assert.True(t, IsFullyPaid(decimal.Zero))
	assert.True(t, IsFullyPaid(decimal.NewFromInt(-5000)), "overpayment still counts as fully paid")
	assert.False(t, IsFullyPaid(decimal.NewFromInt(1)))
}

func TestConfirmationGate(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		activeCount int
		maxStudents int
		expected    error
	}{
		{"fully paid with room", decimal.Zero, 10, 30, nil},
		{"overpaid with room", decimal.NewFromInt(-10000), 10, 30, nil},
		{"outstanding balance", decimal.NewFromInt(20000), 0, 30, ErrPaymentIncomplete},
		// payment check runs first, even when the class is also full
		{"unpaid and full", decimal.NewFromInt(20000), 30, 30, ErrPaymentIncomplete},
		{"class at capacity", decimal.Zero, 2, 2, ErrCapacityExceeded},
		{"class beyond capacity", decimal.Zero, 31, 30, ErrCapacityExceeded},
		{"last seat", decimal.Zero, 29, 30, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := confirmationGate(tc.balance, tc.activeCount, tc.maxStudents)
			assert.Equal(t, tc.expected, err)
		})
	}
}

func TestRegistrationBalanceArithmetic(t *testing.T) {
	// total 20000, two validated payments of 10000 each => fully paid
	obligations := []models.FeeObligation{
		{BaseModel: models.BaseModel{ID: 1}, Amount: decimal.NewFromInt(12000), IsRegistrationFee: true, Recurrence: models.RecurrenceOneTime},
		{BaseModel: models.BaseModel{ID: 2}, Amount: decimal.NewFromInt(8000), IsRegistrationFee: true, Recurrence: models.RecurrenceOneTime},
	}
	payments := []models.Payment{
		{FeeObligationID: 1, Amount: decimal.NewFromInt(10000), Status: models.PaymentValidated},
		{FeeObligationID: 2, Amount: decimal.NewFromInt(10000), Status: models.PaymentValidated},
	}

	total := SumObligations(obligations)
	paid := SumValidated(payments)
	balance := total.Sub(paid)

	assert.True(t, total.Equal(decimal.NewFromInt(20000)))
	assert.True(t, paid.Equal(decimal.NewFromInt(20000)))
	assert.True(t, balance.IsZero())
	assert.True(t, IsFullyPaid(balance))
}

func TestSumValidatedSkipsOtherStatuses(t *testing.T) {
	payments := []models.Payment{
		{Amount: decimal.NewFromInt(10000), Status: models.PaymentValidated},
		{Amount: decimal.NewFromInt(10000), Status: models.PaymentPending},
		{Amount: decimal.NewFromInt(10000), Status: models.PaymentCancelled},
		{Amount: decimal.NewFromInt(10000), Status: models.PaymentRefunded},
	}

	assert.True(t, SumValidated(payments).Equal(decimal.NewFromInt(10000)))
}

func TestSumObligations(t *testing.T) {
	assert.True(t, SumObligations(nil).IsZero())

	obligations := []models.FeeObligation{
		{Amount: decimal.NewFromInt(50000)},
		{Amount: decimal.RequireFromString("2500.50")},
	}
	assert.True(t, SumObligations(obligations).Equal(decimal.RequireFromString("52500.50")))
}

func TestObligationIDs(t *testing.T) {
	obligations := []models.FeeObligation{
		{BaseModel: models.BaseModel{ID: 3}},
		{BaseModel: models.BaseModel{ID: 7}},
	}
	assert.Equal(t, []uint{3, 7}, ObligationIDs(obligations))
	assert.Empty(t, ObligationIDs(nil))
}
