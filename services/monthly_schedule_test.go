package services

import (
	"testing"
	"time"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func monthlyObligation(id uint, amount int64) models.FeeObligation {
	return models.FeeObligation{
		BaseModel:  models.BaseModel{ID: id},
		Name:       "Écolage",
		Amount:     decimal.NewFromInt(amount),
		Recurrence: models.RecurrenceMonthly,
	}
}

func validatedPayment(obligationID uint, month int, amount int64) models.Payment {
	m := month
	return models.Payment{
		FeeObligationID: obligationID,
		Amount:          decimal.NewFromInt(amount),
		Month:           &m,
		Status:          models.PaymentValidated,
	}
}

func TestComputeMonthlyScheduleMonthCount(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{"full school year sept to aug", date(2025, 9, 1), date(2026, 8, 31), 12},
		{"single month", date(2025, 9, 1), date(2025, 9, 30), 1},
		{"two months across new year", date(2025, 12, 1), date(2026, 1, 15), 2},
		{"calendar year", date(2025, 1, 1), date(2025, 12, 31), 12},
		{"eighteen months", date(2025, 3, 1), date(2026, 8, 31), 18},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			entries := ComputeMonthlySchedule(tc.start, tc.end, nil, nil, date(2025, 11, 15))
			assert.Len(t, entries, tc.expected)
		})
	}
}

func TestComputeMonthlyScheduleChronologicalWithYearWrap(t *testing.T) {
	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31), nil, nil, date(2025, 11, 15))
	require.Len(t, entries, 12)

	assert.Equal(t, 2025, entries[0].Year)
	assert.Equal(t, 9, entries[0].Month)
	assert.Equal(t, "Septembre", entries[0].Label)

	// December wraps into January of the next year
	assert.Equal(t, 12, entries[3].Month)
	assert.Equal(t, 2025, entries[3].Year)
	assert.Equal(t, 1, entries[4].Month)
	assert.Equal(t, 2026, entries[4].Year)

	assert.Equal(t, 8, entries[11].Month)
	assert.Equal(t, 2026, entries[11].Year)
}

// School year Sept 1 - Aug 31, one monthly obligation of 50000, today Nov 15:
// Sept and Oct are past, Nov is current, Dec through Aug are future. A
// validated advance payment tagged December shows the month as paid with a
// zero balance despite being temporally future.
func TestComputeMonthlyScheduleReferenceScenario(t *testing.T) {
	obligations := []models.FeeObligation{monthlyObligation(1, 50000)}
	payments := []models.Payment{validatedPayment(1, 12, 50000)}
	today := date(2025, 11, 15)

	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31), obligations, payments, today)
	require.Len(t, entries, 12)

	byMonth := make(map[int]models.MonthEntry)
	for _, entry := range entries {
		byMonth[entry.Month] = entry
	}

	assert.Equal(t, models.MonthPast, byMonth[9].TemporalStatus)
	assert.Equal(t, models.MonthPast, byMonth[10].TemporalStatus)
	assert.Equal(t, models.MonthCurrent, byMonth[11].TemporalStatus)
	for _, month := range []int{12, 1, 2, 3, 4, 5, 6, 7, 8} {
		assert.Equal(t, models.MonthFuture, byMonth[month].TemporalStatus, "month %d", month)
	}

	december := byMonth[12]
	assert.True(t, december.IsPaid)
	assert.Equal(t, models.DisplayPaid, december.DisplayStatus)
	assert.True(t, december.Balance.IsZero(), "expected zero balance, got %s", december.Balance)

	september := byMonth[9]
	assert.False(t, september.IsPaid)
	assert.Equal(t, models.DisplayDue, september.DisplayStatus)
	assert.True(t, september.Balance.Equal(decimal.NewFromInt(50000)))

	january := byMonth[1]
	assert.Equal(t, models.DisplayUpcoming, january.DisplayStatus)
}

func TestComputeMonthlyScheduleSumsPaymentsPerMonth(t *testing.T) {
	obligations := []models.FeeObligation{monthlyObligation(1, 50000)}
	payments := []models.Payment{
		validatedPayment(1, 9, 20000),
		validatedPayment(1, 9, 30000),
	}

	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31), obligations, payments, date(2025, 11, 15))
	september := entries[0]

	assert.True(t, september.IsPaid)
	assert.True(t, september.AmountPaid.Equal(decimal.NewFromInt(50000)))
	assert.True(t, september.Balance.IsZero())
}

func TestComputeMonthlyScheduleIgnoresUntaggedAndNonValidated(t *testing.T) {
	obligations := []models.FeeObligation{monthlyObligation(1, 50000)}

	untagged := models.Payment{
		FeeObligationID: 1,
		Amount:          decimal.NewFromInt(50000),
		Status:          models.PaymentValidated,
	}
	cancelled := validatedPayment(1, 9, 50000)
	cancelled.Status = models.PaymentCancelled

	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31),
		obligations, []models.Payment{untagged, cancelled}, date(2025, 11, 15))

	for _, entry := range entries {
		assert.False(t, entry.IsPaid, "month %d should not be paid", entry.Month)
	}
}

func TestComputeMonthlyScheduleDueIsSumOfAllMonthlyObligations(t *testing.T) {
	obligations := []models.FeeObligation{
		monthlyObligation(1, 50000),
		monthlyObligation(2, 15000),
	}

	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31), obligations, nil, date(2025, 11, 15))

	// the same full monthly total applies to every month of the span
	for _, entry := range entries {
		assert.True(t, entry.AmountDue.Equal(decimal.NewFromInt(65000)), "month %d", entry.Month)
	}
}

func TestSummarizeScheduleExcludesFutureMonths(t *testing.T) {
	obligations := []models.FeeObligation{monthlyObligation(1, 50000)}
	payments := []models.Payment{
		validatedPayment(1, 9, 50000),
		// advance payment on a future month stays out of the elapsed totals
		validatedPayment(1, 12, 50000),
	}

	entries := ComputeMonthlySchedule(date(2025, 9, 1), date(2026, 8, 31), obligations, payments, date(2025, 11, 15))
	summary := SummarizeSchedule(entries)

	assert.Equal(t, 3, summary.MonthsElapsed) // Sept, Oct, Nov
	assert.Equal(t, 1, summary.MonthsPaid)    // Sept
	assert.Equal(t, 2, summary.MonthsUnpaid)  // Oct, Nov
	assert.Equal(t, 9, summary.MonthsUpcoming)
	assert.True(t, summary.TotalDue.Equal(decimal.NewFromInt(150000)))
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(50000)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(100000)))
}

func TestClassifyMonth(t *testing.T) {
	today := date(2025, 11, 15)

	tests := []struct {
		name     string
		year     int
		month    int
		expected models.TemporalStatus
	}{
		{"previous month same year", 2025, 10, models.MonthPast},
		{"same month", 2025, 11, models.MonthCurrent},
		{"next month same year", 2025, 12, models.MonthFuture},
		{"earlier month next year", 2026, 1, models.MonthFuture},
		{"later month previous year", 2024, 12, models.MonthPast},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifyMonth(tc.year, tc.month, today))
		})
	}
}
