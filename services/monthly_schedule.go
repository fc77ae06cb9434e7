package services

import (
	"errors"
	"time"

	"sekoly_go/database"
	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyScheduleService derives the month-by-month tuition ledger of an
// enrollment application. The computation is a pure function of the school
// year span, the monthly obligations, the validated payments and "today";
// nothing is persisted and it is re-run on every read.
type MonthlyScheduleService struct {
	db      *gorm.DB
	catalog *FeeCatalogService
	ledger  *PaymentLedgerService
	clock   Clock
}

func NewMonthlyScheduleService() *MonthlyScheduleService {
	return &MonthlyScheduleService{
		db:      database.GetDB(),
		catalog: NewFeeCatalogService(),
		ledger:  NewPaymentLedgerService(),
		clock:   SystemClock,
	}
}

func NewMonthlyScheduleServiceWithClock(clock Clock) *MonthlyScheduleService {
	s := NewMonthlyScheduleService()
	s.clock = clock
	return s
}

// ScheduleForApplication resolves the application's school year span, its
// class's monthly obligations and the student's validated payments, then
// computes the schedule.
func (ms *MonthlyScheduleService) ScheduleForApplication(applicationID uint) ([]models.MonthEntry, error) {
	var application models.EnrollmentApplication
	if err := ms.db.Preload("SchoolYear").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	obligations, err := ms.catalog.MonthlyObligationsFor(application.RequestedClassID, application.SchoolYearID)
	if err != nil {
		return nil, err
	}

	payments, err := ms.ledger.ValidatedPaymentsFor(application.StudentID, ObligationIDs(obligations))
	if err != nil {
		return nil, err
	}

	year := application.SchoolYear
	return ComputeMonthlySchedule(year.StartDate, year.EndDate, obligations, payments, ms.clock.Now()), nil
}

// ComputeMonthlySchedule enumerates every calendar month of [start, end]
// inclusive and merges the validated payments into a due/paid/balance record
// per month.
//
// Payments are keyed by their month tag; several payments tagged with the same
// month are summed, and a payment without a month tag is ignored here (it
// belongs to a non-monthly obligation). A month with any tagged payment counts
// as paid whatever its temporal status: an advance payment on a future month
// displays as paid, not upcoming.
func ComputeMonthlySchedule(start, end time.Time, obligations []models.FeeObligation, payments []models.Payment, today time.Time) []models.MonthEntry {
	monthsPaid := make(map[int]decimal.Decimal)
	for _, payment := range payments {
		if payment.Status != models.PaymentValidated || payment.Month == nil {
			continue
		}
		month := *payment.Month
		monthsPaid[month] = monthsPaid[month].Add(payment.Amount)
	}

	// The same full monthly total applies to every month of the span;
	// obligations are not priced per individual month.
	monthlyDue := SumObligations(obligations)

	var entries []models.MonthEntry
	year, month := start.Year(), int(start.Month())
	endYear, endMonth := end.Year(), int(end.Month())

	for year < endYear || (year == endYear && month <= endMonth) {
		temporal := classifyMonth(year, month, today)

		amountPaid, isPaid := monthsPaid[month]
		if !isPaid {
			amountPaid = decimal.Zero
		}

		entries = append(entries, models.MonthEntry{
			Year:           year,
			Month:          month,
			Label:          models.MonthLabel(month),
			TemporalStatus: temporal,
			IsPaid:         isPaid,
			AmountDue:      monthlyDue,
			AmountPaid:     amountPaid,
			Balance:        monthlyDue.Sub(amountPaid),
			DisplayStatus:  models.DisplayStatusFor(isPaid, temporal),
		})

		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	return entries
}

// classifyMonth compares (year, month) against today's (year, month).
func classifyMonth(year, month int, today time.Time) models.TemporalStatus {
	todayYear, todayMonth := today.Year(), int(today.Month())
	switch {
	case year > todayYear || (year == todayYear && month > todayMonth):
		return models.MonthFuture
	case year == todayYear && month == todayMonth:
		return models.MonthCurrent
	default:
		return models.MonthPast
	}
}

// ScheduleSummary aggregates a schedule for reporting. Only PAST and CURRENT
// months enter the totals and the unpaid count; months still to come are
// deliberately not counted as arrears even though they are computed.
type ScheduleSummary struct {
	MonthsElapsed  int             `json:"months_elapsed"`
	MonthsUnpaid   int             `json:"months_unpaid"`
	MonthsPaid     int             `json:"months_paid"`
	MonthsUpcoming int             `json:"months_upcoming"`
	TotalDue       decimal.Decimal `json:"total_due"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Balance        decimal.Decimal `json:"balance"`
}

// SummarizeSchedule reduces a list of month entries to the delinquency totals
// shown on the application detail screen.
func SummarizeSchedule(entries []models.MonthEntry) ScheduleSummary {
	summary := ScheduleSummary{
		TotalDue:  decimal.Zero,
		TotalPaid: decimal.Zero,
		Balance:   decimal.Zero,
	}

	for _, entry := range entries {
		if entry.TemporalStatus == models.MonthFuture {
			summary.MonthsUpcoming++
			continue
		}
		summary.MonthsElapsed++
		summary.TotalDue = summary.TotalDue.Add(entry.AmountDue)
		summary.TotalPaid = summary.TotalPaid.Add(entry.AmountPaid)
		summary.Balance = summary.Balance.Add(entry.Balance)
		if entry.IsPaid {
			summary.MonthsPaid++
		} else {
			summary.MonthsUnpaid++
		}
	}

	return summary
}
