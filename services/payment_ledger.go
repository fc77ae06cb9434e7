package services

import (
	"errors"
	"time"

	"sekoly_go/database"
	"sekoly_go/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentLedgerService records payments and owns their status lifecycle.
// Nothing here ever touches obligation amounts; balances are always derived
// downstream from VALIDATED payments.
type PaymentLedgerService struct {
	db    *gorm.DB
	clock Clock
}

func NewPaymentLedgerService() *PaymentLedgerService {
	return &PaymentLedgerService{db: database.GetDB(), clock: SystemClock}
}

// NewPaymentLedgerServiceWithClock is used by tests and schedulers that need a
// fixed "now".
func NewPaymentLedgerServiceWithClock(clock Clock) *PaymentLedgerService {
	return &PaymentLedgerService{db: database.GetDB(), clock: clock}
}

// RecordPaymentInput is the validated shape a controller hands to Record.
type RecordPaymentInput struct {
	StudentID       uint
	FeeObligationID uint
	CashRegisterID  uint
	Amount          decimal.Decimal
	Month           *int
	PaymentDate     time.Time
	Status          models.PaymentStatus
	Method          models.PaymentMethod
	Reference       string
	Notes           string
	RecordedByID    *uint
}

// Record inserts a payment. Administrator-entered payments default to
// VALIDATED; there is no separate approval step in the cashier workflow.
// The recorded date is server-assigned and immutable.
func (pl *PaymentLedgerService) Record(input RecordPaymentInput) (*models.Payment, error) {
	if input.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	status := input.Status
	if status == "" {
		status = models.PaymentValidated
	}
	if status != models.PaymentPending && status != models.PaymentValidated {
		return nil, ErrInvalidStatus
	}
	if !input.Method.Valid() {
		return nil, ErrInvalidStatus
	}

	var obligation models.FeeObligation
	if err := pl.db.First(&obligation, input.FeeObligationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var register models.CashRegister
	if err := pl.db.First(&register, input.CashRegisterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := validateMonthTag(input.Month, obligation.Recurrence); err != nil {
		return nil, err
	}

	reference := input.Reference
	if reference == "" {
		reference = "PAY-" + uuid.NewString()[:8]
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = pl.clock.Now()
	}

	payment := models.Payment{
		StudentID:       input.StudentID,
		FeeObligationID: input.FeeObligationID,
		CashRegisterID:  input.CashRegisterID,
		Amount:          input.Amount,
		Month:           input.Month,
		PaymentDate:     paymentDate,
		RecordedDate:    pl.clock.Now(),
		Status:          status,
		Method:          input.Method,
		Reference:       reference,
		Notes:           input.Notes,
		RecordedByID:    input.RecordedByID,
	}

	if err := pl.db.Create(&payment).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"student_id": payment.StudentID,
		"amount":     payment.Amount.String(),
		"status":     payment.Status,
	}).Info("Payment recorded")

	return &payment, nil
}

// Get returns a single payment with its relations loaded.
func (pl *PaymentLedgerService) Get(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := pl.db.
		Preload("Student").
		Preload("FeeObligation").
		Preload("CashRegister").
		Preload("RecordedBy").
		First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// ValidatedPaymentsFor returns the VALIDATED payments a student made against a
// set of obligations. The only payments that ever count toward a balance.
func (pl *PaymentLedgerService) ValidatedPaymentsFor(studentID uint, obligationIDs []uint) ([]models.Payment, error) {
	if len(obligationIDs) == 0 {
		return nil, nil
	}

	var payments []models.Payment
	err := pl.db.
		Where("student_id = ? AND fee_obligation_id IN ?", studentID, obligationIDs).
		Where("status = ?", models.PaymentValidated).
		Order("payment_date").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// PaymentsFor returns all payments a student made against a set of
// obligations, regardless of status.
func (pl *PaymentLedgerService) PaymentsFor(studentID uint, obligationIDs []uint) ([]models.Payment, error) {
	if len(obligationIDs) == 0 {
		return nil, nil
	}

	var payments []models.Payment
	err := pl.db.
		Where("student_id = ? AND fee_obligation_id IN ?", studentID, obligationIDs).
		Order("payment_date").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Validate moves a payment to VALIDATED. Re-validating an already validated
// payment rewrites the status and is harmless; cancelled and refunded payments
// are terminal and are never re-validated in place, a new payment is recorded
// instead.
func (pl *PaymentLedgerService) Validate(id uint) (*models.Payment, error) {
	return pl.transition(id, models.PaymentValidated)
}

// Cancel moves a pending or validated payment to CANCELLED.
func (pl *PaymentLedgerService) Cancel(id uint) (*models.Payment, error) {
	return pl.transition(id, models.PaymentCancelled)
}

// Refund moves a validated payment to REFUNDED.
func (pl *PaymentLedgerService) Refund(id uint) (*models.Payment, error) {
	return pl.transition(id, models.PaymentRefunded)
}

func (pl *PaymentLedgerService) transition(id uint, target models.PaymentStatus) (*models.Payment, error) {
	var payment models.Payment
	if err := pl.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !payment.Status.CanTransitionTo(target) {
		return nil, ErrInvalidStatus
	}

	previous := payment.Status
	payment.Status = target
	if err := pl.db.Model(&payment).Update("status", target).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"from":       previous,
		"to":         target,
	}).Info("Payment status changed")

	return &payment, nil
}

// validateMonthTag checks that a month tag, when present, is in 1..12 and
// attached to a monthly obligation. A month tag is meaningful nowhere else.
func validateMonthTag(month *int, recurrence models.Recurrence) error {
	if month == nil {
		return nil
	}
	if *month < 1 || *month > 12 {
		return ErrInvalidMonth
	}
	if recurrence != models.RecurrenceMonthly {
		return ErrInvalidMonth
	}
	return nil
}

// SumValidated totals the amounts of the VALIDATED payments in a list. Pure
// helper shared by the workflow and the schedule.
func SumValidated(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		if payment.Status == models.PaymentValidated {
			total = total.Add(payment.Amount)
		}
	}
	return total
}
