package services

import (
	"errors"
	"time"

	"sekoly_go/database"
	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentWorkflowService owns the application state machine and the
// confirmation that turns an accepted application into an active roster entry.
type EnrollmentWorkflowService struct {
	db      *gorm.DB
	catalog *FeeCatalogService
	ledger  *PaymentLedgerService
	clock   Clock
}

func NewEnrollmentWorkflowService() *EnrollmentWorkflowService {
	return &EnrollmentWorkflowService{
		db:      database.GetDB(),
		catalog: NewFeeCatalogService(),
		ledger:  NewPaymentLedgerService(),
		clock:   SystemClock,
	}
}

func NewEnrollmentWorkflowServiceWithClock(clock Clock) *EnrollmentWorkflowService {
	s := NewEnrollmentWorkflowService()
	s.clock = clock
	return s
}

// CreateApplicationInput is the validated shape a controller hands to Create.
type CreateApplicationInput struct {
	StudentID        uint
	SchoolYearID     uint
	RequestedClassID uint
	ApplicationType  models.ApplicationType
	Notes            string
}

// Create registers a new PENDING application. A student can hold at most one
// application per school year.
func (ew *EnrollmentWorkflowService) Create(input CreateApplicationInput) (*models.EnrollmentApplication, error) {
	if !input.ApplicationType.Valid() {
		return nil, ErrInvalidStatus
	}

	var class models.Class
	if err := ew.db.First(&class, input.RequestedClassID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := ew.db.Model(&models.EnrollmentApplication{}).
		Where("student_id = ? AND school_year_id = ?", input.StudentID, input.SchoolYearID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEnrollment
	}

	application := models.EnrollmentApplication{
		StudentID:        input.StudentID,
		SchoolYearID:     input.SchoolYearID,
		RequestedClassID: input.RequestedClassID,
		ApplicationType:  input.ApplicationType,
		Status:           models.ApplicationPending,
		SubmittedDate:    ew.clock.Now(),
		Notes:            input.Notes,
	}

	if err := ew.db.Create(&application).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

// Get returns an application with its relations loaded.
func (ew *EnrollmentWorkflowService) Get(id uint) (*models.EnrollmentApplication, error) {
	var application models.EnrollmentApplication
	err := ew.db.
		Preload("Student").
		Preload("SchoolYear").
		Preload("RequestedClass").
		Preload("RequestedClass.Level").
		Preload("AssignedClass").
		First(&application, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &application, nil
}

// Accept moves a pending application to ACCEPTED.
func (ew *EnrollmentWorkflowService) Accept(id uint) (*models.EnrollmentApplication, error) {
	return ew.transition(id, models.ApplicationAccepted)
}

// Reject moves a pending application to REJECTED.
func (ew *EnrollmentWorkflowService) Reject(id uint) (*models.EnrollmentApplication, error) {
	return ew.transition(id, models.ApplicationRejected)
}

// CancelApplication moves a pending or accepted application to CANCELLED.
func (ew *EnrollmentWorkflowService) CancelApplication(id uint) (*models.EnrollmentApplication, error) {
	return ew.transition(id, models.ApplicationCancelled)
}

func (ew *EnrollmentWorkflowService) transition(id uint, target models.ApplicationStatus) (*models.EnrollmentApplication, error) {
	application, err := ew.Get(id)
	if err != nil {
		return nil, err
	}

	if !application.Status.CanTransitionTo(target) {
		return nil, ErrInvalidStatus
	}

	previous := application.Status
	application.Status = target
	if err := ew.db.Model(application).Update("status", target).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": application.ID,
		"from":           previous,
		"to":             target,
	}).Info("Application status changed")

	return application, nil
}

// RegistrationFeeTotal sums the registration-fee obligations of the
// application's requested class and school year.
func (ew *EnrollmentWorkflowService) RegistrationFeeTotal(application *models.EnrollmentApplication) (decimal.Decimal, error) {
	obligations, err := ew.catalog.ObligationsFor(application.RequestedClassID, application.SchoolYearID, true)
	if err != nil {
		return decimal.Zero, err
	}
	return SumObligations(obligations), nil
}

// RegistrationFeePaid sums the student's validated payments against those same
// registration obligations.
func (ew *EnrollmentWorkflowService) RegistrationFeePaid(application *models.EnrollmentApplication) (decimal.Decimal, error) {
	obligations, err := ew.catalog.ObligationsFor(application.RequestedClassID, application.SchoolYearID, true)
	if err != nil {
		return decimal.Zero, err
	}
	payments, err := ew.ledger.ValidatedPaymentsFor(application.StudentID, ObligationIDs(obligations))
	if err != nil {
		return decimal.Zero, err
	}
	return SumValidated(payments), nil
}

// RegistrationBalance is total minus paid. An overpayment yields a negative
// balance and still counts as fully paid.
func (ew *EnrollmentWorkflowService) RegistrationBalance(application *models.EnrollmentApplication) (decimal.Decimal, error) {
	total, err := ew.RegistrationFeeTotal(application)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := ew.RegistrationFeePaid(application)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Sub(paid), nil
}

// IsFullyPaid reports whether the registration balance is settled.
func IsFullyPaid(balance decimal.Decimal) bool {
	return balance.Sign() <= 0
}

// confirmationGate is the pure decision at the heart of Confirm: registration
// fees first, then capacity.
func confirmationGate(balance decimal.Decimal, activeCount, maxStudents int) error {
	if !IsFullyPaid(balance) {
		return ErrPaymentIncomplete
	}
	if activeCount >= maxStudents {
		return ErrCapacityExceeded
	}
	return nil
}

// Confirm finalizes an accepted application: it assigns the requested class,
// stamps the confirmation date and creates the roster entry. The whole
// read-check-write sequence runs in one transaction with the class row locked,
// so two concurrent confirmations cannot both pass the capacity check and
// overfill the class. This is the only path that creates a roster entry for an
// application.
func (ew *EnrollmentWorkflowService) Confirm(id uint) (*models.EnrollmentApplication, error) {
	var confirmed *models.EnrollmentApplication

	err := ew.db.Transaction(func(tx *gorm.DB) error {
		var application models.EnrollmentApplication
		if err := lockForUpdate(tx).First(&application, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if application.Status == models.ApplicationConfirmed {
			// already confirmed: make sure the roster entry exists, then stop
			confirmed = &application
			return getOrCreateEnrollment(tx, application.StudentID, application.RequestedClassID, application.SchoolYearID, ew.clock.Now())
		}
		if !application.Status.CanTransitionTo(models.ApplicationConfirmed) {
			return ErrInvalidStatus
		}

		// Lock the class row so the capacity check and the roster write are
		// serialized across concurrent confirmations.
		var class models.Class
		if err := lockForUpdate(tx).First(&class, application.RequestedClassID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var obligations []models.FeeObligation
		if err := tx.
			Where("class_id = ? AND school_year_id = ? AND is_registration_fee = ?",
				application.RequestedClassID, application.SchoolYearID, true).
			Find(&obligations).Error; err != nil {
			return err
		}

		var payments []models.Payment
		if len(obligations) > 0 {
			if err := tx.
				Where("student_id = ? AND fee_obligation_id IN ? AND status = ?",
					application.StudentID, ObligationIDs(obligations), models.PaymentValidated).
				Find(&payments).Error; err != nil {
				return err
			}
		}

		balance := SumObligations(obligations).Sub(SumValidated(payments))

		var activeCount int64
		if err := tx.Model(&models.Enrollment{}).
			Where("class_id = ? AND school_year_id = ? AND active = ?",
				application.RequestedClassID, application.SchoolYearID, true).
			Count(&activeCount).Error; err != nil {
			return err
		}

		if err := confirmationGate(balance, int(activeCount), class.MaxStudents); err != nil {
			return err
		}

		now := ew.clock.Now()
		application.AssignedClassID = &application.RequestedClassID
		application.Status = models.ApplicationConfirmed
		application.ConfirmedDate = &now
		if err := tx.Save(&application).Error; err != nil {
			return err
		}

		if err := getOrCreateEnrollment(tx, application.StudentID, application.RequestedClassID, application.SchoolYearID, now); err != nil {
			return err
		}

		confirmed = &application
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": confirmed.ID,
		"student_id":     confirmed.StudentID,
		"class_id":       confirmed.RequestedClassID,
	}).Info("Enrollment confirmed")

	return confirmed, nil
}

// lockForUpdate applies a row lock where the dialect supports one. SQLite
// rejects FOR UPDATE and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// getOrCreateEnrollment creates the roster entry if it does not exist yet.
// Idempotent: confirming twice never duplicates the entry.
func getOrCreateEnrollment(tx *gorm.DB, studentID, classID, schoolYearID uint, now time.Time) error {
	var enrollment models.Enrollment
	err := tx.
		Where("student_id = ? AND class_id = ? AND school_year_id = ?", studentID, classID, schoolYearID).
		First(&enrollment).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	enrollment = models.Enrollment{
		StudentID:      studentID,
		ClassID:        classID,
		SchoolYearID:   schoolYearID,
		EnrollmentDate: now,
		Active:         true,
	}
	return tx.Create(&enrollment).Error
}

// Delete removes an application, refusing when payment history exists against
// any obligation of the requested class and school year for that student.
// Deleting it would orphan the payment records.
func (ew *EnrollmentWorkflowService) Delete(id uint) error {
	application, err := ew.Get(id)
	if err != nil {
		return err
	}

	obligations, err := ew.catalog.ObligationsFor(application.RequestedClassID, application.SchoolYearID, false)
	if err != nil {
		return err
	}

	if len(obligations) > 0 {
		// A failed count must not let the delete through
		var payments int64
		if err := ew.db.Model(&models.Payment{}).
			Where("student_id = ? AND fee_obligation_id IN ?", application.StudentID, ObligationIDs(obligations)).
			Count(&payments).Error; err != nil {
			return err
		}
		if payments > 0 {
			return ErrDeletionBlocked
		}
	}

	return ew.db.Delete(application).Error
}

// CountActiveEnrollments exposes the roster headcount of a class for a school
// year, for the class directory screens.
func (ew *EnrollmentWorkflowService) CountActiveEnrollments(classID, schoolYearID uint) (int64, error) {
	var count int64
	err := ew.db.Model(&models.Enrollment{}).
		Where("class_id = ? AND school_year_id = ? AND active = ?", classID, schoolYearID, true).
		Count(&count).Error
	return count, err
}
