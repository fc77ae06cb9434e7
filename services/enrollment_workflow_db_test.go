package services

import (
	"fmt"
	"testing"
	"time"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var workflowNow = time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one shared in-memory database per test, named after the test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SchoolYear{},
		&models.ClassLevel{},
		&models.Class{},
		&models.Enrollment{},
		&models.FeeObligation{},
		&models.CashRegister{},
		&models.Payment{},
		&models.EnrollmentApplication{},
	))
	return db
}

func newTestWorkflow(db *gorm.DB) *EnrollmentWorkflowService {
	clock := FixedClock(workflowNow)
	return &EnrollmentWorkflowService{
		db:      db,
		catalog: &FeeCatalogService{db: db},
		ledger:  &PaymentLedgerService{db: db, clock: clock},
		clock:   clock,
	}
}

type workflowFixture struct {
	student     models.User
	year        models.SchoolYear
	class       models.Class
	register    models.CashRegister
	obligation  models.FeeObligation
	application models.EnrollmentApplication
}

// seedWorkflowFixture creates a student with an ACCEPTED application for a
// class carrying a 100 000 Ar registration fee.
func seedWorkflowFixture(t *testing.T, db *gorm.DB, maxStudents int) *workflowFixture {
	t.Helper()

	f := &workflowFixture{}

	f.student = models.User{Username: "rakoto01", Password: "x", Role: "student", Status: "active"}
	require.NoError(t, db.Create(&f.student).Error)

	f.year = models.SchoolYear{
		Name:      "2025-2026",
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		Current:   true,
	}
	require.NoError(t, db.Create(&f.year).Error)

	level := models.ClassLevel{Name: "6ème"}
	require.NoError(t, db.Create(&level).Error)

	f.class = models.Class{Name: "6ème A", LevelID: level.ID, SchoolYearID: f.year.ID, MaxStudents: maxStudents}
	require.NoError(t, db.Create(&f.class).Error)

	f.register = models.CashRegister{Name: "Caisse principale", Code: "CAISSE-1", Active: true}
	require.NoError(t, db.Create(&f.register).Error)

	f.obligation = models.FeeObligation{
		Name:              "Droit d'inscription",
		ClassID:           f.class.ID,
		SchoolYearID:      f.year.ID,
		Amount:            decimal.NewFromInt(100000),
		IsRegistrationFee: true,
		Recurrence:        models.RecurrenceOneTime,
	}
	require.NoError(t, db.Create(&f.obligation).Error)

	f.application = models.EnrollmentApplication{
		StudentID:        f.student.ID,
		SchoolYearID:     f.year.ID,
		RequestedClassID: f.class.ID,
		ApplicationType:  models.ApplicationPromoted,
		Status:           models.ApplicationAccepted,
		SubmittedDate:    workflowNow,
	}
	require.NoError(t, db.Create(&f.application).Error)

	return f
}

func payRegistration(t *testing.T, db *gorm.DB, f *workflowFixture, amount int64) {
	t.Helper()

	payment := models.Payment{
		StudentID:       f.student.ID,
		FeeObligationID: f.obligation.ID,
		CashRegisterID:  f.register.ID,
		Amount:          decimal.NewFromInt(amount),
		PaymentDate:     workflowNow,
		RecordedDate:    workflowNow,
		Status:          models.PaymentValidated,
		Method:          models.MethodCash,
		Reference:       "PAY-test",
	}
	require.NoError(t, db.Create(&payment).Error)
}

func rosterCount(t *testing.T, db *gorm.DB, f *workflowFixture) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("student_id = ? AND class_id = ? AND school_year_id = ?",
			f.student.ID, f.class.ID, f.year.ID).
		Count(&count).Error)
	return count
}

func TestConfirmTwiceCreatesOneRosterEntry(t *testing.T) {
	db := openTestDB(t)
	f := seedWorkflowFixture(t, db, 30)
	workflow := newTestWorkflow(db)

	payRegistration(t, db, f, 100000)

	confirmed, err := workflow.Confirm(f.application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.AssignedClassID)
	assert.Equal(t, f.class.ID, *confirmed.AssignedClassID)
	require.NotNil(t, confirmed.ConfirmedDate)
	assert.Equal(t, int64(1), rosterCount(t, db, f))

	// confirming again is a no-op, not a duplicate roster entry
	again, err := workflow.Confirm(f.application.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationConfirmed, again.Status)
	assert.Equal(t, int64(1), rosterCount(t, db, f))
}

func TestConfirmFailureLeavesApplicationUntouched(t *testing.T) {
	t.Run("payment incomplete", func(t *testing.T) {
		db := openTestDB(t)
		f := seedWorkflowFixture(t, db, 30)
		workflow := newTestWorkflow(db)

		payRegistration(t, db, f, 40000) // partial

		_, err := workflow.Confirm(f.application.ID)
		assert.ErrorIs(t, err, ErrPaymentIncomplete)

		var reloaded models.EnrollmentApplication
		require.NoError(t, db.First(&reloaded, f.application.ID).Error)
		assert.Equal(t, models.ApplicationAccepted, reloaded.Status)
		assert.Nil(t, reloaded.AssignedClassID)
		assert.Nil(t, reloaded.ConfirmedDate)
		assert.Equal(t, int64(0), rosterCount(t, db, f))
	})

	t.Run("class at capacity", func(t *testing.T) {
		db := openTestDB(t)
		f := seedWorkflowFixture(t, db, 1)
		workflow := newTestWorkflow(db)

		payRegistration(t, db, f, 100000)

		other := models.User{Username: "rasoa02", Password: "x", Role: "student", Status: "active"}
		require.NoError(t, db.Create(&other).Error)
		require.NoError(t, db.Create(&models.Enrollment{
			StudentID:      other.ID,
			ClassID:        f.class.ID,
			SchoolYearID:   f.year.ID,
			EnrollmentDate: workflowNow,
			Active:         true,
		}).Error)

		_, err := workflow.Confirm(f.application.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		var reloaded models.EnrollmentApplication
		require.NoError(t, db.First(&reloaded, f.application.ID).Error)
		assert.Equal(t, models.ApplicationAccepted, reloaded.Status)
		assert.Nil(t, reloaded.AssignedClassID)
		assert.Equal(t, int64(0), rosterCount(t, db, f))
	})
}

func TestDeleteRefusedWithPaymentHistory(t *testing.T) {
	db := openTestDB(t)
	f := seedWorkflowFixture(t, db, 30)
	workflow := newTestWorkflow(db)

	payRegistration(t, db, f, 50000)

	err := workflow.Delete(f.application.ID)
	assert.ErrorIs(t, err, ErrDeletionBlocked)

	// the application survives a blocked delete
	var count int64
	require.NoError(t, db.Model(&models.EnrollmentApplication{}).
		Where("id = ?", f.application.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteWithoutPaymentsSucceeds(t *testing.T) {
	db := openTestDB(t)
	f := seedWorkflowFixture(t, db, 30)
	workflow := newTestWorkflow(db)

	require.NoError(t, workflow.Delete(f.application.ID))

	_, err := workflow.Get(f.application.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
