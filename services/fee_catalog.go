package services

import (
	"errors"

	"sekoly_go/database"
	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeCatalogService owns the fee obligations of each (class, school year).
// Reads are pure filters; writes are administrator catalog edits.
type FeeCatalogService struct {
	db *gorm.DB
}

func NewFeeCatalogService() *FeeCatalogService {
	return &FeeCatalogService{db: database.GetDB()}
}

// ObligationsFor returns the fee obligations of a class for a school year.
// With registrationOnly, only registration fees are returned; otherwise all
// obligations, registration fees included.
func (fc *FeeCatalogService) ObligationsFor(classID, schoolYearID uint, registrationOnly bool) ([]models.FeeObligation, error) {
	query := fc.db.Where("class_id = ? AND school_year_id = ?", classID, schoolYearID)
	if registrationOnly {
		query = query.Where("is_registration_fee = ?", true)
	}

	var obligations []models.FeeObligation
	if err := query.Order("name").Find(&obligations).Error; err != nil {
		return nil, err
	}
	return obligations, nil
}

// MonthlyObligationsFor returns the recurring monthly obligations of a class
// for a school year, excluding registration fees. This is the set the monthly
// schedule is computed from.
func (fc *FeeCatalogService) MonthlyObligationsFor(classID, schoolYearID uint) ([]models.FeeObligation, error) {
	var obligations []models.FeeObligation
	err := fc.db.
		Where("class_id = ? AND school_year_id = ?", classID, schoolYearID).
		Where("recurrence = ? AND is_registration_fee = ?", models.RecurrenceMonthly, false).
		Order("name").
		Find(&obligations).Error
	if err != nil {
		return nil, err
	}
	return obligations, nil
}

// Get returns a single obligation by id.
func (fc *FeeCatalogService) Get(id uint) (*models.FeeObligation, error) {
	var obligation models.FeeObligation
	if err := fc.db.Preload("Class").Preload("SchoolYear").First(&obligation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &obligation, nil
}

// Create inserts a new obligation. Duplicate names within the same class and
// school year are refused.
func (fc *FeeCatalogService) Create(obligation *models.FeeObligation) error {
	if obligation.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !obligation.Recurrence.Valid() {
		return ErrInvalidStatus
	}

	var count int64
	if err := fc.db.Model(&models.FeeObligation{}).
		Where("name = ? AND class_id = ? AND school_year_id = ?",
			obligation.Name, obligation.ClassID, obligation.SchoolYearID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateObligation
	}

	return fc.db.Create(obligation).Error
}

// Update rewrites the mutable fields of an obligation.
func (fc *FeeCatalogService) Update(id uint, updates *models.FeeObligation) (*models.FeeObligation, error) {
	obligation, err := fc.Get(id)
	if err != nil {
		return nil, err
	}

	if updates.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if !updates.Recurrence.Valid() {
		return nil, ErrInvalidStatus
	}

	obligation.Name = updates.Name
	obligation.Amount = updates.Amount
	obligation.IsRegistrationFee = updates.IsRegistrationFee
	obligation.Recurrence = updates.Recurrence

	if err := fc.db.Save(obligation).Error; err != nil {
		return nil, err
	}
	return obligation, nil
}

// Delete removes an obligation. Obligations with recorded payments are kept to
// preserve the payment history.
func (fc *FeeCatalogService) Delete(id uint) error {
	obligation, err := fc.Get(id)
	if err != nil {
		return err
	}

	// A failed count must not let the delete through
	var payments int64
	if err := fc.db.Model(&models.Payment{}).Where("fee_obligation_id = ?", id).Count(&payments).Error; err != nil {
		return err
	}
	if payments > 0 {
		return ErrDeletionBlocked
	}

	return fc.db.Delete(obligation).Error
}

// SumObligations totals the amounts of a set of obligations.
func SumObligations(obligations []models.FeeObligation) decimal.Decimal {
	total := decimal.Zero
	for _, obligation := range obligations {
		total = total.Add(obligation.Amount)
	}
	return total
}

// ObligationIDs extracts the ids of a set of obligations.
func ObligationIDs(obligations []models.FeeObligation) []uint {
	ids := make([]uint, 0, len(obligations))
	for _, obligation := range obligations {
		ids = append(ids, obligation.ID)
	}
	return ids
}
