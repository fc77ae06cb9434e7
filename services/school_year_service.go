package services

import (
	"errors"

	"sekoly_go/database"
	"sekoly_go/models"

	"gorm.io/gorm"
)

// SchoolYearService manages school years. The "current" flag is a UI default
// only; every finance operation takes the school year id explicitly. The flag
// is kept unique by clearing all other rows in the same transaction.
type SchoolYearService struct {
	db *gorm.DB
}

func NewSchoolYearService() *SchoolYearService {
	return &SchoolYearService{db: database.GetDB()}
}

// Get returns a school year by id.
func (sy *SchoolYearService) Get(id uint) (*models.SchoolYear, error) {
	var year models.SchoolYear
	if err := sy.db.First(&year, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &year, nil
}

// Current returns the school year currently flagged as active, if any.
func (sy *SchoolYearService) Current() (*models.SchoolYear, error) {
	var year models.SchoolYear
	if err := sy.db.Where("current = ?", true).First(&year).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &year, nil
}

// SetCurrent flags one school year as current and clears the flag on every
// other row, atomically.
func (sy *SchoolYearService) SetCurrent(id uint) (*models.SchoolYear, error) {
	var year models.SchoolYear

	err := sy.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&year, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.SchoolYear{}).
			Where("current = ? AND id <> ?", true, id).
			Update("current", false).Error; err != nil {
			return err
		}

		return tx.Model(&year).Update("current", true).Error
	})
	if err != nil {
		return nil, err
	}

	year.Current = true
	return &year, nil
}

// Create inserts a new school year. The span must be a valid, non-empty date
// range.
func (sy *SchoolYearService) Create(year *models.SchoolYear) error {
	if !year.EndDate.After(year.StartDate) {
		return ErrInvalidDateRange
	}
	return sy.db.Create(year).Error
}
