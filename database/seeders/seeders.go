package seeders

import (
	"log"
	"time"

	"sekoly_go/database"
	"sekoly_go/models"
	"sekoly_go/utils"

	"github.com/shopspring/decimal"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedSchoolYears()
	SeedClassLevels()
	SeedClasses()
	SeedCashRegisters()
	SeedFeeObligations()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the administration accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	adminPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}
	staffPassword, err := utils.HashPassword("caisse123")
	if err != nil {
		log.Printf("Error hashing staff password: %v", err)
		return
	}

	users := []models.User{
		{
			Username:  "admin",
			Password:  adminPassword,
			Email:     "admin@sekoly.mg",
			FirstName: "Hery",
			LastName:  "Rakotomalala",
			Role:      "admin",
			Status:    "active",
		},
		{
			Username:  "caisse",
			Password:  staffPassword,
			Email:     "caisse@sekoly.mg",
			FirstName: "Voahangy",
			LastName:  "Andrianarisoa",
			Role:      "staff",
			Status:    "active",
		},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedSchoolYears seeds the current school year
func SeedSchoolYears() {
	var count int64
	database.DB.Model(&models.SchoolYear{}).Count(&count)
	if count > 0 {
		log.Println("School years already seeded, skipping...")
		return
	}

	years := []models.SchoolYear{
		{
			Name:      "2025-2026",
			StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
			Current:   true,
		},
	}

	for _, year := range years {
		if err := database.DB.Create(&year).Error; err != nil {
			log.Printf("Error seeding school year %s: %v", year.Name, err)
		}
	}

	log.Println("School years seeded successfully")
}

// SeedClassLevels seeds the collège levels
func SeedClassLevels() {
	var count int64
	database.DB.Model(&models.ClassLevel{}).Count(&count)
	if count > 0 {
		log.Println("Class levels already seeded, skipping...")
		return
	}

	levels := []models.ClassLevel{
		{Name: "6ème", Description: "Première année du collège"},
		{Name: "5ème", Description: "Deuxième année du collège"},
		{Name: "4ème", Description: "Troisième année du collège"},
		{Name: "3ème", Description: "Classe d'examen, BEPC"},
	}

	for _, level := range levels {
		if err := database.DB.Create(&level).Error; err != nil {
			log.Printf("Error seeding class level %s: %v", level.Name, err)
		}
	}

	log.Println("Class levels seeded successfully")
}

// SeedClasses seeds one class per level for the current school year
func SeedClasses() {
	var count int64
	database.DB.Model(&models.Class{}).Count(&count)
	if count > 0 {
		log.Println("Classes already seeded, skipping...")
		return
	}

	var year models.SchoolYear
	if err := database.DB.Where("current = ?", true).First(&year).Error; err != nil {
		log.Printf("Error finding current school year for class seeding: %v", err)
		return
	}

	var levels []models.ClassLevel
	if err := database.DB.Order("id").Find(&levels).Error; err != nil {
		log.Printf("Error loading class levels for class seeding: %v", err)
		return
	}

	for _, level := range levels {
		class := models.Class{
			Name:         level.Name + " A",
			LevelID:      level.ID,
			SchoolYearID: year.ID,
			MaxStudents:  40,
		}
		if err := database.DB.Create(&class).Error; err != nil {
			log.Printf("Error seeding class %s: %v", class.Name, err)
		}
	}

	log.Println("Classes seeded successfully")
}

// SeedCashRegisters seeds the tills
func SeedCashRegisters() {
	var count int64
	database.DB.Model(&models.CashRegister{}).Count(&count)
	if count > 0 {
		log.Println("Cash registers already seeded, skipping...")
		return
	}

	registers := []models.CashRegister{
		{Name: "Caisse principale", Code: "CAISSE-1", Description: "Guichet de l'administration", Active: true, Color: "#3498db"},
		{Name: "Caisse mobile money", Code: "MOBILE", Description: "Paiements MVola et Orange Money", Active: true, Color: "#27ae60"},
	}

	for _, register := range registers {
		if err := database.DB.Create(&register).Error; err != nil {
			log.Printf("Error seeding cash register %s: %v", register.Code, err)
		}
	}

	log.Println("Cash registers seeded successfully")
}

// SeedFeeObligations seeds a registration fee and a monthly tuition fee per
// class of the current school year
func SeedFeeObligations() {
	var count int64
	database.DB.Model(&models.FeeObligation{}).Count(&count)
	if count > 0 {
		log.Println("Fee obligations already seeded, skipping...")
		return
	}

	var year models.SchoolYear
	if err := database.DB.Where("current = ?", true).First(&year).Error; err != nil {
		log.Printf("Error finding current school year for fee seeding: %v", err)
		return
	}

	var classes []models.Class
	if err := database.DB.Where("school_year_id = ?", year.ID).Find(&classes).Error; err != nil {
		log.Printf("Error loading classes for fee seeding: %v", err)
		return
	}

	for _, class := range classes {
		obligations := []models.FeeObligation{
			{
				Name:              "Droit d'inscription",
				ClassID:           class.ID,
				SchoolYearID:      year.ID,
				Amount:            decimal.NewFromInt(100000),
				IsRegistrationFee: true,
				Recurrence:        models.RecurrenceOneTime,
			},
			{
				Name:         "Écolage",
				ClassID:      class.ID,
				SchoolYearID: year.ID,
				Amount:       decimal.NewFromInt(50000),
				Recurrence:   models.RecurrenceMonthly,
			},
		}
		for _, obligation := range obligations {
			if err := database.DB.Create(&obligation).Error; err != nil {
				log.Printf("Error seeding fee obligation %s for class %d: %v", obligation.Name, class.ID, err)
			}
		}
	}

	log.Println("Fee obligations seeded successfully")
}
