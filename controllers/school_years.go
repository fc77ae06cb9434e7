package controllers

import (
	"time"

	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"

	"github.com/gofiber/fiber/v2"
)

type SchoolYearController struct {
	years *services.SchoolYearService
}

func NewSchoolYearController() *SchoolYearController {
	return &SchoolYearController{years: services.NewSchoolYearService()}
}

// GetSchoolYears returns all school years, newest first
func (sc *SchoolYearController) GetSchoolYears(c *fiber.Ctx) error {
	var years []models.SchoolYear
	if err := database.DB.Order("start_date DESC").Find(&years).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch school years",
		})
	}

	return c.JSON(fiber.Map{
		"school_years": years,
		"total":        len(years),
	})
}

// GetCurrentSchoolYear returns the school year flagged as current
func (sc *SchoolYearController) GetCurrentSchoolYear(c *fiber.Ctx) error {
	year, err := sc.years.Current()
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"school_year": year,
	})
}

// GetSchoolYear returns a specific school year by ID
func (sc *SchoolYearController) GetSchoolYear(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	year, err := sc.years.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"school_year": year,
	})
}

// CreateSchoolYear creates a new school year
func (sc *SchoolYearController) CreateSchoolYear(c *fiber.Ctx) error {
	var req struct {
		Name      string    `json:"name"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "School year name is required",
		})
	}

	year := models.SchoolYear{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := sc.years.Create(&year); err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "school-years", year.ID, year)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "School year created successfully",
		"school_year": year,
	})
}

// SetCurrentSchoolYear marks a school year as current and clears the flag on
// every other year
func (sc *SchoolYearController) SetCurrentSchoolYear(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	year, err := sc.years.SetCurrent(id)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "school-years", year.ID, fiber.Map{"action": "set_current"})

	return c.JSON(fiber.Map{
		"message":     "School year set as current",
		"school_year": year,
	})
}
