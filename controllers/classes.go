package controllers

import (
	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"

	"github.com/gofiber/fiber/v2"
)

type ClassController struct {
	workflow *services.EnrollmentWorkflowService
}

func NewClassController() *ClassController {
	return &ClassController{workflow: services.NewEnrollmentWorkflowService()}
}

// GetClasses returns classes, optionally filtered by school year or level
func (cc *ClassController) GetClasses(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Class{})

	if schoolYearID := c.Query("school_year_id"); schoolYearID != "" {
		query = query.Where("school_year_id = ?", schoolYearID)
	}
	if levelID := c.Query("level_id"); levelID != "" {
		query = query.Where("level_id = ?", levelID)
	}

	var classes []models.Class
	if err := query.Preload("Level").Preload("SchoolYear").Preload("MainTeacher").
		Order("level_id, name").Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch classes",
		})
	}

	return c.JSON(fiber.Map{
		"classes": classes,
		"total":   len(classes),
	})
}

// GetClass returns a class with its active enrollment count
func (cc *ClassController) GetClass(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var class models.Class
	if err := database.DB.Preload("Level").Preload("SchoolYear").Preload("MainTeacher").
		First(&class, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class not found",
		})
	}

	enrolled, err := cc.workflow.CountActiveEnrollments(class.ID, class.SchoolYearID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count enrollments",
		})
	}

	return c.JSON(fiber.Map{
		"class":           class,
		"enrolled":        enrolled,
		"seats_remaining": int64(class.MaxStudents) - enrolled,
	})
}

// GetClassesBySchoolYear returns the classes of a school year with their
// confirmed enrollment counts, for the capacity dashboard
func (cc *ClassController) GetClassesBySchoolYear(c *fiber.Ctx) error {
	schoolYearID, err := parseID(c, "school_year_id")
	if err != nil {
		return err
	}

	var classes []models.Class
	if err := database.DB.Where("school_year_id = ?", schoolYearID).
		Preload("Level").Order("level_id, name").Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch classes",
		})
	}

	type classWithCount struct {
		models.Class
		Enrolled       int64 `json:"enrolled"`
		SeatsRemaining int64 `json:"seats_remaining"`
	}

	result := make([]classWithCount, 0, len(classes))
	for _, class := range classes {
		enrolled, err := cc.workflow.CountActiveEnrollments(class.ID, schoolYearID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to count enrollments",
			})
		}
		result = append(result, classWithCount{
			Class:          class,
			Enrolled:       enrolled,
			SeatsRemaining: int64(class.MaxStudents) - enrolled,
		})
	}

	return c.JSON(fiber.Map{
		"classes": result,
		"total":   len(result),
	})
}

// CreateClass creates a new class
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	var class models.Class
	if err := c.BodyParser(&class); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if class.Name == "" || class.LevelID == 0 || class.SchoolYearID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, level and school year are required",
		})
	}
	if class.MaxStudents <= 0 {
		class.MaxStudents = 30
	}

	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create class",
		})
	}

	database.DB.Preload("Level").Preload("SchoolYear").First(&class, class.ID)

	middleware.LogActivity(c, "CREATE", "classes", class.ID, class)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Class created successfully",
		"class":   class,
	})
}

// UpdateClass updates a class
func (cc *ClassController) UpdateClass(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var class models.Class
	if err := database.DB.First(&class, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class not found",
		})
	}

	var updateData models.Class
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := database.DB.Model(&class).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update class",
		})
	}

	database.DB.Preload("Level").Preload("SchoolYear").First(&class, class.ID)

	middleware.LogActivity(c, "UPDATE", "classes", class.ID, class)

	return c.JSON(fiber.Map{
		"message": "Class updated successfully",
		"class":   class,
	})
}
