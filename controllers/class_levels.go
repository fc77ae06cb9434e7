package controllers

import (
	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"

	"github.com/gofiber/fiber/v2"
)

type ClassLevelController struct{}

// GetClassLevels returns all class levels
func (clc *ClassLevelController) GetClassLevels(c *fiber.Ctx) error {
	var levels []models.ClassLevel
	if err := database.DB.Order("id").Find(&levels).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch class levels",
		})
	}

	return c.JSON(fiber.Map{
		"class_levels": levels,
		"total":        len(levels),
	})
}

// CreateClassLevel creates a new class level
func (clc *ClassLevelController) CreateClassLevel(c *fiber.Ctx) error {
	var level models.ClassLevel
	if err := c.BodyParser(&level); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if level.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Class level name is required",
		})
	}

	var existing models.ClassLevel
	if err := database.DB.Where("name = ?", level.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Class level already exists",
		})
	}

	if err := database.DB.Create(&level).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create class level",
		})
	}

	middleware.LogActivity(c, "CREATE", "class-levels", level.ID, level)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Class level created successfully",
		"class_level": level,
	})
}

// UpdateClassLevel updates a class level
func (clc *ClassLevelController) UpdateClassLevel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var level models.ClassLevel
	if err := database.DB.First(&level, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class level not found",
		})
	}

	var updateData models.ClassLevel
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := database.DB.Model(&level).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update class level",
		})
	}

	middleware.LogActivity(c, "UPDATE", "class-levels", level.ID, level)

	return c.JSON(fiber.Map{
		"message":     "Class level updated successfully",
		"class_level": level,
	})
}
