package controllers

import (
	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"

	"github.com/gofiber/fiber/v2"
)

type CashRegisterController struct{}

// GetCashRegisters returns cash registers, active ones by default
func (crc *CashRegisterController) GetCashRegisters(c *fiber.Ctx) error {
	query := database.DB.Model(&models.CashRegister{})
	if c.Query("all") != "true" {
		query = query.Where("active = ?", true)
	}

	var registers []models.CashRegister
	if err := query.Order("name").Find(&registers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch cash registers",
		})
	}

	return c.JSON(fiber.Map{
		"cash_registers": registers,
		"total":          len(registers),
	})
}

// CreateCashRegister creates a new cash register
func (crc *CashRegisterController) CreateCashRegister(c *fiber.Ctx) error {
	var register models.CashRegister
	if err := c.BodyParser(&register); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if register.Name == "" || register.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and code are required",
		})
	}

	var existing models.CashRegister
	if err := database.DB.Where("code = ?", register.Code).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cash register code already exists",
		})
	}

	register.Active = true
	if err := database.DB.Create(&register).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create cash register",
		})
	}

	middleware.LogActivity(c, "CREATE", "cash-registers", register.ID, register)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Cash register created successfully",
		"cash_register": register,
	})
}

// UpdateCashRegister updates a cash register
func (crc *CashRegisterController) UpdateCashRegister(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var register models.CashRegister
	if err := database.DB.First(&register, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cash register not found",
		})
	}

	var updateData struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Active      *bool  `json:"active"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if updateData.Name != "" {
		updates["name"] = updateData.Name
	}
	if updateData.Description != "" {
		updates["description"] = updateData.Description
	}
	if updateData.Color != "" {
		updates["color"] = updateData.Color
	}
	if updateData.Active != nil {
		updates["active"] = *updateData.Active
	}

	if err := database.DB.Model(&register).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update cash register",
		})
	}

	middleware.LogActivity(c, "UPDATE", "cash-registers", register.ID, updates)

	return c.JSON(fiber.Map{
		"message":       "Cash register updated successfully",
		"cash_register": register,
	})
}
