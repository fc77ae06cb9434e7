package controllers

import (
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"
	"sekoly_go/utils"

	"github.com/gofiber/fiber/v2"
)

type FeeObligationController struct {
	catalog *services.FeeCatalogService
}

func NewFeeObligationController() *FeeObligationController {
	return &FeeObligationController{catalog: services.NewFeeCatalogService()}
}

type feeObligationRequest struct {
	Name              string `json:"name"`
	ClassID           uint   `json:"class_id"`
	SchoolYearID      uint   `json:"school_year_id"`
	Amount            string `json:"amount"`
	IsRegistrationFee bool   `json:"is_registration_fee"`
	Recurrence        string `json:"recurrence"`
}

// GetFeeObligations returns the obligations of a class for a school year
func (fc *FeeObligationController) GetFeeObligations(c *fiber.Ctx) error {
	classID, err := parseQueryID(c, "class_id")
	if err != nil {
		return err
	}
	schoolYearID, err := parseQueryID(c, "school_year_id")
	if err != nil {
		return err
	}

	registrationOnly := c.Query("registration_only") == "true"

	obligations, err := fc.catalog.ObligationsFor(classID, schoolYearID, registrationOnly)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"fee_obligations": obligations,
		"total":           len(obligations),
	})
}

// GetFeeObligation returns a specific obligation by ID
func (fc *FeeObligationController) GetFeeObligation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	obligation, err := fc.catalog.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"fee_obligation": obligation,
	})
}

// CreateFeeObligation creates a new fee obligation
func (fc *FeeObligationController) CreateFeeObligation(c *fiber.Ctx) error {
	var req feeObligationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.ClassID == 0 || req.SchoolYearID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, class and school year are required",
		})
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	obligation := models.FeeObligation{
		Name:              req.Name,
		ClassID:           req.ClassID,
		SchoolYearID:      req.SchoolYearID,
		Amount:            amount,
		IsRegistrationFee: req.IsRegistrationFee,
		Recurrence:        models.Recurrence(req.Recurrence),
	}

	if err := fc.catalog.Create(&obligation); err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "fee-obligations", obligation.ID, obligation)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Fee obligation created successfully",
		"fee_obligation": obligation,
	})
}

// UpdateFeeObligation updates an existing fee obligation
func (fc *FeeObligationController) UpdateFeeObligation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req feeObligationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	updates := models.FeeObligation{
		Name:              req.Name,
		Amount:            amount,
		IsRegistrationFee: req.IsRegistrationFee,
		Recurrence:        models.Recurrence(req.Recurrence),
	}

	obligation, err := fc.catalog.Update(id, &updates)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "fee-obligations", obligation.ID, obligation)

	return c.JSON(fiber.Map{
		"message":        "Fee obligation updated successfully",
		"fee_obligation": obligation,
	})
}

// DeleteFeeObligation removes an obligation without payment history
func (fc *FeeObligationController) DeleteFeeObligation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := fc.catalog.Delete(id); err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "fee-obligations", id, nil)

	return c.JSON(fiber.Map{
		"message": "Fee obligation deleted successfully",
	})
}
