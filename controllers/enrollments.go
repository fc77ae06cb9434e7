package controllers

import (
	"encoding/json"
	"fmt"
	"strings"

	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"
	"sekoly_go/services/notifications"
	"sekoly_go/utils"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	workflow      *services.EnrollmentWorkflowService
	catalog       *services.FeeCatalogService
	ledger        *services.PaymentLedgerService
	schedule      *services.MonthlyScheduleService
	notifications *notifications.Service
}

func NewEnrollmentController(notifService *notifications.Service) *EnrollmentController {
	return &EnrollmentController{
		workflow:      services.NewEnrollmentWorkflowService(),
		catalog:       services.NewFeeCatalogService(),
		ledger:        services.NewPaymentLedgerService(),
		schedule:      services.NewMonthlyScheduleService(),
		notifications: notifService,
	}
}

type createApplicationRequest struct {
	StudentID        uint   `json:"student_id"`
	SchoolYearID     uint   `json:"school_year_id"`
	RequestedClassID uint   `json:"requested_class_id"`
	ApplicationType  string `json:"application_type"`
	Notes            string `json:"notes"`
}

// GetApplications returns enrollment applications with per-status counts
func (ec *EnrollmentController) GetApplications(c *fiber.Ctx) error {
	query := database.DB.Model(&models.EnrollmentApplication{})

	if schoolYearID := c.Query("school_year_id"); schoolYearID != "" {
		query = query.Where("school_year_id = ?", schoolYearID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if classID := c.Query("requested_class_id"); classID != "" {
		query = query.Where("requested_class_id = ?", classID)
	}

	var applications []models.EnrollmentApplication
	err := query.
		Preload("Student").
		Preload("SchoolYear").
		Preload("RequestedClass").
		Preload("RequestedClass.Level").
		Preload("AssignedClass").
		Order("submitted_date DESC").
		Find(&applications).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch applications",
		})
	}

	result := make([]utils.ApplicationDTO, 0, len(applications))
	byStatus := map[string]int{}
	for _, application := range applications {
		result = append(result, utils.ToApplicationDTO(application))
		byStatus[string(application.Status)]++
	}

	return c.JSON(fiber.Map{
		"applications": result,
		"total":        len(result),
		"by_status":    byStatus,
	})
}

// GetApplication returns an application with its registration fee balance and
// tuition summary
func (ec *EnrollmentController) GetApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	application, err := ec.workflow.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	dto := utils.ToApplicationDTO(*application)

	total, err := ec.workflow.RegistrationFeeTotal(application)
	if err != nil {
		return serviceError(c, err)
	}
	paid, err := ec.workflow.RegistrationFeePaid(application)
	if err != nil {
		return serviceError(c, err)
	}
	balance := total.Sub(paid)
	dto.RegistrationFees = &utils.RegistrationFees{
		Total:       total,
		Paid:        paid,
		Balance:     balance,
		IsFullyPaid: services.IsFullyPaid(balance),
	}

	response := fiber.Map{
		"application": dto,
	}

	// The tuition summary only exists once the application is confirmed
	if application.Status == models.ApplicationConfirmed {
		entries, err := ec.schedule.ScheduleForApplication(application.ID)
		if err == nil {
			response["tuition_summary"] = services.SummarizeSchedule(entries)
		}
	}

	return c.JSON(response)
}

// CreateApplication submits a new enrollment application
func (ec *EnrollmentController) CreateApplication(c *fiber.Ctx) error {
	var req createApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StudentID == 0 || req.SchoolYearID == 0 || req.RequestedClassID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student, school year and requested class are required",
		})
	}

	if req.ApplicationType == "" {
		req.ApplicationType = string(models.ApplicationPromoted)
	}

	application, err := ec.workflow.Create(services.CreateApplicationInput{
		StudentID:        req.StudentID,
		SchoolYearID:     req.SchoolYearID,
		RequestedClassID: req.RequestedClassID,
		ApplicationType:  models.ApplicationType(req.ApplicationType),
		Notes:            req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "enrollments", application.ID, fiber.Map{
		"student_id":      application.StudentID,
		"requested_class": application.RequestedClassID,
	})

	full, err := ec.workflow.Get(application.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": utils.ToApplicationDTO(*full),
	})
}

// AcceptApplication moves a pending application to ACCEPTED
func (ec *EnrollmentController) AcceptApplication(c *fiber.Ctx) error {
	return ec.transition(c, ec.workflow.Accept, "accepted")
}

// RejectApplication moves a pending application to REJECTED
func (ec *EnrollmentController) RejectApplication(c *fiber.Ctx) error {
	return ec.transition(c, ec.workflow.Reject, "rejected")
}

// CancelApplication moves an application to CANCELLED
func (ec *EnrollmentController) CancelApplication(c *fiber.Ctx) error {
	return ec.transition(c, ec.workflow.CancelApplication, "cancelled")
}

func (ec *EnrollmentController) transition(c *fiber.Ctx, op func(uint) (*models.EnrollmentApplication, error), verb string) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	application, err := op(id)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "enrollments", application.ID, fiber.Map{"status": application.Status})

	full, err := ec.workflow.Get(application.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Application " + verb + " successfully",
		"application": utils.ToApplicationDTO(*full),
	})
}

// ConfirmApplication finalizes an accepted application: registration fees must
// be fully paid and the class must have a free seat
func (ec *EnrollmentController) ConfirmApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	application, err := ec.workflow.Confirm(id)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "enrollments", application.ID, fiber.Map{
		"status":         application.Status,
		"assigned_class": application.AssignedClassID,
	})

	full, err := ec.workflow.Get(application.ID)
	if err != nil {
		return serviceError(c, err)
	}
	ec.notifyConfirmed(full)

	return c.JSON(fiber.Map{
		"message":     "Enrollment confirmed successfully",
		"application": utils.ToApplicationDTO(*full),
	})
}

// DeleteApplication removes an application without payment history
func (ec *EnrollmentController) DeleteApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := ec.workflow.Delete(id); err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "enrollments", id, nil)

	return c.JSON(fiber.Map{
		"message": "Application deleted successfully",
	})
}

// GetSchedule returns the month-by-month tuition schedule of a confirmed
// application
func (ec *EnrollmentController) GetSchedule(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	entries, err := ec.schedule.ScheduleForApplication(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"schedule": entries,
		"summary":  services.SummarizeSchedule(entries),
	})
}

// GetApplicationPayments returns every payment the student made against the
// obligations of the requested class and school year
func (ec *EnrollmentController) GetApplicationPayments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	application, err := ec.workflow.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	obligations, err := ec.catalog.ObligationsFor(application.RequestedClassID, application.SchoolYearID, false)
	if err != nil {
		return serviceError(c, err)
	}

	payments, err := ec.ledger.PaymentsFor(application.StudentID, services.ObligationIDs(obligations))
	if err != nil {
		return serviceError(c, err)
	}

	var full []models.Payment
	if len(payments) > 0 {
		ids := make([]uint, 0, len(payments))
		for _, payment := range payments {
			ids = append(ids, payment.ID)
		}
		err = database.DB.
			Preload("Student").
			Preload("FeeObligation").
			Preload("CashRegister").
			Preload("RecordedBy").
			Where("id IN ?", ids).
			Order("payment_date").
			Find(&full).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch payments",
			})
		}
	}

	result := make([]utils.PaymentDTO, 0, len(full))
	for _, payment := range full {
		result = append(result, utils.ToPaymentDTO(payment))
	}

	return c.JSON(fiber.Map{
		"payments": result,
		"total":    len(result),
	})
}

func (ec *EnrollmentController) notifyConfirmed(application *models.EnrollmentApplication) {
	if ec.notifications == nil {
		return
	}

	className := ""
	if application.AssignedClass != nil {
		className = application.AssignedClass.Name
	}

	studentName := strings.TrimSpace(application.Student.FirstName + " " + application.Student.LastName)
	if studentName == "" {
		studentName = application.Student.Username
	}

	message := fmt.Sprintf("Votre inscription pour l'année %s est confirmée, classe %s.",
		application.SchoolYear.Name, className)
	data, _ := json.Marshal(fiber.Map{
		"application_id": application.ID,
		"student":        studentName,
		"class":          className,
	})

	if _, err := ec.notifications.Create(application.StudentID, "Inscription confirmée", message, services.NotifTypeEnrollmentConfirmed, data); err != nil {
		return
	}
}
