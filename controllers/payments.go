package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"
	"sekoly_go/services/notifications"
	"sekoly_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentController struct {
	ledger        *services.PaymentLedgerService
	notifications *notifications.Service
}

func NewPaymentController(notifService *notifications.Service) *PaymentController {
	return &PaymentController{
		ledger:        services.NewPaymentLedgerService(),
		notifications: notifService,
	}
}

type recordPaymentRequest struct {
	StudentID       uint   `json:"student_id"`
	FeeObligationID uint   `json:"fee_obligation_id"`
	CashRegisterID  uint   `json:"cash_register_id"`
	Amount          string `json:"amount"`
	Month           *int   `json:"month"`
	PaymentDate     string `json:"payment_date"`
	Status          string `json:"status"`
	Method          string `json:"method"`
	Reference       string `json:"reference"`
	Notes           string `json:"notes"`
}

// GetPayments returns payments filtered by student, status, method, register
// or payment date range
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Payment{})

	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if registerID := c.Query("cash_register_id"); registerID != "" {
		query = query.Where("cash_register_id = ?", registerID)
	}
	if obligationID := c.Query("fee_obligation_id"); obligationID != "" {
		query = query.Where("fee_obligation_id = ?", obligationID)
	}
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("payment_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("payment_date <= ?", to)
	}

	var payments []models.Payment
	err := query.
		Preload("Student").
		Preload("FeeObligation").
		Preload("CashRegister").
		Preload("RecordedBy").
		Order("payment_date DESC, id DESC").
		Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	result := make([]utils.PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		result = append(result, utils.ToPaymentDTO(payment))
	}

	return c.JSON(fiber.Map{
		"payments": result,
		"total":    len(result),
	})
}

// GetPayment returns a specific payment by ID
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payment, err := pc.ledger.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment": utils.ToPaymentDTO(*payment),
	})
}

// CreatePayment records a new payment at the cash desk
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StudentID == 0 || req.FeeObligationID == 0 || req.CashRegisterID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student, fee obligation and cash register are required",
		})
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payment date, expected YYYY-MM-DD",
			})
		}
	}

	user, _ := middleware.GetCurrentUser(c)
	var recordedByID *uint
	if user != nil {
		recordedByID = &user.ID
	}

	input := services.RecordPaymentInput{
		StudentID:       req.StudentID,
		FeeObligationID: req.FeeObligationID,
		CashRegisterID:  req.CashRegisterID,
		Amount:          amount,
		Month:           req.Month,
		PaymentDate:     paymentDate,
		Status:          models.PaymentStatus(req.Status),
		Method:          models.PaymentMethod(req.Method),
		Reference:       req.Reference,
		Notes:           req.Notes,
		RecordedByID:    recordedByID,
	}

	payment, err := pc.ledger.Record(input)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "payments", payment.ID, fiber.Map{
		"amount":    payment.Amount.String(),
		"status":    payment.Status,
		"reference": payment.Reference,
	})
	pc.notifyPayment(payment)

	full, err := pc.ledger.Get(payment.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": utils.ToPaymentDTO(*full),
	})
}

// ValidatePayment moves a pending payment to VALIDATED
func (pc *PaymentController) ValidatePayment(c *fiber.Ctx) error {
	return pc.transition(c, pc.ledger.Validate, "validated")
}

// CancelPayment moves a payment to CANCELLED
func (pc *PaymentController) CancelPayment(c *fiber.Ctx) error {
	return pc.transition(c, pc.ledger.Cancel, "cancelled")
}

// RefundPayment moves a validated payment to REFUNDED
func (pc *PaymentController) RefundPayment(c *fiber.Ctx) error {
	return pc.transition(c, pc.ledger.Refund, "refunded")
}

func (pc *PaymentController) transition(c *fiber.Ctx, op func(uint) (*models.Payment, error), verb string) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payment, err := op(id)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "payments", payment.ID, fiber.Map{"status": payment.Status})

	return c.JSON(fiber.Map{
		"message": "Payment " + verb + " successfully",
		"payment": utils.ToPaymentDTO(*payment),
	})
}

// GetPaymentStats returns validated totals grouped by cash register and by
// method over an optional payment date range
func (pc *PaymentController) GetPaymentStats(c *fiber.Ctx) error {
	base := database.DB.Model(&models.Payment{}).Where("status = ?", models.PaymentValidated)
	if from := c.Query("from"); from != "" {
		base = base.Where("payment_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		base = base.Where("payment_date <= ?", to)
	}

	type bucket struct {
		Key   string          `json:"key"`
		Count int64           `json:"count"`
		Total decimal.Decimal `json:"total"`
	}

	var byRegister []bucket
	err := base.Session(&gorm.Session{}).
		Joins("JOIN cash_registers ON cash_registers.id = payments.cash_register_id").
		Select("cash_registers.name AS `key`, COUNT(*) AS count, SUM(payments.amount) AS total").
		Group("cash_registers.name").
		Scan(&byRegister).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute register stats",
		})
	}

	var byMethod []bucket
	err = base.Session(&gorm.Session{}).
		Select("method AS `key`, COUNT(*) AS count, SUM(amount) AS total").
		Group("method").
		Scan(&byMethod).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute method stats",
		})
	}

	grandTotal := decimal.Zero
	var count int64
	for _, b := range byMethod {
		grandTotal = grandTotal.Add(b.Total)
		count += b.Count
	}

	return c.JSON(fiber.Map{
		"total":         grandTotal,
		"total_display": utils.FormatAriary(grandTotal),
		"count":         count,
		"by_register":   byRegister,
		"by_method":     byMethod,
	})
}

func (pc *PaymentController) notifyPayment(payment *models.Payment) {
	if pc.notifications == nil {
		return
	}

	var obligation models.FeeObligation
	obligationName := ""
	if err := database.DB.First(&obligation, payment.FeeObligationID).Error; err == nil {
		obligationName = obligation.Name
	}

	message := fmt.Sprintf("Paiement de %s enregistré pour %s (réf. %s)",
		utils.FormatAriary(payment.Amount), obligationName, payment.Reference)
	if payment.Month != nil {
		message += fmt.Sprintf(", mois de %s", models.MonthLabel(*payment.Month))
	}

	data, _ := json.Marshal(fiber.Map{
		"payment_id": payment.ID,
		"amount":     payment.Amount.String(),
		"obligation": obligationName,
		"reference":  payment.Reference,
		"month":      payment.Month,
	})

	if _, err := pc.notifications.Create(payment.StudentID, "Paiement reçu", message, services.NotifTypePayment, data); err != nil {
		// The payment itself succeeded, the notification is best-effort
		return
	}
}
