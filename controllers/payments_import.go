package controllers

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sekoly_go/config"
	"sekoly_go/database"
	"sekoly_go/middleware"
	"sekoly_go/models"
	"sekoly_go/services"
	"sekoly_go/storage"
	"sekoly_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// PaymentImportController ingests payment spreadsheets exported from the
// cashier's offline register. Expected columns, in order: username,
// obligation_id, amount, month, payment_date, method, register_code,
// reference, notes. The first row is a header and is skipped.
type PaymentImportController struct {
	ledger *services.PaymentLedgerService
	store  *storage.StorageService
}

func NewPaymentImportController(store *storage.StorageService) *PaymentImportController {
	return &PaymentImportController{
		ledger: services.NewPaymentLedgerService(),
		store:  store,
	}
}

type importRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportPayments parses an uploaded .xlsx file and records one payment per row
func (pic *PaymentImportController) ImportPayments(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file upload",
		})
	}

	if fileHeader.Size > config.AppConfig.MaxImportSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Import file too large",
		})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only .xlsx files are supported",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	workbook, err := excelize.OpenReader(strings.NewReader(string(content)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse spreadsheet",
		})
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Spreadsheet has no sheets",
		})
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read spreadsheet rows",
		})
	}

	user, _ := middleware.GetCurrentUser(c)
	var recordedByID *uint
	if user != nil {
		recordedByID = &user.ID
	}

	var imported int
	var rowErrors []importRowError

	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1

		if isBlankRow(row) {
			continue
		}

		input, err := pic.parseRow(row, recordedByID)
		if err != nil {
			rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		if _, err := pic.ledger.Record(*input); err != nil {
			rowErrors = append(rowErrors, importRowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		imported++
	}

	// Keep the original file for audit; a storage failure does not undo the
	// imported payments
	var archiveKey string
	if pic.store != nil && user != nil {
		key, err := pic.store.SaveImportFile(fileHeader.Filename, content, user.ID)
		if err != nil {
			logrus.WithError(err).Warn("Failed to archive import file")
		} else {
			archiveKey = key
		}
	}

	middleware.LogActivity(c, "CREATE", "payments", 0, fiber.Map{
		"action":   "import",
		"file":     fileHeader.Filename,
		"imported": imported,
		"failed":   len(rowErrors),
	})

	status := fiber.StatusCreated
	if imported == 0 && len(rowErrors) > 0 {
		status = fiber.StatusUnprocessableEntity
		// a file that produced no payments is not retained
		if archiveKey != "" {
			if err := pic.store.DeleteFile(archiveKey); err != nil {
				logrus.WithError(err).Warn("Failed to remove rejected import file")
			} else {
				archiveKey = ""
			}
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"message":     fmt.Sprintf("%d payments imported, %d rows failed", imported, len(rowErrors)),
		"imported":    imported,
		"errors":      rowErrors,
		"archive_key": archiveKey,
	})
}

func (pic *PaymentImportController) parseRow(row []string, recordedByID *uint) (*services.RecordPaymentInput, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	username := cell(0)
	if username == "" {
		return nil, fmt.Errorf("missing username")
	}
	var student models.User
	if err := database.DB.Where("username = ?", username).First(&student).Error; err != nil {
		return nil, fmt.Errorf("unknown student %q", username)
	}

	obligationID, err := strconv.ParseUint(cell(1), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid obligation_id %q", cell(1))
	}

	amount, err := utils.ParseAmount(cell(2))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", cell(2))
	}

	var month *int
	if raw := cell(3); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q", raw)
		}
		month = &m
	}

	var paymentDate time.Time
	if raw := cell(4); raw != "" {
		paymentDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid payment_date %q", raw)
		}
	}

	method := models.PaymentMethod(strings.ToUpper(cell(5)))
	if method == "" {
		method = models.MethodCash
	}

	registerCode := cell(6)
	if registerCode == "" {
		return nil, fmt.Errorf("missing register_code")
	}
	var register models.CashRegister
	if err := database.DB.Where("code = ?", registerCode).First(&register).Error; err != nil {
		return nil, fmt.Errorf("unknown register %q", registerCode)
	}

	return &services.RecordPaymentInput{
		StudentID:       student.ID,
		FeeObligationID: uint(obligationID),
		CashRegisterID:  register.ID,
		Amount:          amount,
		Month:           month,
		PaymentDate:     paymentDate,
		Method:          method,
		Reference:       cell(7),
		Notes:           cell(8),
		RecordedByID:    recordedByID,
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
