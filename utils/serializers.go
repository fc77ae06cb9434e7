package utils

import (
	"time"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
)

// Compact representations used across APIs
type UserShort struct {
	ID        uint   `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type ClassShort struct {
	ID    uint   `json:"id"`
	Name  string `json:"name,omitempty"`
	Level string `json:"level,omitempty"`
}

type PaymentDTO struct {
	ID              uint            `json:"id"`
	StudentID       uint            `json:"student_id"`
	Student         UserShort       `json:"student"`
	FeeObligationID uint            `json:"fee_obligation_id"`
	ObligationName  string          `json:"obligation_name,omitempty"`
	CashRegisterID  uint            `json:"cash_register_id"`
	CashRegister    string          `json:"cash_register,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	AmountDisplay   string          `json:"amount_display"`
	Month           *int            `json:"month,omitempty"`
	MonthLabel      string          `json:"month_label,omitempty"`
	PaymentDate     time.Time       `json:"payment_date"`
	RecordedDate    time.Time       `json:"recorded_date"`
	Status          string          `json:"status"`
	Method          string          `json:"method"`
	Reference       string          `json:"reference"`
	Notes           string          `json:"notes,omitempty"`
	RecordedBy      *UserShort      `json:"recorded_by,omitempty"`
}

type ApplicationDTO struct {
	ID               uint              `json:"id"`
	StudentID        uint              `json:"student_id"`
	Student          UserShort         `json:"student"`
	SchoolYearID     uint              `json:"school_year_id"`
	SchoolYear       string            `json:"school_year,omitempty"`
	RequestedClassID uint              `json:"requested_class_id"`
	RequestedClass   ClassShort        `json:"requested_class"`
	AssignedClass    *ClassShort       `json:"assigned_class,omitempty"`
	ApplicationType  string            `json:"application_type"`
	Status           string            `json:"status"`
	SubmittedDate    time.Time         `json:"submitted_date"`
	ConfirmedDate    *time.Time        `json:"confirmed_date,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	RegistrationFees *RegistrationFees `json:"registration_fees,omitempty"`
}

// RegistrationFees is the balance block attached to an application detail
type RegistrationFees struct {
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Balance     decimal.Decimal `json:"balance"`
	IsFullyPaid bool            `json:"is_fully_paid"`
}

func ToUserShort(u models.User) UserShort {
	return UserShort{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ToClassShort(c models.Class) ClassShort {
	cs := ClassShort{ID: c.ID, Name: c.Name}
	if c.Level.ID != 0 {
		cs.Level = c.Level.Name
	}
	return cs
}

// ToPaymentDTO maps a payment to the compact DTO. The caller is expected to
// have preloaded Student, FeeObligation, CashRegister and RecordedBy.
func ToPaymentDTO(p models.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:              p.ID,
		StudentID:       p.StudentID,
		Student:         ToUserShort(p.Student),
		FeeObligationID: p.FeeObligationID,
		CashRegisterID:  p.CashRegisterID,
		Amount:          p.Amount,
		AmountDisplay:   FormatAriary(p.Amount),
		Month:           p.Month,
		PaymentDate:     p.PaymentDate,
		RecordedDate:    p.RecordedDate,
		Status:          string(p.Status),
		Method:          string(p.Method),
		Reference:       p.Reference,
		Notes:           p.Notes,
	}
	if p.FeeObligation.ID != 0 {
		dto.ObligationName = p.FeeObligation.Name
	}
	if p.CashRegister.ID != 0 {
		dto.CashRegister = p.CashRegister.Name
	}
	if p.Month != nil {
		dto.MonthLabel = models.MonthLabel(*p.Month)
	}
	if p.RecordedBy != nil {
		rb := ToUserShort(*p.RecordedBy)
		dto.RecordedBy = &rb
	}
	return dto
}

// ToApplicationDTO maps an application to the compact DTO. Registration fee
// balances are attached separately by the controller when requested.
func ToApplicationDTO(a models.EnrollmentApplication) ApplicationDTO {
	dto := ApplicationDTO{
		ID:               a.ID,
		StudentID:        a.StudentID,
		Student:          ToUserShort(a.Student),
		SchoolYearID:     a.SchoolYearID,
		RequestedClassID: a.RequestedClassID,
		RequestedClass:   ToClassShort(a.RequestedClass),
		ApplicationType:  string(a.ApplicationType),
		Status:           string(a.Status),
		SubmittedDate:    a.SubmittedDate,
		ConfirmedDate:    a.ConfirmedDate,
		Notes:            a.Notes,
	}
	if a.SchoolYear.ID != 0 {
		dto.SchoolYear = a.SchoolYear.Name
	}
	if a.AssignedClass != nil {
		ac := ToClassShort(*a.AssignedClass)
		dto.AssignedClass = &ac
	}
	return dto
}
