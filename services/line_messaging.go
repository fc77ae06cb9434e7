package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sekoly_go/models"
	"sekoly_go/utils"

	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Notification types carrying a structured payload that Push can turn into a
// rich LINE message. Anything else falls back to title plus message.
const (
	NotifTypePayment             = "payment"
	NotifTypeEnrollmentConfirmed = "enrollment_confirmed"
	NotifTypeArrears             = "arrears"
)

// LineMessagingService pushes payment receipts and enrollment notices to a
// guardian's LINE account when one is linked.
type LineMessagingService struct {
	client *linebot.Client
}

func NewLineMessagingService() (*LineMessagingService, error) {
	secret := os.Getenv("LINE_CHANNEL_SECRET")
	token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")
	if secret == "" || token == "" {
		return nil, fmt.Errorf("LINE credentials are not configured")
	}

	client, err := linebot.New(secret, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE client: %v", err)
	}
	return &LineMessagingService{client: client}, nil
}

// SendPaymentReceipt notifies the linked account that a payment was recorded.
func (ls *LineMessagingService) SendPaymentReceipt(lineUserID string, amount decimal.Decimal, obligationName, reference string, month *int) error {
	return ls.push(lineUserID, paymentReceiptText(amount, obligationName, reference, month))
}

// SendEnrollmentConfirmed notifies the linked account that the enrollment was
// confirmed into a class.
func (ls *LineMessagingService) SendEnrollmentConfirmed(lineUserID, studentName, className string) error {
	return ls.push(lineUserID, enrollmentConfirmedText(studentName, className))
}

// SendArrearsReminder notifies the linked account about unpaid months.
func (ls *LineMessagingService) SendArrearsReminder(lineUserID, studentName string, monthsUnpaid int, balance string) error {
	return ls.push(lineUserID, arrearsReminderText(studentName, monthsUnpaid, balance))
}

func paymentReceiptText(amount decimal.Decimal, obligationName, reference string, month *int) string {
	text := fmt.Sprintf("Paiement reçu: %s pour %s (réf. %s)",
		utils.FormatAriary(amount), obligationName, reference)
	if month != nil {
		text += fmt.Sprintf(", mois de %s", models.MonthLabel(*month))
	}
	return text
}

func enrollmentConfirmedText(studentName, className string) string {
	return fmt.Sprintf("Inscription confirmée: %s est admis(e) en %s.", studentName, className)
}

func arrearsReminderText(studentName string, monthsUnpaid int, balance string) string {
	return fmt.Sprintf("Rappel d'écolage: %s a %d mois impayé(s), solde %s.", studentName, monthsUnpaid, balance)
}

// paymentNotificationData is the payload attached to payment notifications.
type paymentNotificationData struct {
	Amount     string `json:"amount"`
	Obligation string `json:"obligation"`
	Reference  string `json:"reference"`
	Month      *int   `json:"month,omitempty"`
}

// enrollmentNotificationData is the payload attached to enrollment
// confirmations.
type enrollmentNotificationData struct {
	Student string `json:"student"`
	Class   string `json:"class"`
}

// arrearsNotificationData is the payload attached to arrears reminders.
type arrearsNotificationData struct {
	MonthsUnpaid int    `json:"months_unpaid"`
	Balance      string `json:"balance"`
}

// Push delivers a queued notification to the user's linked LINE account, if
// any. Typed notifications carry a payload and get the rich message; anything
// else falls back to title plus message. Satisfies the notifications delivery
// interface.
func (ls *LineMessagingService) Push(n *models.Notification, user *models.User) error {
	if user.LineUserID == "" {
		return nil
	}

	switch n.Type {
	case NotifTypePayment:
		var d paymentNotificationData
		if err := json.Unmarshal(n.Data, &d); err == nil {
			if amount, aerr := decimal.NewFromString(d.Amount); aerr == nil {
				return ls.SendPaymentReceipt(user.LineUserID, amount, d.Obligation, d.Reference, d.Month)
			}
		}
	case NotifTypeEnrollmentConfirmed:
		var d enrollmentNotificationData
		if err := json.Unmarshal(n.Data, &d); err == nil && d.Class != "" {
			return ls.SendEnrollmentConfirmed(user.LineUserID, d.Student, d.Class)
		}
	case NotifTypeArrears:
		var d arrearsNotificationData
		if err := json.Unmarshal(n.Data, &d); err == nil && d.MonthsUnpaid > 0 {
			if balance, berr := decimal.NewFromString(d.Balance); berr == nil {
				return ls.SendArrearsReminder(user.LineUserID, displayName(user), d.MonthsUnpaid, utils.FormatAriary(balance))
			}
		}
	}

	return ls.push(user.LineUserID, n.Title+": "+n.Message)
}

func displayName(user *models.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return name
}

func (ls *LineMessagingService) push(lineUserID, text string) error {
	if lineUserID == "" {
		return nil
	}

	message := linebot.NewTextMessage(text)
	if _, err := ls.client.PushMessage(lineUserID, message).Do(); err != nil {
		logrus.WithError(err).WithField("line_user_id", lineUserID).Warn("Failed to push LINE message")
		return err
	}
	return nil
}
