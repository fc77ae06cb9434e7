package services

import (
	"testing"

	"sekoly_go/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentReceiptText(t *testing.T) {
	amount := decimal.NewFromInt(50000)

	assert.Equal(t,
		"Paiement reçu: 50 000 Ar pour Écolage (réf. PAY-1a2b3c4d)",
		paymentReceiptText(amount, "Écolage", "PAY-1a2b3c4d", nil))

	month := 11
	assert.Equal(t,
		"Paiement reçu: 50 000 Ar pour Écolage (réf. PAY-1a2b3c4d), mois de Novembre",
		paymentReceiptText(amount, "Écolage", "PAY-1a2b3c4d", &month))
}

func TestEnrollmentConfirmedText(t *testing.T) {
	assert.Equal(t,
		"Inscription confirmée: Rakoto Jean est admis(e) en 6ème A.",
		enrollmentConfirmedText("Rakoto Jean", "6ème A"))
}

func TestArrearsReminderText(t *testing.T) {
	assert.Equal(t,
		"Rappel d'écolage: Rakoto Jean a 3 mois impayé(s), solde 150 000 Ar.",
		arrearsReminderText("Rakoto Jean", 3, "150 000 Ar"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Rakoto Jean", displayName(&models.User{FirstName: "Rakoto", LastName: "Jean"}))
	assert.Equal(t, "Rakoto", displayName(&models.User{FirstName: "Rakoto"}))
	// username is the fallback when no name is set
	assert.Equal(t, "rakoto01", displayName(&models.User{Username: "rakoto01"}))
}
