package models

// Closed status sets. The previous generation of this system passed raw strings
// around; every value below is validated at the boundary and every transition
// goes through CanTransitionTo.

// Recurrence of a fee obligation
type Recurrence string

const (
	RecurrenceOneTime Recurrence = "ONE_TIME"
	RecurrenceMonthly Recurrence = "MONTHLY"
	RecurrenceTermly  Recurrence = "TERMLY"
	RecurrenceYearly  Recurrence = "YEARLY"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceOneTime, RecurrenceMonthly, RecurrenceTermly, RecurrenceYearly:
		return true
	}
	return false
}

// PaymentStatus lifecycle: created PENDING or directly VALIDATED; VALIDATED may
// be cancelled or refunded; CANCELLED and REFUNDED are terminal. A cancelled or
// refunded payment is never re-validated in place.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentValidated PaymentStatus = "VALIDATED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentValidated, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s == target {
		// re-applying the same status is a harmless rewrite
		return true
	}
	switch s {
	case PaymentPending:
		return target == PaymentValidated || target == PaymentCancelled
	case PaymentValidated:
		return target == PaymentCancelled || target == PaymentRefunded
	default:
		return false
	}
}

// PaymentMethod of a payment
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCheque   PaymentMethod = "CHEQUE"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodMobile   PaymentMethod = "MOBILE"
	MethodOther    PaymentMethod = "OTHER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCheque, MethodTransfer, MethodMobile, MethodOther:
		return true
	}
	return false
}

// ApplicationType distinguishes promoted students from repeating ones
type ApplicationType string

const (
	ApplicationPromoted  ApplicationType = "PROMOTED"
	ApplicationRepeating ApplicationType = "REPEATING"
)

func (t ApplicationType) Valid() bool {
	return t == ApplicationPromoted || t == ApplicationRepeating
}

// ApplicationStatus state machine:
// PENDING -> ACCEPTED | REJECTED | CANCELLED
// ACCEPTED -> CONFIRMED | CANCELLED
// REJECTED, CONFIRMED and CANCELLED are terminal.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationConfirmed ApplicationStatus = "CONFIRMED"
	ApplicationCancelled ApplicationStatus = "CANCELLED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected, ApplicationConfirmed, ApplicationCancelled:
		return true
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationRejected || s == ApplicationConfirmed || s == ApplicationCancelled
}

func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	switch s {
	case ApplicationPending:
		return target == ApplicationAccepted || target == ApplicationRejected || target == ApplicationCancelled
	case ApplicationAccepted:
		return target == ApplicationConfirmed || target == ApplicationCancelled
	default:
		return false
	}
}

// TemporalStatus classifies a schedule month against "today"
type TemporalStatus string

const (
	MonthPast    TemporalStatus = "PAST"
	MonthCurrent TemporalStatus = "CURRENT"
	MonthFuture  TemporalStatus = "FUTURE"
)

// DisplayStatus is what the month shows on the tuition screen. PAID always wins
// over UPCOMING: an advance payment on a future month displays as paid.
type DisplayStatus string

const (
	DisplayPaid     DisplayStatus = "PAID"
	DisplayDue      DisplayStatus = "DUE"
	DisplayUpcoming DisplayStatus = "UPCOMING"
)

// DisplayStatusFor derives the display status from the paid flag and the
// temporal classification.
func DisplayStatusFor(isPaid bool, temporal TemporalStatus) DisplayStatus {
	if isPaid {
		return DisplayPaid
	}
	if temporal == MonthFuture {
		return DisplayUpcoming
	}
	return DisplayDue
}

// French month names, indexed 1..12, as shown on the tuition schedule.
var monthLabels = [13]string{
	"",
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthLabel returns the display name of a calendar month, or "" when the
// month is out of range.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month]
}
