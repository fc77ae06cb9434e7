package services

import "errors"

// Domain errors returned by the finance and enrollment services. Controllers
// map each one to a distinct HTTP status and user-facing message; none of them
// is ever silently corrected.
var (
	// ErrNotFound covers a missing obligation, payment, application, class or
	// school year referenced by an operation.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidAmount rejects non-positive or malformed monetary input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidStatus rejects a status value outside the closed set, or a
	// transition the lifecycle does not permit.
	ErrInvalidStatus = errors.New("invalid status transition")

	// ErrInvalidMonth rejects a month tag outside 1..12 or a month tag paired
	// with a non-monthly obligation.
	ErrInvalidMonth = errors.New("invalid month tag")

	// ErrInvalidDateRange rejects a school year whose end does not follow its
	// start.
	ErrInvalidDateRange = errors.New("end date must be after start date")

	// ErrDuplicateObligation rejects a second fee obligation with the same name
	// for the same class and school year.
	ErrDuplicateObligation = errors.New("fee obligation already exists for this class and school year")

	// ErrDuplicateEnrollment rejects a second application for the same student
	// and school year.
	ErrDuplicateEnrollment = errors.New("student already has an application for this school year")

	// ErrPaymentIncomplete blocks confirmation while registration fees are not
	// fully settled.
	ErrPaymentIncomplete = errors.New("registration fees are not fully paid")

	// ErrCapacityExceeded blocks confirmation when the requested class is full.
	ErrCapacityExceeded = errors.New("class is already full")

	// ErrDeletionBlocked refuses to delete an application that has payment
	// history attached.
	ErrDeletionBlocked = errors.New("application has associated payments and cannot be deleted")
)
