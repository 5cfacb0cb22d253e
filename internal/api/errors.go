package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pawtrol/pawtrol-api/internal/api/shared"
	"github.com/pawtrol/pawtrol-api/internal/domain"
	"github.com/pawtrol/pawtrol-api/internal/service/auth"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/handshake"
	"github.com/pawtrol/pawtrol-api/internal/service/ledger"
	"github.com/pawtrol/pawtrol-api/internal/service/payments"
	"github.com/pawtrol/pawtrol-api/internal/service/relay"
	"github.com/pawtrol/pawtrol-api/internal/service/safety"
	"github.com/pawtrol/pawtrol-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrPetNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, ledger.ErrBookingNotFound),
		errors.Is(err, ledger.ErrPetNotFound),
		errors.Is(err, dispatch.ErrBookingNotFound),
		errors.Is(err, dispatch.ErrOfferNotFound),
		errors.Is(err, handshake.ErrBookingNotFound),
		errors.Is(err, relay.ErrBookingNotFound),
		errors.Is(err, relay.ErrNoLocation),
		errors.Is(err, payments.ErrBookingNotFound),
		errors.Is(err, payments.ErrPaymentNotFound),
		errors.Is(err, safety.ErrBookingNotFound),
		errors.Is(err, safety.ErrContactNotFound),
		errors.Is(err, safety.ErrShareTokenNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Expired resources
	case errors.Is(err, dispatch.ErrOfferExpired),
		errors.Is(err, domain.ErrShareTokenExpired):
		return http.StatusGone

	// Lockout
	case errors.Is(err, handshake.ErrHandshakeLocked):
		return http.StatusLocked

	// Conflict errors: lifecycle and concurrency
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPreconditionFailed),
		errors.Is(err, dispatch.ErrBookingNotPending),
		errors.Is(err, dispatch.ErrNoCapacity),
		errors.Is(err, payments.ErrAlreadyPaid),
		errors.Is(err, payments.ErrReviewPending),
		errors.Is(err, store.ErrUpdateConflict):
		return http.StatusConflict

	// Dispatch found nobody; the booking stays pending and can be retried
	case errors.Is(err, dispatch.ErrNoEligibleProviders):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrCoordinatesInvalid),
		errors.Is(err, handshake.ErrPINMismatch),
		errors.Is(err, handshake.ErrPINNotIssued),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Authorization errors
	case errors.Is(err, domain.ErrPetNotOwned):
		return "Pet does not belong to you"

	case errors.Is(err, domain.ErrUnauthorized):
		return "You are not allowed to perform this operation"

	// Not found errors
	case errors.Is(err, ledger.ErrBookingNotFound),
		errors.Is(err, dispatch.ErrBookingNotFound),
		errors.Is(err, handshake.ErrBookingNotFound),
		errors.Is(err, relay.ErrBookingNotFound),
		errors.Is(err, payments.ErrBookingNotFound),
		errors.Is(err, safety.ErrBookingNotFound):
		return "Booking not found"

	case errors.Is(err, ledger.ErrPetNotFound):
		return "Pet not found"

	case errors.Is(err, dispatch.ErrOfferNotFound):
		return "Offer not found"

	case errors.Is(err, relay.ErrNoLocation):
		return "No location reported yet"

	case errors.Is(err, payments.ErrPaymentNotFound):
		return "Payment record not found"

	case errors.Is(err, safety.ErrContactNotFound):
		return "Emergency contact not found"

	case errors.Is(err, safety.ErrShareTokenNotFound):
		return "Share link not found"

	// Expired resources
	case errors.Is(err, dispatch.ErrOfferExpired):
		return "Offer has expired"

	case errors.Is(err, domain.ErrShareTokenExpired):
		return "Share link has expired"

	// Handshake outcomes
	case errors.Is(err, handshake.ErrHandshakeLocked):
		return "Too many failed attempts, ask the owner for a new PIN"

	case errors.Is(err, handshake.ErrPINMismatch):
		return "Incorrect PIN"

	case errors.Is(err, handshake.ErrPINNotIssued):
		return "No PIN has been issued for this booking"

	// Conflict errors
	case errors.Is(err, dispatch.ErrNoCapacity):
		return "You have no capacity left for that day"

	case errors.Is(err, dispatch.ErrBookingNotPending):
		return "Booking has already been dispatched or assigned"

	case errors.Is(err, payments.ErrAlreadyPaid):
		return "Booking is already paid"

	case errors.Is(err, payments.ErrReviewPending):
		return "A payment is already under review"

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPreconditionFailed),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, store.ErrUpdateConflict):
		return "Booking state does not allow this operation"

	case errors.Is(err, dispatch.ErrNoEligibleProviders):
		return "No providers are available right now, try again later"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidSchedule):
		return "Scheduled time must be in the future"

	case errors.Is(err, domain.ErrAmountMismatch):
		return "Payment amount does not match the booking price"

	case errors.Is(err, domain.ErrCoordinatesInvalid):
		return "Invalid coordinates"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError converts raw validator errors into a clean,
// user-friendly message without leaking struct internals.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateBookingRequest.Price' Error:Field
		// validation for 'Price' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "not one of the allowed values"
	case "uuid":
		return "must be a valid UUID"
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	case "gt":
		return "must be greater than zero"
	case "url":
		return "must be a valid URL"
	case "e164":
		return "must be a valid phone number"
	default:
		return "invalid value"
	}
}

// RespondServiceError maps a service error to its status code and safe
// message and writes the response, logging the underlying cause.
func RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
