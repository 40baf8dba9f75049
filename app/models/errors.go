package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind buckets fee errors so the HTTP layer and sweep reporters can
// treat them uniformly without string matching.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindInvariant  ErrorKind = "invariant_violation"
	KindDuplicate  ErrorKind = "duplicate_operation"
	KindConflict   ErrorKind = "state_conflict"
	KindExternal   ErrorKind = "external_inconsistency"
)

// FeeError is the taxonomy type for all billing failures. Code is stable and
// machine-readable; Msg is for humans.
type FeeError struct {
	Kind ErrorKind
	Code string
	Msg  string
}

func (e *FeeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// HTTPStatus maps the taxonomy onto response codes in one place.
func (e *FeeError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindDuplicate:
		// idempotent no-op, not a failure for callers expecting idempotency
		return fiber.StatusOK
	case KindConflict:
		return fiber.StatusConflict
	case KindExternal:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

var (
	ErrStructureLocked = &FeeError{KindConflict, "StructureLocked",
		"fee structure already has assignments; create a new version instead"}
	ErrDuplicateAssignment = &FeeError{KindConflict, "DuplicateAssignment",
		"student already has a fee assignment for this academic year"}
	ErrInvalidDiscount = &FeeError{KindConflict, "InvalidDiscount",
		"discount stacking would drive the payable amount negative"}
	ErrAlreadyGenerated = &FeeError{KindDuplicate, "AlreadyGenerated",
		"installments already generated for this assignment"}
	ErrOverpaymentNotAllowed = &FeeError{KindConflict, "OverpaymentNotAllowed",
		"amount exceeds installment balance; record as unallocated advance instead"}
	ErrRefundExceedsPayment = &FeeError{KindConflict, "RefundExceedsPayment",
		"refund amount exceeds the refundable remainder of the payment"}
	ErrInvalidTransition = &FeeError{KindConflict, "InvalidTransition",
		"illegal state transition"}
	ErrUnknownTransaction = &FeeError{KindExternal, "UnknownTransaction",
		"no pending payment matches this external transaction id"}
	ErrNotRefundable = &FeeError{KindConflict, "NotRefundable",
		"only successful payments can be refunded"}
)

// NewValidationError reports bad input rejected before any state change.
func NewValidationError(format string, args ...interface{}) *FeeError {
	return &FeeError{KindValidation, "ValidationError", fmt.Sprintf(format, args...)}
}

// NewInvariantViolation reports a broken internal invariant. Always a bug
// signal: the enclosing operation must abort, never clamp.
func NewInvariantViolation(format string, args ...interface{}) *FeeError {
	return &FeeError{KindInvariant, "InvariantViolation", fmt.Sprintf(format, args...)}
}

// AsFeeError unwraps err to a *FeeError if one is in the chain.
func AsFeeError(err error) (*FeeError, bool) {
	var fe *FeeError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
