package booking

import "fmt"

// Error codes surfaced to callers.
const (
	CodeValidation          = "validationError"
	CodeUnpricedService     = "unpricedService"
	CodeNotEligible         = "notEligible"
	CodeAlreadyResolved     = "alreadyResolved"
	CodeNoActiveNegotiation = "noActiveNegotiation"
	CodeNegotiationActive   = "negotiationActive"
	CodeInvalidState        = "invalidState"
	CodeNotFound            = "notFound"
	CodeForbidden           = "forbidden"
	CodeInsufficientBalance = "insufficientBalance"
)

// BookingError is a business-rule failure. Two BookingErrors match under
// errors.Is when their codes are equal.
type BookingError struct {
	Code    string
	Message string
	Field   string
}

func (e *BookingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrValidation          = &BookingError{Code: CodeValidation}
	ErrUnpricedService     = &BookingError{Code: CodeUnpricedService}
	ErrNotEligible         = &BookingError{Code: CodeNotEligible}
	ErrAlreadyResolved     = &BookingError{Code: CodeAlreadyResolved}
	ErrNoActiveNegotiation = &BookingError{Code: CodeNoActiveNegotiation}
	ErrNegotiationActive   = &BookingError{Code: CodeNegotiationActive}
	ErrInvalidState        = &BookingError{Code: CodeInvalidState}
	ErrNotFound            = &BookingError{Code: CodeNotFound}
	ErrForbidden           = &BookingError{Code: CodeForbidden}
	ErrInsufficientBalance = &BookingError{Code: CodeInsufficientBalance}
)

func NewValidationError(field, msg string) error {
	return &BookingError{Code: CodeValidation, Message: msg, Field: field}
}

func NewUnpricedServiceError(msg string) error {
	return &BookingError{Code: CodeUnpricedService, Message: msg}
}

func NewNotEligibleError(providerID, serviceName string) error {
	return &BookingError{
		Code:    CodeNotEligible,
		Message: fmt.Sprintf("provider %s does not offer %q", providerID, serviceName),
	}
}

func NewAlreadyResolvedError() error {
	return &BookingError{Code: CodeAlreadyResolved, Message: "another provider already took this job or it is no longer open"}
}

func NewNoActiveNegotiationError() error {
	return &BookingError{Code: CodeNoActiveNegotiation, Message: "there is no active negotiation; refresh and try again"}
}

func NewNegotiationActiveError() error {
	return &BookingError{Code: CodeNegotiationActive, Message: "a proposal is already awaiting the resident's answer"}
}

func NewInvalidStateError(msg string) error {
	return &BookingError{Code: CodeInvalidState, Message: msg}
}

func NewNotFoundError(what, id string) error {
	return &BookingError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

func NewForbiddenError(msg string) error {
	return &BookingError{Code: CodeForbidden, Message: msg}
}

func NewInsufficientBalanceError(need, have float64) error {
	return &BookingError{
		Code:    CodeInsufficientBalance,
		Message: fmt.Sprintf("wallet balance %.2f is below the upfront payment %.2f", have, need),
	}
}
