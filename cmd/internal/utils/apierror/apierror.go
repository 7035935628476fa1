package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is returned by services instead of a plain error so routes can
// answer with the right status code and a JSON body.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *SimpleError) Error() string {
	return e.Message
}

func (e *SimpleError) Code() int {
	return e.Status
}

func NewSimple(code int, message string) ErrorResponse {
	return &SimpleError{Status: code, Message: message}
}

var (
	InternalServerError     = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError           = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError      = NewSimple(http.StatusBadRequest, "Malformed request body")
	InvalidAuthTokenError   = NewSimple(http.StatusUnauthorized, "Missing or invalid auth token")
	ForbiddenError          = NewSimple(http.StatusForbidden, "Not allowed to perform this action")
	IllegalTransitionError  = NewSimple(http.StatusConflict, "Appointment cannot move to the requested status")
	NegativeStockError      = NewSimple(http.StatusBadRequest, "Stock cannot be negative")
	InvalidQuantityError    = NewSimple(http.StatusBadRequest, "Quantity must be at least 1")
	UserAlreadyExistsError  = NewSimple(http.StatusConflict, "A user with this phone number already exists")
	InvalidOtpError         = NewSimple(http.StatusUnauthorized, "Invalid OTP")
	UnknownParticipantError = NewSimple(http.StatusUnprocessableEntity, "Patient or doctor does not exist")
	UnknownMedicineError    = NewSimple(http.StatusUnprocessableEntity, "Medicine is not in the catalog")
	AppointmentClosedError  = NewSimple(http.StatusConflict, "Appointment has been cancelled")
	StaleStatusError        = NewSimple(http.StatusConflict, "Appointment status changed, reload and retry")
)

func NewMissingParamError(param string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter: %s", param))
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ":" + f.Rule
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Code() int {
	return e.Status
}

// FromValidationError turns validator output into a 400 listing every failed field.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return &ValidationError{
		Status:  http.StatusBadRequest,
		Message: "Request validation failed",
		Fields:  fields,
	}
}
