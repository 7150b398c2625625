package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced in API payloads.
const (
	CodeInvalidCredentials      = "E_AUTH_INVALID_CREDENTIALS"
	CodeMissingToken            = "E_AUTH_MISSING_TOKEN"
	CodeInvalidToken            = "E_AUTH_INVALID_TOKEN"
	CodeInsufficientPermissions = "E_AUTH_INSUFFICIENT_PERMISSIONS"
	CodeUserNotFound            = "E_USER_NOT_FOUND"
	CodeEmailExists             = "E_USER_EMAIL_EXISTS"
	CodeEmailAlreadyVerified    = "E_EMAIL_ALREADY_VERIFIED"
	CodePermanentAdmin          = "E_USER_PERMANENT_ADMIN"
	CodeInvalidOTP              = "E_INVALID_OTP"
	CodeTicketNotFound          = "E_TICKET_NOT_FOUND"
	CodeInvalidStatusTransition = "E_TICKET_INVALID_STATUS_TRANSITION"
	CodeInvalidAssignee         = "E_TICKET_INVALID_ASSIGNEE"
	CodeProjectNotFound         = "E_PROJECT_NOT_FOUND"
	CodeProjectKeyExists        = "E_PROJECT_KEY_EXISTS"
	CodeWorkflowNotFound        = "E_WORKFLOW_NOT_FOUND"
	CodeNotFound                = "E_NOT_FOUND"
	CodeValidationError         = "E_VALIDATION_ERROR"
	CodeInternalError           = "E_INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationError, message, http.StatusBadRequest, details)
}

// NewBusinessRuleError reports a rejected business-rule with a specific code.
func NewBusinessRuleError(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusBadRequest, details)
}

func NewNotFound(code, resource string, details map[string]any) error {
	return NewDomainError(code, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(code, message string) error {
	return NewDomainError(code, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string, details map[string]any) error {
	return NewDomainError(CodeInsufficientPermissions, message, http.StatusForbidden, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound(CodeNotFound, "resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError wraps unexpected errors at service boundaries.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
