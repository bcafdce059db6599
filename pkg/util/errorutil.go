package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies application errors. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindMissingField
	KindDuplicateEmail
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// HTTPStatus returns the transport status for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindMissingField, KindDuplicateEmail:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the stable machine-readable code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindMissingField:
		return "MISSING_FIELD"
	case KindDuplicateEmail:
		return "DUPLICATE_EMAIL"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) String() string {
	return k.Code()
}

// DomainError standardizes application errors.
type DomainError struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
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

// Code is a shorthand for e.Kind.Code().
func (e *DomainError) Code() string {
	return e.Kind.Code()
}

// HTTPStatus is a shorthand for e.Kind.HTTPStatus().
func (e *DomainError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, message, details)
}

// NewMissingField reports required fields that were empty or absent.
func NewMissingField(message string, fields ...string) error {
	var details map[string]any
	if len(fields) > 0 {
		details = map[string]any{"fields": fields}
	}
	return NewDomainError(KindMissingField, message, details)
}

func NewDuplicateEmail(message string) error {
	return NewDomainError(KindDuplicateEmail, message, nil)
}

func NewInvalidCredentials(message string) error {
	return NewDomainError(KindInvalidCredentials, message, nil)
}

// NewUnauthenticated wraps the verifier failure so operators can see which state rejected the request.
func NewUnauthenticated(message string, cause error) error {
	return &DomainError{Kind: KindUnauthenticated, Message: message, Err: cause}
}

func NewForbidden(message string) error {
	return NewDomainError(KindForbidden, message, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(KindNotFound, fmt.Sprintf("%s not found", resource), details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// IsKind reports whether err carries a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind == kind
	}
	return false
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
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case http.StatusNotFound:
			return &DomainError{Kind: KindNotFound, Message: fiberErr.Message, Err: err}
		case http.StatusMethodNotAllowed, http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &DomainError{Kind: KindValidation, Message: fiberErr.Message, Err: err}
		}
	}
	return &DomainError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}
