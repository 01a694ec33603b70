package shared

import "fmt"

// DomainError represents a domain-level error.
// Code is the error category used for status mapping, Reason is the
// message key used for localization.
type DomainError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Args    []any  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if len(e.Args) == 0 {
		return e.Message
	}
	return fmt.Sprintf(e.Message, e.Args...)
}

// Is reports whether target is the same category. A target without a reason
// matches every reason within the category.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// WithReason returns a copy of the error with a specific message key and text
func (e *DomainError) WithReason(reason, message string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Reason:  reason,
		Message: message,
	}
}

// WithArgs returns a copy of the error carrying format arguments for the message
func (e *DomainError) WithArgs(args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Reason:  e.Reason,
		Message: e.Message,
		Args:    args,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConflict      = NewDomainError("CONFLICT", "Resource is in use")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInternal      = NewDomainError("INTERNAL_ERROR", "Internal error")
)
