package services

import (
	"errors"
	"fmt"

	"github.com/imagingpedia/learning-service/internal/validator"
)

// Sentinel errors matched by the HTTP layer.
var (
	ErrSubjectNotFound          = errors.New("subject not found")
	ErrPracticeSubjectNotFound  = errors.New("practice subject not found")
	ErrQuestionNotFound         = errors.New("question not found")
	ErrPracticeQuestionNotFound = errors.New("practice question not found")
	ErrStudentNotFound          = errors.New("student not found")
	ErrSessionNotFound          = errors.New("test session not found")
	ErrAdminNotFound            = errors.New("admin not found")

	ErrParentSubjectNotFound = errors.New("parent subject not found")
	ErrDuplicateSubjectName  = errors.New("a subject with this name already exists under the same parent")
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrMissingAuthorization  = errors.New("missing authorization header")
)

// ValidationErrors is re-exported so callers can errors.As against one type.
type ValidationErrors = validator.ValidationErrors

// NewValidationError builds a single-field validation failure.
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// BusinessRuleError marks an operation that is valid syntactically but not
// allowed in the current state, e.g. answering a submitted session.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// PermissionError marks a denied action on a resource.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %s", e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}
