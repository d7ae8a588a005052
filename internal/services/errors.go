package services

import (
	"errors"
	"fmt"
)

// The service layer reports failures through a small set of typed errors.
// Handlers translate them to HTTP statuses; anything untyped is treated as
// an internal error, logged, and returned with a generic message.

// UnauthenticatedError means the caller's identity could not be established
// (missing, malformed, expired or forged token, or unknown user).
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

// NewUnauthenticatedError creates an UnauthenticatedError.
func NewUnauthenticatedError(message string) *UnauthenticatedError {
	return &UnauthenticatedError{Message: message}
}

// IsUnauthenticatedError checks if an error is an UnauthenticatedError.
func IsUnauthenticatedError(err error) (*UnauthenticatedError, bool) {
	var target *UnauthenticatedError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ForbiddenError means the caller is known but not allowed.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// IsForbiddenError checks if an error is a ForbiddenError.
func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var target *ForbiddenError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// NotFoundError means the referenced resource does not exist (or is hidden
// from the caller, e.g. a product of an inactive store).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var target *NotFoundError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// BadRequestError is a recoverable caller mistake: invalid payload values,
// insufficient stock, empty cart. Details, when set, carry structured
// field-level information for the response body.
type BadRequestError struct {
	Message string
	Details interface{}
}

func (e *BadRequestError) Error() string { return e.Message }

// NewBadRequestError creates a BadRequestError without details.
func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

// NewBadRequestErrorWithDetails creates a BadRequestError carrying
// structured details.
func NewBadRequestErrorWithDetails(message string, details interface{}) *BadRequestError {
	return &BadRequestError{Message: message, Details: details}
}

// IsBadRequestError checks if an error is a BadRequestError.
func IsBadRequestError(err error) (*BadRequestError, bool) {
	var target *BadRequestError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g., already exists)
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var target *ConflictError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
