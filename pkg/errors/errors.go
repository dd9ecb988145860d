// Package errors provides custom error types for the draftsync system.
// Platform connectors normalize raw transport and service errors into
// this fixed taxonomy; the reconciliation engine's retry and isolation
// logic branches exclusively on it.
package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the draftsync system
var (
	// ErrAuth indicates that authentication against a platform failed
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited indicates that the platform rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrPermission indicates that the account lacks rights for an operation
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrTransient indicates a transient network failure worth retrying
	ErrTransient = errors.New("transient network error")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// AuthError represents an authentication failure against a platform.
// Once observed, every subsequent operation against that platform
// short-circuits for the remainder of the run.
type AuthError struct {
	Platform string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed for %s: %s", e.Platform, e.Message)
	}
	return fmt.Sprintf("authentication failed for %s", e.Platform)
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// NewAuthError creates a new AuthError
func NewAuthError(platform, message string, err error) *AuthError {
	return &AuthError{Platform: platform, Message: message, Err: err}
}

// RateLimitError represents a platform rate limit response.
// RetryAfter carries the server-advertised delay when present;
// zero means the caller should fall back to exponential backoff.
type RateLimitError struct {
	Platform   string
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded on %s, retry after %s", e.Platform, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded on %s", e.Platform)
}

// Is implements errors.Is support
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(platform string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Platform: platform, RetryAfter: retryAfter}
}

// PermissionError represents an operation the account is not allowed to
// perform, e.g. deleting an article on a shared publication with
// contributor rather than admin rights.
type PermissionError struct {
	Platform  string
	Operation string
	ArticleID string
	Message   string
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	if e.ArticleID != "" {
		return fmt.Sprintf("permission denied on %s: cannot %s article %s", e.Platform, e.Operation, e.ArticleID)
	}
	return fmt.Sprintf("permission denied on %s: cannot %s", e.Platform, e.Operation)
}

// Is implements errors.Is support
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(platform, operation, articleID string) *PermissionError {
	return &PermissionError{Platform: platform, Operation: operation, ArticleID: articleID}
}

// NotFoundError represents a missing remote resource
type NotFoundError struct {
	Platform string
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s %s not found on %s", e.Resource, e.ID, e.Platform)
	}
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(platform, resource, id string) *NotFoundError {
	return &NotFoundError{Platform: platform, Resource: resource, ID: id}
}

// TransientError represents a network-level failure that is worth
// retrying with backoff: timeouts, connection resets, 5xx responses.
type TransientError struct {
	Platform string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *TransientError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transient error on %s: %s", e.Platform, e.Message)
	}
	return fmt.Sprintf("transient error on %s: %v", e.Platform, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// NewTransientError creates a new TransientError
func NewTransientError(platform string, err error) *TransientError {
	return &TransientError{Platform: platform, Err: err}
}

// APIError represents an error from a platform API that does not map
// onto a more specific category. It is the taxonomy's UnknownError.
type APIError struct {
	Platform   string
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Platform, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(platform string, statusCode int, message string) *APIError {
	return &APIError{Platform: platform, StatusCode: statusCode, Message: message}
}

// ConfigError represents a configuration error. Configuration errors
// are the only errors that escape the reconciliation engine; they
// abort a run before any I/O occurs.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "json", "frontmatter"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// IOError represents an error during local I/O operations
type IOError struct {
	Operation string // "read", "write", "scan"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Helper functions for error checking

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsPermission checks if an error is a permission error
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient checks if an error is a transient network error
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsRetryable reports whether the engine should retry the operation
// that produced err. Only rate limiting and transient network errors
// qualify; everything else either fails the pair or short-circuits.
func IsRetryable(err error) bool {
	return IsRateLimited(err) || IsTransient(err)
}

// RetryAfter extracts the server-advertised retry delay from a rate
// limit error, or zero if none was provided.
func RetryAfter(err error) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return 0
}

// Category returns the taxonomy category of an error for reporting:
// auth, rate_limit, permission, not_found, transient, config or unknown.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case IsAuth(err):
		return "auth"
	case IsRateLimited(err):
		return "rate_limit"
	case IsPermission(err):
		return "permission"
	case IsNotFound(err):
		return "not_found"
	case IsTransient(err):
		return "transient"
	case errors.Is(err, ErrInvalidInput):
		return "config"
	default:
		return "unknown"
	}
}
