// Package errors defines the structured error taxonomy for the veneer
// pipeline.
//
// The taxonomy mirrors the pipeline's failure policy: a missing full-page
// template is benign and degrades to pass-through, a missing fragment
// template is fatal, a render failure leaves the original response
// untouched, and malformed addressing is forced to behave as not-found.
// Errors carry a type, a stable code, and an optional cause so callers can
// branch on kind without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeTemplateMissing ErrorType = "template_missing"
	ErrorTypeRender          ErrorType = "render"
	ErrorTypeAddressing      ErrorType = "addressing"
	ErrorTypeStore           ErrorType = "store"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeInternal        ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeTemplateMissing = "ERR_TEMPLATE_MISSING"
	ErrCodeFragmentMissing = "ERR_FRAGMENT_MISSING"
	ErrCodeRenderFailed    = "ERR_RENDER_FAILED"
	ErrCodeBadAddress      = "ERR_BAD_ADDRESS"
	ErrCodeStore           = "ERR_STORE"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeInternalError   = "ERR_INTERNAL"
)

// VeneerError is a structured error type with context.
type VeneerError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *VeneerError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *VeneerError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *VeneerError) Is(target error) bool {
	var t *VeneerError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *VeneerError) WithContext(key string, value interface{}) *VeneerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// Error creation functions

// NewTemplateMissing creates an error for a full-page template that does
// not exist. This error is benign: the pipeline responds by passing the
// original response through untouched.
func NewTemplateMissing(name string) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeTemplateMissing,
		Code:    ErrCodeTemplateMissing,
		Message: "template not found: " + name,
	}
}

// NewFragmentMissing creates an error for a fragment template that does
// not exist. Unlike a full-page miss this is fatal: the client explicitly
// requested a specific DOM replacement and must receive a loud failure.
func NewFragmentMissing(target string) *VeneerError {
	e := &VeneerError{
		Type:    ErrorTypeTemplateMissing,
		Code:    ErrCodeFragmentMissing,
		Message: "fragment template not found for target: " + target,
	}

	return e.WithContext("target", target)
}

// NewRenderFailure creates an error for a template that exists but failed
// to render.
func NewRenderFailure(name string, cause error) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeRender,
		Code:    ErrCodeRenderFailed,
		Message: "rendering template failed: " + name,
		Cause:   cause,
	}
}

// NewBadAddress creates an error for a request path with structurally
// invalid extra trailing segments.
func NewBadAddress(path string) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeAddressing,
		Code:    ErrCodeBadAddress,
		Message: "malformed resource address: " + path,
	}
}

// NewStoreError creates an error for a failed document store operation.
func NewStoreError(message string, cause error) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeStore,
		Code:    ErrCodeStore,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *VeneerError {
	return &VeneerError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// Predicates

// IsTemplateMissing reports whether err is any template-missing error,
// full-page or fragment.
func IsTemplateMissing(err error) bool {
	var ve *VeneerError
	if errors.As(err, &ve) {
		return ve.Type == ErrorTypeTemplateMissing
	}

	return false
}

// IsFragmentMissing reports whether err is the strict fragment-resolution
// failure.
func IsFragmentMissing(err error) bool {
	var ve *VeneerError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeFragmentMissing
	}

	return false
}

// IsRenderFailure reports whether err came from a failed template render.
func IsRenderFailure(err error) bool {
	var ve *VeneerError
	if errors.As(err, &ve) {
		return ve.Type == ErrorTypeRender
	}

	return false
}

// IsBadAddress reports whether err came from malformed addressing.
func IsBadAddress(err error) bool {
	var ve *VeneerError
	if errors.As(err, &ve) {
		return ve.Type == ErrorTypeAddressing
	}

	return false
}

// IsStoreError reports whether err came from a document-store operation.
func IsStoreError(err error) bool {
	var ve *VeneerError
	if errors.As(err, &ve) {
		return ve.Type == ErrorTypeStore
	}

	return false
}

// FragmentTarget extracts the target id carried by a fragment-missing
// error, or "" when err is not one.
func FragmentTarget(err error) string {
	var ve *VeneerError
	if !errors.As(err, &ve) || ve.Code != ErrCodeFragmentMissing {
		return ""
	}
	if target, ok := ve.Context["target"].(string); ok {
		return target
	}

	return ""
}
