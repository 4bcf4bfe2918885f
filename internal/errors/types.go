// Package errors defines the structured error type raised by the template
// file layer.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeTemplate   ErrorType = "template"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeFileNotFound   = "ERR_FILE_NOT_FOUND"
	ErrCodeFileRead       = "ERR_FILE_READ"
	ErrCodeFileWrite      = "ERR_FILE_WRITE"
	ErrCodePathEscape     = "ERR_PATH_ESCAPE"
	ErrCodeTemplateSyntax = "ERR_TEMPLATE_SYNTAX"
	ErrCodeTemplateExec   = "ERR_TEMPLATE_EXEC"
	ErrCodeUnknownEngine  = "ERR_UNKNOWN_ENGINE"
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeInvalidVar     = "ERR_INVALID_VARIABLE"
)

// PorterError is a structured error type with context.
type PorterError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	FilePath string
}

// Error implements the error interface.
func (e *PorterError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PorterError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *PorterError) Is(target error) bool {
	var t *PorterError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PorterError) WithContext(key string, value interface{}) *PorterError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file the error concerns.
func (e *PorterError) WithPath(filePath string) *PorterError {
	e.FilePath = filePath

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PorterError {
	return &PorterError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *PorterError {
	return &PorterError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PorterError {
	return &PorterError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewTemplateError creates a template parse or execution error.
func NewTemplateError(code, message string, cause error) *PorterError {
	return &PorterError{
		Type:    ErrorTypeTemplate,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PorterError {
	return &PorterError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// Helper functions for common errors

// ErrFileNotFound creates a missing template file error. It matches
// fs.ErrNotExist with errors.Is.
func ErrFileNotFound(path string) *PorterError {
	return NewIOError(ErrCodeFileNotFound, "template file not found", fs.ErrNotExist).WithPath(path)
}

// ErrFileRead creates a template read failure.
func ErrFileRead(path string, cause error) *PorterError {
	return NewIOError(ErrCodeFileRead, "reading template file", cause).WithPath(path)
}

// ErrPathEscape creates an error for a path resolving outside the template
// directory.
func ErrPathEscape(path string) *PorterError {
	return NewSecurityError(ErrCodePathEscape, "path escapes template directory").WithPath(path)
}

// ErrTemplateSyntax creates a template compilation error.
func ErrTemplateSyntax(path string, cause error) *PorterError {
	return NewTemplateError(ErrCodeTemplateSyntax, "parsing template", cause).WithPath(path)
}

// ErrTemplateExec creates a template execution error.
func ErrTemplateExec(path string, cause error) *PorterError {
	return NewTemplateError(ErrCodeTemplateExec, "executing template", cause).WithPath(path)
}

// ErrUnknownEngine creates an error for an unsupported engine name.
func ErrUnknownEngine(name string) *PorterError {
	return NewConfigError(ErrCodeUnknownEngine, "unknown template engine: "+name)
}

// Classification helpers

// IsNotFound reports whether err is a missing-file error.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	var pe *PorterError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeSecurity
	}

	return false
}

// IsTemplateError checks if an error came from parsing or executing a
// template.
func IsTemplateError(err error) bool {
	var pe *PorterError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypeTemplate
	}

	return false
}
