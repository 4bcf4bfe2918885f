package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a PorterError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *PorterError {
	if err == nil {
		return nil
	}

	var pe *PorterError
	if errors.As(err, &pe) {
		return &PorterError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    pe,
			Context:  pe.Context,
			FilePath: pe.FilePath,
		}
	}

	return &PorterError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *PorterError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *PorterError {
	return Wrap(err, ErrorTypeConfig, code, message)
}

// Combine combines multiple errors into a single error
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return errors.Join(nonNil...)
	}
}

// GetContext extracts a context value from a PorterError
func GetContext(err error, key string) (interface{}, bool) {
	var pe *PorterError
	if errors.As(err, &pe) && pe.Context != nil {
		value, ok := pe.Context[key]
		return value, ok
	}
	return nil, false
}

// FormatError renders err for terminal output, including its path when known
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var pe *PorterError
	if errors.As(err, &pe) && pe.FilePath != "" {
		if pe.Cause != nil {
			return fmt.Sprintf("%s (%s): %v", pe.Message, pe.FilePath, pe.Cause)
		}
		return fmt.Sprintf("%s (%s)", pe.Message, pe.FilePath)
	}
	return err.Error()
}
