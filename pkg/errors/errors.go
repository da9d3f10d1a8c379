package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the collection pipeline

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// External source errors

var (
	// ErrRateLimited indicates an external API rejected a call for rate limiting.
	// The trend signal treats this class as retryable; everything else degrades
	// to a neutral result immediately.
	ErrRateLimited = errors.New("rate limited by external API")

	// ErrMissingCredentials indicates a source has no API credentials configured.
	// Detected at construction time; the source stays disabled for the whole run.
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrNoQuote indicates the quote service returned no usable closing price
	ErrNoQuote = errors.New("no valid closing price")
)

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
