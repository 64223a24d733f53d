package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/streakline/internal/logger"
)

var (
	// ErrNotFound is returned when a habit or completion log does not exist or
	// belongs to another user. The two cases are never distinguished.
	ErrNotFound = errors.New("not found")
	// ErrFutureDate is returned when a completion is logged for a date after today.
	ErrFutureDate = errors.New("cannot log completion for a future date")
	// ErrInvalidCadence is returned for a weekly cadence without weekdays or a
	// custom cadence without a positive interval.
	ErrInvalidCadence = errors.New("invalid cadence")
	// ErrConcurrencyConflict is returned when the store reports a serialization
	// failure or lock timeout during a mutation. It is safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")
	// ErrValidation is returned for malformed habit or completion input.
	ErrValidation = errors.New("validation failed")
)

// Validationf returns an ErrValidation wrapping a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err is worth retrying as a whole unit of work.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
