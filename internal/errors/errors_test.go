package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "sentinel", err: ErrFutureDate, expected: "Error: cannot log completion for a future date"},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("habit %q: %w", "h1", ErrNotFound),
			expected: `Error: habit "h1": not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("habit %s has %d logs", "read", 3)
	if got != "Error: habit read has 3 logs" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("name must be at most %d characters", 255)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "255 characters") {
		t.Errorf("reason missing from %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "conflict", err: ErrConcurrencyConflict, want: true},
		{name: "wrapped conflict", err: fmt.Errorf("log completion: %w", ErrConcurrencyConflict), want: true},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "future date", err: ErrFutureDate, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestFatal runs Fatal in a helper process and checks the exit code and output
func TestFatal(t *testing.T) {
	if os.Getenv("STREAKLINE_TEST_FATAL") == "1" {
		Fatal(ErrNotFound)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "STREAKLINE_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Fatal() did not exit with error: %v", err)
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(stderr.String(), "Error: not found") {
		t.Errorf("Fatal() stderr = %q", stderr.String())
	}
}

func TestFatal_NilError(t *testing.T) {
	if os.Getenv("STREAKLINE_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "STREAKLINE_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
