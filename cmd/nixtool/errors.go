package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/G-Node/nix-sub001/types"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "validate", "dump")
	Cause       string   // The underlying cause (e.g., "file not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("failed to %s", e.Operation))
	} else {
		msg.WriteString("operation failed")
	}
	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewFileError creates an error for a file that could not be opened or read
func NewFileError(operation, path string, underlying error, suggestions ...string) *CLIError {
	cause := fmt.Sprintf("cannot open %s", path)
	switch {
	case errors.Is(underlying, os.ErrNotExist):
		cause = fmt.Sprintf("file %s not found", path)
	case errors.Is(underlying, os.ErrPermission):
		cause = fmt.Sprintf("insufficient permissions to access %s", path)
	case errors.Is(underlying, types.ErrUninitializedEntity):
		cause = fmt.Sprintf("%s is not a nix file", path)
		suggestions = append(suggestions, CommonSuggestions.CheckFormat)
	case errors.Is(underlying, types.ErrInvalidDataType):
		cause = fmt.Sprintf("%s has an unsupported format", path)
		suggestions = append(suggestions, CommonSuggestions.CheckFormat)
	case underlying != nil && strings.Contains(underlying.Error(), "lock"):
		cause = fmt.Sprintf("%s is locked by another process", path)
	}

	details := ""
	if underlying != nil {
		details = underlying.Error()
	}
	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// NewValidationError reports a file that failed validation
func NewValidationError(path string, errorCount int) *CLIError {
	return &CLIError{
		Operation: "validate",
		Cause:     fmt.Sprintf("%s has %d validation error(s)", path, errorCount),
	}
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	return &CLIError{
		Operation:   operation,
		Cause:       err.Error(),
		Suggestions: suggestions,
		Underlying:  err,
	}
}

// Common error messages and suggestions
var (
	CommonSuggestions = struct {
		CheckPath   string
		CheckFormat string
		CheckConfig string
		RunHelp     string
	}{
		CheckPath:   "Verify the file path exists and is readable",
		CheckFormat: "Only .json, .yaml and .yml nix files are supported",
		CheckConfig: "Check your configuration file or NIXTOOL_* environment variables",
		RunHelp:     "Run command with --help for usage information",
	}
)
