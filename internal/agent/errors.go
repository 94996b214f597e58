package agent

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests whose content is empty or malformed.
var ErrInvalidInput = errors.New("invalid input")

// FormatValidationError reports generated text that failed content checks.
type FormatValidationError struct {
	Kind   string
	Reason string
}

func (e *FormatValidationError) Error() string {
	return fmt.Sprintf("%s format validation failed: %s", e.Kind, e.Reason)
}

// CodeValidationError reports generated code that failed the essential
// structure checks, carrying which checks did not pass.
type CodeValidationError struct {
	FailedChecks []string
}

func (e *CodeValidationError) Error() string {
	return fmt.Sprintf("generated code validation failed: %v", e.FailedChecks)
}
