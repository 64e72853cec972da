package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-correctable failure. It aborts the operation
// that raised it with no partial writes.
type ValidationError struct {
	Message  string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Message
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d problems):", e.Message, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationErrorFromList folds a list of errors into one ValidationError.
// Returns nil when errs is empty.
func ValidationErrorFromList(message string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		problems = append(problems, e.Error())
	}
	return &ValidationError{Message: message, Problems: problems}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Notice is an informational outcome of an operation that did nothing.
// It is not an error.
type Notice struct {
	Message string
}

func (n *Notice) String() string {
	if n == nil {
		return ""
	}
	return n.Message
}
