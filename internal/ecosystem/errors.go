package ecosystem

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is matched by every layout validation failure.
var ErrInvalidLayout = errors.New("invalid layout input")

// LayoutError describes which part of the input was rejected.
type LayoutError struct {
	Field   string
	Message string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid layout input: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is support
func (e *LayoutError) Is(target error) bool {
	return target == ErrInvalidLayout
}

func newLayoutError(field, message string) *LayoutError {
	return &LayoutError{Field: field, Message: message}
}
