// FILE: logfeeder/src/internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// Invalid or missing descriptor fields, fatal to one input only
	ErrConfiguration = errors.New("configuration error")

	// A single record failed inside a filter stage
	ErrFilterProcessing = errors.New("filter processing error")

	// Unrecoverable read failure in a source
	ErrIO = errors.New("io error")
)

// FilterError reports a record-level failure raised by one filter stage.
type FilterError struct {
	Stage string
	Err   error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter '%s': %v", e.Stage, e.Err)
}

func (e *FilterError) Unwrap() []error {
	return []error{ErrFilterProcessing, e.Err}
}

// Wraps err as a configuration error for the named component
func ConfigError(component string, err error) error {
	return fmt.Errorf("%s: %w: %w", component, ErrConfiguration, err)
}
