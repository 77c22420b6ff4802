package domain

import "errors"

// Error taxonomy shared by the valuation engine and its collaborators.
// Callers wrap these with context and test with errors.Is.
var (
	// ErrConfig means a required setting or credential is missing.
	ErrConfig = errors.New("configuration error")
	// ErrMissingField means a required vehicle attribute is absent or unparseable.
	ErrMissingField = errors.New("missing required field")
	// ErrNoData means no usable baseline price could be determined.
	ErrNoData = errors.New("no usable baseline data")
	// ErrInvalidInput means a numeric input to the adjuster is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProvider wraps an opaque failure from an external collaborator.
	ErrProvider = errors.New("provider error")
)
