package checkpoint

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrOutOfBounds      = errors.New("array extends beyond data section")
	ErrOffsetOverlap    = errors.New("array offsets overlap")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrUnknownVariable  = errors.New("unknown variable")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// MaxHeaderSize bounds the JSON header accepted by Read.
const MaxHeaderSize = 100 * 1024 * 1024

// ValidationError provides detailed information about a malformed entry.
type ValidationError struct {
	Err     error  // One of the sentinel errors above
	Name    string // Entry involved, if any
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%v: %q: %s", e.Err, e.Name, e.Details)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Details)
}

// Unwrap returns the sentinel error so errors.Is works.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
