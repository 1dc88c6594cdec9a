package catalog

import (
	"errors"
	"fmt"
)

// Structural failures. Unlike audit findings these abort the whole run.
var (
	ErrUnreadable    = errors.New("spreadsheet unreadable")
	ErrNoRows        = errors.New("spreadsheet has no data rows")
	ErrColumnMissing = errors.New("required column missing")
)

// NewColumnMissingError reports which structural expectation was violated.
func NewColumnMissingError(field Field) error {
	return fmt.Errorf("%w: no %s column found", ErrColumnMissing, field)
}

// IsStructural reports whether err is fatal for the run, as opposed to a
// per-row finding that only lands in the error sheet.
func IsStructural(err error) bool {
	return errors.Is(err, ErrUnreadable) ||
		errors.Is(err, ErrNoRows) ||
		errors.Is(err, ErrColumnMissing)
}
