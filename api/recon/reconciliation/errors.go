package reconciliation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input rejected before any mutation.
type ValidationError struct {
	EntityID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s: %s", e.EntityID, e.Field, e.Reason)
}

// InvalidStateError reports an illegal workflow transition. It names both the
// current state and what was attempted.
type InvalidStateError struct {
	EntityID  string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition for %s: cannot %s while %s", e.EntityID, e.Attempted, e.Current)
}

// ConsistencyError reports drift between stored header totals and the current
// item-level detail. It is surfaced for manual repair, never auto-corrected.
type ConsistencyError struct {
	EntityID string
	Field    string
	Stored   decimal.Decimal
	Computed decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation on %s: %s stored=%s computed=%s",
		e.EntityID, e.Field, e.Stored.String(), e.Computed.String())
}

// ConcurrencyConflict reports a lost update detected through the version column.
type ConcurrencyConflict struct {
	EntityID string
	Version  int64
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("concurrent update detected on %s (version %d)", e.EntityID, e.Version)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}

// IsConflict reports whether err is a ConcurrencyConflict.
func IsConflict(err error) bool {
	var cc *ConcurrencyConflict
	return errors.As(err, &cc)
}
