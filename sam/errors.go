/*
errors.go - Centralized error types for the analytics engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers (API, CLI) map these to transport-level responses.

ERROR POLICY:
  Only structural failures are errors. An empty required table halts the
  run; a product or department that doesn't exist is a not-found error on
  lookup operations. Data-quality issues - unmatched join keys, null dates,
  missing costs - are NEVER errors: they coerce to defaults and the
  computation returns a best-effort result. Missing optional columns
  disable the dependent feature and surface as warnings, not failures.

USAGE:
  if errors.Is(err, sam.ErrEmptyDataset) { ... }

SEE ALSO:
  - dataset.go: Validate() produces EmptyDatasetError
  - ingest:     schema warnings for missing columns
*/
package sam

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyDataset is returned when a required input table is empty.
	// This is fatal to the analytic run: no partial output is produced.
	ErrEmptyDataset = errors.New("required input table is empty")

	// ErrNoLicense is returned when an operation references a product with
	// no license row.
	ErrNoLicense = errors.New("no license found for product")

	// ErrMissingDepartment is returned by department allocation when the
	// users table carries no department column. The feature is disabled;
	// everything else still runs.
	ErrMissingDepartment = errors.New("users table has no department column")

	// ErrInvalidReduction is returned when a scenario's seat reduction is
	// negative or exceeds the purchased seat count.
	ErrInvalidReduction = errors.New("seat reduction out of range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// EmptyDatasetError names the required tables that were empty.
type EmptyDatasetError struct {
	Tables []string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("required input tables are empty: %s", strings.Join(e.Tables, ", "))
}

func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

// UnknownProductError names the product an operation failed to find.
type UnknownProductError struct {
	Software string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("no license found for product %q", e.Software)
}

func (e *UnknownProductError) Unwrap() error { return ErrNoLicense }

// ReductionRangeError reports a scenario reduction outside [0, seats].
type ReductionRangeError struct {
	Software       string
	Requested      int
	SeatsPurchased int
}

func (e *ReductionRangeError) Error() string {
	return fmt.Sprintf("seat reduction %d for %q out of range [0, %d]",
		e.Requested, e.Software, e.SeatsPurchased)
}

func (e *ReductionRangeError) Unwrap() error { return ErrInvalidReduction }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsFatal reports whether the error must halt the analytic run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEmptyDataset)
}

// IsNotFound reports whether the error is a missing-entity lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoLicense)
}

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReduction)
}
