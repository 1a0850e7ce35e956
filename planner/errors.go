/*
errors.go - Centralized error types for the dispatch engine

PURPOSE:
  All engine error values in one place. The store and API layers wrap these
  with additional context and map them to HTTP statuses.

USAGE:
    if errors.Is(err, planner.ErrLockHeld) {
        // 409 to the caller, no partial state created
    }

SEE ALSO:
  - store/sqlite: returns ErrLockHeld from AcquireLock
  - api/handlers.go: maps errors to HTTP statuses
*/
package planner

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrLockHeld is returned when a rebuild is already running for an
	// overlapping window. Callers must retry later; acquisition never
	// queues.
	ErrLockHeld = errors.New("plan window lock held")

	// ErrManualOverlap is returned when a manual plan item would collide
	// with an existing interval for the same technician and date.
	ErrManualOverlap = errors.New("manual plan item overlaps existing interval")

	// ErrImmutablePlanItem is returned when a caller tries to delete an
	// engine-generated plan item. Auto items are owned by the rebuild.
	ErrImmutablePlanItem = errors.New("plan item is engine-owned")

	// ErrPlanItemNotFound is returned when a referenced plan item does not
	// exist.
	ErrPlanItemNotFound = errors.New("plan item not found")

	// ErrTechnicianNotFound is returned when a referenced technician does
	// not exist or is inactive.
	ErrTechnicianNotFound = errors.New("technician not found")

	// ErrInvalidWindow is returned for a malformed planning window.
	ErrInvalidWindow = errors.New("invalid planning window")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// OverlapError describes a manual-item collision.
type OverlapError struct {
	TechnicianID string
	Date         time.Time
	StartMinute  int
	EndMinute    int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("interval [%d,%d) overlaps existing booking for %s on %s",
		e.StartMinute, e.EndMinute, e.TechnicianID, e.Date.Format("2006-01-02"))
}

func (e *OverlapError) Unwrap() error {
	return ErrManualOverlap
}

// IsConflict reports whether the error is a concurrency conflict the caller
// should retry later.
func IsConflict(err error) bool {
	return errors.Is(err, ErrLockHeld)
}

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrManualOverlap) ||
		errors.Is(err, ErrImmutablePlanItem) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrPlanItemNotFound) ||
		errors.Is(err, ErrTechnicianNotFound)
}
