/*
errors.go - Error types for the scenario engine

ERROR CATEGORIES:
  1. Catalog errors - malformed scenarios, rejected at load time
  2. Session errors - calls that reference a day or state that doesn't exist

Everything else degrades instead of failing: unknown distributions sample a
fallback amount, unknown option codes default to the first option, missing
reserved scenarios are injected.

SEE ALSO:
  - catalog.go: Produces ScenarioError
  - engine.go: Produces ErrDayNotProposed, ErrNotStarted
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedScenario wraps every catalog validation failure.
	ErrMalformedScenario = errors.New("malformed scenario")

	// ErrDuplicateScenario is returned when two catalog entries share an id.
	ErrDuplicateScenario = errors.New("duplicate scenario id")

	// ErrUnknownSpawnTarget is returned when a trigger names a scenario that
	// is not in the catalog.
	ErrUnknownSpawnTarget = errors.New("unknown spawn target")

	// ErrNotStarted is returned when Propose or Commit run before Start.
	ErrNotStarted = errors.New("engine not started")

	// ErrDayNotProposed is returned when committing a day with no pending
	// offers, or proposing a day that was already committed.
	ErrDayNotProposed = errors.New("day not proposed")

	// ErrInvalidDay is returned for days before 1, or past the day awaiting
	// commit.
	ErrInvalidDay = errors.New("invalid day")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ScenarioError names the offending catalog entry and field.
type ScenarioError struct {
	ID     ScenarioID
	Field  string
	Reason string
	Err    error
}

func (e *ScenarioError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("scenario: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("scenario %q: %s %s", e.ID, e.Field, e.Reason)
}

func (e *ScenarioError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformedScenario
}

func malformed(id ScenarioID, field, reason string) *ScenarioError {
	return &ScenarioError{ID: id, Field: field, Reason: reason}
}
