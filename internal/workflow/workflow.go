// Package workflow sequences the per-section paper-assembly flow:
// configure quotas, select questions, review, complete. Transitions are
// gated on quota satisfaction and review acceptance.
package workflow

import (
	"fmt"
)

// Phase is a section workflow position.
type Phase string

const (
	PhaseConfiguring Phase = "configuring"
	PhaseSelecting   Phase = "selecting"
	PhaseReviewing   Phase = "reviewing"
	PhaseComplete    Phase = "complete"
)

// ErrWrongPhase rejects an operation invoked outside its phase.
type ErrWrongPhase struct {
	Op    string
	Phase Phase
}

func (e *ErrWrongPhase) Error() string {
	return fmt.Sprintf("%s is not allowed in the %s phase", e.Op, e.Phase)
}

// ErrQuotaUnsatisfied rejects a forward transition while division totals
// are off target. Deficits is the exact human-readable shortfall text,
// e.g. "need 3 more for division 1".
type ErrQuotaUnsatisfied struct {
	Section  string
	Deficits string
}

func (e *ErrQuotaUnsatisfied) Error() string {
	return fmt.Sprintf("section %s quota unsatisfied: %s", e.Section, e.Deficits)
}

// ErrReviewIncomplete rejects completion while records await review.
type ErrReviewIncomplete struct {
	NotAccepted int
}

func (e *ErrReviewIncomplete) Error() string {
	return fmt.Sprintf("%d selection record(s) not yet accepted", e.NotAccepted)
}
