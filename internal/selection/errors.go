package selection

import (
	"fmt"

	"github.com/abhisek/paperforge/internal/classify"
)

// ErrCapacityExceeded rejects a toggle that would overfill a division.
// The selection set is unchanged when it is returned.
type ErrCapacityExceeded struct {
	Division classify.Division
	Limit    int
}

func (e *ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("division %d is already at its ceiling of %d", e.Division, e.Limit)
}

// ErrCounterSync reports a frequency counter update that failed after
// the selection mutation committed. Callers log or retry; they must not
// roll back the selection.
type ErrCounterSync struct {
	ItemID string
	Op     string // "increment" or "decrement"
	Err    error
}

func (e *ErrCounterSync) Error() string {
	return fmt.Sprintf("%s frequency of %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ErrCounterSync) Unwrap() error { return e.Err }
