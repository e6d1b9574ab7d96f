package selection

import (
	"github.com/abhisek/paperforge/internal/classify"
)

// ClassifyInput resolves the current classification inputs (answer text
// and manual override) for an item. ok=false means the item is unknown,
// in which case its record is left alone.
type ClassifyInput func(itemID string) (answer string, override classify.Override, ok bool)

// Correct re-files division-1 records whose classifier verdict has
// drifted to division 2, e.g. after a manual override edit. It never
// moves a record the other way: division 1 is the default landing zone
// and this pass is only the safety net for numerical answers parked
// there. Identifier, chapter and difficulty are untouched.
//
// Returns whether anything changed. A clean pass mutates nothing, so
// reactive callers can skip recomputation and no new identities are
// created spuriously.
func (s *Set) Correct(resolve ClassifyInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.records {
		if s.records[i].Division != classify.DivisionOne {
			continue
		}
		answer, override, ok := resolve(s.records[i].ItemID)
		if !ok {
			continue
		}
		if classify.Classify(answer, override) == classify.DivisionTwo {
			s.records[i].Division = classify.DivisionTwo
			changed = true
		}
	}
	return changed
}
