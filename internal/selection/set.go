package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
	"github.com/abhisek/paperforge/internal/quota"
)

// CapacityRule decides whether one more record may enter the set.
// Returning a non-nil error (normally *ErrCapacityExceeded) rejects the
// toggle without mutating anything.
type CapacityRule func(records []Record, incoming Record) error

// SectionCeiling caps each division at the section-wide policy total.
// This is the manual-selection rule: 20/20 division-1 slots filled means
// no more choice questions anywhere in the section.
func SectionCeiling(policy quota.SectionPolicy) CapacityRule {
	return func(records []Record, incoming Record) error {
		limit := policy.DivisionOneTotal
		if incoming.Division == classify.DivisionTwo {
			limit = policy.DivisionTwoTotal
		}
		count := 0
		for _, r := range records {
			if r.Division == incoming.Division {
				count++
			}
		}
		if count >= limit {
			return &ErrCapacityExceeded{Division: incoming.Division, Limit: limit}
		}
		return nil
	}
}

// ChapterCeiling caps selections per chapter at externally supplied
// counts, the locked-chapter workflow rule. Chapters missing from limits
// are unconstrained.
func ChapterCeiling(limits map[string]int) CapacityRule {
	return func(records []Record, incoming Record) error {
		limit, ok := limits[incoming.ChapterCode]
		if !ok {
			return nil
		}
		count := 0
		for _, r := range records {
			if r.ChapterCode == incoming.ChapterCode {
				count++
			}
		}
		if count >= limit {
			return &ErrCapacityExceeded{Division: incoming.Division, Limit: limit}
		}
		return nil
	}
}

// Set is the mutable, ordered collection of chosen questions for one
// section, unique by item identifier. All mutations are serialized by an
// internal mutex: a second toggle on the same set waits for the first's
// side effects to settle, so paired counter updates can't interleave.
type Set struct {
	mu       sync.Mutex
	records  []Record
	capacity CapacityRule
	counter  bank.FrequencyCounter
}

// NewSet creates an empty selection set. capacity may be nil for an
// unconstrained set (the auto-selector applies its own quotas).
func NewSet(capacity CapacityRule, counter bank.FrequencyCounter) *Set {
	return &Set{capacity: capacity, counter: counter}
}

// SetCapacity replaces the capacity rule consulted by subsequent
// toggles. Existing records are not re-checked.
func (s *Set) SetCapacity(capacity CapacityRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = capacity
}

// Restore rebuilds a set from a persisted snapshot, replacing current
// contents.
func (s *Set) Restore(rows []bank.SelectionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
	for _, row := range rows {
		s.records = append(s.records, recordFromRow(row))
	}
}

// Toggle adds the item if absent and removes it if present.
//
// On add, the division is the classifier's verdict on the item (the
// hint parameter is advisory only and never trusted) and the frequency
// counter is incremented. On remove, the counter is decremented. A
// failed counter update is surfaced in ToggleResult.CounterErr but never
// rolls back the selection mutation: selection-state consistency wins
// over counter accuracy.
//
// A rejected add (capacity) returns *ErrCapacityExceeded with the set
// untouched and no counter traffic.
func (s *Set) Toggle(ctx context.Context, item bank.Item, chapterCode, chapterName string, difficulty bank.Difficulty, hint classify.Division) (ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		removed := s.records[i]
		s.records = append(s.records[:i], s.records[i+1:]...)
		res := ToggleResult{Added: false, Record: removed}
		if err := s.counter.DecrementFrequency(ctx, item.ID); err != nil {
			res.CounterErr = &ErrCounterSync{ItemID: item.ID, Op: "decrement", Err: err}
		}
		return res, nil
	}

	rec := Record{
		ItemID:      item.ID,
		ChapterCode: chapterCode,
		ChapterName: chapterName,
		Difficulty:  difficulty,
		Division:    item.Division(),
		Status:      StatusPending,
	}

	if s.capacity != nil {
		if err := s.capacity(s.records, rec); err != nil {
			return ToggleResult{}, err
		}
	}

	s.records = append(s.records, rec)
	res := ToggleResult{Added: true, Record: rec}
	if err := s.counter.IncrementFrequency(ctx, item.ID); err != nil {
		res.CounterErr = &ErrCounterSync{ItemID: item.ID, Op: "increment", Err: err}
	}
	return res, nil
}

// SetStatus updates the review status of one record.
func (s *Set) SetStatus(itemID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(itemID)
	if i < 0 {
		return fmt.Errorf("no selection record for item %s", itemID)
	}
	s.records[i].Status = status
	return nil
}

// AllAccepted reports whether every record has been accepted in review.
// True for an empty set.
func (s *Set) AllAccepted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Status != StatusAccepted {
			return false
		}
	}
	return true
}

// Records returns a copy of the current records in selection order.
func (s *Set) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Snapshot returns the serializable form handed to the persister after
// every mutation.
func (s *Set) Snapshot() []bank.SelectionRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]bank.SelectionRow, len(s.records))
	for i, r := range s.records {
		rows[i] = r.Row()
	}
	return rows
}

// Len returns the number of selected items.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Contains reports whether an item is currently selected.
func (s *Set) Contains(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(itemID) >= 0
}

func (s *Set) indexOf(itemID string) int {
	for i, r := range s.records {
		if r.ItemID == itemID {
			return i
		}
	}
	return -1
}
