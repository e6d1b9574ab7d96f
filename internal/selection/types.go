// Package selection holds the live set of questions chosen for a
// section: toggle semantics, capacity rules, the auto-correction pass
// and the review statuses layered on top.
package selection

import (
	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
)

// Status is the review state of a selection record. It plays no part in
// quota satisfaction; only the review workflow reads it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusReview   Status = "review"
)

// Record is one chosen question, annotated with where it was filed.
type Record struct {
	ItemID      string
	ChapterCode string
	ChapterName string
	Difficulty  bank.Difficulty
	Division    classify.Division
	Status      Status
}

// Row converts a record to its serializable snapshot form.
func (r Record) Row() bank.SelectionRow {
	return bank.SelectionRow{
		ItemID:      r.ItemID,
		ChapterCode: r.ChapterCode,
		ChapterName: r.ChapterName,
		Difficulty:  r.Difficulty,
		Division:    r.Division,
		Status:      string(r.Status),
	}
}

func recordFromRow(row bank.SelectionRow) Record {
	return Record{
		ItemID:      row.ItemID,
		ChapterCode: row.ChapterCode,
		ChapterName: row.ChapterName,
		Difficulty:  row.Difficulty,
		Division:    row.Division,
		Status:      Status(row.Status),
	}
}

// ToggleResult reports what a toggle did. CounterErr carries a failed
// paired frequency update; the selection mutation itself has already
// committed when it is set.
type ToggleResult struct {
	Added      bool
	Record     Record
	CounterErr error
}
