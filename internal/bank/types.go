// Package bank owns the tagged question bank: the embedded SQLite store,
// candidate queries, usage-frequency counters and YAML ingestion. The
// selection engine talks to it only through the interfaces declared here.
package bank

import (
	"context"

	"github.com/abhisek/paperforge/internal/classify"
)

// Difficulty is the declared difficulty band of a question. Empty means
// the question was ingested without one.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ClassTag is the secondary classification on a question (0 = unset).
// Only the auto-selector consults it, for distribution balancing.
type ClassTag int

// Option is one answer choice, which may carry text, an image, or both.
type Option struct {
	Text     string `yaml:"text"`
	ImageURL string `yaml:"image_url"`
}

// Item is a single question-bank record.
type Item struct {
	ID               string
	Question         string
	QuestionImageURL string
	OptionA          Option
	OptionB          Option
	OptionC          Option
	OptionD          Option
	Answer           string
	Chapter          string
	Difficulty       Difficulty
	Pool             string
	Year             string
	Override         classify.Override
	Class            ClassTag
	Frequency        int
	Tags             []string
}

// Division returns the item's division per the classifier.
func (it Item) Division() classify.Division {
	return classify.Classify(it.Answer, it.Override)
}

// CandidateQuery scopes a candidate lookup. Zero values widen the query:
// an empty Pool or Chapter matches everything, a zero Class matches every
// class tag.
type CandidateQuery struct {
	Pool     string
	Chapter  string
	Division classify.Division
	Class    ClassTag
	Exclude  []string
	Limit    int

	// PreferLeastUsed orders candidates by ascending frequency with a
	// stable rowid tiebreak; otherwise the order is randomized.
	PreferLeastUsed bool
}

// CandidateSource supplies pool-scoped candidate lookups. Implementations
// return an empty slice, not an error, when nothing matches.
type CandidateSource interface {
	Candidates(ctx context.Context, q CandidateQuery) ([]Item, error)
}

// ItemLookup fetches a single item by identifier.
type ItemLookup interface {
	Item(ctx context.Context, id string) (Item, bool, error)
}

// FrequencyCounter tracks how often an item has been used in assembled
// papers. Decrement floors at zero.
type FrequencyCounter interface {
	IncrementFrequency(ctx context.Context, id string) error
	DecrementFrequency(ctx context.Context, id string) error
}

// SelectionRow is the serializable form of one selection record, as
// persisted and reloaded by a SnapshotPersister.
type SelectionRow struct {
	ItemID      string
	ChapterCode string
	ChapterName string
	Difficulty  Difficulty
	Division    classify.Division
	Status      string
}

// SnapshotPersister durably stores selection snapshots per project and
// section. Debouncing is the persister's concern, not the caller's.
type SnapshotPersister interface {
	SaveSelection(ctx context.Context, project, section string, rows []SelectionRow) error
	LoadSelection(ctx context.Context, project, section string) ([]SelectionRow, error)
}
