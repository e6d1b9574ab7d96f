// Package autoselect fills section quotas from the question bank in one
// shot: per-pool percentage splits, layered fallback across pool and
// class dimensions, and audit breakdowns of what was taken from where.
package autoselect

import (
	"fmt"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
)

// ChapterTarget is the number of questions wanted from one chapter.
type ChapterTarget struct {
	Chapter string `yaml:"chapter"`
	Count   int    `yaml:"count"`
}

// PoolShare is one pool's percentage of a section's total quota.
type PoolShare struct {
	Pool    string `yaml:"pool"`
	Percent int    `yaml:"percent"`
}

// SectionRequest declares what one section wants from the bank: a
// division type fixing the eligibility filter, ordered chapter targets,
// a pool split and optional class-tag targets.
type SectionRequest struct {
	Name         string
	Division     classify.Division
	Chapters     []ChapterTarget
	PoolShares   []PoolShare
	ClassTargets map[bank.ClassTag]int
}

// Total is the summed chapter quota for the section.
func (s SectionRequest) Total() int {
	total := 0
	for _, c := range s.Chapters {
		total += c.Count
	}
	return total
}

// Options are run-wide policy flags.
type Options struct {
	// PreferLeastUsed ranks candidates by ascending usage frequency
	// instead of randomly, making runs reproducible for fixed inputs.
	PreferLeastUsed bool

	// BumpFrequency increments the usage counter of every selected item
	// exactly once after all sections are processed.
	BumpFrequency bool
}

// Shortfall records a chapter the bank could not fully serve. It is a
// warning, not a failure: the run continues and still reports success.
type Shortfall struct {
	Section   string
	Chapter   string
	Requested int
	Missing   int
}

func (s Shortfall) String() string {
	return fmt.Sprintf("section %s chapter %s: requested %d, short %d", s.Section, s.Chapter, s.Requested, s.Missing)
}

// SectionResult is the audit output for one filled section.
type SectionResult struct {
	Name       string
	Selected   []string
	ByPool     map[string]int
	ByClass    map[bank.ClassTag]int
	ByChapter  map[string]int
	Shortfalls []Shortfall
}

// RunResult accumulates per-section results for a fill run. On a hard
// query failure the partial result built so far is still returned
// alongside the error.
type RunResult struct {
	RunID    string
	Sections []SectionResult
}

// Shortfalls flattens every section's warnings.
func (r *RunResult) Shortfalls() []Shortfall {
	var all []Shortfall
	for _, s := range r.Sections {
		all = append(all, s.Shortfalls...)
	}
	return all
}
