// Package quota models the per-section target structure: how many
// division-1, division-2 and per-difficulty questions each chapter must
// contribute.
package quota

import (
	"fmt"
	"strings"
)

// Entry holds the declared targets for one chapter within a section.
type Entry struct {
	ChapterCode string `yaml:"chapter"`
	ChapterName string `yaml:"name"`
	DivisionOne int    `yaml:"division_one"`
	DivisionTwo int    `yaml:"division_two"`
	Easy        int    `yaml:"easy"`
	Medium      int    `yaml:"medium"`
	Hard        int    `yaml:"hard"`

	// Extra is an open-ended bag reserved for future constraints. The
	// engine carries it through untouched and assigns it no meaning.
	Extra map[string]any `yaml:"extra,omitempty"`
}

// SectionPolicy fixes the per-division totals a section must reach.
// The observed product rule is 20 choice + 5 numerical, but the engine
// treats the totals as configuration.
type SectionPolicy struct {
	DivisionOneTotal int `yaml:"division_one_total"`
	DivisionTwoTotal int `yaml:"division_two_total"`
}

// DefaultSectionPolicy is the shipped product rule: 20 multiple-choice
// and 5 numerical questions per section.
var DefaultSectionPolicy = SectionPolicy{DivisionOneTotal: 20, DivisionTwoTotal: 5}

// Matrix is the full quota declaration for a section: an ordered list of
// chapter entries plus the section policy they must add up to. A matrix
// is authored during the configuring phase and read-only afterwards.
type Matrix struct {
	Entries []Entry       `yaml:"chapters"`
	Policy  SectionPolicy `yaml:"policy"`
}

// RequiredOne returns the summed division-1 requirement across chapters.
func (m Matrix) RequiredOne() int {
	total := 0
	for _, e := range m.Entries {
		total += e.DivisionOne
	}
	return total
}

// RequiredTwo returns the summed division-2 requirement across chapters.
func (m Matrix) RequiredTwo() int {
	total := 0
	for _, e := range m.Entries {
		total += e.DivisionTwo
	}
	return total
}

// RequiredDifficulty returns the summed easy/medium/hard requirements.
func (m Matrix) RequiredDifficulty() (easy, medium, hard int) {
	for _, e := range m.Entries {
		easy += e.Easy
		medium += e.Medium
		hard += e.Hard
	}
	return easy, medium, hard
}

// Entry returns the entry for a chapter code, if tracked.
func (m Matrix) Entry(chapterCode string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.ChapterCode == chapterCode {
			return e, true
		}
	}
	return Entry{}, false
}

// ErrInvalidMatrix reports a matrix whose chapter sums don't reach the
// section policy totals.
type ErrInvalidMatrix struct {
	Problems []string
}

func (e *ErrInvalidMatrix) Error() string {
	return "invalid quota matrix: " + strings.Join(e.Problems, "; ")
}

// Validate checks the matrix against its own policy: summed division-1
// and division-2 chapter requirements must equal the section totals, and
// no entry may carry a negative count. Returns *ErrInvalidMatrix listing
// every mismatch with exact numbers.
func (m Matrix) Validate() error {
	var problems []string

	for _, e := range m.Entries {
		if e.DivisionOne < 0 || e.DivisionTwo < 0 || e.Easy < 0 || e.Medium < 0 || e.Hard < 0 {
			problems = append(problems, fmt.Sprintf("chapter %s has a negative count", e.ChapterCode))
		}
	}

	if got, want := m.RequiredOne(), m.Policy.DivisionOneTotal; got != want {
		problems = append(problems, fmt.Sprintf("division 1 chapter sum is %d, section policy requires %d", got, want))
	}
	if got, want := m.RequiredTwo(), m.Policy.DivisionTwoTotal; got != want {
		problems = append(problems, fmt.Sprintf("division 2 chapter sum is %d, section policy requires %d", got, want))
	}

	seen := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		if seen[e.ChapterCode] {
			problems = append(problems, fmt.Sprintf("chapter %s appears more than once", e.ChapterCode))
		}
		seen[e.ChapterCode] = true
	}

	if len(problems) > 0 {
		return &ErrInvalidMatrix{Problems: problems}
	}
	return nil
}
