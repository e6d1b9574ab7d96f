// Package summary derives satisfaction reports from a quota matrix and
// the current selection. Reports are values: recomputed on every
// mutation, never mutated in place.
package summary

import (
	"fmt"
	"strings"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
	"github.com/abhisek/paperforge/internal/quota"
	"github.com/abhisek/paperforge/internal/selection"
)

// ChapterLine is the per-chapter bucket of a report.
type ChapterLine struct {
	ChapterCode string
	ChapterName string
	SelectedOne int
	SelectedTwo int
	RequiredOne int
	RequiredTwo int
}

// DifficultyLine aggregates difficulty counts across the section.
type DifficultyLine struct {
	SelectedEasy   int
	SelectedMedium int
	SelectedHard   int
	RequiredEasy   int
	RequiredMedium int
	RequiredHard   int
}

// Report is the derived satisfaction summary for one section.
type Report struct {
	Total       int
	DivisionOne int
	DivisionTwo int
	RequiredOne int
	RequiredTwo int
	Chapters    []ChapterLine
	Difficulty  DifficultyLine
}

// Build computes a report in one pass over the records plus one over the
// matrix chapters. Records filed under chapters the matrix doesn't track
// still count toward the global division totals, just not toward any
// chapter line.
func Build(matrix quota.Matrix, records []selection.Record) Report {
	r := Report{
		RequiredOne: matrix.Policy.DivisionOneTotal,
		RequiredTwo: matrix.Policy.DivisionTwoTotal,
		Chapters:    make([]ChapterLine, len(matrix.Entries)),
	}
	r.Difficulty.RequiredEasy, r.Difficulty.RequiredMedium, r.Difficulty.RequiredHard = matrix.RequiredDifficulty()

	index := make(map[string]int, len(matrix.Entries))
	for i, e := range matrix.Entries {
		r.Chapters[i] = ChapterLine{
			ChapterCode: e.ChapterCode,
			ChapterName: e.ChapterName,
			RequiredOne: e.DivisionOne,
			RequiredTwo: e.DivisionTwo,
		}
		index[e.ChapterCode] = i
	}

	for _, rec := range records {
		r.Total++
		chapter, tracked := index[rec.ChapterCode]

		if rec.Division == classify.DivisionOne {
			r.DivisionOne++
			if tracked {
				r.Chapters[chapter].SelectedOne++
			}
		} else {
			r.DivisionTwo++
			if tracked {
				r.Chapters[chapter].SelectedTwo++
			}
		}

		switch rec.Difficulty {
		case bank.DifficultyEasy:
			r.Difficulty.SelectedEasy++
		case bank.DifficultyMedium:
			r.Difficulty.SelectedMedium++
		case bank.DifficultyHard:
			r.Difficulty.SelectedHard++
		}
	}

	return r
}

// Satisfied is the workflow gate: both global division totals exactly
// meet their requirements. Per-chapter and per-difficulty exact match
// are informational only: displayed, but not gated on.
func (r Report) Satisfied() bool {
	return r.DivisionOne == r.RequiredOne && r.DivisionTwo == r.RequiredTwo
}

// ChaptersSatisfied reports per-chapter exact match, for callers that
// want the stricter check the gate doesn't apply.
func (r Report) ChaptersSatisfied() bool {
	for _, c := range r.Chapters {
		if c.SelectedOne != c.RequiredOne || c.SelectedTwo != c.RequiredTwo {
			return false
		}
	}
	return true
}

// DifficultySatisfied reports per-difficulty exact match.
func (r Report) DifficultySatisfied() bool {
	d := r.Difficulty
	return d.SelectedEasy == d.RequiredEasy &&
		d.SelectedMedium == d.RequiredMedium &&
		d.SelectedHard == d.RequiredHard
}

// Deficits renders the remaining shortfalls as exact counts, e.g.
// "need 3 more for division 1, need 1 more for division 2". Empty when
// satisfied. Overfill is reported as a surplus, which the capacity rules
// normally prevent.
func (r Report) Deficits() string {
	var parts []string
	parts = appendDeficit(parts, 1, r.RequiredOne-r.DivisionOne)
	parts = appendDeficit(parts, 2, r.RequiredTwo-r.DivisionTwo)
	return strings.Join(parts, ", ")
}

func appendDeficit(parts []string, division, missing int) []string {
	switch {
	case missing > 0:
		parts = append(parts, fmt.Sprintf("need %d more for division %d", missing, division))
	case missing < 0:
		parts = append(parts, fmt.Sprintf("%d over quota for division %d", -missing, division))
	}
	return parts
}
