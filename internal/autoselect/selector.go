package autoselect

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/abhisek/paperforge/internal/bank"
)

// Selector fills section quotas from a candidate source.
type Selector struct {
	source  bank.CandidateSource
	counter bank.FrequencyCounter
}

// New creates a Selector. counter may be nil when frequency bumping is
// never requested.
func New(source bank.CandidateSource, counter bank.FrequencyCounter) *Selector {
	return &Selector{source: source, counter: counter}
}

// Fill processes every section in order. Chapter shortfalls are recorded
// as warnings and never abort the run; only a hard query failure does,
// and even then the partial RunResult accumulated so far is returned
// with the error.
func (s *Selector) Fill(ctx context.Context, sections []SectionRequest, opts Options) (*RunResult, error) {
	run := &RunResult{RunID: uuid.NewString()}

	// Grows monotonically across the whole run and is local to it, so
	// concurrent runs can never poison each other's exclusions.
	var excluded []string

	for _, section := range sections {
		result := SectionResult{
			Name:      section.Name,
			ByPool:    make(map[string]int),
			ByClass:   make(map[bank.ClassTag]int),
			ByChapter: make(map[string]int),
		}

		poolRemaining := splitByShares(section.Total(), section.PoolShares)
		classRemaining := make(map[bank.ClassTag]int, len(section.ClassTargets))
		for tag, n := range section.ClassTargets {
			classRemaining[tag] = n
		}

		for _, target := range section.Chapters {
			picked := 0
			for picked < target.Count {
				item, ok, err := s.pickOne(ctx, section, target.Chapter, poolRemaining, classRemaining, excluded, opts)
				if err != nil {
					run.Sections = append(run.Sections, result)
					return run, fmt.Errorf("fill section %s chapter %s: %w", section.Name, target.Chapter, err)
				}
				if !ok {
					result.Shortfalls = append(result.Shortfalls, Shortfall{
						Section:   section.Name,
						Chapter:   target.Chapter,
						Requested: target.Count,
						Missing:   target.Count - picked,
					})
					break
				}

				picked++
				excluded = append(excluded, item.ID)
				result.Selected = append(result.Selected, item.ID)
				result.ByPool[item.Pool]++
				result.ByClass[item.Class]++
				result.ByChapter[target.Chapter]++
				if poolRemaining[item.Pool] > 0 {
					poolRemaining[item.Pool]--
				}
				if item.Class != 0 && classRemaining[item.Class] > 0 {
					classRemaining[item.Class]--
				}
			}
		}

		run.Sections = append(run.Sections, result)
	}

	if opts.BumpFrequency {
		s.bumpFrequencies(ctx, run)
	}

	return run, nil
}

// pickOne finds the next candidate for a chapter using layered fallback:
//
//  1. every (pool, class) pair with remaining deficit in both
//     dimensions, highest deficits first;
//  2. pools with remaining deficit, ignoring class;
//  3. any pool, any class, as the last-resort fill.
//
// ok=false means the bank has nothing left for this chapter anywhere.
func (s *Selector) pickOne(ctx context.Context, section SectionRequest, chapter string, poolRemaining map[string]int, classRemaining map[bank.ClassTag]int, excluded []string, opts Options) (bank.Item, bool, error) {
	base := bank.CandidateQuery{
		Chapter:         chapter,
		Division:        section.Division,
		Exclude:         excluded,
		Limit:           1,
		PreferLeastUsed: opts.PreferLeastUsed,
	}

	pools := deficitPools(poolRemaining)
	classes := deficitClasses(classRemaining)

	// Layer 1: constrained on both dimensions.
	for _, pool := range pools {
		for _, class := range classes {
			q := base
			q.Pool = pool
			q.Class = class
			if item, ok, err := s.query(ctx, q); err != nil || ok {
				return item, ok, err
			}
		}
	}

	// Layer 2: pool constraint only.
	for _, pool := range pools {
		q := base
		q.Pool = pool
		if item, ok, err := s.query(ctx, q); err != nil || ok {
			return item, ok, err
		}
	}

	// Layer 3: anything eligible for the division.
	return s.query(ctx, base)
}

func (s *Selector) query(ctx context.Context, q bank.CandidateQuery) (bank.Item, bool, error) {
	items, err := s.source.Candidates(ctx, q)
	if err != nil {
		return bank.Item{}, false, err
	}
	if len(items) == 0 {
		return bank.Item{}, false, nil
	}
	return items[0], true, nil
}

// deficitPools lists pools with remaining quota, largest deficit first,
// pool name breaking ties for determinism.
func deficitPools(remaining map[string]int) []string {
	var pools []string
	for pool, n := range remaining {
		if n > 0 {
			pools = append(pools, pool)
		}
	}
	sort.Slice(pools, func(i, j int) bool {
		if remaining[pools[i]] != remaining[pools[j]] {
			return remaining[pools[i]] > remaining[pools[j]]
		}
		return pools[i] < pools[j]
	})
	return pools
}

// deficitClasses lists class tags with remaining targets, largest
// deficit first, tag order breaking ties.
func deficitClasses(remaining map[bank.ClassTag]int) []bank.ClassTag {
	var classes []bank.ClassTag
	for tag, n := range remaining {
		if n > 0 {
			classes = append(classes, tag)
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		if remaining[classes[i]] != remaining[classes[j]] {
			return remaining[classes[i]] > remaining[classes[j]]
		}
		return classes[i] < classes[j]
	})
	return classes
}

// bumpFrequencies increments the usage counter once per distinct
// selected item. Identifiers are deduped across sections so reusing the
// engine over a shared pool can't double-count. Counter failures are
// logged and never fail the run.
func (s *Selector) bumpFrequencies(ctx context.Context, run *RunResult) {
	if s.counter == nil {
		return
	}
	seen := make(map[string]bool)
	for _, section := range run.Sections {
		for _, id := range section.Selected {
			if seen[id] {
				continue
			}
			seen[id] = true
			if err := s.counter.IncrementFrequency(ctx, id); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to bump frequency of %s: %v\n", id, err)
			}
		}
	}
}
