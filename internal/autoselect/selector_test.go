package autoselect

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
)

// fakeSource serves candidates from memory with the same scoping rules
// as the SQLite store.
type fakeSource struct {
	items   []bank.Item
	failErr error
	bumped  map[string]int
}

func newFakeSource(items ...bank.Item) *fakeSource {
	return &fakeSource{items: items, bumped: make(map[string]int)}
}

func (f *fakeSource) Candidates(_ context.Context, q bank.CandidateQuery) ([]bank.Item, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}

	excluded := make(map[string]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = true
	}

	var out []bank.Item
	for _, it := range f.items {
		if excluded[it.ID] || it.Chapter != q.Chapter {
			continue
		}
		if q.Pool != "" && it.Pool != q.Pool {
			continue
		}
		if q.Class != 0 && it.Class != q.Class {
			continue
		}
		if q.Division != 0 && classify.Classify(it.Answer, classify.OverrideNone) != q.Division {
			continue
		}
		out = append(out, it)
	}

	if q.PreferLeastUsed {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Frequency < out[j].Frequency })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeSource) IncrementFrequency(_ context.Context, id string) error {
	f.bumped[id]++
	return nil
}

func (f *fakeSource) DecrementFrequency(_ context.Context, id string) error {
	return nil
}

func choiceItem(id, pool, chapter string, class bank.ClassTag) bank.Item {
	return bank.Item{ID: id, Pool: pool, Chapter: chapter, Answer: "A", Class: class}
}

func physicsSection(count int, shares ...PoolShare) SectionRequest {
	return SectionRequest{
		Name:       "Physics",
		Division:   classify.DivisionOne,
		Chapters:   []ChapterTarget{{Chapter: "PHY01", Count: count}},
		PoolShares: shares,
	}
}

func TestFillAbsorbsEmptyPoolWithoutWarning(t *testing.T) {
	// Pool "a" has zero matching candidates; b and c must absorb the
	// full 5 via the fallback layers, with no shortfall recorded.
	source := newFakeSource(
		choiceItem("b1", "b", "PHY01", 0),
		choiceItem("b2", "b", "PHY01", 0),
		choiceItem("b3", "b", "PHY01", 0),
		choiceItem("c1", "c", "PHY01", 0),
		choiceItem("c2", "c", "PHY01", 0),
	)
	section := physicsSection(5,
		PoolShare{Pool: "a", Percent: 34},
		PoolShare{Pool: "b", Percent: 33},
		PoolShare{Pool: "c", Percent: 33},
	)

	run, err := New(source, source).Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true})
	require.NoError(t, err)
	require.Len(t, run.Sections, 1)

	result := run.Sections[0]
	assert.Len(t, result.Selected, 5)
	assert.Empty(t, result.Shortfalls, "an empty pool must not produce a warning while others can serve")
	assert.Equal(t, 0, result.ByPool["a"])
	assert.Equal(t, 5, result.ByPool["b"]+result.ByPool["c"])
}

func TestFillShortfallExactCount(t *testing.T) {
	source := newFakeSource(
		choiceItem("b1", "b", "PHY01", 0),
		choiceItem("b2", "b", "PHY01", 0),
		choiceItem("b3", "b", "PHY01", 0),
	)
	section := physicsSection(5, PoolShare{Pool: "b", Percent: 100})

	run, err := New(source, source).Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true})
	require.NoError(t, err)

	result := run.Sections[0]
	assert.Len(t, result.Selected, 3)
	require.Len(t, result.Shortfalls, 1)
	short := result.Shortfalls[0]
	assert.Equal(t, "PHY01", short.Chapter)
	assert.Equal(t, 5, short.Requested)
	assert.Equal(t, 2, short.Missing)
}

func TestFillShortfallDoesNotAbortOtherChapters(t *testing.T) {
	source := newFakeSource(
		choiceItem("p2a", "b", "PHY02", 0),
		choiceItem("p2b", "b", "PHY02", 0),
	)
	section := SectionRequest{
		Name:     "Physics",
		Division: classify.DivisionOne,
		Chapters: []ChapterTarget{
			{Chapter: "PHY01", Count: 2}, // nothing available
			{Chapter: "PHY02", Count: 2},
		},
		PoolShares: []PoolShare{{Pool: "b", Percent: 100}},
	}

	run, err := New(source, source).Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true})
	require.NoError(t, err)

	result := run.Sections[0]
	assert.Equal(t, 2, result.ByChapter["PHY02"], "later chapter must still fill after an earlier shortfall")
	require.Len(t, result.Shortfalls, 1)
	assert.Equal(t, "PHY01", result.Shortfalls[0].Chapter)
	assert.Equal(t, 2, result.Shortfalls[0].Missing)
}

func TestFillDivisionEligibility(t *testing.T) {
	source := newFakeSource(
		bank.Item{ID: "mcq", Pool: "b", Chapter: "PHY01", Answer: "C"},
		bank.Item{ID: "num", Pool: "b", Chapter: "PHY01", Answer: "42"},
	)
	numerical := SectionRequest{
		Name:       "Physics-II",
		Division:   classify.DivisionTwo,
		Chapters:   []ChapterTarget{{Chapter: "PHY01", Count: 1}},
		PoolShares: []PoolShare{{Pool: "b", Percent: 100}},
	}

	run, err := New(source, source).Fill(context.Background(), []SectionRequest{numerical}, Options{PreferLeastUsed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"num"}, run.Sections[0].Selected)
}

func TestFillClassBalancing(t *testing.T) {
	source := newFakeSource(
		choiceItem("c1a", "b", "PHY01", 1),
		choiceItem("c1b", "b", "PHY01", 1),
		choiceItem("c2a", "b", "PHY01", 2),
		choiceItem("c2b", "b", "PHY01", 2),
	)
	section := physicsSection(4, PoolShare{Pool: "b", Percent: 100})
	section.ClassTargets = map[bank.ClassTag]int{1: 2, 2: 2}

	run, err := New(source, source).Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true})
	require.NoError(t, err)

	result := run.Sections[0]
	assert.Equal(t, 2, result.ByClass[1])
	assert.Equal(t, 2, result.ByClass[2])
}

func TestFillDeterministicWhenPreferLeastUsed(t *testing.T) {
	build := func() *fakeSource {
		return newFakeSource(
			bank.Item{ID: "q1", Pool: "b", Chapter: "PHY01", Answer: "A", Frequency: 2},
			bank.Item{ID: "q2", Pool: "b", Chapter: "PHY01", Answer: "B", Frequency: 0},
			bank.Item{ID: "q3", Pool: "b", Chapter: "PHY01", Answer: "C", Frequency: 1},
		)
	}
	section := physicsSection(2, PoolShare{Pool: "b", Percent: 100})
	opts := Options{PreferLeastUsed: true}

	first, err := New(build(), nil).Fill(context.Background(), []SectionRequest{section}, opts)
	require.NoError(t, err)
	second, err := New(build(), nil).Fill(context.Background(), []SectionRequest{section}, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Sections[0].Selected, second.Sections[0].Selected)
	assert.Equal(t, []string{"q2", "q3"}, first.Sections[0].Selected, "least-used candidates first")
}

func TestFillBumpsFrequencyOncePerItem(t *testing.T) {
	source := newFakeSource(
		choiceItem("q1", "b", "PHY01", 0),
		choiceItem("q2", "b", "PHY01", 0),
	)
	section := physicsSection(2, PoolShare{Pool: "b", Percent: 100})

	_, err := New(source, source).Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true, BumpFrequency: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"q1": 1, "q2": 1}, source.bumped)
}

func TestFillHardFailureReturnsPartialResults(t *testing.T) {
	source := newFakeSource(choiceItem("q1", "b", "PHY01", 0))
	sections := []SectionRequest{
		physicsSection(1, PoolShare{Pool: "b", Percent: 100}),
		physicsSection(1, PoolShare{Pool: "b", Percent: 100}),
	}

	selector := New(source, source)
	run, err := selector.Fill(context.Background(), sections[:1], Options{PreferLeastUsed: true})
	require.NoError(t, err)
	require.Len(t, run.Sections, 1)

	// Second run: the source starts failing hard mid-run.
	source.failErr = errors.New("database is locked")
	run, err = selector.Fill(context.Background(), sections, Options{PreferLeastUsed: true})
	require.Error(t, err)
	require.NotNil(t, run, "partial results must accompany a hard failure")
	assert.NotEmpty(t, run.RunID)
}

func TestFillNoSharedExclusionAcrossRuns(t *testing.T) {
	source := newFakeSource(choiceItem("q1", "b", "PHY01", 0))
	section := physicsSection(1, PoolShare{Pool: "b", Percent: 100})
	selector := New(source, nil)

	for i := 0; i < 2; i++ {
		run, err := selector.Fill(context.Background(), []SectionRequest{section}, Options{PreferLeastUsed: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"q1"}, run.Sections[0].Selected, "run %d must start with a fresh exclusion list", i)
	}
}
