package selection

import (
	"context"
	"testing"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
)

func TestCorrectRefilesDriftedRecords(t *testing.T) {
	counter := newFakeCounter()
	set := NewSet(nil, counter)

	// q1 enters as division 1 thanks to an override; the override is then
	// removed, so its numerical answer should drift it to division 2.
	withOverride := bank.Item{ID: "q1", Answer: "42", Override: classify.OverrideOne, Chapter: "PHY01"}
	set.Toggle(context.Background(), withOverride, "PHY01", "Kinematics", bank.DifficultyEasy, classify.DivisionOne)
	set.Toggle(context.Background(), choiceItem("q2", "B"), "PHY01", "Kinematics", bank.DifficultyMedium, classify.DivisionOne)

	resolve := func(id string) (string, classify.Override, bool) {
		switch id {
		case "q1":
			return "42", classify.OverrideNone, true // override removed
		case "q2":
			return "B", classify.OverrideNone, true
		}
		return "", classify.OverrideNone, false
	}

	if !set.Correct(resolve) {
		t.Fatal("Correct() = false, want change for drifted record")
	}

	records := set.Records()
	if records[0].Division != classify.DivisionTwo {
		t.Errorf("q1 division = %d, want 2", records[0].Division)
	}
	if records[0].ChapterCode != "PHY01" || records[0].Difficulty != bank.DifficultyEasy {
		t.Error("correction touched chapter or difficulty")
	}
	if records[1].Division != classify.DivisionOne {
		t.Errorf("q2 division = %d, want untouched 1", records[1].Division)
	}
}

func TestCorrectIdempotent(t *testing.T) {
	counter := newFakeCounter()
	set := NewSet(nil, counter)
	set.Toggle(context.Background(), bank.Item{ID: "q1", Answer: "42", Override: classify.OverrideOne}, "PHY01", "Kinematics", bank.DifficultyEasy, classify.DivisionOne)

	resolve := func(id string) (string, classify.Override, bool) {
		return "42", classify.OverrideNone, true
	}

	if !set.Correct(resolve) {
		t.Fatal("first Correct() = false, want true")
	}
	first := set.Records()

	if set.Correct(resolve) {
		t.Error("second Correct() = true, want fixed point")
	}
	second := set.Records()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d changed between passes: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCorrectNeverPromotesToDivisionOne(t *testing.T) {
	counter := newFakeCounter()
	set := NewSet(nil, counter)

	// Forced to division 2 by an override that is then removed; the
	// choice-shaped answer stays in division 2 until manually toggled.
	forced := bank.Item{ID: "q1", Answer: "A", Override: classify.OverrideTwo}
	set.Toggle(context.Background(), forced, "PHY01", "Kinematics", bank.DifficultyEasy, classify.DivisionTwo)

	resolve := func(id string) (string, classify.Override, bool) {
		return "A", classify.OverrideNone, true
	}
	if set.Correct(resolve) {
		t.Error("Correct() moved a division-2 record, want asymmetric no-op")
	}
	if got := set.Records()[0].Division; got != classify.DivisionTwo {
		t.Errorf("division = %d, want 2", got)
	}
}

func TestCorrectNoOpOnCleanSet(t *testing.T) {
	counter := newFakeCounter()
	set := NewSet(nil, counter)
	set.Toggle(context.Background(), choiceItem("q1", "A"), "PHY01", "Kinematics", bank.DifficultyEasy, classify.DivisionOne)

	resolve := func(id string) (string, classify.Override, bool) {
		return "A", classify.OverrideNone, true
	}
	if set.Correct(resolve) {
		t.Error("Correct() reported change on a clean set")
	}
}

func TestCorrectSkipsUnknownItems(t *testing.T) {
	counter := newFakeCounter()
	set := NewSet(nil, counter)
	set.Toggle(context.Background(), choiceItem("q1", "A"), "PHY01", "Kinematics", bank.DifficultyEasy, classify.DivisionOne)

	resolve := func(id string) (string, classify.Override, bool) {
		return "", classify.OverrideNone, false
	}
	if set.Correct(resolve) {
		t.Error("Correct() changed a record it could not resolve")
	}
}
