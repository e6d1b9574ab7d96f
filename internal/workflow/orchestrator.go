package workflow

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
	"github.com/abhisek/paperforge/internal/quota"
	"github.com/abhisek/paperforge/internal/selection"
	"github.com/abhisek/paperforge/internal/summary"
)

// Deps are the external collaborators an orchestrator needs.
type Deps struct {
	Counter   bank.FrequencyCounter
	Persister bank.SnapshotPersister // optional; snapshots skipped when nil
	Resolve   selection.ClassifyInput
}

type sectionState struct {
	name   string
	matrix quota.Matrix
	set    *selection.Set
}

// SectionSelection is one section's final record list, handed over at
// export time.
type SectionSelection struct {
	Name    string
	Records []selection.Record
}

// Orchestrator drives one project's multi-section workflow. All state
// transitions and mutations are serialized by an internal mutex.
type Orchestrator struct {
	mu        sync.Mutex
	projectID string
	sections  []*sectionState
	cursor    int
	phase     Phase
	deps      Deps
}

// New creates an orchestrator in the configuring phase of the first
// section.
func New(projectID string, sectionNames []string, deps Deps) *Orchestrator {
	o := &Orchestrator{
		projectID: projectID,
		phase:     PhaseConfiguring,
		deps:      deps,
	}
	for _, name := range sectionNames {
		o.sections = append(o.sections, &sectionState{name: name})
	}
	return o
}

// Restore reloads each section's persisted selection snapshot, so a
// project picks up where it left off. Sections without a snapshot are
// untouched; capacity rules arrive with the next Configure. No-op when
// no persister is wired.
func (o *Orchestrator) Restore(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.deps.Persister == nil {
		return nil
	}
	for _, section := range o.sections {
		rows, err := o.deps.Persister.LoadSelection(ctx, o.projectID, section.name)
		if err != nil {
			return fmt.Errorf("restore section %s: %w", section.name, err)
		}
		if len(rows) == 0 {
			continue
		}
		if section.set == nil {
			section.set = selection.NewSet(nil, o.deps.Counter)
		}
		section.set.Restore(rows)
	}
	return nil
}

// Phase returns the current workflow phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// SectionIndex returns the cursor position.
func (o *Orchestrator) SectionIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cursor
}

// SectionName returns the current section's name.
func (o *Orchestrator) SectionName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sections[o.cursor].name
}

// Configure validates and installs the quota matrix for the current
// section, then moves it to selecting. Validation happens before the
// transition: a bad matrix leaves the workflow in configuring. The
// section's selection set survives reconfiguration.
func (o *Orchestrator) Configure(matrix quota.Matrix) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseConfiguring {
		return &ErrWrongPhase{Op: "configure", Phase: o.phase}
	}
	if err := matrix.Validate(); err != nil {
		return err
	}

	section := o.sections[o.cursor]
	section.matrix = matrix
	if section.set == nil {
		section.set = selection.NewSet(selection.SectionCeiling(matrix.Policy), o.deps.Counter)
	} else {
		// The toggle ceiling always tracks the matrix the gate reads.
		section.set.SetCapacity(selection.SectionCeiling(matrix.Policy))
	}
	o.phase = PhaseSelecting
	return nil
}

// Toggle adds or removes an item in the current section and returns the
// freshly derived report, with the auto-correction pass already applied.
// Counter-sync and snapshot failures are logged, never returned: the
// selection mutation has committed by then.
func (o *Orchestrator) Toggle(ctx context.Context, item bank.Item, chapterCode, chapterName string, difficulty bank.Difficulty, hint classify.Division) (summary.Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseSelecting {
		return summary.Report{}, &ErrWrongPhase{Op: "toggle", Phase: o.phase}
	}

	section := o.sections[o.cursor]
	res, err := section.set.Toggle(ctx, item, chapterCode, chapterName, difficulty, hint)
	if err != nil {
		return o.reportLocked(section), err
	}
	if res.CounterErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", res.CounterErr)
	}

	if o.deps.Resolve != nil {
		section.set.Correct(o.deps.Resolve)
	}
	o.persistLocked(ctx, section)
	return o.reportLocked(section), nil
}

// Recheck re-runs the auto-correction pass for the current section,
// e.g. after an override edit, and returns the updated report.
func (o *Orchestrator) Recheck(ctx context.Context) (summary.Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseSelecting {
		return summary.Report{}, &ErrWrongPhase{Op: "recheck", Phase: o.phase}
	}
	section := o.sections[o.cursor]
	if o.deps.Resolve != nil && section.set.Correct(o.deps.Resolve) {
		o.persistLocked(ctx, section)
	}
	return o.reportLocked(section), nil
}

// Report returns the current section's satisfaction report.
func (o *Orchestrator) Report() summary.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reportLocked(o.sections[o.cursor])
}

// Advance moves selecting → configuring of the next section, or to
// reviewing after the last one. The gate is the report's global
// satisfaction check; a rejected advance changes nothing and carries the
// exact deficits.
func (o *Orchestrator) Advance() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseSelecting {
		return &ErrWrongPhase{Op: "advance", Phase: o.phase}
	}

	section := o.sections[o.cursor]
	report := o.reportLocked(section)
	if !report.Satisfied() {
		return &ErrQuotaUnsatisfied{Section: section.name, Deficits: report.Deficits()}
	}

	if o.cursor == len(o.sections)-1 {
		o.phase = PhaseReviewing
		return nil
	}
	o.cursor++
	o.phase = PhaseConfiguring
	return nil
}

// Back returns from selecting to configuring. Always permitted; only the
// workflow pointer moves, the selection set stays intact.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseSelecting {
		return &ErrWrongPhase{Op: "back", Phase: o.phase}
	}
	o.phase = PhaseConfiguring
	return nil
}

// SetStatus updates a record's review status during reviewing.
func (o *Orchestrator) SetStatus(sectionIndex int, itemID string, status selection.Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseReviewing {
		return &ErrWrongPhase{Op: "set status", Phase: o.phase}
	}
	if sectionIndex < 0 || sectionIndex >= len(o.sections) {
		return fmt.Errorf("no section at index %d", sectionIndex)
	}
	return o.sections[sectionIndex].set.SetStatus(itemID, status)
}

// CompleteReview moves reviewing → complete once every record in every
// section is accepted. This gate is independent of quota satisfaction.
func (o *Orchestrator) CompleteReview() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseReviewing {
		return &ErrWrongPhase{Op: "complete review", Phase: o.phase}
	}

	notAccepted := 0
	for _, section := range o.sections {
		for _, r := range section.set.Records() {
			if r.Status != selection.StatusAccepted {
				notAccepted++
			}
		}
	}
	if notAccepted > 0 {
		return &ErrReviewIncomplete{NotAccepted: notAccepted}
	}
	o.phase = PhaseComplete
	return nil
}

// Export hands over every section's final record list. Only valid once
// complete; serialization to a file is the caller's concern.
func (o *Orchestrator) Export() ([]SectionSelection, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseComplete {
		return nil, &ErrWrongPhase{Op: "export", Phase: o.phase}
	}

	out := make([]SectionSelection, len(o.sections))
	for i, section := range o.sections {
		out[i] = SectionSelection{Name: section.name, Records: section.set.Records()}
	}
	return out, nil
}

func (o *Orchestrator) reportLocked(section *sectionState) summary.Report {
	return summary.Build(section.matrix, section.set.Records())
}

func (o *Orchestrator) persistLocked(ctx context.Context, section *sectionState) {
	if o.deps.Persister == nil {
		return
	}
	if err := o.deps.Persister.SaveSelection(ctx, o.projectID, section.name, section.set.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist selection for %s/%s: %v\n", o.projectID, section.name, err)
	}
}
