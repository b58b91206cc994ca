package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/mentor/pkg/domain"
)

// Snapshot captures the engine state addressed by stable node keys.
func (e *Engine) Snapshot(sessionID string) *domain.Snapshot {
	snap := domain.NewSnapshot(sessionID, e.graph.SectionID())
	node, _ := e.graph.Node(e.current)
	snap.Current = node.Key
	for _, n := range e.graph.Nodes() {
		if st := e.states[n.ID]; st != domain.StateUnvisited {
			snap.States[n.Key] = st
		}
	}
	snap.Solution = e.solution.Clone()
	snap.Finished = e.finished
	snap.UpdatedAt = e.now()
	return snap
}

// Restore replaces the engine state with a snapshot taken from the same section.
// Nothing is applied unless the whole snapshot is valid.
func (e *Engine) Restore(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	if len(snap.Sealed) > 0 {
		return fmt.Errorf("%w: snapshot is sealed", domain.ErrInvalidSnapshot)
	}
	if snap.SectionID != e.graph.SectionID() {
		return fmt.Errorf("%w: snapshot section '%s' != '%s'", domain.ErrInvalidSnapshot, snap.SectionID, e.graph.SectionID())
	}

	current, ok := e.graph.Lookup(snap.Current)
	if !ok {
		return fmt.Errorf("%w: current node '%s': %w", domain.ErrInvalidSnapshot, snap.Current, domain.ErrUnknownNode)
	}

	states := make([]domain.NodeState, e.graph.Len())
	for i := range states {
		states[i] = domain.StateUnvisited
	}
	for key, st := range snap.States {
		n, ok := e.graph.Lookup(key)
		if !ok {
			return fmt.Errorf("%w: state for '%s': %w", domain.ErrInvalidSnapshot, key, domain.ErrUnknownNode)
		}
		if !st.Valid() {
			return fmt.Errorf("%w: node '%s' has state '%s'", domain.ErrInvalidSnapshot, key, st)
		}
		states[n.ID] = st
	}

	solution := domain.NewSolution()
	for _, a := range snap.Solution.Answers() {
		n, ok := e.graph.Lookup(a.CaseID)
		if !ok || !n.IsCase() {
			return fmt.Errorf("%w: answer for '%s': %w", domain.ErrInvalidSnapshot, a.CaseID, domain.ErrUnknownNode)
		}
		solution.Set(a.CaseID, a.Text)
	}

	e.states = states
	e.current = current.ID
	e.solution = solution
	e.finished = snap.Finished
	e.completed = e.IsSectionCompleted()
	return nil
}

// Merge fills in answers recovered from an imported solution.
// Cases that already hold an answer or are Answered in this session are
// skipped. Unknown cases reject the whole merge. It returns the merged case
// IDs in solution order.
func (e *Engine) Merge(ctx context.Context, recovered *domain.Solution) ([]string, domain.EffectSet, error) {
	answers := recovered.Answers()
	for _, a := range answers {
		n, ok := e.graph.Lookup(a.CaseID)
		if !ok || !n.IsCase() {
			return nil, nil, fmt.Errorf("%w: case '%s'", domain.ErrSectionMismatch, a.CaseID)
		}
	}

	var merged []string
	for _, a := range answers {
		n, _ := e.graph.Lookup(a.CaseID)
		if e.states[n.ID].IsDone() || e.solution.Has(a.CaseID) {
			continue
		}
		e.solution.Set(a.CaseID, a.Text)
		e.states[n.ID] = domain.StateAnswered
		merged = append(merged, a.CaseID)
	}
	if len(merged) == 0 {
		return nil, nil, nil
	}

	e.logger.InfoContext(ctx, "solution merged", "section", e.graph.SectionID(), "cases", len(merged))
	effects := domain.EffectSet{
		{Type: domain.EffectSolutionMerged, Solution: e.solution.Clone()},
		e.renderEffect(),
	}
	return merged, append(effects, e.recalculate(ctx)...), nil
}
