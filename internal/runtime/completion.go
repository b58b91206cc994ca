package runtime

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
)

// IsSectionCompleted reports whether every case on the Instruction -> Total
// path is Answered or MentorAnswerShown. The cursor position is irrelevant.
func (e *Engine) IsSectionCompleted() bool {
	for _, n := range e.graph.ReachableCases() {
		if !e.states[n.ID].IsDone() {
			return false
		}
	}
	return true
}

// Summary computes the data shown on the Total node.
func (e *Engine) Summary() domain.Summary {
	cases := e.graph.ReachableCases()
	s := domain.Summary{
		SectionID: e.graph.SectionID(),
		Total:     len(cases),
		Items:     make([]domain.ReviewItem, 0, len(cases)),
	}
	for _, n := range cases {
		state := e.states[n.ID]
		answer, _ := e.solution.Get(n.CaseID)
		if state.IsDone() {
			s.Answered++
		}
		s.Items = append(s.Items, domain.ReviewItem{
			CaseID:       n.CaseID,
			Question:     n.Question,
			Answer:       answer,
			MentorAnswer: n.MentorAnswer,
			State:        state,
		})
	}
	s.Pending = s.Total - s.Answered
	s.Completed = s.Pending == 0
	return s
}

// recalculate refreshes the completion flag and reports a flip.
func (e *Engine) recalculate(ctx context.Context) domain.EffectSet {
	completed := e.IsSectionCompleted()
	if completed == e.completed {
		return nil
	}
	e.completed = completed
	e.emitCompletion(ctx)
	return domain.EffectSet{{Type: domain.EffectCompletionChanged, Completed: completed}}
}
