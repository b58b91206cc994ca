package runtime

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
)

// Dispatch applies one event and returns the resulting effects.
// An event whose precondition fails changes nothing and yields a single
// EffectIllegalTransition.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) domain.EffectSet {
	if !e.checkPrecondition(ev) {
		return e.reject(ctx, ev)
	}

	switch ev.Type {
	case domain.EventStart:
		first := e.graph.Instruction().Next
		return e.moveTo(ctx, first, true)

	case domain.EventSelectNode:
		return e.moveTo(ctx, ev.Node, false)

	case domain.EventSubmitAnswer:
		return e.submit(ctx, ev.Text)

	case domain.EventShowMentorAnswer:
		e.states[e.current] = domain.StateMentorAnswerShown
		return domain.EffectSet{e.renderEffect()}

	case domain.EventBackToQuestion:
		e.states[e.current] = domain.StateQuestionShown
		effects := domain.EffectSet{e.renderEffect()}
		return append(effects, e.recalculate(ctx)...)

	case domain.EventAdvance:
		node, _ := e.graph.Node(e.current)
		flipped := e.recalculate(ctx)
		effects := e.moveTo(ctx, node.Next, true)
		return append(effects, flipped...)
	}
	return e.reject(ctx, ev)
}

// Start moves from the Instruction to the first case.
func (e *Engine) Start(ctx context.Context) (domain.EffectSet, error) {
	return e.do(ctx, domain.StartEvent())
}

// Select moves the cursor to any node. NodeState is left as it is, so an
// unvisited case stays unanswerable until the advance chain reaches it.
func (e *Engine) Select(ctx context.Context, id domain.NodeID) (domain.EffectSet, error) {
	return e.do(ctx, domain.SelectEvent(id))
}

// SubmitAnswer records the answer of the current case.
func (e *Engine) SubmitAnswer(ctx context.Context, text string) (domain.EffectSet, error) {
	return e.do(ctx, domain.SubmitEvent(text))
}

// ShowMentorAnswer reveals the mentor answer of the current case.
func (e *Engine) ShowMentorAnswer(ctx context.Context) (domain.EffectSet, error) {
	return e.do(ctx, domain.ShowMentorEvent())
}

// BackToQuestion reopens the question of the current case for editing.
func (e *Engine) BackToQuestion(ctx context.Context) (domain.EffectSet, error) {
	return e.do(ctx, domain.BackToQuestionEvent())
}

// Advance follows the next reference of the current case.
func (e *Engine) Advance(ctx context.Context) (domain.EffectSet, error) {
	return e.do(ctx, domain.AdvanceEvent())
}

func (e *Engine) do(ctx context.Context, ev domain.Event) (domain.EffectSet, error) {
	effects := e.Dispatch(ctx, ev)
	return effects, effects.Err()
}

// moveTo places the cursor on target. With open set, an unvisited case
// opens its question; a case with progress always keeps it.
func (e *Engine) moveTo(ctx context.Context, target domain.NodeID, open bool) domain.EffectSet {
	if target != e.current {
		e.emitNodeLeave(ctx, e.current)
	}
	e.current = target

	node, _ := e.graph.Node(target)
	if open && node.IsCase() && e.states[target] == domain.StateUnvisited {
		e.states[target] = domain.StateQuestionShown
	}
	e.emitNodeEnter(ctx, target)

	effects := domain.EffectSet{e.renderEffect()}
	if node.Kind == domain.KindTotal && e.completed && !e.finished {
		e.finished = true
		e.logger.InfoContext(ctx, "section finished", "section", e.graph.SectionID())
		effects = append(effects, domain.Effect{
			Type:     domain.EffectSessionFinished,
			Solution: e.solution.Clone(),
		})
	}
	return effects
}

func (e *Engine) submit(ctx context.Context, text string) domain.EffectSet {
	node, _ := e.graph.Node(e.current)
	overwrite := e.solution.Has(node.CaseID)

	e.solution.Set(node.CaseID, text)
	e.states[e.current] = domain.StateAnswered
	e.emitAnswer(ctx, node.CaseID, overwrite)

	effects := domain.EffectSet{
		{
			Type:     domain.EffectSolutionUpdated,
			CaseID:   node.CaseID,
			Answer:   text,
			Solution: e.solution.Clone(),
		},
		e.renderEffect(),
	}
	return append(effects, e.recalculate(ctx)...)
}

func (e *Engine) reject(ctx context.Context, ev domain.Event) domain.EffectSet {
	node, _ := e.graph.Node(e.current)
	err := &domain.IllegalTransitionError{
		Event:   ev.Type,
		NodeKey: node.Key,
		State:   e.states[e.current],
	}
	e.logger.DebugContext(ctx, "transition rejected", "event", ev.Type, "node", node.Key, "state", err.State)
	e.emitRejected(ctx, ev.Type, node.Key)
	return domain.EffectSet{{Type: domain.EffectIllegalTransition, Err: err}}
}

func (e *Engine) renderEffect() domain.Effect {
	node, _ := e.graph.Node(e.current)
	effect := domain.Effect{
		Type:  domain.EffectRender,
		Node:  &node,
		State: e.states[e.current],
	}
	if node.IsCase() {
		effect.CaseID = node.CaseID
		effect.Answer, _ = e.solution.Get(node.CaseID)
	}
	if node.Kind == domain.KindTotal {
		summary := e.Summary()
		effect.Summary = &summary
		effect.Completed = summary.Completed
	}
	return effect
}
