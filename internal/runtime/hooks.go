package runtime

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
)

func (e *Engine) base(t domain.LifecycleEventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SectionID: e.graph.SectionID(),
	}
}

func (e *Engine) nodeEvent(t domain.LifecycleEventType, id domain.NodeID) *domain.NodeEvent {
	node, _ := e.graph.Node(id)
	return &domain.NodeEvent{
		EventBase: e.base(t),
		NodeKey:   node.Key,
		NodeKind:  node.Kind,
		State:     e.states[id],
	}
}

func (e *Engine) emitNodeEnter(ctx context.Context, id domain.NodeID) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, e.nodeEvent(domain.LifecycleNodeEnter, id))
	}
}

func (e *Engine) emitNodeLeave(ctx context.Context, id domain.NodeID) {
	if e.hooks.OnNodeLeave != nil {
		e.hooks.OnNodeLeave(ctx, e.nodeEvent(domain.LifecycleNodeLeave, id))
	}
}

func (e *Engine) emitAnswer(ctx context.Context, caseID string, overwrite bool) {
	if e.hooks.OnAnswer != nil {
		e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
			EventBase: e.base(domain.LifecycleAnswer),
			CaseID:    caseID,
			Overwrite: overwrite,
		})
	}
}

func (e *Engine) emitCompletion(ctx context.Context) {
	if e.hooks.OnCompletion != nil {
		s := e.Summary()
		e.hooks.OnCompletion(ctx, &domain.CompletionEvent{
			EventBase: e.base(domain.LifecycleCompletion),
			Completed: s.Completed,
			Answered:  s.Answered,
			Total:     s.Total,
		})
	}
}

func (e *Engine) emitRejected(ctx context.Context, ev domain.EventType, nodeKey string) {
	if e.hooks.OnTransitionRejected != nil {
		e.hooks.OnTransitionRejected(ctx, &domain.RejectedEvent{
			EventBase: e.base(domain.LifecycleRejected),
			Event:     ev,
			NodeKey:   nodeKey,
		})
	}
}
