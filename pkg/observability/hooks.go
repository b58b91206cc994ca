package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mentor/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured line per event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node enter", "section", e.SectionID, "node", e.NodeKey, "state", e.State)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node leave", "section", e.SectionID, "node", e.NodeKey, "state", e.State)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.InfoContext(ctx, "answer recorded", "section", e.SectionID, "case", e.CaseID, "overwrite", e.Overwrite)
		},
		OnCompletion: func(ctx context.Context, e *domain.CompletionEvent) {
			logger.InfoContext(ctx, "completion changed", "section", e.SectionID, "completed", e.Completed, "answered", e.Answered, "total", e.Total)
		},
		OnTransitionRejected: func(ctx context.Context, e *domain.RejectedEvent) {
			logger.WarnContext(ctx, "transition rejected", "section", e.SectionID, "event", e.Event, "node", e.NodeKey)
		},
	}
}

// Combine fans every hook out to all given hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		h := h
		if h.OnNodeEnter != nil {
			prev := out.OnNodeEnter
			out.OnNodeEnter = func(ctx context.Context, e *domain.NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeEnter(ctx, e)
			}
		}
		if h.OnNodeLeave != nil {
			prev := out.OnNodeLeave
			out.OnNodeLeave = func(ctx context.Context, e *domain.NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeLeave(ctx, e)
			}
		}
		if h.OnAnswer != nil {
			prev := out.OnAnswer
			out.OnAnswer = func(ctx context.Context, e *domain.AnswerEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnAnswer(ctx, e)
			}
		}
		if h.OnCompletion != nil {
			prev := out.OnCompletion
			out.OnCompletion = func(ctx context.Context, e *domain.CompletionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCompletion(ctx, e)
			}
		}
		if h.OnTransitionRejected != nil {
			prev := out.OnTransitionRejected
			out.OnTransitionRejected = func(ctx context.Context, e *domain.RejectedEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTransitionRejected(ctx, e)
			}
		}
	}
	return out
}
