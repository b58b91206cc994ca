package runtime

import (
	"github.com/aretw0/mentor/pkg/domain"
)

// checkPrecondition reports whether ev is legal from the current position.
func (e *Engine) checkPrecondition(ev domain.Event) bool {
	node, _ := e.graph.Node(e.current)
	state := e.states[e.current]

	switch ev.Type {
	case domain.EventStart:
		return node.Kind == domain.KindInstruction
	case domain.EventSelectNode:
		_, ok := e.graph.Node(ev.Node)
		return ok
	case domain.EventSubmitAnswer:
		return node.IsCase() && state == domain.StateQuestionShown
	case domain.EventShowMentorAnswer:
		return node.IsCase() && state == domain.StateAnswered
	case domain.EventBackToQuestion:
		return node.IsCase() && state == domain.StateMentorAnswerShown
	case domain.EventAdvance:
		if !node.IsCase() {
			return false
		}
		if state == domain.StateMentorAnswerShown {
			return true
		}
		return state == domain.StateAnswered && e.graph.Policy() == domain.PolicyMentorOptional
	}
	return false
}
