package domain

// EventType names a user intent forwarded by the presentation layer.
type EventType string

const (
	EventStart            EventType = "start"
	EventSelectNode       EventType = "select_node"
	EventSubmitAnswer     EventType = "submit_answer"
	EventShowMentorAnswer EventType = "show_mentor_answer"
	EventBackToQuestion   EventType = "back_to_question"
	EventAdvance          EventType = "advance"
)

// Event is a single user intent.
type Event struct {
	Type EventType `json:"type"`
	// Node is the target of EventSelectNode.
	Node NodeID `json:"node,omitempty"`
	// Text is the answer carried by EventSubmitAnswer.
	Text string `json:"text,omitempty"`
}

func StartEvent() Event             { return Event{Type: EventStart} }
func SelectEvent(n NodeID) Event    { return Event{Type: EventSelectNode, Node: n} }
func SubmitEvent(text string) Event { return Event{Type: EventSubmitAnswer, Text: text} }
func ShowMentorEvent() Event        { return Event{Type: EventShowMentorAnswer} }
func BackToQuestionEvent() Event    { return Event{Type: EventBackToQuestion} }
func AdvanceEvent() Event           { return Event{Type: EventAdvance} }

// EffectType names a notification produced by the engine.
type EffectType string

const (
	// EffectRender asks the presentation layer to show Node in State.
	EffectRender EffectType = "render"
	// EffectCompletionChanged reports that the section completion flag flipped.
	EffectCompletionChanged EffectType = "completion_changed"
	// EffectSolutionUpdated reports a new or changed answer.
	EffectSolutionUpdated EffectType = "solution_updated"
	// EffectSolutionSaved reports that the solution was persisted.
	EffectSolutionSaved EffectType = "solution_saved"
	// EffectSolutionMerged reports answers recovered by an import.
	EffectSolutionMerged EffectType = "solution_merged"
	// EffectSessionFinished reports that the Total node was reached with all cases done.
	EffectSessionFinished EffectType = "session_finished"
	// EffectIllegalTransition reports a rejected event. The event was a no-op.
	EffectIllegalTransition EffectType = "illegal_transition"
)

// Effect is one notification. Only the fields relevant to Type are set.
type Effect struct {
	Type      EffectType    `json:"type"`
	Node      *WorkflowNode `json:"node,omitempty"`
	State     NodeState     `json:"state,omitempty"`
	Completed bool          `json:"completed,omitempty"`
	CaseID    string        `json:"case_id,omitempty"`
	Answer    string        `json:"answer,omitempty"`
	Solution  *Solution     `json:"solution,omitempty"`
	Summary   *Summary      `json:"summary,omitempty"`
	Err       error         `json:"-"`
}

// EffectSet is the ordered result of processing one event.
type EffectSet []Effect

// Has reports whether the set contains an effect of the given type.
func (s EffectSet) Has(t EffectType) bool {
	_, ok := s.Find(t)
	return ok
}

// Find returns the first effect of the given type.
func (s EffectSet) Find(t EffectType) (Effect, bool) {
	for _, e := range s {
		if e.Type == t {
			return e, true
		}
	}
	return Effect{}, false
}

// Err returns the error of a rejected event, or nil.
func (s EffectSet) Err() error {
	if e, ok := s.Find(EffectIllegalTransition); ok {
		return e.Err
	}
	return nil
}
