package domain

// NodeState is the runtime status of a workflow node.
type NodeState string

const (
	StateUnvisited         NodeState = "unvisited"
	StateQuestionShown     NodeState = "question_shown"
	StateAnswered          NodeState = "answered"
	StateMentorAnswerShown NodeState = "mentor_answer_shown"
)

// IsDone reports whether the state counts towards completion.
func (s NodeState) IsDone() bool {
	return s == StateAnswered || s == StateMentorAnswerShown
}

// Valid reports whether s is one of the known states.
func (s NodeState) Valid() bool {
	switch s {
	case StateUnvisited, StateQuestionShown, StateAnswered, StateMentorAnswerShown:
		return true
	}
	return false
}
