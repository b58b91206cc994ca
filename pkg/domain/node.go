package domain

import "fmt"

// NodeID addresses a node inside a built flow graph.
type NodeID int

// NoNode is the zero reference used when a node has no successor.
const NoNode NodeID = -1

// NodeKind is the variant of a workflow node.
type NodeKind string

const (
	// KindInstruction is the entry node. It carries no question.
	KindInstruction NodeKind = "instruction"
	// KindCase is a question / mentor-answer pair.
	KindCase NodeKind = "case"
	// KindTotal is the terminal summary node.
	KindTotal NodeKind = "total"
)

// WorkflowNode is one addressable point in the training flow.
type WorkflowNode struct {
	ID   NodeID   `json:"id"`
	Kind NodeKind `json:"kind"`

	// Key is the stable string address: InstructionRef, the case ID or TotalRef.
	Key string `json:"key"`

	// Case fields (empty for Instruction and Total).
	CaseID       string   `json:"case_id,omitempty"`
	Question     string   `json:"question,omitempty"`
	MentorAnswer string   `json:"mentor_answer,omitempty"`
	Assets       []string `json:"assets,omitempty"`

	// Next is the node that follows this one. NoNode on Total.
	Next NodeID `json:"next"`
}

// IsCase reports whether the node is a Case.
func (n WorkflowNode) IsCase() bool {
	return n.Kind == KindCase
}

func (n WorkflowNode) String() string {
	return fmt.Sprintf("%s(%s)", n.Kind, n.Key)
}
