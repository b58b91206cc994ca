package domain

import "time"

// Snapshot is the durable form of a training session.
// Nodes are addressed by their stable keys so a snapshot survives a reload of the section.
type Snapshot struct {
	SessionID string               `json:"session_id"`
	SectionID string               `json:"section_id"`
	Current   string               `json:"current"`
	States    map[string]NodeState `json:"states"`
	Solution  *Solution            `json:"solution"`
	Finished  bool                 `json:"finished"`
	UpdatedAt time.Time            `json:"updated_at"`

	// Sealed holds an encrypted snapshot. A sealed snapshot carries no
	// progress of its own and must be opened before it is restored.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSnapshot creates an empty snapshot positioned on the Instruction node.
func NewSnapshot(sessionID, sectionID string) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		SectionID: sectionID,
		Current:   InstructionRef,
		States:    make(map[string]NodeState),
		Solution:  NewSolution(),
	}
}

// Clone returns a deep copy, so stores can isolate their data from callers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.States = make(map[string]NodeState, len(s.States))
	for k, v := range s.States {
		c.States[k] = v
	}
	c.Solution = s.Solution.Clone()
	c.Sealed = append([]byte(nil), s.Sealed...)
	return &c
}
