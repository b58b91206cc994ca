package domain

import (
	"encoding/json"
	"fmt"
)

// Answer is one entry of a Solution.
type Answer struct {
	CaseID string `json:"case_id" yaml:"case_id"`
	Text   string `json:"text" yaml:"text"`
}

// Solution maps case IDs to the learner's answers.
// Iteration order is the order in which cases were first answered.
type Solution struct {
	entries []Answer
	index   map[string]int
}

// NewSolution creates an empty solution.
func NewSolution() *Solution {
	return &Solution{index: make(map[string]int)}
}

// Set records the answer for a case. An existing answer is overwritten in place.
func (s *Solution) Set(caseID, text string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[caseID]; ok {
		s.entries[i].Text = text
		return
	}
	s.index[caseID] = len(s.entries)
	s.entries = append(s.entries, Answer{CaseID: caseID, Text: text})
}

// Get returns the answer recorded for a case.
func (s *Solution) Get(caseID string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[caseID]
	if !ok {
		return "", false
	}
	return s.entries[i].Text, true
}

// Has reports whether the case has an answer.
func (s *Solution) Has(caseID string) bool {
	_, ok := s.Get(caseID)
	return ok
}

// Len returns the number of answered cases.
func (s *Solution) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Answers returns the entries in insertion order.
func (s *Solution) Answers() []Answer {
	if s == nil {
		return nil
	}
	out := make([]Answer, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clone returns an independent copy.
func (s *Solution) Clone() *Solution {
	c := NewSolution()
	if s == nil {
		return c
	}
	for _, a := range s.entries {
		c.Set(a.CaseID, a.Text)
	}
	return c
}

// Equal reports whether both solutions hold the same answers in the same order.
func (s *Solution) Equal(other *Solution) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.Answers(), other.Answers()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the solution as an ordered list of answers.
func (s *Solution) MarshalJSON() ([]byte, error) {
	answers := s.Answers()
	if answers == nil {
		answers = []Answer{}
	}
	return json.Marshal(answers)
}

// UnmarshalJSON decodes an ordered list of answers.
func (s *Solution) UnmarshalJSON(data []byte) error {
	var answers []Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("failed to decode solution: %w", err)
	}
	s.entries = nil
	s.index = make(map[string]int)
	for _, a := range answers {
		s.Set(a.CaseID, a.Text)
	}
	return nil
}
