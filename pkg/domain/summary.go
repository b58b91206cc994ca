package domain

// ReviewItem is one line of the Total view.
type ReviewItem struct {
	CaseID       string    `json:"case_id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer,omitempty"`
	MentorAnswer string    `json:"mentor_answer"`
	State        NodeState `json:"state"`
}

// Summary is the data rendered on the Total node.
type Summary struct {
	SectionID string       `json:"section_id"`
	Total     int          `json:"total"`
	Answered  int          `json:"answered"`
	Pending   int          `json:"pending"`
	Completed bool         `json:"completed"`
	Items     []ReviewItem `json:"items"`
}
