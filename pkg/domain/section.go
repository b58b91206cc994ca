package domain

// TotalRef is the reserved next reference that points at the Total node.
// An empty reference means the same thing.
const TotalRef = "total"

// InstructionRef is the stable key of the Instruction node.
const InstructionRef = "instruction"

// Section is a loaded training section. It is read-only once loaded.
type Section struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Path is where the section was loaded from. Asset paths are relative to its directory.
	Path string `json:"path,omitempty" yaml:"-"`

	// Instruction is the text rendered on the entry node.
	Instruction string `json:"instruction,omitempty" yaml:"instruction,omitempty"`

	// Start is the reference of the first case. Empty selects the first case in definition order.
	Start string `json:"start,omitempty" yaml:"start,omitempty"`

	// Policy controls whether the mentor answer must be shown before advancing.
	Policy MentorPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`

	Cases []Case `json:"cases" yaml:"cases"`
}

// Case is one question / mentor-answer unit.
type Case struct {
	ID           string `json:"id" yaml:"id"`
	Question     string `json:"question" yaml:"question"`
	MentorAnswer string `json:"mentor_answer" yaml:"mentor_answer"`

	// Next is the explicit reference to the following case, or TotalRef.
	Next string `json:"next,omitempty" yaml:"next,omitempty"`

	// Assets lists section-relative files referenced by the case.
	Assets []string `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// CaseByID returns the case with the given ID.
func (s *Section) CaseByID(id string) (Case, bool) {
	for _, c := range s.Cases {
		if c.ID == id {
			return c, true
		}
	}
	return Case{}, false
}

// IsTotalRef reports whether ref addresses the Total node.
func IsTotalRef(ref string) bool {
	return ref == "" || ref == TotalRef
}

// MentorPolicy decides if advancing requires the mentor answer to be displayed first.
type MentorPolicy string

const (
	// PolicyMentorRequired allows advance only from MentorAnswerShown.
	PolicyMentorRequired MentorPolicy = "required"
	// PolicyMentorOptional also allows advance straight from Answered.
	PolicyMentorOptional MentorPolicy = "optional"
)

// Normalize returns the effective policy, defaulting to PolicyMentorRequired.
func (p MentorPolicy) Normalize() MentorPolicy {
	if p == PolicyMentorOptional {
		return PolicyMentorOptional
	}
	return PolicyMentorRequired
}
