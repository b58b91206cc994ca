package loam

// Document kinds.
const (
	KindSection = "section"
	KindCase    = "case"
)

// SectionDocument is the document ID that holds the section header.
// Its body is the instruction text.
const SectionDocument = "section"

// CaseMetadata is the frontmatter of a section document or a case document.
// A case document's body is its question.
type CaseMetadata struct {
	Kind string `json:"kind" mapstructure:"kind"`
	ID   string `json:"id" mapstructure:"id"`

	// Section header fields.
	Name   string `json:"name" mapstructure:"name"`
	Policy string `json:"policy" mapstructure:"policy"`
	Start  string `json:"start" mapstructure:"start"`

	// Case fields.
	MentorAnswer string   `json:"mentor_answer" mapstructure:"mentor_answer"`
	Next         string   `json:"next" mapstructure:"next"`
	Assets       []string `json:"assets" mapstructure:"assets"`
}
