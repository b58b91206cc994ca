package dsl

import "github.com/aretw0/mentor/pkg/domain"

// CaseBuilder provides a fluent API for configuring a case.
type CaseBuilder struct {
	c       domain.Case
	builder *Builder
}

// Question sets the question shown to the learner.
func (n *CaseBuilder) Question(text string) *CaseBuilder {
	n.c.Question = text
	return n
}

// Mentor sets the reference answer.
func (n *CaseBuilder) Mentor(text string) *CaseBuilder {
	n.c.MentorAnswer = text
	return n
}

// Go sets the case that follows this one.
func (n *CaseBuilder) Go(target string) *CaseBuilder {
	n.c.Next = target
	return n
}

// Total makes this case the last one before the summary.
func (n *CaseBuilder) Total() *CaseBuilder {
	n.c.Next = domain.TotalRef
	return n
}

// Assets lists section-relative files of the case.
func (n *CaseBuilder) Assets(paths ...string) *CaseBuilder {
	n.c.Assets = append(n.c.Assets, paths...)
	return n
}

// Case starts the next case on the same section builder.
func (n *CaseBuilder) Case(id string) *CaseBuilder {
	return n.builder.Case(id)
}

// End returns to the section builder.
func (n *CaseBuilder) End() *Builder {
	return n.builder
}

// Build returns the underlying domain.Case.
func (n *CaseBuilder) Build() domain.Case {
	c := n.c
	c.Assets = append([]string(nil), n.c.Assets...)
	return c
}
