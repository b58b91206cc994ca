package dsl

import (
	"fmt"

	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/graph"
)

// Builder manages the section construction.
type Builder struct {
	section domain.Section
	cases   map[string]*CaseBuilder
	order   []string
}

// New creates a new section builder.
func New(id string) *Builder {
	return &Builder{
		section: domain.Section{ID: id},
		cases:   make(map[string]*CaseBuilder),
	}
}

// Name sets the display name of the section.
func (b *Builder) Name(name string) *Builder {
	b.section.Name = name
	return b
}

// Instruction sets the text shown on the entry node.
func (b *Builder) Instruction(text string) *Builder {
	b.section.Instruction = text
	return b
}

// Policy sets the mentor policy.
func (b *Builder) Policy(p domain.MentorPolicy) *Builder {
	b.section.Policy = p
	return b
}

// Start names the first case. Without it the first added case starts the flow.
func (b *Builder) Start(caseID string) *Builder {
	b.section.Start = caseID
	return b
}

// Case adds a case to the section.
// If the case already exists, it returns the existing builder.
func (b *Builder) Case(id string) *CaseBuilder {
	if cb, ok := b.cases[id]; ok {
		return cb
	}
	cb := &CaseBuilder{
		c:       domain.Case{ID: id},
		builder: b,
	}
	b.cases[id] = cb
	b.order = append(b.order, id)
	return cb
}

// Section returns the section in definition order without checking it.
func (b *Builder) Section() domain.Section {
	s := b.section
	s.Cases = make([]domain.Case, 0, len(b.order))
	for _, id := range b.order {
		s.Cases = append(s.Cases, b.cases[id].Build())
	}
	return s
}

// Build returns the section after checking that its flow is valid.
func (b *Builder) Build() (domain.Section, error) {
	s := b.Section()
	if _, err := graph.Build(s); err != nil {
		return domain.Section{}, fmt.Errorf("invalid section '%s': %w", s.ID, err)
	}
	return s, nil
}

// Loader compiles the section into a memory loader serving it under its ID.
func (b *Builder) Loader() (*memory.Loader, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewLoader(s)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
