package memory

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/aretw0/mentor/pkg/domain"
)

// Loader implements ports.SectionLoader using an in-memory map keyed by path.
type Loader struct {
	sections map[string]domain.Section
}

// NewLoader creates a Loader that serves each section under its own ID.
func NewLoader(sections ...domain.Section) (*Loader, error) {
	l := &Loader{sections: make(map[string]domain.Section, len(sections))}
	for _, s := range sections {
		if s.ID == "" {
			return nil, fmt.Errorf("section missing ID")
		}
		if err := l.Add(s.ID, s); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers a section under path.
func (l *Loader) Add(path string, section domain.Section) error {
	if _, exists := l.sections[path]; exists {
		return fmt.Errorf("section already registered at '%s'", path)
	}
	section.Path = path
	section.Policy = section.Policy.Normalize()
	l.sections[path] = section
	return nil
}

// Load returns a copy of the section registered at path.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Section, error) {
	s, ok := l.sections[path]
	if !ok {
		return nil, fmt.Errorf("section not found: %s: %w", path, fs.ErrNotExist)
	}
	cases := make([]domain.Case, len(s.Cases))
	for i, c := range s.Cases {
		c.Assets = append([]string(nil), c.Assets...)
		cases[i] = c
	}
	s.Cases = cases
	return &s, nil
}

// Paths returns all registered paths.
func (l *Loader) Paths() []string {
	keys := make([]string, 0, len(l.sections))
	for k := range l.sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
