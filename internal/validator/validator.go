package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/graph"
	"github.com/aretw0/mentor/pkg/ports"
)

// Report lists what is wrong with a section.
// Errors prevent training; warnings do not.
type Report struct {
	Section  *domain.Section
	Graph    *graph.Graph
	Errors   []string
	Warnings []string
}

// OK reports whether the section has no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into one, or returns nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidFlow, len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// ValidateSection loads the section at path and checks its flow,
// its cases and the assets they reference.
// The returned error is only set when the section cannot be loaded at all.
func ValidateSection(ctx context.Context, loader ports.SectionLoader, path string) (*Report, error) {
	section, err := loader.Load(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrInvalidFlow) {
		return nil, err
	}
	if err != nil {
		return &Report{Errors: []string{err.Error()}}, nil
	}
	return Check(*section), nil
}

// Check validates an already loaded section.
func Check(section domain.Section) *Report {
	r := &Report{Section: &section}

	g, err := graph.Build(section)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	} else {
		r.Graph = g
		for _, n := range g.Unreachable() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("case '%s' is not on the path to total", n.CaseID))
		}
	}

	if len(section.Cases) == 0 {
		r.Warnings = append(r.Warnings, "section has no cases")
	}

	base := ""
	if section.Path != "" {
		base = filepath.Dir(section.Path)
	}
	for _, c := range section.Cases {
		if strings.TrimSpace(c.Question) == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("case '%s' has no question", c.ID))
		}
		if strings.TrimSpace(c.MentorAnswer) == "" {
			r.Warnings = append(r.Warnings, fmt.Sprintf("case '%s' has no mentor answer", c.ID))
		}
		if base == "" {
			continue
		}
		for _, asset := range c.Assets {
			p := asset
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, asset)
			}
			if _, err := os.Stat(p); err != nil {
				r.Errors = append(r.Errors, fmt.Sprintf("case '%s': missing asset '%s'", c.ID, asset))
			}
		}
	}
	return r
}
