package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/mentor/internal/compiler"
	"github.com/aretw0/mentor/pkg/domain"
)

// Loader implements ports.SectionLoader for single-file sections
// (".yaml", ".yml", ".oms" or ".json").
type Loader struct {
	parser *compiler.Parser
}

// NewLoader creates a file section loader.
func NewLoader() *Loader {
	return &Loader{parser: compiler.NewParser()}
}

// Load reads and parses the section file at path.
// A section without an ID gets one derived from its location.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := compiler.FormatOf(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve section path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read section file: %w", err)
	}

	section, err := l.parser.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("section '%s': %w", filepath.Base(path), err)
	}
	section.Path = abs
	if section.ID == "" {
		section.ID = compiler.DeriveSectionID(abs)
	}
	return section, nil
}
