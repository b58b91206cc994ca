package ports

import (
	"context"

	"github.com/aretw0/mentor/pkg/domain"
)

// SectionLoader defines how a training section is obtained.
// This allows the source (YAML files, Loam, Memory) to be decoupled from the engine.
type SectionLoader interface {
	// Load reads and decodes the section stored at path.
	// The returned section has not been checked for flow errors; graph.Build does that.
	Load(ctx context.Context, path string) (*domain.Section, error)
}
