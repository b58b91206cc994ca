package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mentor/pkg/domain"
)

const (
	// ManifestName is the manifest file at the archive root.
	ManifestName = "manifest.json"
	// AssetsDir holds the copied case assets.
	AssetsDir = "assets"
	// FormatVersion is the manifest layout written by this package.
	FormatVersion = 1
)

// Manifest describes an exported solution.
type Manifest struct {
	Format      int             `json:"format"`
	SectionID   string          `json:"section_id"`
	SectionName string          `json:"section_name,omitempty"`
	ExportedAt  time.Time       `json:"exported_at"`
	Answers     []domain.Answer `json:"answers"`
	Assets      []string        `json:"assets,omitempty"`
}

// Solution rebuilds the ordered solution from the manifest.
func (m *Manifest) Solution() *domain.Solution {
	s := domain.NewSolution()
	for _, a := range m.Answers {
		s.Set(a.CaseID, a.Text)
	}
	return s
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported manifest format %d", m.Format)
	}
	return &m, nil
}
