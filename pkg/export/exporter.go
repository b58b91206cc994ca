package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/ports"
)

// Exporter writes and reads solution archives through a ports.Archiver.
type Exporter struct {
	archiver ports.Archiver
	tempDir  string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithTempDir sets the parent of the staging directories. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(x *Exporter) {
		x.tempDir = dir
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Exporter) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithClock overrides the time recorded in manifests.
func WithClock(now func() time.Time) Option {
	return func(x *Exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// NewExporter creates an Exporter.
func NewExporter(archiver ports.Archiver, opts ...Option) *Exporter {
	x := &Exporter{
		archiver: archiver,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Export stages the solution of section and archives it at dest.
// Failures are returned as *domain.ExportError; dest is never left half-written.
func (x *Exporter) Export(ctx context.Context, section *domain.Section, solution *domain.Solution, dest string) error {
	if err := x.export(ctx, section, solution, dest); err != nil {
		return &domain.ExportError{Path: dest, Err: err}
	}
	return nil
}

func (x *Exporter) export(ctx context.Context, section *domain.Section, solution *domain.Solution, dest string) error {
	staging, err := os.MkdirTemp(x.tempDir, "mentor-export-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			x.logger.Warn("failed to remove staging directory", "dir", staging, "err", err)
		}
	}()

	manifest := &Manifest{
		Format:      FormatVersion,
		SectionID:   section.ID,
		SectionName: section.Name,
		ExportedAt:  x.now().UTC(),
		Answers:     solution.Answers(),
	}
	if manifest.Answers == nil {
		manifest.Answers = []domain.Answer{}
	}

	assets, err := x.stageAssets(ctx, section, staging)
	if err != nil {
		return err
	}
	manifest.Assets = assets

	if err := writeManifest(staging, manifest); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	written, err := x.archiver.Compress(ctx, staging, dest)
	if err != nil {
		return err
	}
	x.logger.InfoContext(ctx, "solution exported",
		"section", section.ID,
		"answers", len(manifest.Answers),
		"assets", len(assets),
		"path", written,
	)
	return nil
}

// stageAssets copies every asset referenced by the section's cases below
// staging/assets, in case order.
func (x *Exporter) stageAssets(ctx context.Context, section *domain.Section, staging string) ([]string, error) {
	base := ""
	if section.Path != "" {
		base = filepath.Dir(section.Path)
	}

	seen := make(map[string]bool)
	var assets []string
	for _, c := range section.Cases {
		for _, asset := range c.Assets {
			if seen[asset] {
				continue
			}
			seen[asset] = true
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rel, err := cleanAsset(asset)
			if err != nil {
				return nil, fmt.Errorf("case '%s': %w", c.ID, err)
			}
			dst := filepath.Join(staging, AssetsDir, rel)
			if err := copyFile(filepath.Join(base, rel), dst); err != nil {
				return nil, fmt.Errorf("case '%s': asset '%s': %w", c.ID, asset, err)
			}
			assets = append(assets, filepath.ToSlash(rel))
		}
	}
	return assets, nil
}

func cleanAsset(asset string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(asset))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("asset '%s' is outside the section directory", asset)
	}
	return clean, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Import extracts archive and returns the solution it holds for section.
// The archive must belong to section and every answer must name one of its
// cases; otherwise the error matches domain.ErrSectionMismatch. Failures are
// returned as *domain.ImportError.
func (x *Exporter) Import(ctx context.Context, archive string, section *domain.Section) (*domain.Solution, error) {
	solution, err := x.importArchive(ctx, archive, section)
	if err != nil {
		return nil, &domain.ImportError{Path: archive, Err: err}
	}
	return solution, nil
}

func (x *Exporter) importArchive(ctx context.Context, archive string, section *domain.Section) (*domain.Solution, error) {
	if _, err := os.Stat(archive); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(x.tempDir, "mentor-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			x.logger.Warn("failed to remove staging directory", "dir", staging, "err", err)
		}
	}()

	dir, err := x.archiver.Extract(ctx, archive, staging)
	if err != nil {
		return nil, err
	}
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	if manifest.SectionID != section.ID {
		return nil, fmt.Errorf("%w: archive is for section '%s', not '%s'", domain.ErrSectionMismatch, manifest.SectionID, section.ID)
	}
	var unknown []string
	for _, a := range manifest.Answers {
		if _, ok := section.CaseByID(a.CaseID); !ok {
			unknown = append(unknown, a.CaseID)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown cases %s", domain.ErrSectionMismatch, strings.Join(unknown, ", "))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.logger.InfoContext(ctx, "solution imported", "section", section.ID, "answers", len(manifest.Answers))
	return manifest.Solution(), nil
}

// IsCancelled reports whether err comes from a cancelled task.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
