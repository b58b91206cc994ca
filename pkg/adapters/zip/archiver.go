package zip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultMaxExtractSize bounds the total uncompressed size Extract will write.
const DefaultMaxExtractSize int64 = 64 << 20

var (
	// ErrUnsafePath is returned when an archive entry would land outside the target directory.
	ErrUnsafePath = errors.New("unsafe path in archive")
	// ErrArchiveTooLarge is returned when extraction exceeds the configured size.
	ErrArchiveTooLarge = errors.New("archive exceeds size limit")
)

// Archiver implements ports.Archiver with zip files.
type Archiver struct {
	maxExtract int64
}

// Option configures the Archiver.
type Option func(*Archiver)

// WithMaxExtractSize overrides DefaultMaxExtractSize.
func WithMaxExtractSize(n int64) Option {
	return func(a *Archiver) {
		if n > 0 {
			a.maxExtract = n
		}
	}
}

// New creates a zip Archiver.
func New(opts ...Option) *Archiver {
	a := &Archiver{maxExtract: DefaultMaxExtractSize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compress packs every regular file below srcDir into dstPath.
// The archive is written to a temporary file next to dstPath and renamed into
// place, so dstPath never holds a partial archive.
func (a *Archiver) Compress(ctx context.Context, srcDir, dstPath string) (string, error) {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mentor-*.zip.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	zw := zip.NewWriter(tmp)
	walkErr := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		_ = zw.Close()
		return "", fmt.Errorf("failed to write archive: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("failed to fsync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Rename replaces an existing archive in one step; on failure dstPath is untouched.
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return "", fmt.Errorf("failed to move archive into place: %w", err)
	}
	return dstPath, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Extract unpacks archivePath into dstDir. Entries with absolute paths or
// parent references are rejected before anything is written.
func (a *Archiver) Extract(ctx context.Context, archivePath, dstDir string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if zr == nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	// A reader returned alongside an error flags insecure entry names; safeJoin reports them.
	defer zr.Close()

	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		target, err := safeJoin(dstDir, f.Name)
		if err != nil {
			return "", err
		}
		targets[i] = target
	}

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}

	budget := a.maxExtract
	for i, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0755); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}
		n, err := extractFile(f, targets[i], budget)
		if err != nil {
			return "", err
		}
		budget -= n
	}
	return dstDir, nil
}

func extractFile(f *zip.File, target string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open entry '%s': %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create '%s': %w", f.Name, err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(rc, budget+1))
	if err != nil {
		return n, fmt.Errorf("failed to extract '%s': %w", f.Name, err)
	}
	if n > budget {
		return n, ErrArchiveTooLarge
	}
	return n, out.Close()
}

func safeJoin(root, name string) (string, error) {
	if name == "" || strings.Contains(name, `\`) || path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: '%s'", ErrUnsafePath, name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: '%s'", ErrUnsafePath, name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}
