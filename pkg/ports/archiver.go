package ports

import "context"

// Archiver packs and unpacks solution archives.
type Archiver interface {
	// Compress writes the contents of srcDir into an archive at dstPath and
	// returns the path that was written. dstPath is either complete or absent
	// when Compress returns.
	Compress(ctx context.Context, srcDir, dstPath string) (string, error)

	// Extract unpacks archivePath into dstDir and returns the directory holding the contents.
	Extract(ctx context.Context, archivePath, dstDir string) (string, error)
}
