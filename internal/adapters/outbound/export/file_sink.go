// Package export writes artifacts to the local filesystem.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medqc/stacaudit/internal/domain"
)

// FileSink saves artifacts into a directory under their fixed filenames.
type FileSink struct {
	Dir string
}

// New creates a FileSink writing into dir.
func New(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Save writes the artifact through a temporary file in the destination
// directory and renames it into place. The temporary file is removed on every
// path; after a successful rename the removal is a no-op.
func (s *FileSink) Save(ctx context.Context, artifact domain.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if artifact.Filename == "" || filepath.Base(artifact.Filename) != artifact.Filename {
		return "", fmt.Errorf("invalid artifact filename %q", artifact.Filename)
	}

	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+artifact.Filename+".*")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", artifact.Filename, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("syncing %s: %w", artifact.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", artifact.Filename, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("setting permissions on %s: %w", artifact.Filename, err)
	}

	dest := filepath.Join(dir, artifact.Filename)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("moving %s into place: %w", artifact.Filename, err)
	}
	return dest, nil
}
